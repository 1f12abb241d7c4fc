package model

// DefaultSessionName is used when a request does not select a session
// explicitly. Every tenant gets at least this one session.
const DefaultSessionName = "default"

// SessionKey identifies one connection to the messaging network. A tenant
// may own several sessions under distinct names; the composite key is the
// only way sessions are addressed across the registry.
type SessionKey struct {
	TenantID string
	Name     string
}

// NewSessionKey builds a key, substituting DefaultSessionName for an empty
// session name.
func NewSessionKey(tenantID, name string) SessionKey {
	if name == "" {
		name = DefaultSessionName
	}
	return SessionKey{TenantID: tenantID, Name: name}
}

func (k SessionKey) String() string {
	return k.TenantID + "/" + k.Name
}

// SessionState is the lifecycle state of a session's connection.
type SessionState string

const (
	StateDisconnected SessionState = "disconnected"
	StatePairingReady SessionState = "pairing_ready"
	StateConnected    SessionState = "connected"
	StateReconnecting SessionState = "reconnecting"
	StateLoggedOut    SessionState = "logged_out"
	StateFailed       SessionState = "failed"
)

// Terminal reports whether the state permits no further automatic
// transitions. Failed and logged-out sessions require administrative
// deletion and recreation.
func (s SessionState) Terminal() bool {
	return s == StateLoggedOut || s == StateFailed
}

// SessionStatus is the snapshot returned to status queries.
type SessionStatus struct {
	Connected        bool         `json:"connected"`
	State            SessionState `json:"state"`
	PairingChallenge string       `json:"qr,omitempty"`
}

// SessionInfo is one row of a tenant's session listing.
type SessionInfo struct {
	Name      string       `json:"name"`
	Connected bool         `json:"connected"`
	State     SessionState `json:"state"`
}
