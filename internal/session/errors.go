package session

import (
	"errors"
	"fmt"

	"github.com/Fatihur/api-baru/internal/model"
)

// ErrReconnectExhausted marks a session that hit the reconnect ceiling and
// moved to the failed state. Recovery requires deleting and recreating the
// session.
var ErrReconnectExhausted = errors.New("reconnect attempts exhausted")

// NotConnectedError is returned when an action is attempted while the
// session is not connected. It carries the current state and any pending
// pairing challenge so callers can distinguish "scan the code" from
// "wait for reconnect".
type NotConnectedError struct {
	State            model.SessionState
	PairingChallenge string
}

func (e *NotConnectedError) Error() string {
	return fmt.Sprintf("session not connected (state: %s)", e.State)
}

// ProtocolError wraps a driver-level action failure.
type ProtocolError struct {
	Action string
	Err    error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("action %s failed: %v", e.Action, e.Err)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// InitializationError reports that a session could not be constructed:
// either its credential namespace or its driver failed to come up. The
// registry drops the entry so a later request can retry.
type InitializationError struct {
	Key model.SessionKey
	Err error
}

func (e *InitializationError) Error() string {
	return fmt.Sprintf("failed to initialize session %s: %v", e.Key, e.Err)
}

func (e *InitializationError) Unwrap() error { return e.Err }
