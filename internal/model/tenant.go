package model

import "time"

// TenantRecord holds the metadata for one API consumer. The Token is the
// tenant's identity: it is issued once by the tenant service and never
// changes afterwards. Revoked tenants are kept with Active=false so their
// usage history survives; only an explicit hard delete removes the record.
type TenantRecord struct {
	Token        string     `json:"token"`
	Name         string     `json:"name"`
	CreatedAt    time.Time  `json:"created_at"`
	LastUsed     *time.Time `json:"last_used"`
	RequestCount int64      `json:"request_count"`
	Active       bool       `json:"active"`
}

// Clone returns a deep copy so callers can hand records out without
// exposing the service's internal map entries to mutation.
func (t *TenantRecord) Clone() *TenantRecord {
	if t == nil {
		return nil
	}
	c := *t
	if t.LastUsed != nil {
		lu := *t.LastUsed
		c.LastUsed = &lu
	}
	return &c
}
