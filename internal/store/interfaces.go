package store

import (
	"context"
	"errors"

	"github.com/Fatihur/api-baru/internal/model"
)

// ErrNotFound is returned when a record or namespace is not found
var ErrNotFound = errors.New("not found")

// TenantRepository persists the tenant record set. The tenant service owns
// the in-memory working copy and writes whole snapshots; repositories only
// need durable load/save.
type TenantRepository interface {
	Load(ctx context.Context) (map[string]*model.TenantRecord, error)
	Save(ctx context.Context, tenants map[string]*model.TenantRecord) error

	// Health check
	Ping(ctx context.Context) error
	Close()
}

// CredentialStore is durable, namespaced storage for the opaque credential
// material that lets a session resume without re-pairing. Namespaces are
// keyed by (tenant, session name); deleting a tenant removes every session
// namespace under it.
type CredentialStore interface {
	// Namespace ensures the namespace for the key exists and returns the
	// stored blob, or nil when the namespace is fresh.
	Namespace(ctx context.Context, key model.SessionKey) ([]byte, error)
	Save(ctx context.Context, key model.SessionKey, blob []byte) error
	Delete(ctx context.Context, key model.SessionKey) error
	DeleteTenant(ctx context.Context, tenantID string) error
	Close()
}
