// Package gateway wires tenant validation to the session registry. It is
// the single entry point the HTTP layer uses to reach a live session, and
// it owns the cascade from tenant deletion to session teardown.
package gateway

import (
	"context"
	"errors"

	"github.com/Fatihur/api-baru/internal/model"
	"github.com/Fatihur/api-baru/internal/session"
	"github.com/Fatihur/api-baru/internal/tenant"
	"go.uber.org/zap"
)

// ErrInvalidTenant is returned when a request carries a missing, unknown
// or revoked tenant token. The request never reaches the registry.
var ErrInvalidTenant = errors.New("invalid or inactive tenant token")

// Orchestrator resolves authenticated requests to sessions and routes
// administrative teardown through registry and tenant store in the right
// order.
type Orchestrator struct {
	tenants  *tenant.Service
	sessions *session.Registry
	logger   *zap.Logger
}

// NewOrchestrator creates the facade
func NewOrchestrator(tenants *tenant.Service, sessions *session.Registry, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		tenants:  tenants,
		sessions: sessions,
		logger:   logger,
	}
}

// Resolve validates the tenant token and returns the tenant's session for
// sessionName, creating it on first use. An empty session name selects the
// default session.
func (o *Orchestrator) Resolve(ctx context.Context, token, sessionName string) (*session.Session, error) {
	if token == "" || !o.tenants.Validate(ctx, token) {
		return nil, ErrInvalidTenant
	}
	return o.sessions.GetOrCreate(ctx, token, sessionName)
}

// Tenants exposes tenant administration to the HTTP layer.
func (o *Orchestrator) Tenants() *tenant.Service { return o.tenants }

// ListSessions lists the tenant's sessions.
func (o *Orchestrator) ListSessions(ctx context.Context, token string) ([]model.SessionInfo, error) {
	if token == "" || !o.tenants.Validate(ctx, token) {
		return nil, ErrInvalidTenant
	}
	return o.sessions.List(token), nil
}

// DeleteSession tears one session down. Returns whether it existed.
func (o *Orchestrator) DeleteSession(ctx context.Context, token, sessionName string) (bool, error) {
	if token == "" || !o.tenants.Validate(ctx, token) {
		return false, ErrInvalidTenant
	}
	return o.sessions.Delete(ctx, token, sessionName)
}

// LogoutTenantSessions logs out and removes every session a tenant owns
// without touching the tenant record. Used by the admin logout operation.
func (o *Orchestrator) LogoutTenantSessions(ctx context.Context, token string) error {
	return o.sessions.DeleteAll(ctx, token)
}

// DeleteTenant hard-deletes a tenant. Every owned session is logged out
// and removed, and the credential namespace root erased, before the
// record itself goes away, so a failed cascade never leaves orphaned
// sessions behind a deleted tenant.
func (o *Orchestrator) DeleteTenant(ctx context.Context, token string) (bool, error) {
	if err := o.sessions.DeleteAll(ctx, token); err != nil {
		return false, err
	}
	return o.tenants.Delete(ctx, token)
}
