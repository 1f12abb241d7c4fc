package gateway

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Fatihur/api-baru/internal/driver/loopback"
	"github.com/Fatihur/api-baru/internal/session"
	"github.com/Fatihur/api-baru/internal/store"
	"github.com/Fatihur/api-baru/internal/tenant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestOrchestrator(t *testing.T) (*Orchestrator, store.CredentialStore) {
	t.Helper()
	logger := zap.NewNop()
	dir := t.TempDir()

	repo, err := store.NewFileTenantRepository(filepath.Join(dir, "keys.json"), logger)
	require.NoError(t, err)
	creds, err := store.NewFileCredentialStore(filepath.Join(dir, "sessions"), logger)
	require.NoError(t, err)

	tenants, err := tenant.NewService(context.Background(), repo, time.Hour, logger, nil)
	require.NoError(t, err)
	t.Cleanup(tenants.Stop)

	registry := session.NewRegistry(loopback.NewFactory(), creds, session.DefaultConfig(), logger, nil)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		registry.Shutdown(ctx)
	})

	return NewOrchestrator(tenants, registry, logger), creds
}

func TestOrchestrator_ResolveRejectsInvalidToken(t *testing.T) {
	orch, _ := newTestOrchestrator(t)

	_, err := orch.Resolve(context.Background(), "", "default")
	assert.ErrorIs(t, err, ErrInvalidTenant)

	_, err = orch.Resolve(context.Background(), "wa_nonexistent", "default")
	assert.ErrorIs(t, err, ErrInvalidTenant)
}

func TestOrchestrator_ResolveCreatesSession(t *testing.T) {
	orch, _ := newTestOrchestrator(t)

	record, err := orch.Tenants().Generate(context.Background(), "app")
	require.NoError(t, err)

	s1, err := orch.Resolve(context.Background(), record.Token, "")
	require.NoError(t, err)
	require.NotNil(t, s1)

	s2, err := orch.Resolve(context.Background(), record.Token, "default")
	require.NoError(t, err)
	assert.Same(t, s1, s2)

	infos, err := orch.ListSessions(context.Background(), record.Token)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "default", infos[0].Name)
}

func TestOrchestrator_RevokedTenantKeepsRunningSession(t *testing.T) {
	orch, _ := newTestOrchestrator(t)

	record, err := orch.Tenants().Generate(context.Background(), "app")
	require.NoError(t, err)

	_, err = orch.Resolve(context.Background(), record.Token, "default")
	require.NoError(t, err)

	_, err = orch.Tenants().Revoke(context.Background(), record.Token)
	require.NoError(t, err)

	// New requests are refused; the session itself is not torn down.
	_, err = orch.Resolve(context.Background(), record.Token, "default")
	assert.ErrorIs(t, err, ErrInvalidTenant)
	_, err = orch.ListSessions(context.Background(), record.Token)
	assert.ErrorIs(t, err, ErrInvalidTenant)
}

func TestOrchestrator_DeleteSession(t *testing.T) {
	orch, _ := newTestOrchestrator(t)

	record, err := orch.Tenants().Generate(context.Background(), "app")
	require.NoError(t, err)

	_, err = orch.Resolve(context.Background(), record.Token, "default")
	require.NoError(t, err)

	existed, err := orch.DeleteSession(context.Background(), record.Token, "default")
	require.NoError(t, err)
	assert.True(t, existed)

	existed, err = orch.DeleteSession(context.Background(), record.Token, "default")
	require.NoError(t, err)
	assert.False(t, existed)
}

func TestOrchestrator_DeleteTenantCascades(t *testing.T) {
	orch, _ := newTestOrchestrator(t)

	record, err := orch.Tenants().Generate(context.Background(), "app")
	require.NoError(t, err)

	_, err = orch.Resolve(context.Background(), record.Token, "default")
	require.NoError(t, err)
	_, err = orch.Resolve(context.Background(), record.Token, "work")
	require.NoError(t, err)

	existed, err := orch.DeleteTenant(context.Background(), record.Token)
	require.NoError(t, err)
	assert.True(t, existed)

	// The record is gone, so all access is refused.
	_, err = orch.Resolve(context.Background(), record.Token, "default")
	assert.ErrorIs(t, err, ErrInvalidTenant)
	_, err = orch.Tenants().Get(context.Background(), record.Token)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestOrchestrator_LogoutTenantSessionsKeepsRecord(t *testing.T) {
	orch, _ := newTestOrchestrator(t)

	record, err := orch.Tenants().Generate(context.Background(), "app")
	require.NoError(t, err)

	_, err = orch.Resolve(context.Background(), record.Token, "default")
	require.NoError(t, err)

	require.NoError(t, orch.LogoutTenantSessions(context.Background(), record.Token))

	infos, err := orch.ListSessions(context.Background(), record.Token)
	require.NoError(t, err)
	assert.Empty(t, infos)

	// The tenant record survives, so the key keeps validating.
	got, err := orch.Tenants().Get(context.Background(), record.Token)
	require.NoError(t, err)
	assert.True(t, got.Active)
}
