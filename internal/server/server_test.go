package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Fatihur/api-baru/internal/config"
	"github.com/Fatihur/api-baru/internal/driver/loopback"
	"github.com/Fatihur/api-baru/internal/gateway"
	"github.com/Fatihur/api-baru/internal/health"
	"github.com/Fatihur/api-baru/internal/session"
	"github.com/Fatihur/api-baru/internal/store"
	"github.com/Fatihur/api-baru/internal/tenant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const adminKey = "test-admin-key"

// newTestServer assembles the full stack on the loopback driver with
// file-backed stores in a temp directory.
func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := zap.NewNop()
	dir := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.Admin.Key = adminKey
	cfg.RateLimiter.Enabled = false
	cfg.TenantStore.FilePath = filepath.Join(dir, "api-keys.json")
	cfg.Credentials.Dir = filepath.Join(dir, "sessions")
	cfg.Session.ReconnectBaseDelay = 5 * time.Millisecond
	cfg.Session.ReconnectMaxDelay = 20 * time.Millisecond

	repo, err := store.NewFileTenantRepository(cfg.TenantStore.FilePath, logger)
	require.NoError(t, err)
	creds, err := store.NewFileCredentialStore(cfg.Credentials.Dir, logger)
	require.NoError(t, err)

	tenants, err := tenant.NewService(context.Background(), repo, time.Hour, logger, nil)
	require.NoError(t, err)
	t.Cleanup(tenants.Stop)

	sessionCfg := session.Config{
		BaseDelay:   cfg.Session.ReconnectBaseDelay,
		MaxDelay:    cfg.Session.ReconnectMaxDelay,
		MaxAttempts: cfg.Session.ReconnectMaxRetries,
		BufferSize:  cfg.Session.InboxSize,
	}
	registry := session.NewRegistry(loopback.NewFactory(), creds, sessionCfg, logger, nil)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		registry.Shutdown(ctx)
	})

	orch := gateway.NewOrchestrator(tenants, registry, logger)

	healthCheck := health.NewHealthCheck(repo, logger)
	t.Cleanup(healthCheck.Stop)

	srv := NewServer(cfg, orch, healthCheck, nil, logger)
	srv.SetupRoutes()
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path, apiKey string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	rec := httptest.NewRecorder()
	srv.GetRouter().ServeHTTP(rec, req)

	decoded := map[string]any{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded), "body: %s", rec.Body.String())
	}
	return rec, decoded
}

func doAdmin(t *testing.T, srv *Server, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader([]byte("{}"))
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Admin-Key", adminKey)

	rec := httptest.NewRecorder()
	srv.GetRouter().ServeHTTP(rec, req)

	decoded := map[string]any{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded), "body: %s", rec.Body.String())
	}
	return rec, decoded
}

func generateKey(t *testing.T, srv *Server) string {
	t.Helper()
	rec, body := doAdmin(t, srv, http.MethodPost, "/api/admin/generate-key", map[string]any{"name": "test app"})
	require.Equal(t, http.StatusCreated, rec.Code)
	apiKey, _ := body["apiKey"].(string)
	require.True(t, strings.HasPrefix(apiKey, "wa_"))
	return apiKey
}

func waitConnected(t *testing.T, srv *Server, apiKey string) {
	t.Helper()
	require.Eventually(t, func() bool {
		rec, body := doJSON(t, srv, http.MethodGet, "/api/status", apiKey, nil)
		if rec.Code != http.StatusOK {
			return false
		}
		connected, _ := body["connected"].(bool)
		return connected
	}, 2*time.Second, 5*time.Millisecond)
}

func TestServer_HealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rec, body := doJSON(t, srv, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])

	rec, _ = doJSON(t, srv, http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_RequiresAPIKey(t *testing.T) {
	srv := newTestServer(t)

	rec, body := doJSON(t, srv, http.MethodGet, "/api/status", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", body["error_code"])
}

func TestServer_RejectsUnknownKey(t *testing.T) {
	srv := newTestServer(t)

	rec, body := doJSON(t, srv, http.MethodGet, "/api/status", "wa_nonexistent", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "INVALID_TENANT", body["error_code"])
}

func TestServer_AdminRoutesGuarded(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/keys", nil)
	rec := httptest.NewRecorder()
	srv.GetRouter().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestServer_KeyLifecycle(t *testing.T) {
	srv := newTestServer(t)
	apiKey := generateKey(t, srv)

	rec, body := doAdmin(t, srv, http.MethodGet, "/api/admin/keys", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, body["count"])

	// The key authenticates tenant routes.
	waitConnected(t, srv, apiKey)

	// Revocation takes effect on the next request.
	rec, _ = doAdmin(t, srv, http.MethodPost, "/api/admin/revoke/"+apiKey, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body = doJSON(t, srv, http.MethodGet, "/api/status", apiKey, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "INVALID_TENANT", body["error_code"])

	// Revoking a nonexistent key is a 404.
	rec, _ = doAdmin(t, srv, http.MethodPost, "/api/admin/revoke/wa_nonexistent", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_StatusAndSessions(t *testing.T) {
	srv := newTestServer(t)
	apiKey := generateKey(t, srv)

	waitConnected(t, srv, apiKey)

	rec, body := doJSON(t, srv, http.MethodGet, "/api/status", apiKey, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "connected", body["state"])

	rec, body = doJSON(t, srv, http.MethodGet, "/api/sessions", apiKey, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	sessions, _ := body["sessions"].([]any)
	require.Len(t, sessions, 1)
	first, _ := sessions[0].(map[string]any)
	assert.Equal(t, "default", first["name"])
}

func TestServer_SendMessage(t *testing.T) {
	srv := newTestServer(t)
	apiKey := generateKey(t, srv)
	waitConnected(t, srv, apiKey)

	rec, body := doJSON(t, srv, http.MethodPost, "/api/send-message", apiKey, map[string]any{
		"number":  "6281234567890",
		"message": "hello",
	})
	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["message_id"])
}

func TestServer_SendMessageValidation(t *testing.T) {
	srv := newTestServer(t)
	apiKey := generateKey(t, srv)
	waitConnected(t, srv, apiKey)

	rec, body := doJSON(t, srv, http.MethodPost, "/api/send-message", apiKey, map[string]any{
		"message": "hello",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_REQUEST", body["error_code"])
}

func TestServer_InboundMessages(t *testing.T) {
	srv := newTestServer(t)
	apiKey := generateKey(t, srv)
	waitConnected(t, srv, apiKey)

	// The loopback driver echoes sent texts as inbound messages.
	rec, _ := doJSON(t, srv, http.MethodPost, "/api/send-message", apiKey, map[string]any{
		"number":  "6281234567890",
		"message": "echo me",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	require.Eventually(t, func() bool {
		rec, body := doJSON(t, srv, http.MethodGet, "/api/messages", apiKey, nil)
		if rec.Code != http.StatusOK {
			return false
		}
		msgs, _ := body["messages"].([]any)
		return len(msgs) == 1
	}, 2*time.Second, 5*time.Millisecond)

	rec, _ = doJSON(t, srv, http.MethodDelete, "/api/messages", apiKey, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body := doJSON(t, srv, http.MethodGet, "/api/messages", apiKey, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	msgs, _ := body["messages"].([]any)
	assert.Empty(t, msgs)
}

func TestServer_InboxRoutes(t *testing.T) {
	srv := newTestServer(t)
	apiKey := generateKey(t, srv)
	waitConnected(t, srv, apiKey)

	rec, _ := doJSON(t, srv, http.MethodPost, "/api/send-message", apiKey, map[string]any{
		"number":  "6281234567890",
		"message": "hello",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	require.Eventually(t, func() bool {
		rec, body := doJSON(t, srv, http.MethodGet, "/api/incoming-messages", apiKey, nil)
		if rec.Code != http.StatusOK {
			return false
		}
		msgs, _ := body["messages"].([]any)
		return len(msgs) == 1
	}, 2*time.Second, 5*time.Millisecond)

	rec, _ = doJSON(t, srv, http.MethodPost, "/api/clear-messages", apiKey, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body := doJSON(t, srv, http.MethodGet, "/api/incoming-messages", apiKey, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	msgs, _ := body["messages"].([]any)
	assert.Empty(t, msgs)
}

func TestServer_DeleteSession(t *testing.T) {
	srv := newTestServer(t)
	apiKey := generateKey(t, srv)
	waitConnected(t, srv, apiKey)

	rec, _ := doJSON(t, srv, http.MethodDelete, "/api/sessions/default", apiKey, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, srv, http.MethodDelete, "/api/sessions/default", apiKey, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_NamedSessionsAreIsolated(t *testing.T) {
	srv := newTestServer(t)
	apiKey := generateKey(t, srv)

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.Header.Set("X-API-Key", apiKey)
	req.Header.Set("X-Session-Id", "work")
	rec := httptest.NewRecorder()
	srv.GetRouter().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	waitConnected(t, srv, apiKey) // default session

	recList, body := doJSON(t, srv, http.MethodGet, "/api/sessions", apiKey, nil)
	require.Equal(t, http.StatusOK, recList.Code)
	sessions, _ := body["sessions"].([]any)
	assert.Len(t, sessions, 2)
}

func TestServer_UnknownEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec, body := doJSON(t, srv, http.MethodGet, "/api/does-not-exist", "wa_x", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "INVALID_REQUEST", body["error_code"])
}
