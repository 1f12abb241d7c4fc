package session

import (
	"context"
	"sort"
	"sync"

	"github.com/Fatihur/api-baru/internal/driver"
	"github.com/Fatihur/api-baru/internal/metrics"
	"github.com/Fatihur/api-baru/internal/model"
	"github.com/Fatihur/api-baru/internal/store"
	"go.uber.org/zap"
)

// Registry maps (tenant, session name) to live sessions. It is the only
// shared mutable map of sessions in the process; all creation, lookup and
// deletion funnels through it.
type Registry struct {
	factory driver.Factory
	creds   store.CredentialStore
	cfg     Config
	logger  *zap.Logger
	metrics *metrics.Metrics

	mu      sync.Mutex
	entries map[model.SessionKey]*entry
}

// entry publishes a session before its initialization completes. Callers
// that lose the creation race wait on ready; err is set before ready is
// closed, so a failed initialization is observed by every waiter.
type entry struct {
	sess  *Session
	ready chan struct{}
	err   error
}

// NewRegistry creates an empty session registry
func NewRegistry(
	factory driver.Factory,
	creds store.CredentialStore,
	cfg Config,
	logger *zap.Logger,
	m *metrics.Metrics,
) *Registry {
	return &Registry{
		factory: factory,
		creds:   creds,
		cfg:     cfg,
		logger:  logger,
		metrics: m,
		entries: make(map[model.SessionKey]*entry),
	}
}

// GetOrCreate returns the session for the key, constructing and starting
// it on first use. Exactly one caller performs initialization; concurrent
// callers for the same key await that attempt's outcome. On failure the
// entry is removed so a later call can retry.
func (r *Registry) GetOrCreate(ctx context.Context, tenantID, sessionName string) (*Session, error) {
	key := model.NewSessionKey(tenantID, sessionName)

	r.mu.Lock()
	if e, ok := r.entries[key]; ok {
		r.mu.Unlock()
		return e.await(ctx)
	}

	e := &entry{
		sess:  NewSession(key, r.factory, r.creds, r.cfg, r.logger, r.metrics),
		ready: make(chan struct{}),
	}
	r.entries[key] = e
	r.mu.Unlock()

	if err := e.sess.Connect(ctx); err != nil {
		e.err = err
		close(e.ready)

		r.removeEntry(key, e)
		e.sess.release()
		if r.metrics != nil {
			r.metrics.SessionInits.WithLabelValues("error").Inc()
		}
		r.logger.Error("Session initialization failed",
			zap.String("tenant_id", key.TenantID),
			zap.String("session", key.Name),
			zap.Error(err))
		return nil, err
	}

	close(e.ready)
	if r.metrics != nil {
		r.metrics.SessionInits.WithLabelValues("ok").Inc()
	}
	return e.sess, nil
}

// await blocks until the entry's initialization settles.
func (e *entry) await(ctx context.Context) (*Session, error) {
	select {
	case <-e.ready:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if e.err != nil {
		return nil, e.err
	}
	return e.sess, nil
}

// List returns the tenant's sessions sorted by name.
func (r *Registry) List(tenantID string) []model.SessionInfo {
	r.mu.Lock()
	sessions := make([]*Session, 0)
	for key, e := range r.entries {
		if key.TenantID == tenantID {
			sessions = append(sessions, e.sess)
		}
	}
	r.mu.Unlock()

	infos := make([]model.SessionInfo, 0, len(sessions))
	for _, s := range sessions {
		st := s.Status()
		infos = append(infos, model.SessionInfo{
			Name:      s.Key().Name,
			Connected: st.Connected,
			State:     st.State,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// Delete logs the session out, removes it from the registry and erases its
// credential namespace, in that order. Safe to call while initialization
// for the same key is in flight: the in-flight attempt is awaited first so
// namespace deletion never races ahead of the logout. Returns whether a
// session existed.
func (r *Registry) Delete(ctx context.Context, tenantID, sessionName string) (bool, error) {
	key := model.NewSessionKey(tenantID, sessionName)

	r.mu.Lock()
	e, ok := r.entries[key]
	if ok {
		delete(r.entries, key)
	}
	r.mu.Unlock()

	if !ok {
		return false, nil
	}

	// Let an in-flight initialization settle before tearing down.
	sess, err := e.await(ctx)
	if err == nil {
		_ = sess.Logout(ctx)
	}
	e.sess.release()

	if err := r.creds.Delete(ctx, key); err != nil {
		return true, err
	}

	r.logger.Info("Session deleted",
		zap.String("tenant_id", key.TenantID),
		zap.String("session", key.Name))
	return true, nil
}

// DeleteAll deletes every session owned by the tenant, then removes the
// tenant's credential namespace root. Used by tenant hard delete.
func (r *Registry) DeleteAll(ctx context.Context, tenantID string) error {
	r.mu.Lock()
	keys := make([]model.SessionKey, 0)
	for key := range r.entries {
		if key.TenantID == tenantID {
			keys = append(keys, key)
		}
	}
	r.mu.Unlock()

	for _, key := range keys {
		if _, err := r.Delete(ctx, key.TenantID, key.Name); err != nil {
			return err
		}
	}

	return r.creds.DeleteTenant(ctx, tenantID)
}

// Len returns the number of live sessions across all tenants.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Shutdown logs out every session. Credential namespaces are kept so the
// sessions resume after a restart.
func (r *Registry) Shutdown(ctx context.Context) {
	r.mu.Lock()
	entries := make([]*entry, 0, len(r.entries))
	for _, e := range r.entries {
		entries = append(entries, e)
	}
	r.entries = make(map[model.SessionKey]*entry)
	r.mu.Unlock()

	for _, e := range entries {
		if sess, err := e.await(ctx); err == nil {
			_ = sess.Logout(ctx)
		}
		e.sess.release()
	}
}

func (r *Registry) removeEntry(key model.SessionKey, e *entry) {
	r.mu.Lock()
	if cur, ok := r.entries[key]; ok && cur == e {
		delete(r.entries, key)
	}
	r.mu.Unlock()
}
