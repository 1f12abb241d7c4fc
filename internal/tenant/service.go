// Package tenant manages API consumer records: token generation,
// validation, revocation and deletion, with debounced persistence so the
// hot validation path never writes synchronously.
package tenant

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Fatihur/api-baru/internal/metrics"
	"github.com/Fatihur/api-baru/internal/model"
	"github.com/Fatihur/api-baru/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const tokenPrefix = "wa_"

// Service holds the in-memory tenant record set and persists it through a
// TenantRepository. State-changing operations (generate, revoke, delete)
// flush synchronously; validation touches are coalesced by a background
// flusher running at a fixed interval.
type Service struct {
	repo          store.TenantRepository
	flushInterval time.Duration
	logger        *zap.Logger
	metrics       *metrics.Metrics

	mu      sync.Mutex
	tenants map[string]*model.TenantRecord
	dirty   bool

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewService loads the persisted record set and starts the background
// flusher.
func NewService(
	ctx context.Context,
	repo store.TenantRepository,
	flushInterval time.Duration,
	logger *zap.Logger,
	m *metrics.Metrics,
) (*Service, error) {
	if flushInterval <= 0 {
		flushInterval = 5 * time.Second
	}

	tenants, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load tenants: %w", err)
	}

	s := &Service{
		repo:          repo,
		flushInterval: flushInterval,
		logger:        logger,
		metrics:       m,
		tenants:       tenants,
		stopCh:        make(chan struct{}),
	}

	go s.flushLoop()

	logger.Info("Tenant service started",
		zap.Int("tenants", len(tenants)),
		zap.Duration("flush_interval", flushInterval))
	return s, nil
}

// Generate issues a new tenant token and persists it before returning.
// The token is the tenant's identity and is never regenerated.
func (s *Service) Generate(ctx context.Context, name string) (*model.TenantRecord, error) {
	if name == "" {
		name = "Unnamed App"
	}

	token := tokenPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
	record := &model.TenantRecord{
		Token:     token,
		Name:      name,
		CreatedAt: time.Now().UTC(),
		Active:    true,
	}

	s.mu.Lock()
	s.tenants[token] = record
	snapshot := s.snapshotLocked()
	s.dirty = false
	s.mu.Unlock()

	if err := s.persist(ctx, snapshot, "sync"); err != nil {
		// The caller never saw the token; drop the record so memory
		// does not diverge from disk. Any touches the failed snapshot
		// carried go back on the debounce queue.
		s.mu.Lock()
		delete(s.tenants, token)
		s.dirty = true
		s.mu.Unlock()
		return nil, err
	}

	s.logger.Info("Tenant generated", zap.String("name", name))
	return record.Clone(), nil
}

// Validate reports whether the token belongs to an active tenant. On
// success the record's last-activity timestamp and usage counter are
// updated; the write is debounced, not synchronous.
func (s *Service) Validate(ctx context.Context, token string) bool {
	s.mu.Lock()
	record, ok := s.tenants[token]
	if !ok || !record.Active {
		s.mu.Unlock()
		s.countValidation("rejected")
		return false
	}

	now := time.Now().UTC()
	record.LastUsed = &now
	record.RequestCount++
	s.dirty = true
	s.mu.Unlock()

	s.countValidation("ok")
	return true
}

// Get returns the tenant record for a token.
func (s *Service) Get(ctx context.Context, token string) (*model.TenantRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.tenants[token]
	if !ok {
		return nil, store.ErrNotFound
	}
	return record.Clone(), nil
}

// List returns every tenant record, newest first.
func (s *Service) List(ctx context.Context) []*model.TenantRecord {
	s.mu.Lock()
	records := make([]*model.TenantRecord, 0, len(s.tenants))
	for _, r := range s.tenants {
		records = append(records, r.Clone())
	}
	s.mu.Unlock()

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records
}

// Revoke soft-deletes a tenant: the record is kept with Active=false.
// Persisted synchronously. Returns whether a record existed.
func (s *Service) Revoke(ctx context.Context, token string) (bool, error) {
	s.mu.Lock()
	record, ok := s.tenants[token]
	if !ok {
		s.mu.Unlock()
		return false, nil
	}
	record.Active = false
	snapshot := s.snapshotLocked()
	s.dirty = false
	s.mu.Unlock()

	if err := s.persist(ctx, snapshot, "sync"); err != nil {
		return true, err
	}

	s.logger.Info("Tenant revoked", zap.String("name", record.Name))
	return true, nil
}

// Delete removes a tenant record permanently. Persisted synchronously.
// Session teardown is cascaded by the orchestrator, not here. Returns
// whether a record existed.
func (s *Service) Delete(ctx context.Context, token string) (bool, error) {
	s.mu.Lock()
	record, ok := s.tenants[token]
	if !ok {
		s.mu.Unlock()
		return false, nil
	}
	delete(s.tenants, token)
	snapshot := s.snapshotLocked()
	s.dirty = false
	s.mu.Unlock()

	if err := s.persist(ctx, snapshot, "sync"); err != nil {
		return true, err
	}

	s.logger.Info("Tenant deleted", zap.String("name", record.Name))
	return true, nil
}

// Flush writes any pending debounced changes immediately.
func (s *Service) Flush(ctx context.Context) error {
	s.mu.Lock()
	if !s.dirty {
		s.mu.Unlock()
		return nil
	}
	snapshot := s.snapshotLocked()
	s.dirty = false
	s.mu.Unlock()

	return s.persist(ctx, snapshot, "debounced")
}

// Stop halts the background flusher and performs a final flush.
func (s *Service) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.Flush(ctx); err != nil {
		s.logger.Error("Final tenant flush failed", zap.Error(err))
	}
	s.logger.Info("Tenant service stopped")
}

// flushLoop coalesces rapid validation updates into one write per
// interval. Idle intervals write nothing.
func (s *Service) flushLoop() {
	ticker := time.NewTicker(s.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), s.flushInterval)
			if err := s.Flush(ctx); err != nil {
				s.logger.Error("Debounced tenant flush failed", zap.Error(err))
			}
			cancel()
		case <-s.stopCh:
			return
		}
	}
}

func (s *Service) persist(ctx context.Context, snapshot map[string]*model.TenantRecord, kind string) error {
	if err := s.repo.Save(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to persist tenants: %w", err)
	}
	if s.metrics != nil {
		s.metrics.TenantFlushes.WithLabelValues(kind).Inc()
	}
	return nil
}

// snapshotLocked deep-copies the record set for persistence outside the
// lock. Callers hold mu.
func (s *Service) snapshotLocked() map[string]*model.TenantRecord {
	snapshot := make(map[string]*model.TenantRecord, len(s.tenants))
	for token, r := range s.tenants {
		snapshot[token] = r.Clone()
	}
	return snapshot
}

func (s *Service) countValidation(outcome string) {
	if s.metrics != nil {
		s.metrics.TenantValidations.WithLabelValues(outcome).Inc()
	}
}
