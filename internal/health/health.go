// Package health provides the liveness and readiness endpoints.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/Fatihur/api-baru/internal/store"
	"go.uber.org/zap"
)

// HealthCheck manages health check functionality. Readiness tracks the
// tenant repository, the one backing service a cold start depends on.
type HealthCheck struct {
	repo          store.TenantRepository
	logger        *zap.Logger
	checkInterval time.Duration

	mu        sync.RWMutex
	ready     bool
	lastCheck time.Time

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewHealthCheck creates a new HealthCheck instance and starts its
// background probe.
func NewHealthCheck(repo store.TenantRepository, logger *zap.Logger) *HealthCheck {
	hc := &HealthCheck{
		repo:          repo,
		logger:        logger,
		checkInterval: 5 * time.Second,
		stopCh:        make(chan struct{}),
	}

	go hc.backgroundCheck()

	return hc
}

// LivenessResponse represents the response for the liveness check.
type LivenessResponse struct {
	Status string `json:"status"`
}

// ReadinessResponse represents the response for the readiness check.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
	Error  string            `json:"error,omitempty"`
}

// LivenessHandler handles GET /health requests.
// Returns 200 OK if the process is running.
func (hc *HealthCheck) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	resp := LivenessResponse{
		Status: "healthy",
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

// ReadinessHandler handles GET /ready requests.
// Returns 200 OK if the tenant store is reachable.
func (hc *HealthCheck) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	hc.mu.RLock()
	isReady := hc.ready
	hc.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")

	if isReady {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(ReadinessResponse{
			Status: "ready",
			Checks: map[string]string{"tenant_store": "healthy"},
		})
		return
	}

	// Perform a fresh check if not ready.
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := hc.repo.Ping(ctx); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(ReadinessResponse{
			Status: "not_ready",
			Checks: map[string]string{"tenant_store": "unhealthy"},
			Error:  err.Error(),
		})
		return
	}

	hc.mu.Lock()
	hc.ready = true
	hc.lastCheck = time.Now()
	hc.mu.Unlock()

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(ReadinessResponse{
		Status: "ready",
		Checks: map[string]string{"tenant_store": "healthy"},
	})
}

// backgroundCheck performs periodic health checks.
func (hc *HealthCheck) backgroundCheck() {
	ticker := time.NewTicker(hc.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err := hc.repo.Ping(ctx)
			cancel()

			hc.mu.Lock()
			if err != nil {
				hc.ready = false
				hc.logger.Warn("health check failed", zap.Error(err))
			} else {
				hc.ready = true
			}
			hc.lastCheck = time.Now()
			hc.mu.Unlock()
		case <-hc.stopCh:
			return
		}
	}
}

// Stop halts the background probe.
func (hc *HealthCheck) Stop() {
	hc.stopOnce.Do(func() {
		close(hc.stopCh)
	})
}

// IsReady returns the current readiness status.
func (hc *HealthCheck) IsReady() bool {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	return hc.ready
}

// SetReady sets the readiness status (for testing).
func (hc *HealthCheck) SetReady(ready bool) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.ready = ready
}
