// Package handler provides the HTTP request handlers of the gateway's
// REST surface.
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/Fatihur/api-baru/internal/apierrors"
	"github.com/Fatihur/api-baru/internal/driver"
	"github.com/Fatihur/api-baru/internal/gateway"
	"github.com/Fatihur/api-baru/internal/middleware"
	"github.com/Fatihur/api-baru/internal/session"
	"go.uber.org/zap"
)

// Handlers contains all HTTP handlers and their dependencies.
type Handlers struct {
	orch         *gateway.Orchestrator
	errorHandler *apierrors.Handler
	logger       *zap.Logger
	timeout      time.Duration
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(orch *gateway.Orchestrator, errorHandler *apierrors.Handler, logger *zap.Logger, timeout time.Duration) *Handlers {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Handlers{
		orch:         orch,
		errorHandler: errorHandler,
		logger:       logger,
		timeout:      timeout,
	}
}

// resolve authenticates the request and returns its session, creating the
// session on first use. A nil session means the error response was
// already written.
func (h *Handlers) resolve(w http.ResponseWriter, r *http.Request) (*session.Session, context.Context, context.CancelFunc) {
	token, sessionName := middleware.Credentials(r)

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	sess, err := h.orch.Resolve(ctx, token, sessionName)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		cancel()
		return nil, nil, nil
	}
	return sess, ctx, cancel
}

// execute runs one protocol action on the request's session and writes
// the action result envelope.
func (h *Handlers) execute(w http.ResponseWriter, r *http.Request, action driver.Action) {
	sess, ctx, cancel := h.resolve(w, r)
	if sess == nil {
		return
	}
	defer cancel()

	result, err := sess.Do(ctx, action)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, actionResponse{Success: true, Result: result})
}

// actionResponse is the success envelope of action endpoints.
type actionResponse struct {
	Success bool `json:"success"`
	*driver.Result
}

func (h *Handlers) writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// decode parses a JSON request body. Writes the validation error itself.
func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.errorHandler.WriteValidationError(w, "invalid JSON body: "+err.Error(), r.Header.Get("X-Request-ID"))
		return false
	}
	return true
}
