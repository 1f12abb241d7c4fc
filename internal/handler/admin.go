package handler

import (
	"net/http"

	"github.com/Fatihur/api-baru/internal/apierrors"
	"github.com/Fatihur/api-baru/internal/model"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// tenantResponse is the wire shape of a tenant record on admin endpoints.
type tenantResponse struct {
	APIKey       string  `json:"apiKey"`
	Name         string  `json:"name"`
	CreatedAt    string  `json:"createdAt"`
	LastUsed     *string `json:"lastUsed"`
	RequestCount int64   `json:"requestCount"`
	Active       bool    `json:"active"`
}

func toTenantResponse(r *model.TenantRecord) tenantResponse {
	resp := tenantResponse{
		APIKey:       r.Token,
		Name:         r.Name,
		CreatedAt:    r.CreatedAt.Format("2006-01-02T15:04:05.000Z07:00"),
		RequestCount: r.RequestCount,
		Active:       r.Active,
	}
	if r.LastUsed != nil {
		s := r.LastUsed.Format("2006-01-02T15:04:05.000Z07:00")
		resp.LastUsed = &s
	}
	return resp
}

// GenerateAPIKey handles POST /api/admin/generate-key.
func (h *Handlers) GenerateAPIKey(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	record, err := h.orch.Tenants().Generate(r.Context(), req.Name)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"apiKey":  record.Token,
		"name":    record.Name,
	})
}

// ListAPIKeys handles GET /api/admin/keys.
func (h *Handlers) ListAPIKeys(w http.ResponseWriter, r *http.Request) {
	records := h.orch.Tenants().List(r.Context())

	keys := make([]tenantResponse, 0, len(records))
	for _, rec := range records {
		keys = append(keys, toTenantResponse(rec))
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"count":   len(keys),
		"keys":    keys,
	})
}

// RevokeAPIKey handles POST /api/admin/revoke/{apiKey}. The key is kept
// on record but stops validating; running sessions are left alone.
func (h *Handlers) RevokeAPIKey(w http.ResponseWriter, r *http.Request) {
	apiKey := mux.Vars(r)["apiKey"]

	existed, err := h.orch.Tenants().Revoke(r.Context(), apiKey)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if !existed {
		h.errorHandler.WriteErrorResponse(w, http.StatusNotFound, apierrors.ErrorCodeTenantNotFound,
			"API key not found", r.Header.Get("X-Request-ID"))
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "API key revoked",
	})
}

// DeleteAPIKey handles DELETE /api/admin/keys/{apiKey}: the full cascade.
// Every session the key owns is logged out, its credential namespace is
// erased and the record removed.
func (h *Handlers) DeleteAPIKey(w http.ResponseWriter, r *http.Request) {
	apiKey := mux.Vars(r)["apiKey"]

	existed, err := h.orch.DeleteTenant(r.Context(), apiKey)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if !existed {
		h.errorHandler.WriteErrorResponse(w, http.StatusNotFound, apierrors.ErrorCodeTenantNotFound,
			"API key not found", r.Header.Get("X-Request-ID"))
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "API key and its sessions deleted",
	})
}

// AdminLogout handles POST /api/admin/logout/{apiKey}: logs out every
// session owned by a key without touching the key itself.
func (h *Handlers) AdminLogout(w http.ResponseWriter, r *http.Request) {
	apiKey := mux.Vars(r)["apiKey"]

	if _, err := h.orch.Tenants().Get(r.Context(), apiKey); err != nil {
		h.errorHandler.WriteErrorResponse(w, http.StatusNotFound, apierrors.ErrorCodeTenantNotFound,
			"API key not found", r.Header.Get("X-Request-ID"))
		return
	}

	if err := h.orch.LogoutTenantSessions(r.Context(), apiKey); err != nil {
		h.logger.Error("Admin logout failed", zap.String("request_id", r.Header.Get("X-Request-ID")), zap.Error(err))
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Sessions logged out",
	})
}
