package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/Fatihur/api-baru/internal/middleware"
	"github.com/Fatihur/api-baru/internal/model"
	"github.com/gorilla/mux"
)

var errInvalidNumber = errors.New("invalid number")

// GetStatus handles GET /api/status. Returns the session's connection
// snapshot, creating the session (and starting its pairing flow) on first
// access.
func (h *Handlers) GetStatus(w http.ResponseWriter, r *http.Request) {
	sess, _, cancel := h.resolve(w, r)
	if sess == nil {
		return
	}
	defer cancel()

	st := sess.Status()
	h.writeJSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
		model.SessionStatus
	}{Success: true, SessionStatus: st})
}

// GetPairingChallenge handles GET /api/qr. Returns the pending pairing
// challenge, or a conflict when the session does not need pairing.
func (h *Handlers) GetPairingChallenge(w http.ResponseWriter, r *http.Request) {
	sess, _, cancel := h.resolve(w, r)
	if sess == nil {
		return
	}
	defer cancel()

	st := sess.Status()
	if st.Connected {
		h.writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "already connected",
		})
		return
	}
	if st.PairingChallenge == "" {
		h.writeJSON(w, http.StatusOK, map[string]any{
			"success": false,
			"message": "pairing challenge not available yet, try again shortly",
			"state":   st.State,
		})
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"qr":      st.PairingChallenge,
		"state":   st.State,
	})
}

// ListSessions handles GET /api/sessions.
func (h *Handlers) ListSessions(w http.ResponseWriter, r *http.Request) {
	token, _ := middleware.Credentials(r)

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	infos, err := h.orch.ListSessions(ctx, token)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"sessions": infos,
	})
}

// DeleteSession handles DELETE /api/sessions/{name}.
func (h *Handlers) DeleteSession(w http.ResponseWriter, r *http.Request) {
	token, _ := middleware.Credentials(r)
	name := mux.Vars(r)["name"]

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	existed, err := h.orch.DeleteSession(ctx, token, name)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if !existed {
		h.errorHandler.WriteErrorResponse(w, http.StatusNotFound, "SESSION_NOT_FOUND", "session not found", r.Header.Get("X-Request-ID"))
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "session deleted",
	})
}

// GetIncomingMessages handles GET /api/incoming-messages?limit=N (and
// its /api/messages alias).
func (h *Handlers) GetIncomingMessages(w http.ResponseWriter, r *http.Request) {
	sess, _, cancel := h.resolve(w, r)
	if sess == nil {
		return
	}
	defer cancel()

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := parsePositiveInt(v); err == nil {
			limit = n
		}
	}

	msgs := sess.Recent(limit)
	h.writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"count":    len(msgs),
		"messages": msgs,
	})
}

// ClearMessages handles POST /api/clear-messages (and DELETE
// /api/messages).
func (h *Handlers) ClearMessages(w http.ResponseWriter, r *http.Request) {
	sess, _, cancel := h.resolve(w, r)
	if sess == nil {
		return
	}
	defer cancel()

	sess.ClearRecent()
	h.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "messages cleared",
	})
}

func parsePositiveInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, errInvalidNumber
	}
	return n, nil
}
