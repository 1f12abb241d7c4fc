package handler

import (
	"encoding/base64"
	"net/http"

	"github.com/Fatihur/api-baru/internal/driver"
	"github.com/gorilla/mux"
)

// CheckNumber handles GET /api/check-number/{number}.
func (h *Handlers) CheckNumber(w http.ResponseWriter, r *http.Request) {
	number := mux.Vars(r)["number"]
	h.execute(w, r, driver.CheckNumber{Target: number})
}

// GetProfilePicture handles GET /api/profile-picture/{number}.
func (h *Handlers) GetProfilePicture(w http.ResponseWriter, r *http.Request) {
	number := mux.Vars(r)["number"]
	h.execute(w, r, driver.ProfilePicture{Target: number})
}

// UpdateProfilePicture handles POST /api/update-profile-picture. The image
// is carried base64-encoded in the body.
func (h *Handlers) UpdateProfilePicture(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Image string `json:"image"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.Image == "" {
		h.errorHandler.WriteValidationError(w, "image is required", r.Header.Get("X-Request-ID"))
		return
	}

	image, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil {
		h.errorHandler.WriteValidationError(w, "image must be base64 encoded", r.Header.Get("X-Request-ID"))
		return
	}

	h.execute(w, r, driver.SetProfilePicture{Image: image})
}

// UpdateProfileStatus handles POST /api/update-profile-status.
func (h *Handlers) UpdateProfileStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.Status == "" {
		h.errorHandler.WriteValidationError(w, "status is required", r.Header.Get("X-Request-ID"))
		return
	}

	h.execute(w, r, driver.SetProfileStatus{Status: req.Status})
}

// GetBusinessProfile handles GET /api/business-profile/{number}.
func (h *Handlers) GetBusinessProfile(w http.ResponseWriter, r *http.Request) {
	number := mux.Vars(r)["number"]
	h.execute(w, r, driver.BusinessProfile{Target: number})
}

// GetPresence handles POST /api/get-presence: subscribes to a contact's
// presence updates.
func (h *Handlers) GetPresence(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Number string `json:"number"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.Number == "" {
		h.errorHandler.WriteValidationError(w, "number is required", r.Header.Get("X-Request-ID"))
		return
	}

	h.execute(w, r, driver.PresenceSubscribe{Target: req.Number})
}

// SetPresence handles POST /api/set-presence.
func (h *Handlers) SetPresence(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type string `json:"type"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.Type == "" {
		req.Type = "available"
	}

	h.execute(w, r, driver.SetPresence{Presence: req.Type})
}

// SendTyping handles POST /api/send-typing.
func (h *Handlers) SendTyping(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Number   string `json:"number"`
		IsTyping *bool  `json:"isTyping"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.Number == "" {
		h.errorHandler.WriteValidationError(w, "number is required", r.Header.Get("X-Request-ID"))
		return
	}

	kind := "composing"
	if req.IsTyping != nil && !*req.IsTyping {
		kind = "paused"
	}

	h.execute(w, r, driver.ChatPresence{Chat: req.Number, Kind: kind})
}

// SendRecording handles POST /api/send-recording.
func (h *Handlers) SendRecording(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Number      string `json:"number"`
		IsRecording *bool  `json:"isRecording"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.Number == "" {
		h.errorHandler.WriteValidationError(w, "number is required", r.Header.Get("X-Request-ID"))
		return
	}

	kind := "recording"
	if req.IsRecording != nil && !*req.IsRecording {
		kind = "paused"
	}

	h.execute(w, r, driver.ChatPresence{Chat: req.Number, Kind: kind, Recording: true})
}

// MarkAsRead handles POST /api/mark-as-read.
func (h *Handlers) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Number    string `json:"number"`
		MessageID string `json:"messageId"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.Number == "" || req.MessageID == "" {
		h.errorHandler.WriteValidationError(w, "number and messageId are required", r.Header.Get("X-Request-ID"))
		return
	}

	h.execute(w, r, driver.MarkRead{Chat: req.Number, MessageID: req.MessageID})
}

// BlockUser handles POST /api/block-user.
func (h *Handlers) BlockUser(w http.ResponseWriter, r *http.Request) {
	h.blockUpdate(w, r, true)
}

// UnblockUser handles POST /api/unblock-user.
func (h *Handlers) UnblockUser(w http.ResponseWriter, r *http.Request) {
	h.blockUpdate(w, r, false)
}

func (h *Handlers) blockUpdate(w http.ResponseWriter, r *http.Request, block bool) {
	var req struct {
		Number string `json:"number"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.Number == "" {
		h.errorHandler.WriteValidationError(w, "number is required", r.Header.Get("X-Request-ID"))
		return
	}

	h.execute(w, r, driver.BlockUpdate{Target: req.Number, Block: block})
}
