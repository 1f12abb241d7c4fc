package handler

import (
	"net/http"

	"github.com/Fatihur/api-baru/internal/driver"
	"github.com/gorilla/mux"
)

// CreateGroup handles POST /api/group/create.
func (h *Handlers) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name         string   `json:"name"`
		Participants []string `json:"participants"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.Name == "" || len(req.Participants) == 0 {
		h.errorHandler.WriteValidationError(w, "name and participants are required", r.Header.Get("X-Request-ID"))
		return
	}

	h.execute(w, r, driver.GroupCreate{Name: req.Name, Participants: req.Participants})
}

// groupMembersRequest is the shared body shape of membership endpoints.
type groupMembersRequest struct {
	GroupID      string   `json:"groupJid"`
	Participants []string `json:"participants"`
}

func (h *Handlers) groupMembers(w http.ResponseWriter, r *http.Request, op driver.GroupMemberOp) {
	var req groupMembersRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.GroupID == "" || len(req.Participants) == 0 {
		h.errorHandler.WriteValidationError(w, "groupJid and participants are required", r.Header.Get("X-Request-ID"))
		return
	}

	h.execute(w, r, driver.GroupMembers{GroupID: req.GroupID, Op: op, Participants: req.Participants})
}

// AddParticipants handles POST /api/group/add-participants.
func (h *Handlers) AddParticipants(w http.ResponseWriter, r *http.Request) {
	h.groupMembers(w, r, driver.GroupAdd)
}

// RemoveParticipants handles POST /api/group/remove-participants.
func (h *Handlers) RemoveParticipants(w http.ResponseWriter, r *http.Request) {
	h.groupMembers(w, r, driver.GroupRemove)
}

// PromoteParticipants handles POST /api/group/promote.
func (h *Handlers) PromoteParticipants(w http.ResponseWriter, r *http.Request) {
	h.groupMembers(w, r, driver.GroupPromote)
}

// DemoteParticipants handles POST /api/group/demote.
func (h *Handlers) DemoteParticipants(w http.ResponseWriter, r *http.Request) {
	h.groupMembers(w, r, driver.GroupDemote)
}

// GetGroupInfo handles GET /api/group/info/{groupJid}.
func (h *Handlers) GetGroupInfo(w http.ResponseWriter, r *http.Request) {
	groupID := mux.Vars(r)["groupJid"]
	h.execute(w, r, driver.GroupInfo{GroupID: groupID})
}

// UpdateGroupSubject handles POST /api/group/update-subject.
func (h *Handlers) UpdateGroupSubject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GroupID string `json:"groupJid"`
		Subject string `json:"subject"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.GroupID == "" || req.Subject == "" {
		h.errorHandler.WriteValidationError(w, "groupJid and subject are required", r.Header.Get("X-Request-ID"))
		return
	}

	h.execute(w, r, driver.GroupSubject{GroupID: req.GroupID, Subject: req.Subject})
}

// UpdateGroupDescription handles POST /api/group/update-description.
func (h *Handlers) UpdateGroupDescription(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GroupID     string `json:"groupJid"`
		Description string `json:"description"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.GroupID == "" {
		h.errorHandler.WriteValidationError(w, "groupJid is required", r.Header.Get("X-Request-ID"))
		return
	}

	h.execute(w, r, driver.GroupDescription{GroupID: req.GroupID, Description: req.Description})
}

// LeaveGroup handles POST /api/group/leave.
func (h *Handlers) LeaveGroup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GroupID string `json:"groupJid"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.GroupID == "" {
		h.errorHandler.WriteValidationError(w, "groupJid is required", r.Header.Get("X-Request-ID"))
		return
	}

	h.execute(w, r, driver.GroupLeave{GroupID: req.GroupID})
}

// GetGroupInviteLink handles GET /api/group/invite-link/{groupJid}.
func (h *Handlers) GetGroupInviteLink(w http.ResponseWriter, r *http.Request) {
	groupID := mux.Vars(r)["groupJid"]
	h.execute(w, r, driver.GroupInviteLink{GroupID: groupID})
}

// RevokeGroupInviteLink handles POST /api/group/revoke-invite.
func (h *Handlers) RevokeGroupInviteLink(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GroupID string `json:"groupJid"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.GroupID == "" {
		h.errorHandler.WriteValidationError(w, "groupJid is required", r.Header.Get("X-Request-ID"))
		return
	}

	h.execute(w, r, driver.GroupInviteLink{GroupID: req.GroupID, Revoke: true})
}

// AcceptGroupInvite handles POST /api/group/accept-invite.
func (h *Handlers) AcceptGroupInvite(w http.ResponseWriter, r *http.Request) {
	var req struct {
		InviteCode string `json:"inviteCode"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if req.InviteCode == "" {
		h.errorHandler.WriteValidationError(w, "inviteCode is required", r.Header.Get("X-Request-ID"))
		return
	}

	h.execute(w, r, driver.GroupAcceptInvite{Code: req.InviteCode})
}
