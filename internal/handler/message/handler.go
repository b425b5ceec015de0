package message

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	chatservice "github.com/yjlabs/mimic/backend/internal/service/chat"
	"github.com/yjlabs/mimic/backend/pkg/utils"
)

// Handler exposes the active session's transcript and the send operation.
type Handler struct {
	ctrl *chatservice.Controller
}

// New creates the message handler.
func New(ctrl *chatservice.Controller) *Handler {
	return &Handler{ctrl: ctrl}
}

// RegisterRoutes wires the message routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/messages", h.handleList)
	r.Post("/messages", h.handleSend)
}

// handleList returns the active transcript and the typing flag.
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"sessionId": h.ctrl.ActiveSessionID(),
		"messages":  h.ctrl.Messages(),
		"typing":    h.ctrl.Typing(),
	})
}

// handleSend submits one user message. Blank input is acknowledged without
// any state change.
func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text string `json:"text"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reply, sent := h.ctrl.SendMessage(r.Context(), payload.Text)
	if !sent {
		utils.RespondJSON(w, http.StatusAccepted, map[string]string{"status": "ignored"})
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"reply":    reply,
		"messages": h.ctrl.Messages(),
	})
}
