package session

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	chatservice "github.com/yjlabs/mimic/backend/internal/service/chat"
	"github.com/yjlabs/mimic/backend/pkg/utils"
)

// Handler exposes session management over HTTP.
type Handler struct {
	ctrl *chatservice.Controller
}

// New creates the session handler.
func New(ctrl *chatservice.Controller) *Handler {
	return &Handler{ctrl: ctrl}
}

// RegisterRoutes wires the session routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/sessions", h.handleList)
	r.Post("/sessions", h.handleCreate)
	r.Delete("/sessions", h.handleDeleteAll)
	r.Post("/sessions/{sessionID}/select", h.handleSelect)
	r.Delete("/sessions/{sessionID}", h.handleDelete)
}

// handleList returns the sidebar list and the active selection.
func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"sessions":        h.ctrl.Sessions(),
		"activeSessionId": h.ctrl.ActiveSessionID(),
	})
}

// handleCreate starts a new session. An empty body is the plain "new chat"
// button; a body with a name (and optional profile) is the named path from
// the new-chat modal.
func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name    string `json:"name"`
		Profile string `json:"profile"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if payload.Name == "" && payload.Profile == "" {
		utils.RespondJSON(w, http.StatusCreated, h.ctrl.CreateSession())
		return
	}
	utils.RespondJSON(w, http.StatusCreated, h.ctrl.CreateSessionNamed(payload.Name, payload.Profile))
}

// handleSelect switches the active session.
func (h *Handler) handleSelect(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if err := h.ctrl.SelectSession(id); err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"activeSessionId": h.ctrl.ActiveSessionID(),
		"messages":        h.ctrl.Messages(),
		"persona":         h.ctrl.ActivePersona(),
	})
}

// handleDelete removes one session; the controller guarantees a session
// remains afterwards.
func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if err := h.ctrl.DeleteSession(id); err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"sessions":        h.ctrl.Sessions(),
		"activeSessionId": h.ctrl.ActiveSessionID(),
	})
}

// handleDeleteAll wipes everything and returns the fresh replacement state.
func (h *Handler) handleDeleteAll(w http.ResponseWriter, r *http.Request) {
	h.ctrl.DeleteAll()
	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"sessions":        h.ctrl.Sessions(),
		"activeSessionId": h.ctrl.ActiveSessionID(),
	})
}
