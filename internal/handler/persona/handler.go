package persona

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	chatservice "github.com/yjlabs/mimic/backend/internal/service/chat"
	"github.com/yjlabs/mimic/backend/internal/state"
	"github.com/yjlabs/mimic/backend/pkg/utils"
)

// Handler exposes the active session's persona.
type Handler struct {
	ctrl *chatservice.Controller
}

// New creates the persona handler.
func New(ctrl *chatservice.Controller) *Handler {
	return &Handler{ctrl: ctrl}
}

// RegisterRoutes wires the persona routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/persona", h.handleGet)
	r.Put("/persona", h.handleUpdate)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.ctrl.ActivePersona())
}

// handleUpdate merges the fields present in the body; omitted fields keep
// their current values.
func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name    *string `json:"name"`
		Profile *string `json:"profile"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated := h.ctrl.UpdatePersona(state.PersonaPatch{
		Name:    payload.Name,
		Profile: payload.Profile,
	})
	utils.RespondJSON(w, http.StatusOK, updated)
}
