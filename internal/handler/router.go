package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/yjlabs/mimic/backend/internal/handler/message"
	"github.com/yjlabs/mimic/backend/internal/handler/persona"
	"github.com/yjlabs/mimic/backend/internal/handler/session"
	"github.com/yjlabs/mimic/backend/internal/handler/ws"
	middlewarePkg "github.com/yjlabs/mimic/backend/internal/middleware"
	chatservice "github.com/yjlabs/mimic/backend/internal/service/chat"
	"github.com/yjlabs/mimic/backend/internal/service/events"
)

// NewRouter wires HTTP routes to the session controller.
func NewRouter(ctrl *chatservice.Controller, hub *events.Hub) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	sessionHandler := session.New(ctrl)
	messageHandler := message.New(ctrl)
	personaHandler := persona.New(ctrl)

	r.Route("/api", func(api chi.Router) {
		sessionHandler.RegisterRoutes(api)
		messageHandler.RegisterRoutes(api)
		personaHandler.RegisterRoutes(api)

		if hub != nil {
			ws.New(hub).RegisterRoutes(api)
		}
	})

	return r
}
