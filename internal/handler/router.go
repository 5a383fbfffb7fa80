package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ebarney/aibarney/internal/guard"
	"github.com/ebarney/aibarney/internal/handler/chat"
	"github.com/ebarney/aibarney/internal/handler/persona"
	middlewarePkg "github.com/ebarney/aibarney/internal/middleware"
	personaModel "github.com/ebarney/aibarney/internal/model/persona"
	chatService "github.com/ebarney/aibarney/internal/service/chat"
	"github.com/ebarney/aibarney/pkg/utils"
)

// NewRouter wires HTTP routes to core services. replies may be nil when no
// model is configured; /chat then answers 503.
func NewRouter(p personaModel.Persona, chatSvc *chatService.Service, replies chat.ReplyStreamer, maxMessageLength int) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	chat.New(replies, chatSvc, guard.New(maxMessageLength)).RegisterRoutes(r)
	persona.New(p).RegisterRoutes(r)

	return r
}
