package persona

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ebarney/aibarney/internal/model/persona"
	"github.com/ebarney/aibarney/pkg/utils"
)

// Profile is the public part of the persona. Prompt rules and knowledge stay
// on the server.
type Profile struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Title        string `json:"title"`
	Greeting     string `json:"greeting"`
	ContactEmail string `json:"contactEmail"`
}

// Handler serves the assistant persona.
type Handler struct {
	persona persona.Persona
}

// New creates the persona handler.
func New(p persona.Persona) *Handler {
	return &Handler{persona: p}
}

// RegisterRoutes mounts the persona routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/api/persona", h.handleGetPersona)
}

func (h *Handler) handleGetPersona(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, Profile{
		ID:           h.persona.ID,
		Name:         h.persona.Name,
		Title:        h.persona.Title,
		Greeting:     h.persona.Greeting,
		ContactEmail: h.persona.ContactEmail,
	})
}
