package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cardbinder/cardbinder/internal/api/response"
	"github.com/cardbinder/cardbinder/internal/config"
	"github.com/cardbinder/cardbinder/internal/session"
)

// UniversesHandler serves universe discovery and session activation.
type UniversesHandler struct {
	cfg      *config.Config
	sessions *session.Manager
}

// NewUniversesHandler creates a universes handler.
func NewUniversesHandler(cfg *config.Config, sessions *session.Manager) *UniversesHandler {
	return &UniversesHandler{cfg: cfg, sessions: sessions}
}

// universeView is the public description of a configured universe.
type universeView struct {
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	Sets  []config.Set `json:"sets"`
	Decks bool         `json:"decks"`
}

// List handles GET /api/v1/universes.
func (h *UniversesHandler) List(w http.ResponseWriter, _ *http.Request) {
	views := make([]universeView, 0, len(h.cfg.Universes))
	for _, u := range h.cfg.Universes {
		views = append(views, universeView{
			ID:    u.ID,
			Name:  u.Name,
			Sets:  u.Sets,
			Decks: u.DeckDataset != "" || u.DeckSet != "",
		})
	}
	response.Success(w, views)
}

// Activate handles POST /api/v1/universes/{id}/activate: loads the
// universe and makes it the caller's active session.
func (h *UniversesHandler) Activate(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		response.Unauthorized(w, errors.New("authentication required"))
		return
	}

	universeID := chi.URLParam(r, "id")
	s, err := h.sessions.Activate(r.Context(), userID, universeID)
	switch {
	case errors.Is(err, session.ErrUnknownUniverse):
		response.NotFound(w, err)
	case errors.Is(err, session.ErrSuperseded):
		// A newer activation replaced this one mid-flight; tell the
		// client nothing changed on its behalf.
		response.Conflict(w, err)
	case err != nil:
		response.InternalError(w, err)
	default:
		response.Success(w, map[string]any{
			"universe": s.Universe.ID,
			"cards":    s.Catalog.Len(),
			"decks":    len(s.Decks()),
		})
	}
}

// Deactivate handles POST /api/v1/session/deactivate.
func (h *UniversesHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserID(r.Context())
	if !ok {
		response.Unauthorized(w, errors.New("authentication required"))
		return
	}

	if err := h.sessions.Deactivate(r.Context(), userID); err != nil {
		response.InternalError(w, err)
		return
	}
	response.NoContent(w)
}
