package handlers

import (
	"net/http"

	"github.com/cardbinder/cardbinder/internal/api/response"
	"github.com/cardbinder/cardbinder/internal/charts"
	"github.com/cardbinder/cardbinder/internal/library"
	"github.com/cardbinder/cardbinder/internal/session"
)

// StatsHandler serves aggregate collection statistics.
type StatsHandler struct {
	sessions *session.Manager
}

// NewStatsHandler creates a stats handler.
func NewStatsHandler(sessions *session.Manager) *StatsHandler {
	return &StatsHandler{sessions: sessions}
}

// Get handles GET /api/v1/stats.
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := activeSession(w, r, h.sessions)
	if !ok {
		return
	}
	response.Success(w, h.aggregate(s))
}

// Charts handles GET /api/v1/stats/charts, rendering the statistics as
// an interactive HTML page.
func (h *StatsHandler) Charts(w http.ResponseWriter, r *http.Request) {
	s, ok := activeSession(w, r, h.sessions)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := charts.RenderStatsPage(h.aggregate(s), w); err != nil {
		response.InternalError(w, err)
	}
}

func (h *StatsHandler) aggregate(s *session.Session) library.Stats {
	state := s.Store.Snapshot()
	owned := library.Ownership{Regular: state.Cards, Foil: state.FoilCards}
	return library.Aggregate(s.Catalog.Cards(), owned, &s.Universe)
}
