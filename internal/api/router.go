package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cardbinder/cardbinder/internal/api/handlers"
	"github.com/cardbinder/cardbinder/internal/api/response"
)

// setupRoutes mounts the versioned API tree. Everything under the
// authenticated group requires a valid session token.
func (s *Server) setupRoutes() {
	s.router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		response.Success(w, map[string]string{"status": "ok"})
	})

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/signup", s.authHandler.Signup)
		r.Post("/auth/login", s.authHandler.Login)
		r.Post("/auth/logout", s.authHandler.Logout)
		r.Get("/auth/me", s.authHandler.Me)

		r.Get("/universes", s.universesHandler.List)
		r.Get("/rules", s.rulesHandler.List)
		r.Get("/rules/search", s.rulesHandler.List)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Post("/universes/{id}/activate", s.universesHandler.Activate)
			r.Post("/session/deactivate", s.universesHandler.Deactivate)

			r.Get("/cards", s.cardsHandler.List)
			r.Get("/cards/types", s.cardsHandler.TypeTags)
			r.Get("/cards/{id}", s.cardsHandler.Get)
			r.Get("/cards/{id}/price", s.cardsHandler.Price)

			r.Get("/decks", s.decksHandler.List)
			r.Get("/decks/{title}", s.decksHandler.Get)
			r.Post("/decks/{title}/toggle", s.decksHandler.ToggleCollected)
			r.Get("/decks/custom", s.decksHandler.ListCustom)
			r.Post("/decks/custom", s.decksHandler.SaveCustom)
			r.Delete("/decks/custom/{id}", s.decksHandler.DeleteCustom)

			r.Get("/collection", s.collectionHandler.Get)
			r.Post("/collection/adjust", s.collectionHandler.Adjust)
			r.Put("/collection/quantity", s.collectionHandler.SetQuantity)
			r.Post("/collection/import", s.collectionHandler.Import)
			r.Get("/collection/export", s.collectionHandler.Export)

			r.Get("/stats", s.statsHandler.Get)
			r.Get("/stats/charts", s.statsHandler.Charts)

			r.Get("/ws", s.serveWs)
		})
	})
}

// serveWs upgrades the connection and binds it to the authenticated
// user so snapshot events reach only their own clients.
func (s *Server) serveWs(w http.ResponseWriter, r *http.Request) {
	userID, ok := handlers.UserID(r.Context())
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}
	s.wsHub.ServeWs(w, r, userID)
}
