// Package api assembles the HTTP server for the local companion API.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/cardbinder/cardbinder/internal/api/handlers"
	"github.com/cardbinder/cardbinder/internal/api/websocket"
	"github.com/cardbinder/cardbinder/internal/auth"
	"github.com/cardbinder/cardbinder/internal/collection"
	"github.com/cardbinder/cardbinder/internal/config"
	"github.com/cardbinder/cardbinder/internal/rules"
	"github.com/cardbinder/cardbinder/internal/session"
)

// Server is the REST API server plus its websocket push hub.
type Server struct {
	router         *chi.Mux
	httpServer     *http.Server
	host           string
	port           int
	allowedOrigins []string
	logger         *slog.Logger

	wsHub *websocket.Hub

	authService *auth.Service
	sessions    *session.Manager

	authHandler       *handlers.AuthHandler
	universesHandler  *handlers.UniversesHandler
	cardsHandler      *handlers.CardsHandler
	decksHandler      *handlers.DecksHandler
	collectionHandler *handlers.CollectionHandler
	rulesHandler      *handlers.RulesHandler
	statsHandler      *handlers.StatsHandler
}

// Deps bundles the services the server exposes.
type Deps struct {
	Config      *config.Config
	AuthService *auth.Service
	Sessions    *session.Manager
	Prices      handlers.PriceClient
	Rules       []rules.Section
	Logger      *slog.Logger
}

// NewServer wires handlers, middleware, and routes.
func NewServer(deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	wsHub := websocket.NewHub(logger)

	s := &Server{
		router:            chi.NewRouter(),
		host:              deps.Config.Server.Host,
		port:              deps.Config.Server.Port,
		allowedOrigins:    deps.Config.Server.AllowedOrigins,
		logger:            logger,
		wsHub:             wsHub,
		authService:       deps.AuthService,
		sessions:          deps.Sessions,
		authHandler:       handlers.NewAuthHandler(deps.AuthService),
		universesHandler:  handlers.NewUniversesHandler(deps.Config, deps.Sessions),
		cardsHandler:      handlers.NewCardsHandler(deps.Sessions, deps.Prices),
		decksHandler:      handlers.NewDecksHandler(deps.Sessions),
		collectionHandler: handlers.NewCollectionHandler(deps.Sessions),
		rulesHandler:      handlers.NewRulesHandler(deps.Rules),
		statsHandler:      handlers.NewStatsHandler(deps.Sessions),
	}

	// Persisted collection states fan out to that user's connections
	deps.Sessions.OnSnapshot(func(userID string, state collection.State) {
		s.wsHub.BroadcastEvent(websocket.Event{
			Type:   "collection.snapshot",
			UserID: userID,
			Data:   state,
		})
	})

	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))

	origins := s.allowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	s.router.Use(s.jsonContentTypeMiddleware)
}

// jsonContentTypeMiddleware enforces application/json for request
// bodies, except the plain-text collection import.
func (s *Server) jsonContentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut {
			if r.ContentLength == 0 || strings.HasSuffix(r.URL.Path, "/collection/import") {
				next.ServeHTTP(w, r)
				return
			}
			contentType := r.Header.Get("Content-Type")
			if contentType != "application/json" && !strings.HasPrefix(contentType, "application/json;") {
				http.Error(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// requireAuth resolves the bearer token to a user and stores the user
// ID on the request context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := handlers.BearerToken(r)
		if token == "" {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}
		account, err := s.authService.Restore(r.Context(), token)
		if err != nil {
			http.Error(w, "invalid or expired session", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(handlers.WithUserID(r.Context(), account.ID)))
	})
}

// Start runs the websocket hub and the HTTP listener.
func (s *Server) Start() error {
	go s.wsHub.Run()

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.host, s.port),
		Handler:           s.router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		s.logger.Info("api server starting", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", "error", err)
		}
	}()
	return nil
}

// Shutdown stops the listener and the hub.
func (s *Server) Shutdown(ctx context.Context) error {
	s.wsHub.Stop()
	if s.httpServer == nil {
		return nil
	}
	s.logger.Info("shutting down api server")
	return s.httpServer.Shutdown(ctx)
}

// Router exposes the handler tree, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Hub returns the websocket hub.
func (s *Server) Hub() *websocket.Hub {
	return s.wsHub
}
