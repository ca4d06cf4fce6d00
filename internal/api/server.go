package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dhruvsoni1802/wiredriver/internal/metrics"
	"github.com/dhruvsoni1802/wiredriver/internal/pool"
	"github.com/dhruvsoni1802/wiredriver/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Server is the admin HTTP API over the session manager
type Server struct {
	router  *chi.Mux
	server  *http.Server
	manager *session.Manager
}

// NewServer creates the admin server. balancer and m may be nil.
func NewServer(port string, manager *session.Manager, balancer *pool.LoadBalancer, m *metrics.Metrics) *Server {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(LoggingMiddleware)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	handlers := NewHandlers(manager, balancer)

	router.Route("/sessions", func(r chi.Router) {
		r.Post("/", handlers.OpenSession)
		r.Get("/", handlers.ListSessions)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", handlers.GetSession)
			r.Delete("/", handlers.QuitSession)
			r.Post("/touch", handlers.TouchSession)
		})
	})

	router.Get("/hubs", handlers.ListHubs)
	router.Get("/healthz", handlers.Health)

	if m != nil {
		router.Handle("/metrics", m.Handler())
	}

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		router:  router,
		server:  server,
		manager: manager,
	}
}

// Handler returns the routed handler, mostly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	slog.Info("starting HTTP server", "addr", s.server.Addr)

	err := s.server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("shutting down HTTP server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("HTTP server shutdown error: %w", err)
	}

	slog.Info("HTTP server stopped")
	return nil
}
