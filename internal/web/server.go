// Package web serves the browser UI's API: role login, enrollment,
// recognition and the listing endpoints, gated by the navigation guard.
package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/akranjan/facemark/internal/attendance"
	"github.com/akranjan/facemark/internal/config"
	"github.com/akranjan/facemark/internal/recognizer"
	"github.com/akranjan/facemark/internal/session"
	"github.com/akranjan/facemark/internal/web/middleware"
)

// Server represents the web server.
type Server struct {
	config     *config.Config
	router     *chi.Mux
	httpServer *http.Server
	sessions   *session.Manager
	client     *recognizer.Client
	reconciler *attendance.Reconciler
	collector  *attendance.Collector
}

// NewServer creates a new web server wired to the recognition backend.
func NewServer(cfg *config.Config, client *recognizer.Client, port int, host string) *Server {
	r := chi.NewRouter()

	sessions := session.NewManager(cfg.Professor.Username, cfg.Professor.Password)
	collector := attendance.NewCollector()
	reconciler := attendance.NewReconciler(client, collector)

	s := &Server{
		config:     cfg,
		router:     r,
		sessions:   sessions,
		client:     client,
		reconciler: reconciler,
		collector:  collector,
	}

	// Set up middleware stack
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(time.Minute))
	r.Use(middleware.CORS())

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	log.Printf("Starting web server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down web server...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// Router returns the chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Sessions returns the session manager for testing.
func (s *Server) Sessions() *session.Manager {
	return s.sessions
}
