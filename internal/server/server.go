// Package server exposes the Session Manager over HTTP (spec §6): the
// Simple multimodal API, an OpenAI Chat Completions-compatible
// endpoint, and an OpenAI Responses-compatible endpoint, all backed by
// the same sessionmgr.Manager and streamed through internal/stream.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/opencode-ai/agentcore/internal/sessionmgr"
)

// Config holds server configuration.
type Config struct {
	Port         int
	EnableCORS   bool
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns default server configuration. WriteTimeout is
// zero: SSE responses are long-lived and must not be cut off.
func DefaultConfig() *Config {
	return &Config{
		Port:        8080,
		EnableCORS:  true,
		ReadTimeout: 30 * time.Second,
	}
}

// Server is the HTTP front end over a sessionmgr.Manager.
type Server struct {
	config  *Config
	router  *chi.Mux
	httpSrv *http.Server
	mgr     *sessionmgr.Manager
}

// New creates a Server wired to the given session manager.
func New(cfg *Config, mgr *sessionmgr.Manager) *Server {
	s := &Server{
		config: cfg,
		router: chi.NewRouter(),
		mgr:    mgr,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RealIP)

	if s.config.EnableCORS {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.httpSrv = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	return s.httpSrv.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server (the underlying
// Manager is shut down separately by the caller).
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

// Router returns the Chi router for testing.
func (s *Server) Router() *chi.Mux { return s.router }

func newRequestID() string { return uuid.NewString() }
