// Package api is a tiny read-only HTTP inspection surface over a running
// engine.Engine. It is explicitly not the engine's control surface: every
// route here only reads engine.Status/PendingDecisions/FailedMotors/History,
// never calls a mutating method. The engine itself never imports net/http —
// this package is an optional operator-facing window the command-line
// driver wires up alongside it, the way the platform's own cmd/iotsense
// wires api.Server around the engines it owns.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/savegress/motorsim/internal/engine"
)

// Server is the inspection surface's HTTP handler.
type Server struct {
	router chi.Router
	eng    *engine.Engine
}

// NewServer builds a Server wrapping eng.
func NewServer(eng *engine.Engine) *Server {
	s := &Server{
		router: chi.NewRouter(),
		eng:    eng,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	s.router.Get("/health", s.healthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", s.getStatus)
		r.Get("/pending-decisions", s.getPendingDecisions)
		r.Get("/failed-motors", s.getFailedMotors)
		r.Get("/history", s.getHistory)
		r.Get("/motors/{id}", s.getMotorHistory)
	})
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}
