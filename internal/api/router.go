package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/metrics", s.handleMetrics)

		r.Route("/entities", func(r chi.Router) {
			r.Get("/", s.handleListEntities)
			r.Get("/{id}", s.handleGetEntity)
		})

		r.Post("/rediscover", s.handleRediscover)
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}

// handleRediscover re-runs appliance discovery against the ThinQ account.
func (s *Server) handleRediscover(w http.ResponseWriter, r *http.Request) {
	if err := s.bridge.Rediscover(r.Context()); err != nil {
		s.logger.Error("rediscover failed", "error", err)
		writeInternalError(w, "rediscover failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"entities": len(s.bridge.Entities()),
	})
}
