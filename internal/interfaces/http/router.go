// Package http assembles the insight API: chi routes, middleware chain and
// the server lifecycle.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/turtacn/KeyIP-Insight/internal/interfaces/http/handlers"
)

// Middleware is the chi middleware shape.
type Middleware func(http.Handler) http.Handler

// RouterConfig wires handlers and middleware. Nil entries are skipped.
type RouterConfig struct {
	// Handlers
	SearchHandler *handlers.SearchHandler
	HealthHandler *handlers.HealthHandler

	// Global middleware, applied in this order after request id and recovery.
	CORS    Middleware
	Logging Middleware
	Metrics Middleware

	// SessionGuard wraps only the search routes.
	SessionGuard Middleware

	// MetricsHandler is served at MetricsPath (default /metrics).
	MetricsHandler http.Handler
	MetricsPath    string
}

// NewRouter builds the route tree.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	for _, mw := range []Middleware{cfg.CORS, cfg.Logging, cfg.Metrics} {
		if mw != nil {
			r.Use(mw)
		}
	}

	if cfg.HealthHandler != nil {
		r.Get("/healthz", cfg.HealthHandler.Liveness)
		r.Get("/readyz", cfg.HealthHandler.Readiness)
	}

	if cfg.MetricsHandler != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, cfg.MetricsHandler)
	}

	r.Route("/api/v1", func(api chi.Router) {
		registerInsightRoutes(api, cfg.SearchHandler, cfg.SessionGuard)
	})

	return r
}

func registerInsightRoutes(r chi.Router, h *handlers.SearchHandler, guard Middleware) {
	if h == nil {
		return
	}
	r.Route("/insights", func(ir chi.Router) {
		ir.Get("/classify", h.Classify)

		ir.Group(func(sr chi.Router) {
			if guard != nil {
				sr.Use(guard)
			}
			sr.Post("/search", h.Search)
			sr.Get("/search", h.SearchQuery)
		})
	})
}

//Personal.AI order the ending
