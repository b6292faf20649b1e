package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires the ops endpoints.
func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", h.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/modules", h.handleListModules)
		r.Get("/navigation", h.handleNavigation)
		r.Get("/flags", h.handleListFlags)
		r.Get("/flags/{flagID}/evaluate", h.handleEvaluateFlag)
		r.Put("/flags/{flagID}/overrides/{tenantID}", h.handleSetOverride)
		r.Delete("/flags/{flagID}/overrides/{tenantID}", h.handleClearOverride)
	})

	r.Route("/debug", func(r chi.Router) {
		r.Get("/events", h.handleEventLog)
		r.Delete("/events", h.handleClearEventLog)
	})

	return r
}
