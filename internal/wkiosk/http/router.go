package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router creates and configures the HTTP router
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(requestIDHeaderMiddleware)
	r.Use(recoverMiddleware(h.logger))
	r.Use(logMiddleware(h.logger))

	// Probes, scraping and the surface are never rate limited
	r.Get("/healthz", h.handleHealth)
	r.Get("/readyz", h.handleReady)
	r.Handle("/metrics", promhttp.Handler())
	if h.surface != nil {
		r.Handle("/ws", h.surface)
	}

	r.Route("/api/v1alpha1", func(r chi.Router) {
		if h.rateLimit > 0 {
			r.Use(rateLimit(h.rateLimit))
		}
		r.Get("/status", h.handleStatus)
		r.Get("/widgets/{id}/stats", h.handleWidgetStats)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.respondError(w, ErrNotFound("not found"))
	})

	return r
}
