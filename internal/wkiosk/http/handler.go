// Package http serves the display client's local API: health probes, the
// rotation status, play statistics, Prometheus metrics and the kiosk
// surface websocket.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wrale/wrale-kiosk/api/types/v1alpha1"
	werrors "github.com/wrale/wrale-kiosk/internal/wkiosk/errors"
)

// DefaultStatsWindow is used when a stats request names no start time
const DefaultStatsWindow = 24 * time.Hour

// StatusSource reports the rotation state
type StatusSource interface {
	Status() v1alpha1.DisplayStatus
	Ready() bool
}

// StatsSource summarizes recorded play events
type StatsSource interface {
	Stats(ctx context.Context, widgetID string, since time.Time) (*v1alpha1.WidgetStats, error)
}

// Handler encapsulates the local HTTP API
type Handler struct {
	status    StatusSource
	stats     StatsSource
	surface   http.Handler
	rateLimit int
	now       func() time.Time
	logger    *slog.Logger
}

// Option configures a Handler
type Option func(*Handler)

// WithStats enables the widget statistics endpoint
func WithStats(s StatsSource) Option {
	return func(h *Handler) {
		h.stats = s
	}
}

// WithRateLimit sets the per-IP request limit per minute on API routes
func WithRateLimit(requestsPerMinute int) Option {
	return func(h *Handler) {
		h.rateLimit = requestsPerMinute
	}
}

// NewHandler creates the local API handler. surface serves the kiosk
// websocket.
func NewHandler(status StatusSource, surface http.Handler, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		status:    status,
		surface:   surface,
		rateLimit: 600,
		now:       time.Now,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady succeeds once content has been loaded at least once
func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	if !h.status.Ready() {
		h.respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "loading"})
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.status.Status())
}

// handleWidgetStats accepts either since (RFC 3339) or window (a Go
// duration) and defaults to the last 24 hours
func (h *Handler) handleWidgetStats(w http.ResponseWriter, r *http.Request) {
	if h.stats == nil {
		h.respondError(w, ErrUnavailable("play log is not configured"))
		return
	}

	widgetID := chi.URLParam(r, "id")
	if widgetID == "" {
		h.respondError(w, ErrInvalidRequest("widget id is required"))
		return
	}

	since := h.now().Add(-DefaultStatsWindow)
	q := r.URL.Query()
	if v := q.Get("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			h.respondError(w, ErrInvalidRequest("since must be an RFC 3339 timestamp"))
			return
		}
		since = t
	} else if v := q.Get("window"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			h.respondError(w, ErrInvalidRequest("window must be a positive duration"))
			return
		}
		since = h.now().Add(-d)
	}

	stats, err := h.stats.Stats(r.Context(), widgetID, since)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, stats)
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			h.logger.Error("failed to encode response", "error", err)
		}
	}
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	msg := "internal server error"

	if he, ok := err.(HTTPError); ok {
		code = he.StatusCode()
		msg = he.Error()
	} else {
		switch {
		case werrors.IsNotFound(err):
			code, msg = http.StatusNotFound, "not found"
		case werrors.IsInvalidInput(err):
			code, msg = http.StatusBadRequest, err.Error()
		default:
			h.logger.Error("request failed", "error", err)
		}
	}

	h.respondJSON(w, code, map[string]string{"error": msg})
}
