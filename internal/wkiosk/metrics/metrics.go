// Package metrics provides Prometheus metrics for the display client.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result label values
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Advance reason label values
const (
	ReasonTimer   = "timer"
	ReasonRefresh = "refresh"
)

var (
	// RotationAdvancesTotal counts transitions to a new widget tenure.
	RotationAdvancesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wkiosk_rotation_advances_total",
		Help: "Total number of widget tenures started, by reason.",
	}, []string{"reason"})

	// WidgetRendersTotal counts rendered widgets by type and result.
	WidgetRendersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wkiosk_widget_renders_total",
		Help: "Total number of widget renders, by widget type and result.",
	}, []string{"type", "result"})

	// SlideStepsTotal counts slideshow inner animation steps.
	SlideStepsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wkiosk_slide_steps_total",
		Help: "Total number of slideshow image changes.",
	})

	// ContentRefreshTotal counts Content Service refreshes by list and result.
	ContentRefreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wkiosk_content_refresh_total",
		Help: "Total number of content refreshes, by list (widgets, announcements) and result.",
	}, []string{"list", "result"})

	// EnrichmentRefreshTotal counts weather and news refreshes by result.
	EnrichmentRefreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wkiosk_enrichment_refresh_total",
		Help: "Total number of enrichment refreshes, by kind (weather, news) and result.",
	}, []string{"kind", "result"})

	// EligibleWidgets tracks the length of the current rotation sequence.
	EligibleWidgets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "wkiosk_eligible_widgets",
		Help: "Current number of widgets eligible for rotation.",
	})

	// TickerItems tracks the number of announcements on the banner.
	TickerItems = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "wkiosk_ticker_items",
		Help: "Current number of announcements shown on the ticker.",
	})

	// SurfaceConnections tracks connected kiosk surfaces.
	SurfaceConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "wkiosk_surface_connections",
		Help: "Current number of connected kiosk surfaces.",
	})

	// PlayEventsTotal counts proof-of-play events by outcome.
	PlayEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wkiosk_play_events_total",
		Help: "Total number of play events, by outcome (saved, dropped, failed).",
	}, []string{"outcome"})
)

// RecordAdvance increments the rotation advance counter.
func RecordAdvance(reason string) {
	RotationAdvancesTotal.WithLabelValues(reason).Inc()
}

// RecordRender increments the render counter for a widget type.
func RecordRender(widgetType string, ok bool) {
	WidgetRendersTotal.WithLabelValues(widgetType, result(ok)).Inc()
}

// RecordContentRefresh increments the content refresh counter.
func RecordContentRefresh(list string, err error) {
	ContentRefreshTotal.WithLabelValues(list, result(err == nil)).Inc()
}

// RecordEnrichmentRefresh increments the enrichment refresh counter.
func RecordEnrichmentRefresh(kind string, err error) {
	EnrichmentRefreshTotal.WithLabelValues(kind, result(err == nil)).Inc()
}

// RecordPlayEvent increments the play event counter.
func RecordPlayEvent(outcome string) {
	PlayEventsTotal.WithLabelValues(outcome).Inc()
}

func result(ok bool) string {
	if ok {
		return ResultOK
	}
	return ResultError
}
