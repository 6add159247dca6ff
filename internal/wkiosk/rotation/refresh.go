package rotation

import (
	"context"

	"github.com/wrale/wrale-kiosk/internal/wkiosk/metrics"
	"github.com/wrale/wrale-kiosk/internal/wkiosk/ticker"
)

const (
	refreshWidgets       = "widgets"
	refreshAnnouncements = "announcements"
	refreshWeather       = "weather"
	refreshNews          = "news"
)

// fetch runs work off the timeline and then applies its result with done.
// A fetch of the same kind that is still in flight suppresses a new one.
func (e *Engine) fetch(kind string, work func(ctx context.Context) error, done func(err error)) {
	if e.busy[kind] {
		e.logger.Debug("refresh still in flight, skipping tick", "kind", kind)
		return
	}
	e.busy[kind] = true

	var err error
	e.sched.Go(func(ctx context.Context) {
		err = work(ctx)
	}, func() {
		e.busy[kind] = false
		if !e.running {
			return
		}
		done(err)
	})
}

func (e *Engine) refreshWidgets() {
	e.fetch(refreshWidgets, e.content.RefreshWidgets, func(err error) {
		metrics.RecordContentRefresh(refreshWidgets, err)
		if err != nil {
			e.lastError = err.Error()
		} else {
			e.lastError = ""
		}
		e.reconcile()
	})
}

func (e *Engine) refreshAnnouncements() {
	e.fetch(refreshAnnouncements, e.content.RefreshAnnouncements, func(err error) {
		metrics.RecordContentRefresh(refreshAnnouncements, err)
		e.refreshTicker()
	})
}

// refreshTicker re-filters the cached announcements and replaces the
// banner when its items changed
func (e *Engine) refreshTicker() {
	now := e.now()
	view := ticker.Build(e.content.EligibleAnnouncements(now), now)
	metrics.TickerItems.Set(float64(len(view.Items)))

	if e.tickerShown && ticker.Equal(view, e.ticker) {
		return
	}
	e.ticker = view
	e.tickerShown = true
	e.surface.ShowTicker(view)
	e.publishStatus()
}

func (e *Engine) refreshWeather() {
	e.fetch(refreshWeather, e.enrich.RefreshWeather, func(err error) {
		metrics.RecordEnrichmentRefresh(refreshWeather, err)
		e.surface.ShowHeader(e.header())
	})
}

func (e *Engine) refreshNews() {
	e.fetch(refreshNews, e.enrich.RefreshNews, func(err error) {
		metrics.RecordEnrichmentRefresh(refreshNews, err)
	})
}
