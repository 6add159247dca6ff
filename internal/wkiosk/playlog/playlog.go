// Package playlog records proof-of-play events for every widget tenure.
package playlog

import (
	"context"
	"log/slog"
	"time"

	"github.com/wrale/wrale-kiosk/api/types/v1alpha1"
	"github.com/wrale/wrale-kiosk/internal/wkiosk/metrics"
)

// DefaultBuffer is the number of events held before Record starts dropping
const DefaultBuffer = 256

// Play event outcomes reported to metrics
const (
	OutcomeSaved   = "saved"
	OutcomeDropped = "dropped"
	OutcomeFailed  = "failed"
)

// Repository stores play events
type Repository interface {
	// SaveEvent persists one play event
	SaveEvent(ctx context.Context, event v1alpha1.PlayEvent) error

	// WidgetStats summarizes the events of one widget since the given time
	WidgetStats(ctx context.Context, widgetID string, since time.Time) (*v1alpha1.WidgetStats, error)
}

// Recorder hands play events from the rotation timeline to a Repository
type Recorder struct {
	repo    Repository
	events  chan v1alpha1.PlayEvent
	timeout time.Duration
	logger  *slog.Logger
}

// NewRecorder creates a recorder with the given buffer size
func NewRecorder(repo Repository, buffer int, logger *slog.Logger) *Recorder {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Recorder{
		repo:    repo,
		events:  make(chan v1alpha1.PlayEvent, buffer),
		timeout: 5 * time.Second,
		logger:  logger,
	}
}

// Record queues an event without blocking. Events are dropped while the
// buffer is full.
func (r *Recorder) Record(e v1alpha1.PlayEvent) {
	select {
	case r.events <- e:
	default:
		metrics.RecordPlayEvent(OutcomeDropped)
		r.logger.Warn("play event buffer full, dropping event",
			"eventId", e.ID,
			"widgetId", e.WidgetID,
		)
	}
}

// Run persists queued events until ctx is done, then drains what is left
func (r *Recorder) Run(ctx context.Context) error {
	for {
		select {
		case e := <-r.events:
			r.save(ctx, e)
		case <-ctx.Done():
			r.drain()
			return nil
		}
	}
}

func (r *Recorder) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	for {
		select {
		case e := <-r.events:
			r.save(ctx, e)
		default:
			return
		}
	}
}

func (r *Recorder) save(ctx context.Context, e v1alpha1.PlayEvent) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err := r.repo.SaveEvent(ctx, e); err != nil {
		metrics.RecordPlayEvent(OutcomeFailed)
		r.logger.Error("failed to save play event",
			"error", err,
			"eventId", e.ID,
			"widgetId", e.WidgetID,
		)
		return
	}
	metrics.RecordPlayEvent(OutcomeSaved)
}

// Stats returns the summary for one widget
func (r *Recorder) Stats(ctx context.Context, widgetID string, since time.Time) (*v1alpha1.WidgetStats, error) {
	return r.repo.WidgetStats(ctx, widgetID, since)
}
