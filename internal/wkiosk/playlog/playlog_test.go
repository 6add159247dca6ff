package playlog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wrale/wrale-kiosk/api/types/v1alpha1"
	"github.com/wrale/wrale-kiosk/internal/wkiosk/metrics"
	wtestutil "github.com/wrale/wrale-kiosk/internal/wkiosk/testutil"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) SaveEvent(ctx context.Context, event v1alpha1.PlayEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *mockRepository) WidgetStats(ctx context.Context, widgetID string, since time.Time) (*v1alpha1.WidgetStats, error) {
	args := m.Called(ctx, widgetID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*v1alpha1.WidgetStats), args.Error(1)
}

func playEvent(widgetID string) v1alpha1.PlayEvent {
	return v1alpha1.PlayEvent{
		ID:         uuid.New(),
		DisplayID:  uuid.New(),
		Type:       v1alpha1.PlayEventVisible,
		WidgetID:   widgetID,
		WidgetType: v1alpha1.WidgetTypeImage,
		Timestamp:  time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		Duration:   10 * time.Second,
	}
}

func TestRecorder_PersistsInOrder(t *testing.T) {
	repo := &mockRepository{}
	rec := NewRecorder(repo, 8, wtestutil.Logger())

	var saved []string
	done := make(chan struct{})
	repo.On("SaveEvent", mock.Anything, mock.AnythingOfType("v1alpha1.PlayEvent")).
		Run(func(args mock.Arguments) {
			saved = append(saved, args.Get(1).(v1alpha1.PlayEvent).WidgetID)
			if len(saved) == 3 {
				close(done)
			}
		}).
		Return(nil)

	before := testutil.ToFloat64(metrics.PlayEventsTotal.WithLabelValues(OutcomeSaved))

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- rec.Run(ctx) }()

	rec.Record(playEvent("a"))
	rec.Record(playEvent("b"))
	rec.Record(playEvent("c"))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("events were not persisted")
	}
	cancel()
	require.NoError(t, <-errc)

	assert.Equal(t, []string{"a", "b", "c"}, saved)
	assert.Equal(t, before+3, testutil.ToFloat64(metrics.PlayEventsTotal.WithLabelValues(OutcomeSaved)))
	repo.AssertExpectations(t)
}

func TestRecorder_DropsWhenFull(t *testing.T) {
	repo := &mockRepository{}
	rec := NewRecorder(repo, 1, wtestutil.Logger())

	before := testutil.ToFloat64(metrics.PlayEventsTotal.WithLabelValues(OutcomeDropped))

	rec.Record(playEvent("kept"))
	rec.Record(playEvent("dropped"))

	assert.Equal(t, before+1, testutil.ToFloat64(metrics.PlayEventsTotal.WithLabelValues(OutcomeDropped)))
	assert.Len(t, rec.events, 1)
}

func TestRecorder_DrainsOnShutdown(t *testing.T) {
	repo := &mockRepository{}
	rec := NewRecorder(repo, 4, wtestutil.Logger())
	repo.On("SaveEvent", mock.Anything, mock.Anything).Return(nil)

	rec.Record(playEvent("a"))
	rec.Record(playEvent("b"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, rec.Run(ctx))

	assert.Empty(t, rec.events)
	repo.AssertNumberOfCalls(t, "SaveEvent", 2)
}

func TestRecorder_SaveFailure(t *testing.T) {
	repo := &mockRepository{}
	rec := NewRecorder(repo, 4, wtestutil.Logger())
	repo.On("SaveEvent", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	before := testutil.ToFloat64(metrics.PlayEventsTotal.WithLabelValues(OutcomeFailed))

	rec.Record(playEvent("a"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, rec.Run(ctx))

	assert.Equal(t, before+1, testutil.ToFloat64(metrics.PlayEventsTotal.WithLabelValues(OutcomeFailed)))
}

func TestRecorder_Stats(t *testing.T) {
	repo := &mockRepository{}
	rec := NewRecorder(repo, 0, wtestutil.Logger())
	since := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	want := &v1alpha1.WidgetStats{WidgetID: "w1", PlayCount: 4, Since: since}
	repo.On("WidgetStats", mock.Anything, "w1", since).Return(want, nil)

	got, err := rec.Stats(context.Background(), "w1", since)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, DefaultBuffer, cap(rec.events))
}
