package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wrale/wrale-kiosk/api/types/v1alpha1"
	werrors "github.com/wrale/wrale-kiosk/internal/wkiosk/errors"
)

type mockStatus struct {
	mock.Mock
}

func (m *mockStatus) Status() v1alpha1.DisplayStatus {
	return m.Called().Get(0).(v1alpha1.DisplayStatus)
}

func (m *mockStatus) Ready() bool {
	return m.Called().Bool(0)
}

type mockStats struct {
	mock.Mock
}

func (m *mockStats) Stats(ctx context.Context, widgetID string, since time.Time) (*v1alpha1.WidgetStats, error) {
	args := m.Called(ctx, widgetID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*v1alpha1.WidgetStats), args.Error(1)
}

var testNow = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

func newTestHandler(status StatusSource, opts ...Option) *Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	surface := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := NewHandler(status, surface, logger, opts...)
	h.now = func() time.Time { return testNow }
	return h
}

func serve(h *Handler, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp.Error
}

func TestRouter_Probes(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		ready      bool
		wantStatus int
		wantBody   string
	}{
		{"healthz", "/healthz", false, http.StatusOK, "ok"},
		{"readyz before first load", "/readyz", false, http.StatusServiceUnavailable, "loading"},
		{"readyz after first load", "/readyz", true, http.StatusOK, "ok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := &mockStatus{}
			status.On("Ready").Return(tt.ready).Maybe()

			rec := serve(newTestHandler(status), http.MethodGet, tt.path)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body map[string]string
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.wantBody, body["status"])
		})
	}
}

func TestRouter_Status(t *testing.T) {
	shown := testNow.Add(-4 * time.Second)
	status := &mockStatus{}
	status.On("Status").Return(v1alpha1.DisplayStatus{
		TypeMeta:          v1alpha1.TypeMeta{Kind: "DisplayStatus", APIVersion: v1alpha1.APIVersion},
		State:             v1alpha1.RotationShowing,
		Loaded:            true,
		CurrentWidgetID:   "w2",
		CurrentWidgetType: v1alpha1.WidgetTypeSlideshow,
		CurrentIndex:      1,
		EligibleCount:     3,
		ShownAt:           &shown,
		UpdatedAt:         testNow,
	})

	rec := serve(newTestHandler(status), http.MethodGet, "/api/v1alpha1/status")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var got v1alpha1.DisplayStatus
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "DisplayStatus", got.Kind)
	assert.Equal(t, v1alpha1.RotationShowing, got.State)
	assert.Equal(t, "w2", got.CurrentWidgetID)
	assert.Equal(t, 1, got.CurrentIndex)
	assert.Equal(t, 3, got.EligibleCount)
	status.AssertExpectations(t)
}

func TestRouter_WidgetStats(t *testing.T) {
	t.Run("default window", func(t *testing.T) {
		stats := &mockStats{}
		since := testNow.Add(-DefaultStatsWindow)
		stats.On("Stats", mock.Anything, "w1", since).
			Return(&v1alpha1.WidgetStats{WidgetID: "w1", PlayCount: 12, ErrorCount: 1, Since: since}, nil)

		rec := serve(newTestHandler(&mockStatus{}, WithStats(stats)), http.MethodGet, "/api/v1alpha1/widgets/w1/stats")
		require.Equal(t, http.StatusOK, rec.Code)

		var got v1alpha1.WidgetStats
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		assert.Equal(t, int64(12), got.PlayCount)
		stats.AssertExpectations(t)
	})

	t.Run("since parameter", func(t *testing.T) {
		stats := &mockStats{}
		since := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		stats.On("Stats", mock.Anything, "w1", mock.MatchedBy(func(t time.Time) bool { return t.Equal(since) })).
			Return(&v1alpha1.WidgetStats{WidgetID: "w1"}, nil)

		rec := serve(newTestHandler(&mockStatus{}, WithStats(stats)), http.MethodGet, "/api/v1alpha1/widgets/w1/stats?since=2026-03-01T00:00:00Z")
		assert.Equal(t, http.StatusOK, rec.Code)
		stats.AssertExpectations(t)
	})

	t.Run("window parameter", func(t *testing.T) {
		stats := &mockStats{}
		stats.On("Stats", mock.Anything, "w1", testNow.Add(-time.Hour)).
			Return(&v1alpha1.WidgetStats{WidgetID: "w1"}, nil)

		rec := serve(newTestHandler(&mockStatus{}, WithStats(stats)), http.MethodGet, "/api/v1alpha1/widgets/w1/stats?window=1h")
		assert.Equal(t, http.StatusOK, rec.Code)
		stats.AssertExpectations(t)
	})

	t.Run("invalid parameters", func(t *testing.T) {
		h := newTestHandler(&mockStatus{}, WithStats(&mockStats{}))
		for _, q := range []string{"since=yesterday", "window=-1h", "window=soon"} {
			rec := serve(h, http.MethodGet, "/api/v1alpha1/widgets/w1/stats?"+q)
			assert.Equal(t, http.StatusBadRequest, rec.Code, q)
		}
	})

	t.Run("repository failure", func(t *testing.T) {
		stats := &mockStats{}
		stats.On("Stats", mock.Anything, "w1", mock.Anything).
			Return(nil, werrors.NewError(werrors.CodeInternal, "internal database error", "PlayLogStore.WidgetStats", nil))

		rec := serve(newTestHandler(&mockStatus{}, WithStats(stats)), http.MethodGet, "/api/v1alpha1/widgets/w1/stats")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "internal server error", decodeError(t, rec))
	})

	t.Run("play log disabled", func(t *testing.T) {
		rec := serve(newTestHandler(&mockStatus{}), http.MethodGet, "/api/v1alpha1/widgets/w1/stats")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "play log is not configured", decodeError(t, rec))
	})
}

func TestRouter_Surface(t *testing.T) {
	rec := serve(newTestHandler(&mockStatus{}), http.MethodGet, "/ws")
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestRouter_Metrics(t *testing.T) {
	rec := serve(newTestHandler(&mockStatus{}), http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestRouter_NotFound(t *testing.T) {
	rec := serve(newTestHandler(&mockStatus{}), http.MethodGet, "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not found", decodeError(t, rec))
}

func TestRouter_RateLimit(t *testing.T) {
	status := &mockStatus{}
	status.On("Status").Return(v1alpha1.DisplayStatus{})
	h := newTestHandler(status, WithRateLimit(2))
	router := h.Router()

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1alpha1/status", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// probes are outside the limit
	status.On("Ready").Return(true)
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMiddleware_RecoversFromPanic(t *testing.T) {
	h := newTestHandler(&mockStatus{})
	router := h.Router()
	router.Get("/test/panic", func(w http.ResponseWriter, r *http.Request) {
		panic("test panic")
	})

	req := httptest.NewRequest(http.MethodGet, "/test/panic", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal error", decodeError(t, rec))
}
