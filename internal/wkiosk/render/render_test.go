package render

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrale/wrale-kiosk/api/types/v1alpha1"
	"github.com/wrale/wrale-kiosk/internal/wkiosk/enrichment"
	werrors "github.com/wrale/wrale-kiosk/internal/wkiosk/errors"
)

type stubEnrichment struct {
	weather   map[string]enrichment.Weather
	headlines []v1alpha1.Headline
}

func (s *stubEnrichment) Weather(city string) enrichment.Weather {
	if city == "" {
		city = "Rabat"
	}
	if w, ok := s.weather[city]; ok {
		return w
	}
	return enrichment.Placeholder(city)
}

func (s *stubEnrichment) Headlines() []v1alpha1.Headline {
	return s.headlines
}

var now = time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)

func newRenderer(t *testing.T, enrich Enrichment) (*Renderer, *bytes.Buffer) {
	t.Helper()
	if enrich == nil {
		enrich = &stubEnrichment{}
	}
	var logs bytes.Buffer
	return New(enrich, slog.New(slog.NewTextHandler(&logs, nil))), &logs
}

func widget(typ v1alpha1.WidgetType, content string) *v1alpha1.Widget {
	w := &v1alpha1.Widget{ID: "w1", Title: "Title", Type: typ, Duration: 8, IsActive: true}
	if content != "" {
		w.Content = json.RawMessage(content)
	}
	return w
}

func TestRender_Image(t *testing.T) {
	r, _ := newRenderer(t, nil)

	res := r.Render(widget(v1alpha1.WidgetTypeImage, `"http://x/a.png"`), now)
	require.NoError(t, res.Err)
	assert.Equal(t, v1alpha1.FrameWidget, res.Frame.Kind)
	assert.Equal(t, "http://x/a.png", res.Frame.Image.URL)
	assert.Equal(t, 8, res.Frame.Duration)
	assert.Nil(t, res.Animation)
	assert.NotEmpty(t, res.Frame.ID)

	w := widget(v1alpha1.WidgetTypeImage, "")
	w.FileURL = "/uploads/a.png"
	res = r.Render(w, now)
	require.NoError(t, res.Err)
	assert.Equal(t, "/uploads/a.png", res.Frame.Image.URL)
}

func TestRender_Slideshow(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantCount int
		wantErr   bool
	}{
		{"array", `["a","b","c"]`, 3, false},
		{"json encoded string", `"[\"a\",\"b\"]"`, 2, false},
		{"single image", `["a"]`, 1, false},
		{"empty", `[]`, 0, true},
		{"not json", `"a,b,c"`, 0, true},
		{"object", `{"images":["a"]}`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newRenderer(t, nil)
			res := r.Render(widget(v1alpha1.WidgetTypeSlideshow, tt.content), now)
			if tt.wantErr {
				require.Error(t, res.Err)
				assert.True(t, werrors.IsMalformedContent(res.Err))
				assert.Equal(t, v1alpha1.FrameError, res.Frame.Kind)
				assert.Equal(t, werrors.CodeMalformedContent, res.Frame.Notice.Code)
				assert.Nil(t, res.Animation)
				return
			}
			require.NoError(t, res.Err)
			assert.Len(t, res.Frame.Slideshow.Images, tt.wantCount)
			assert.EqualValues(t, 3000, res.Frame.Slideshow.IntervalMillis)
			if tt.wantCount > 1 {
				require.NotNil(t, res.Animation)
				assert.Equal(t, DefaultSlideInterval, res.Animation.Interval)
				assert.Equal(t, tt.wantCount, res.Animation.Count)
			} else {
				assert.Nil(t, res.Animation)
			}
		})
	}
}

func TestAnimation_Next(t *testing.T) {
	a := &Animation{Count: 3}
	assert.Equal(t, 1, a.Next(0))
	assert.Equal(t, 2, a.Next(1))
	assert.Equal(t, 0, a.Next(2))
	assert.Equal(t, 0, (&Animation{}).Next(4))
}

func TestRender_Video(t *testing.T) {
	r, _ := newRenderer(t, nil)

	res := r.Render(widget(v1alpha1.WidgetTypeVideo, `"http://x/v.mp4"`), now)
	require.NoError(t, res.Err)
	assert.True(t, res.Frame.Video.Loop)
	assert.True(t, res.Frame.Video.AutoPlay)
	assert.True(t, res.Frame.Video.Controls)

	off := false
	w := widget(v1alpha1.WidgetTypeVideo, `"http://x/v.mp4"`)
	w.Settings = &v1alpha1.WidgetSettings{Loop: &off}
	res = r.Render(w, now)
	require.NoError(t, res.Err)
	assert.False(t, res.Frame.Video.Loop)
}

func TestYouTubeVideoID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=10", "dQw4w9WgXcQ"},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"https://vimeo.com/12345678", ""},
		{"not a video", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, youTubeVideoID(tt.in))
		})
	}
}

func TestRender_YouTube(t *testing.T) {
	r, _ := newRenderer(t, nil)
	res := r.Render(widget(v1alpha1.WidgetTypeYouTube, `"https://youtu.be/dQw4w9WgXcQ"`), now)
	require.NoError(t, res.Err)
	assert.Equal(t, "https://www.youtube.com/embed/dQw4w9WgXcQ?autoplay=1&loop=1&playlist=dQw4w9WgXcQ", res.Frame.Embed.URL)
	assert.Equal(t, "autoplay; encrypted-media", res.Frame.Embed.Allow)
}

func TestRender_Iframe(t *testing.T) {
	r, _ := newRenderer(t, nil)
	res := r.Render(widget(v1alpha1.WidgetTypeIframe, `"https://example.com/board"`), now)
	require.NoError(t, res.Err)
	assert.Equal(t, "https://example.com/board", res.Frame.Embed.URL)

	res = r.Render(widget(v1alpha1.WidgetTypeIframe, `"javascript:alert(1)"`), now)
	assert.True(t, werrors.IsMalformedContent(res.Err))
}

func TestRender_Weather(t *testing.T) {
	enrich := &stubEnrichment{weather: map[string]enrichment.Weather{
		"Casablanca": {City: "Casablanca", TempC: "24", Icon: "⛅"},
	}}
	r, _ := newRenderer(t, enrich)

	res := r.Render(widget(v1alpha1.WidgetTypeWeather, `{"city":"Casablanca"}`), now)
	require.NoError(t, res.Err)
	assert.Equal(t, &v1alpha1.WeatherView{City: "Casablanca", Temperature: "24°C", Icon: "⛅"}, res.Frame.Weather)

	res = r.Render(widget(v1alpha1.WidgetTypeWeather, `not json`), now)
	require.NoError(t, res.Err)
	assert.Equal(t, "Rabat", res.Frame.Weather.City)
	assert.Equal(t, "--°C", res.Frame.Weather.Temperature)
	assert.Equal(t, "☀️", res.Frame.Weather.Icon)
}

func TestWeatherCities(t *testing.T) {
	ws := []v1alpha1.Widget{
		*widget(v1alpha1.WidgetTypeWeather, `{"city":" Fes "}`),
		*widget(v1alpha1.WidgetTypeWeather, `"{\"city\":\"Fes\"}"`),
		*widget(v1alpha1.WidgetTypeWeather, `{"city":"Tangier"}`),
		*widget(v1alpha1.WidgetTypeWeather, ``),
		*widget(v1alpha1.WidgetTypeWeather, `[broken`),
		*widget(v1alpha1.WidgetTypeImage, `{"city":"Agadir"}`),
	}
	assert.Equal(t, []string{"Fes", "Tangier"}, WeatherCities(ws))
	assert.Empty(t, WeatherCities(nil))
}

func TestRender_List(t *testing.T) {
	r, _ := newRenderer(t, nil)

	res := r.Render(widget(v1alpha1.WidgetTypeList, `[{"nom":"Alice","info":"Room 1"},{"name":"Bob","description":"Room 2"},{}]`), now)
	require.NoError(t, res.Err)
	assert.Equal(t, []v1alpha1.ListItem{
		{Name: "Alice", Info: "Room 1"},
		{Name: "Bob", Info: "Room 2"},
		{Name: "Item"},
	}, res.Frame.List.Items)

	res = r.Render(widget(v1alpha1.WidgetTypeList, `["Alice","Bob",42,null]`), now)
	require.NoError(t, res.Err)
	assert.Equal(t, []v1alpha1.ListItem{
		{Name: "Alice"},
		{Name: "Bob"},
		{Name: "Item"},
		{Name: "Item"},
	}, res.Frame.List.Items)

	res = r.Render(widget(v1alpha1.WidgetTypeList, `"{broken"`), now)
	assert.True(t, werrors.IsMalformedContent(res.Err))

	res = r.Render(widget(v1alpha1.WidgetTypeList, `{"name":"not a list"}`), now)
	assert.True(t, werrors.IsMalformedContent(res.Err))
}

func TestRender_Congratulations(t *testing.T) {
	r, _ := newRenderer(t, nil)

	res := r.Render(widget(v1alpha1.WidgetTypeCongratulations, `{"title":"Well done","message":"Team A"}`), now)
	require.NoError(t, res.Err)
	assert.Equal(t, "Well done", res.Frame.Congratulations.Title)
	assert.Equal(t, "Team A", res.Frame.Congratulations.Message)
	assert.Equal(t, "🎉", res.Frame.Congratulations.Icon)

	res = r.Render(widget(v1alpha1.WidgetTypeCongratulations, ""), now)
	require.NoError(t, res.Err)
	assert.Equal(t, "Title", res.Frame.Congratulations.Title)
	assert.Equal(t, "Congratulations!", res.Frame.Congratulations.Message)

	res = r.Render(widget(v1alpha1.WidgetTypeCongratulations, `[1,2]`), now)
	assert.True(t, werrors.IsMalformedContent(res.Err))
}

func TestRender_News(t *testing.T) {
	enrich := &stubEnrichment{}
	r, _ := newRenderer(t, enrich)

	res := r.Render(widget(v1alpha1.WidgetTypeNews, ""), now)
	require.NoError(t, res.Err)
	assert.True(t, res.Frame.News.Loading)

	published := now.Add(-90 * time.Minute)
	for i := 0; i < 8; i++ {
		enrich.headlines = append(enrich.headlines, v1alpha1.Headline{
			Title:       "headline",
			Description: strings.Repeat("é", 200),
			PublishedAt: &published,
		})
	}

	res = r.Render(widget(v1alpha1.WidgetTypeNews, ""), now)
	require.NoError(t, res.Err)
	require.Len(t, res.Frame.News.Headlines, MaxNewsItems)
	h := res.Frame.News.Headlines[0]
	assert.Equal(t, "1h ago", h.Age)
	assert.Equal(t, "Unknown source", h.Source)
	assert.Equal(t, strings.Repeat("é", 150)+"...", h.Description)
}

func TestRender_Presentation(t *testing.T) {
	r, _ := newRenderer(t, nil)
	w := widget(v1alpha1.WidgetTypePresentation, "")
	w.FileURL = "/uploads/deck.pptx"

	res := r.Render(w, now)
	require.NoError(t, res.Err)
	assert.Equal(t, "📊", res.Frame.Document.Icon)
	assert.Equal(t, "/uploads/deck.pptx", res.Frame.Document.URL)
}

func TestRender_UnknownType(t *testing.T) {
	r, _ := newRenderer(t, nil)
	res := r.Render(widget("hologram", `"x"`), now)
	require.Error(t, res.Err)
	assert.True(t, werrors.IsUnknownType(res.Err))
	assert.Equal(t, v1alpha1.FrameError, res.Frame.Kind)
	assert.Equal(t, "w1", res.Frame.WidgetID)
	assert.Equal(t, werrors.CodeUnknownType, res.Frame.Notice.Code)
	assert.Equal(t, "⚠️", res.Frame.Notice.Icon)
}

func TestRender_RemembersFailuresUntilContentChanges(t *testing.T) {
	r, logs := newRenderer(t, nil)
	w := widget(v1alpha1.WidgetTypeSlideshow, `[]`)

	first := r.Render(w, now)
	second := r.Render(w, now.Add(time.Minute))
	require.Error(t, first.Err)
	require.Error(t, second.Err)
	assert.NotEqual(t, first.Frame.ID, second.Frame.ID)
	assert.Equal(t, 1, strings.Count(logs.String(), "widget failed to render"))

	w.Content = json.RawMessage(`["a","b"]`)
	res := r.Render(w, now)
	require.NoError(t, res.Err)
	assert.Empty(t, r.failures)
}

func TestRenderer_Retain(t *testing.T) {
	r, _ := newRenderer(t, nil)
	r.Render(widget("hologram", ""), now)
	require.Len(t, r.failures, 1)

	r.Retain([]v1alpha1.Widget{{ID: "w1"}})
	assert.Len(t, r.failures, 1)
	r.Retain(nil)
	assert.Empty(t, r.failures)
}

func TestFormatAge(t *testing.T) {
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{5 * time.Minute, "5 min ago"},
		{3 * time.Hour, "3h ago"},
		{50 * time.Hour, "2d ago"},
		{10 * 24 * time.Hour, "May 24"},
		{-time.Minute, "0 min ago"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAge(now.Add(-tt.ago), now))
		})
	}
}

func TestEmptyFrame(t *testing.T) {
	f := EmptyFrame(now, false)
	assert.Equal(t, v1alpha1.FrameEmpty, f.Kind)
	assert.Equal(t, "📺", f.Notice.Icon)

	f = EmptyFrame(now, true)
	assert.Equal(t, v1alpha1.FrameOffline, f.Kind)
	assert.Equal(t, werrors.CodeFetchFailed, f.Notice.Code)
}
