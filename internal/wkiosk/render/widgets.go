package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/wrale/wrale-kiosk/api/types/v1alpha1"
	werrors "github.com/wrale/wrale-kiosk/internal/wkiosk/errors"
)

const (
	// MaxNewsItems is the number of headlines shown by a news widget
	MaxNewsItems = 6
	// maxDescription is the headline description length in runes
	maxDescription = 150

	congratulationsMessage = "Congratulations!"
	presentationLabel      = "Download the presentation"
	youTubeAllow           = "autoplay; encrypted-media"
)

var errEmptyContent = errors.New("content is empty")

// contentURL returns the widget's content as a URL, falling back to the
// uploaded file
func contentURL(w *v1alpha1.Widget) string {
	if s := strings.TrimSpace(w.ContentString()); s != "" {
		return s
	}
	return strings.TrimSpace(w.FileURL)
}

func malformed(w *v1alpha1.Widget, msg string, cause error) error {
	return werrors.NewMalformedContentError("Renderer.Render",
		fmt.Sprintf("%s widget %s: %s", w.Type, w.ID, msg), cause)
}

func renderImage(w *v1alpha1.Widget) (*v1alpha1.ImageView, error) {
	u := contentURL(w)
	if u == "" {
		return nil, malformed(w, "missing image URL", errEmptyContent)
	}
	return &v1alpha1.ImageView{URL: u, Alt: w.Title}, nil
}

func (r *Renderer) renderSlideshow(w *v1alpha1.Widget) (*v1alpha1.SlideshowView, *Animation, error) {
	var images []string
	if err := w.DecodeContent(&images); err != nil {
		return nil, nil, malformed(w, "content is not a list of image URLs", err)
	}

	cleaned := images[:0]
	for _, img := range images {
		if img = strings.TrimSpace(img); img != "" {
			cleaned = append(cleaned, img)
		}
	}
	if len(cleaned) == 0 {
		return nil, nil, malformed(w, "no images in slideshow", errEmptyContent)
	}

	view := &v1alpha1.SlideshowView{
		Images:         cleaned,
		Visible:        0,
		IntervalMillis: r.slideInterval.Milliseconds(),
	}
	if len(cleaned) == 1 {
		return view, nil, nil
	}
	return view, &Animation{Interval: r.slideInterval, Count: len(cleaned)}, nil
}

func renderVideo(w *v1alpha1.Widget) (*v1alpha1.VideoView, error) {
	u := contentURL(w)
	if u == "" {
		return nil, malformed(w, "missing video URL", errEmptyContent)
	}
	view := &v1alpha1.VideoView{
		URL:      u,
		AutoPlay: true,
		Loop:     true,
		Controls: true,
	}
	if s := w.Settings; s != nil {
		if s.AutoPlay != nil {
			view.AutoPlay = *s.AutoPlay
		}
		if s.Loop != nil {
			view.Loop = *s.Loop
		}
	}
	return view, nil
}

var youTubeID = regexp.MustCompile(`^[A-Za-z0-9_-]{6,}$`)

// youTubeVideoID accepts a bare id or a watch, short, embed or shorts URL
func youTubeVideoID(raw string) string {
	raw = strings.TrimSpace(raw)
	if youTubeID.MatchString(raw) {
		return raw
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	host = strings.TrimPrefix(host, "m.")

	var id string
	switch host {
	case "youtu.be":
		id = strings.Trim(u.Path, "/")
	case "youtube.com", "youtube-nocookie.com":
		if v := u.Query().Get("v"); v != "" {
			id = v
			break
		}
		parts := strings.Split(strings.Trim(u.Path, "/"), "/")
		if len(parts) == 2 && (parts[0] == "embed" || parts[0] == "shorts" || parts[0] == "live") {
			id = parts[1]
		}
	}
	if !youTubeID.MatchString(id) {
		return ""
	}
	return id
}

func renderYouTube(w *v1alpha1.Widget) (*v1alpha1.EmbedView, error) {
	id := youTubeVideoID(w.ContentString())
	if id == "" {
		return nil, malformed(w, "content is not a YouTube video id or URL", errEmptyContent)
	}
	return &v1alpha1.EmbedView{
		URL:   fmt.Sprintf("https://www.youtube.com/embed/%s?autoplay=1&loop=1&playlist=%s", id, id),
		Allow: youTubeAllow,
	}, nil
}

func renderIframe(w *v1alpha1.Widget) (*v1alpha1.EmbedView, error) {
	u := contentURL(w)
	if u == "" {
		return nil, malformed(w, "missing page URL", errEmptyContent)
	}
	parsed, err := url.Parse(u)
	if err != nil {
		return nil, malformed(w, "invalid page URL", err)
	}
	if parsed.Scheme != "" && parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, malformed(w, "unsupported page URL scheme "+parsed.Scheme, nil)
	}
	return &v1alpha1.EmbedView{URL: u}, nil
}

// WeatherCity returns the city a weather widget asks for, or "" for the
// default city. Unreadable content falls back to the default city.
func WeatherCity(w *v1alpha1.Widget) string {
	var content struct {
		City string `json:"city"`
	}
	if len(bytes.TrimSpace(w.Content)) > 0 {
		_ = w.DecodeContent(&content)
	}
	return strings.TrimSpace(content.City)
}

// WeatherCities returns the distinct cities named by the weather widgets
// in ws
func WeatherCities(ws []v1alpha1.Widget) []string {
	var cities []string
	for i := range ws {
		if ws[i].Type != v1alpha1.WidgetTypeWeather {
			continue
		}
		if city := WeatherCity(&ws[i]); city != "" && !slices.Contains(cities, city) {
			cities = append(cities, city)
		}
	}
	return cities
}

func (r *Renderer) renderWeather(w *v1alpha1.Widget) *v1alpha1.WeatherView {
	reading := r.enrichment.Weather(WeatherCity(w))
	return &v1alpha1.WeatherView{
		City:        reading.City,
		Temperature: reading.Temperature(),
		Icon:        reading.Icon,
	}
}

type listEntry struct {
	Nom         string `json:"nom"`
	Name        string `json:"name"`
	Info        string `json:"info"`
	Description string `json:"description"`
}

// UnmarshalJSON accepts a bare string as the item name. Other non-object
// entries decode empty and render with the default name.
func (e *listEntry) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		var name string
		if json.Unmarshal(data, &name) == nil {
			e.Name = name
		}
		return nil
	}
	type plain listEntry
	return json.Unmarshal(data, (*plain)(e))
}

func renderList(w *v1alpha1.Widget) (*v1alpha1.ListView, error) {
	var entries []listEntry
	if err := w.DecodeContent(&entries); err != nil {
		return nil, malformed(w, "content is not a list of items", err)
	}

	view := &v1alpha1.ListView{Items: make([]v1alpha1.ListItem, 0, len(entries))}
	for _, e := range entries {
		item := v1alpha1.ListItem{Name: firstNonEmpty(e.Nom, e.Name, "Item"), Info: firstNonEmpty(e.Info, e.Description)}
		view.Items = append(view.Items, item)
	}
	return view, nil
}

func renderCongratulations(w *v1alpha1.Widget) (*v1alpha1.CongratulationsView, error) {
	var content struct {
		Title   string `json:"title"`
		Message string `json:"message"`
	}
	raw := bytes.TrimSpace(w.Content)
	if len(raw) > 0 && !bytes.Equal(raw, []byte("null")) && !bytes.Equal(raw, []byte(`""`)) {
		if err := w.DecodeContent(&content); err != nil {
			return nil, malformed(w, "content is not a congratulations message", err)
		}
	}
	return &v1alpha1.CongratulationsView{
		Icon:    "🎉",
		Title:   firstNonEmpty(content.Title, w.Title),
		Message: firstNonEmpty(content.Message, congratulationsMessage),
	}, nil
}

func (r *Renderer) renderNews(w *v1alpha1.Widget, now time.Time) *v1alpha1.NewsView {
	view := &v1alpha1.NewsView{
		Title:    "📰 " + firstNonEmpty(w.Title, "News"),
		Subtitle: "Latest headlines",
	}

	headlines := r.enrichment.Headlines()
	if len(headlines) == 0 {
		view.Loading = true
		return view
	}

	n := min(len(headlines), MaxNewsItems)
	view.Headlines = make([]v1alpha1.Headline, 0, n)
	for _, h := range headlines[:n] {
		h.Title = firstNonEmpty(h.Title, "Untitled")
		h.Description = truncate(firstNonEmpty(h.Description, "No description available"), maxDescription)
		h.Source = firstNonEmpty(h.Source, "Unknown source")
		if h.PublishedAt != nil {
			h.Age = FormatAge(*h.PublishedAt, now)
		}
		view.Headlines = append(view.Headlines, h)
	}
	return view
}

func renderPresentation(w *v1alpha1.Widget) (*v1alpha1.DocumentView, error) {
	u := contentURL(w)
	if u == "" {
		return nil, malformed(w, "missing presentation URL", errEmptyContent)
	}
	return &v1alpha1.DocumentView{
		Icon:  "📊",
		Title: w.Title,
		URL:   u,
		Label: presentationLabel,
	}, nil
}

// FormatAge describes how long ago t was, relative to now
func FormatAge(t, now time.Time) string {
	d := now.Sub(t)
	if d < 0 {
		d = 0
	}
	switch {
	case d < time.Hour:
		return fmt.Sprintf("%d min ago", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d/time.Hour))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d/(24*time.Hour)))
	default:
		return t.In(now.Location()).Format("Jan 2")
	}
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:n])) + "..."
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
