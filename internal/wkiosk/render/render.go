// Package render turns widgets into frames for the kiosk surface.
//
// Rendering is pure with respect to the display: a Result describes what
// to show and, for animated widgets, how the caller should animate it.
// The renderer never arms timers itself.
package render

import (
	"log/slog"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"github.com/wrale/wrale-kiosk/api/types/v1alpha1"
	"github.com/wrale/wrale-kiosk/internal/wkiosk/enrichment"
	werrors "github.com/wrale/wrale-kiosk/internal/wkiosk/errors"
)

// DefaultSlideInterval is how long each slideshow image stays visible
const DefaultSlideInterval = 3 * time.Second

// Enrichment supplies weather and news readings to widgets that show them
type Enrichment interface {
	Weather(city string) enrichment.Weather
	Headlines() []v1alpha1.Headline
}

// Animation describes a nested animation inside one widget tenure
type Animation struct {
	// Interval is the time between steps
	Interval time.Duration
	// Count is the number of positions cycled through
	Count int
}

// Next returns the position after i
func (a *Animation) Next(i int) int {
	if a.Count <= 0 {
		return 0
	}
	return (i + 1) % a.Count
}

// Result is a rendered widget
type Result struct {
	Frame v1alpha1.Frame
	// Animation is set when the frame needs an inner timer
	Animation *Animation
	// Err is set when the frame is an error placeholder
	Err error
}

type failure struct {
	fingerprint uint64
	err         error
}

// Renderer renders widgets. It is not safe for concurrent use.
type Renderer struct {
	enrichment    Enrichment
	slideInterval time.Duration
	logger        *slog.Logger

	failures map[string]failure
}

// Option configures a Renderer
type Option func(*Renderer)

// WithSlideInterval overrides the slideshow sub-interval
func WithSlideInterval(d time.Duration) Option {
	return func(r *Renderer) {
		if d > 0 {
			r.slideInterval = d
		}
	}
}

// New creates a renderer
func New(enrich Enrichment, logger *slog.Logger, opts ...Option) *Renderer {
	r := &Renderer{
		enrichment:    enrich,
		slideInterval: DefaultSlideInterval,
		logger:        logger,
		failures:      make(map[string]failure),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SlideInterval returns the slideshow sub-interval
func (r *Renderer) SlideInterval() time.Duration {
	return r.slideInterval
}

// Render renders w for a tenure starting at now. Content that failed to
// render before is not parsed again until it changes.
func (r *Renderer) Render(w *v1alpha1.Widget, now time.Time) Result {
	base := v1alpha1.Frame{
		ID:         uuid.NewString(),
		Kind:       v1alpha1.FrameWidget,
		WidgetID:   w.ID,
		WidgetType: w.Type,
		Title:      w.Title,
		Duration:   int(w.Dwell() / time.Second),
		ShownAt:    now,
		Style:      w.Settings,
	}

	fp := fingerprint(w)
	if f, ok := r.failures[w.ID]; ok && f.fingerprint == fp {
		return errorResult(base, f.err)
	}

	res, err := r.dispatch(w, base, now)
	if err != nil {
		r.failures[w.ID] = failure{fingerprint: fp, err: err}
		r.logger.Warn("widget failed to render",
			"widgetId", w.ID,
			"type", w.Type,
			"code", werrors.CodeOf(err),
			"error", err,
		)
		return errorResult(base, err)
	}

	delete(r.failures, w.ID)
	return res
}

// Retain drops remembered failures for widgets not in ws
func (r *Renderer) Retain(ws []v1alpha1.Widget) {
	if len(r.failures) == 0 {
		return
	}
	keep := make(map[string]struct{}, len(ws))
	for i := range ws {
		keep[ws[i].ID] = struct{}{}
	}
	for id := range r.failures {
		if _, ok := keep[id]; !ok {
			delete(r.failures, id)
		}
	}
}

func (r *Renderer) dispatch(w *v1alpha1.Widget, f v1alpha1.Frame, now time.Time) (Result, error) {
	var (
		anim *Animation
		err  error
	)

	switch w.Type {
	case v1alpha1.WidgetTypeImage:
		f.Image, err = renderImage(w)
	case v1alpha1.WidgetTypeSlideshow:
		f.Slideshow, anim, err = r.renderSlideshow(w)
	case v1alpha1.WidgetTypeVideo:
		f.Video, err = renderVideo(w)
	case v1alpha1.WidgetTypeWeather:
		f.Weather = r.renderWeather(w)
	case v1alpha1.WidgetTypeYouTube:
		f.Embed, err = renderYouTube(w)
	case v1alpha1.WidgetTypeIframe:
		f.Embed, err = renderIframe(w)
	case v1alpha1.WidgetTypeList:
		f.List, err = renderList(w)
	case v1alpha1.WidgetTypeCongratulations:
		f.Congratulations, err = renderCongratulations(w)
	case v1alpha1.WidgetTypeNews:
		f.News = r.renderNews(w, now)
	case v1alpha1.WidgetTypePresentation:
		f.Document, err = renderPresentation(w)
	default:
		err = werrors.NewUnknownTypeError("Renderer.Render", string(w.Type))
	}
	if err != nil {
		return Result{}, err
	}
	return Result{Frame: f, Animation: anim}, nil
}

// fingerprint identifies the renderable part of a widget
func fingerprint(w *v1alpha1.Widget) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(string(w.Type))
	_, _ = d.Write([]byte{0})
	_, _ = d.Write(w.Content)
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(w.FileURL)
	return d.Sum64()
}

func errorResult(f v1alpha1.Frame, err error) Result {
	f.Kind = v1alpha1.FrameError
	f.Notice = &v1alpha1.NoticeView{
		Icon:     "⚠️",
		Headline: errorHeadline(err),
		Detail:   err.Error(),
		Code:     werrors.CodeOf(err),
	}
	return Result{Frame: f, Err: err}
}

func errorHeadline(err error) string {
	switch {
	case werrors.IsUnknownType(err):
		return "Unknown widget type"
	case werrors.IsMalformedContent(err):
		return "This content cannot be displayed"
	default:
		return "Display error"
	}
}

// EmptyFrame is shown while no widget is eligible. Offline is used when no
// content has ever been loaded because the Content Service is unreachable.
func EmptyFrame(now time.Time, offline bool) v1alpha1.Frame {
	if offline {
		return v1alpha1.Frame{
			ID:      uuid.NewString(),
			Kind:    v1alpha1.FrameOffline,
			ShownAt: now,
			Notice: &v1alpha1.NoticeView{
				Icon:     "⚠️",
				Headline: "Unable to load content",
				Detail:   "Check the connection to the content service",
				Code:     werrors.CodeFetchFailed,
			},
		}
	}
	return v1alpha1.Frame{
		ID:      uuid.NewString(),
		Kind:    v1alpha1.FrameEmpty,
		ShownAt: now,
		Notice: &v1alpha1.NoticeView{
			Icon:     "📺",
			Headline: "No content available",
			Detail:   "Add widgets from the administration panel",
		},
	}
}

// Header renders the header weather readout
func Header(w enrichment.Weather, now time.Time) v1alpha1.HeaderView {
	return v1alpha1.HeaderView{
		City:        w.City,
		Temperature: w.Temperature(),
		Icon:        w.Icon,
		UpdatedAt:   now,
	}
}
