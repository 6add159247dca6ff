// Package rotation drives which widget is on screen.
//
// The Engine is a state machine with two states. While Empty it shows a
// placeholder. While Showing it owns exactly one outer timer, armed for the
// current widget's dwell time, and at most one inner timer for widgets that
// animate within their tenure. Every timer callback carries the generation
// of the tenure that armed it and does nothing once that tenure has ended.
//
// All Engine methods run on the scheduler's timeline and must not be
// called concurrently. Status may be called from any goroutine.
package rotation

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/wrale/wrale-kiosk/api/types/v1alpha1"
	"github.com/wrale/wrale-kiosk/internal/wkiosk/enrichment"
	werrors "github.com/wrale/wrale-kiosk/internal/wkiosk/errors"
	"github.com/wrale/wrale-kiosk/internal/wkiosk/metrics"
	"github.com/wrale/wrale-kiosk/internal/wkiosk/render"
	"github.com/wrale/wrale-kiosk/internal/wkiosk/scheduler"
)

// Default refresh intervals
const (
	DefaultWidgetRefresh       = 30 * time.Second
	DefaultAnnouncementRefresh = 60 * time.Second
	DefaultWeatherRefresh      = 10 * time.Minute
	DefaultNewsRefresh         = 15 * time.Minute
)

// Surface receives presentation updates
type Surface interface {
	ShowFrame(f v1alpha1.Frame)
	ShowSlide(s v1alpha1.SlideStep)
	ShowTicker(t v1alpha1.TickerView)
	ShowHeader(h v1alpha1.HeaderView)
}

// ContentCache is the engine's view of the content cache
type ContentCache interface {
	RefreshWidgets(ctx context.Context) error
	RefreshAnnouncements(ctx context.Context) error
	Restore(ctx context.Context) error
	Widgets() []v1alpha1.Widget
	EligibleWidgets(now time.Time) []v1alpha1.Widget
	EligibleAnnouncements(now time.Time) []v1alpha1.Announcement
	Loaded() bool
	FetchedAt() (time.Time, bool)
}

// Enricher refreshes the weather and news readings used by widgets
type Enricher interface {
	render.Enrichment
	RefreshWeather(ctx context.Context) error
	RefreshNews(ctx context.Context) error
	RetainCities(cities []string)
}

// PlayRecorder receives one event per finished widget tenure
type PlayRecorder interface {
	Record(e v1alpha1.PlayEvent)
}

// Config holds engine timing
type Config struct {
	// DisplayID identifies this display in play events and status
	DisplayID uuid.UUID
	// Location is the local time zone used for schedules
	Location *time.Location

	WidgetRefresh       time.Duration
	AnnouncementRefresh time.Duration
	WeatherRefresh      time.Duration
	NewsRefresh         time.Duration
}

func (c *Config) setDefaults() {
	if c.Location == nil {
		c.Location = time.Local
	}
	if c.WidgetRefresh <= 0 {
		c.WidgetRefresh = DefaultWidgetRefresh
	}
	if c.AnnouncementRefresh <= 0 {
		c.AnnouncementRefresh = DefaultAnnouncementRefresh
	}
	if c.WeatherRefresh <= 0 {
		c.WeatherRefresh = DefaultWeatherRefresh
	}
	if c.NewsRefresh <= 0 {
		c.NewsRefresh = DefaultNewsRefresh
	}
}

// Option configures an Engine
type Option func(*Engine)

// WithEnrichment enables weather and news refreshes
func WithEnrichment(e Enricher) Option {
	return func(eng *Engine) {
		eng.enrich = e
	}
}

// WithPlayRecorder records a play event for every tenure
func WithPlayRecorder(r PlayRecorder) Option {
	return func(eng *Engine) {
		eng.plays = r
	}
}

// tenure is the Showing state
type tenure struct {
	widget  v1alpha1.Widget
	frame   v1alpha1.Frame
	err     error
	shownAt time.Time
	due     time.Time

	animation *render.Animation
	visible   int
}

// Engine is the rotation state machine
type Engine struct {
	cfg      Config
	sched    scheduler.Scheduler
	content  ContentCache
	renderer *render.Renderer
	surface  Surface
	enrich   Enricher
	plays    PlayRecorder
	logger   *slog.Logger

	running  bool
	periodic []scheduler.Task

	seq     []v1alpha1.Widget
	index   int
	current *tenure
	// placeholder is the kind of placeholder frame on screen while Empty
	placeholder v1alpha1.FrameKind

	gen   uint64
	outer scheduler.Task
	inner scheduler.Task

	ticker      v1alpha1.TickerView
	tickerShown bool

	busy      map[string]bool
	lastError string

	status atomic.Pointer[v1alpha1.DisplayStatus]
}

// NewEngine creates a stopped engine
func NewEngine(cfg Config, sched scheduler.Scheduler, content ContentCache, renderer *render.Renderer, surface Surface, logger *slog.Logger, opts ...Option) *Engine {
	cfg.setDefaults()
	e := &Engine{
		cfg:      cfg,
		sched:    sched,
		content:  content,
		renderer: renderer,
		surface:  surface,
		logger:   logger,
		busy:     make(map[string]bool),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.publishStatus()
	return e
}

// Start restores the last snapshot, then performs an initial refresh of
// every source, and schedules periodic refreshes. Starting twice does
// nothing.
func (e *Engine) Start() {
	if e.running {
		return
	}
	e.running = true
	e.logger.Info("rotation engine starting",
		"displayId", e.cfg.DisplayID,
		"widgetRefresh", e.cfg.WidgetRefresh,
		"announcementRefresh", e.cfg.AnnouncementRefresh,
	)

	// The first fetches wait for the restore so a fresh refresh is never
	// overwritten by older snapshot content.
	e.sched.Go(func(ctx context.Context) {
		if err := e.content.Restore(ctx); err != nil {
			e.logger.Warn("failed to restore content snapshot", "error", err)
		}
	}, func() {
		if !e.running {
			return
		}
		if e.content.Loaded() {
			e.reconcile()
			e.refreshTicker()
		}
		e.refreshWidgets()
		e.refreshAnnouncements()
		if e.enrich != nil {
			e.refreshWeather()
			e.refreshNews()
		}
	})

	e.periodic = append(e.periodic,
		e.sched.Every(e.cfg.WidgetRefresh, e.refreshWidgets),
		e.sched.Every(e.cfg.AnnouncementRefresh, e.refreshAnnouncements),
	)
	if e.enrich != nil {
		e.periodic = append(e.periodic,
			e.sched.Every(e.cfg.WeatherRefresh, e.refreshWeather),
			e.sched.Every(e.cfg.NewsRefresh, e.refreshNews),
		)
	}
	e.publishStatus()
}

// Stop cancels every timer and ends the current tenure. Stopping twice
// does nothing.
func (e *Engine) Stop() {
	if !e.running {
		return
	}
	e.running = false

	for _, t := range e.periodic {
		t.Stop()
	}
	e.periodic = nil

	e.endTenure(e.now())
	e.gen++
	e.placeholder = ""
	e.publishStatus()
	e.logger.Info("rotation engine stopped", "displayId", e.cfg.DisplayID)
}

func (e *Engine) now() time.Time {
	return e.sched.Now().In(e.cfg.Location)
}

// reconcile applies the current eligible sequence
func (e *Engine) reconcile() {
	now := e.now()
	seq := e.content.EligibleWidgets(now)
	all := e.content.Widgets()
	e.renderer.Retain(all)
	if e.enrich != nil {
		e.enrich.RetainCities(render.WeatherCities(all))
	}
	metrics.EligibleWidgets.Set(float64(len(seq)))

	if len(seq) == 0 {
		e.seq = nil
		e.index = 0
		e.showEmpty(now)
		return
	}

	if e.current == nil {
		e.seq = seq
		e.show(0, metrics.ReasonRefresh)
		return
	}

	for i := range seq {
		if seq[i].ID == e.current.widget.ID {
			// The tenure continues with its remaining dwell time
			e.seq = seq
			e.index = i
			e.current.frame.Index = i
			e.current.frame.Count = len(seq)
			e.publishStatus()
			return
		}
	}

	e.logger.Debug("current widget no longer eligible",
		"widgetId", e.current.widget.ID,
		"eligible", len(seq),
	)
	e.seq = seq
	e.show(0, metrics.ReasonRefresh)
}

// show starts a tenure for seq[i]
func (e *Engine) show(i int, reason string) {
	now := e.now()
	e.endTenure(now)

	e.gen++
	gen := e.gen
	e.index = i
	e.placeholder = ""

	w := e.seq[i]
	res := e.renderer.Render(&w, now)
	res.Frame.Index = i
	res.Frame.Count = len(e.seq)

	dwell := w.Dwell()
	t := &tenure{
		widget:    w,
		frame:     res.Frame,
		err:       res.Err,
		shownAt:   now,
		due:       now.Add(dwell),
		animation: res.Animation,
	}
	e.current = t

	e.outer = e.sched.AfterFunc(dwell, func() { e.advance(gen) })
	if t.animation != nil {
		e.armInner(gen)
	}

	e.surface.ShowFrame(res.Frame)
	metrics.RecordAdvance(reason)
	metrics.RecordRender(string(w.Type), res.Err == nil)
	e.logger.Debug("showing widget",
		"widgetId", w.ID,
		"type", w.Type,
		"index", i,
		"count", len(e.seq),
		"dwell", dwell,
	)
	e.publishStatus()
}

// advance is the outer timer callback
func (e *Engine) advance(gen uint64) {
	if !e.running || gen != e.gen || len(e.seq) == 0 {
		return
	}
	e.outer = nil
	e.show((e.index+1)%len(e.seq), metrics.ReasonTimer)
}

func (e *Engine) armInner(gen uint64) {
	e.inner = e.sched.AfterFunc(e.current.animation.Interval, func() { e.step(gen) })
}

// step is the inner timer callback
func (e *Engine) step(gen uint64) {
	if !e.running || gen != e.gen || e.current == nil || e.current.animation == nil {
		return
	}
	e.inner = nil

	t := e.current
	t.visible = t.animation.Next(t.visible)
	e.surface.ShowSlide(v1alpha1.SlideStep{FrameID: t.frame.ID, Visible: t.visible})
	metrics.SlideStepsTotal.Inc()

	e.armInner(gen)
}

// endTenure tears down the current tenure's timers and records it
func (e *Engine) endTenure(now time.Time) {
	if e.inner != nil {
		e.inner.Stop()
		e.inner = nil
	}
	if e.outer != nil {
		e.outer.Stop()
		e.outer = nil
	}
	if e.current == nil {
		return
	}

	t := e.current
	e.current = nil
	if e.plays == nil {
		return
	}

	ev := v1alpha1.PlayEvent{
		ID:         uuid.New(),
		DisplayID:  e.cfg.DisplayID,
		Type:       v1alpha1.PlayEventVisible,
		WidgetID:   t.widget.ID,
		WidgetType: t.widget.Type,
		Timestamp:  t.shownAt,
		Duration:   now.Sub(t.shownAt),
	}
	if t.err != nil {
		ev.Type = v1alpha1.PlayEventError
		ev.Error = &v1alpha1.PlayEventFailure{
			Code:    werrors.CodeOf(t.err),
			Message: t.err.Error(),
		}
	}
	e.plays.Record(ev)
}

// showEmpty enters the Empty state. The placeholder distinguishes a
// display that never loaded content from one with nothing eligible.
func (e *Engine) showEmpty(now time.Time) {
	offline := !e.content.Loaded()
	kind := v1alpha1.FrameEmpty
	if offline {
		kind = v1alpha1.FrameOffline
	}

	wasShowing := e.current != nil
	e.endTenure(now)
	if wasShowing {
		e.gen++
	}
	if e.placeholder == kind {
		e.publishStatus()
		return
	}

	e.placeholder = kind
	e.surface.ShowFrame(render.EmptyFrame(now, offline))
	e.logger.Info("no eligible content", "offline", offline)
	e.publishStatus()
}

// header returns the current header readout
func (e *Engine) header() v1alpha1.HeaderView {
	var w enrichment.Weather
	if e.enrich != nil {
		w = e.enrich.Weather("")
	}
	return render.Header(w, e.now())
}
