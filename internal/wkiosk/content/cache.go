package content

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wrale/wrale-kiosk/api/types/v1alpha1"
	werrors "github.com/wrale/wrale-kiosk/internal/wkiosk/errors"
	"github.com/wrale/wrale-kiosk/internal/wkiosk/schedule"
)

type widgetList struct {
	items     []v1alpha1.Widget
	fetchedAt time.Time
}

type announcementList struct {
	items     []v1alpha1.Announcement
	fetchedAt time.Time
}

// Cache holds the last successfully fetched content
type Cache struct {
	source Source
	store  SnapshotStore
	logger *slog.Logger
	clock  func() time.Time

	widgets       atomic.Pointer[widgetList]
	announcements atomic.Pointer[announcementList]

	// persistMu serializes snapshot writes from concurrent refreshes
	persistMu sync.Mutex
}

// Option configures a Cache
type Option func(*Cache)

// WithSnapshotStore persists every successful refresh to store
func WithSnapshotStore(store SnapshotStore) Option {
	return func(c *Cache) {
		c.store = store
	}
}

// WithClock overrides the clock used to stamp refreshes
func WithClock(clock func() time.Time) Option {
	return func(c *Cache) {
		c.clock = clock
	}
}

// NewCache creates an empty cache reading from source
func NewCache(source Source, logger *slog.Logger, opts ...Option) *Cache {
	c := &Cache{
		source: source,
		logger: logger,
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Refresh refreshes widgets and announcements
func (c *Cache) Refresh(ctx context.Context) error {
	return errors.Join(c.RefreshWidgets(ctx), c.RefreshAnnouncements(ctx))
}

// RefreshWidgets replaces the cached widget list with the Content
// Service's current list. On failure the previous list is kept.
func (c *Cache) RefreshWidgets(ctx context.Context) error {
	const op = "Cache.RefreshWidgets"

	raw, err := c.source.FetchWidgets(ctx)
	if err != nil {
		c.logger.Warn("widget refresh failed, keeping last good content",
			"error", err,
			"cached", len(c.Widgets()),
		)
		return werrors.NewFetchError(op, "failed to fetch widgets", err)
	}

	items := c.decodeWidgets(raw)
	c.widgets.Store(&widgetList{items: items, fetchedAt: c.clock()})
	c.logger.Debug("widgets refreshed", "count", len(items))

	c.persist(ctx)
	return nil
}

// RefreshAnnouncements replaces the cached announcement list
func (c *Cache) RefreshAnnouncements(ctx context.Context) error {
	const op = "Cache.RefreshAnnouncements"

	raw, err := c.source.FetchAnnouncements(ctx)
	if err != nil {
		c.logger.Warn("announcement refresh failed, keeping last good content",
			"error", err,
		)
		return werrors.NewFetchError(op, "failed to fetch announcements", err)
	}

	items := c.decodeAnnouncements(raw)
	c.announcements.Store(&announcementList{items: items, fetchedAt: c.clock()})
	c.logger.Debug("announcements refreshed", "count", len(items))

	c.persist(ctx)
	return nil
}

// Widgets returns every cached widget in rotation order
func (c *Cache) Widgets() []v1alpha1.Widget {
	if l := c.widgets.Load(); l != nil {
		return slices.Clone(l.items)
	}
	return nil
}

// Announcements returns every cached announcement
func (c *Cache) Announcements() []v1alpha1.Announcement {
	if l := c.announcements.Load(); l != nil {
		return slices.Clone(l.items)
	}
	return nil
}

// EligibleWidgets returns the widgets that may be shown at now, ordered by
// (order, createdAt).
func (c *Cache) EligibleWidgets(now time.Time) []v1alpha1.Widget {
	l := c.widgets.Load()
	if l == nil {
		return nil
	}
	return FilterWidgets(l.items, now)
}

// EligibleAnnouncements returns the announcements valid at now, highest
// priority first.
func (c *Cache) EligibleAnnouncements(now time.Time) []v1alpha1.Announcement {
	l := c.announcements.Load()
	if l == nil {
		return nil
	}
	var out []v1alpha1.Announcement
	for i := range l.items {
		if schedule.AnnouncementEligible(&l.items[i], now) {
			out = append(out, l.items[i])
		}
	}
	return out
}

// Loaded reports whether a widget list has ever been fetched or restored
func (c *Cache) Loaded() bool {
	return c.widgets.Load() != nil
}

// FetchedAt returns when the widget list was last replaced
func (c *Cache) FetchedAt() (time.Time, bool) {
	if l := c.widgets.Load(); l != nil {
		return l.fetchedAt, true
	}
	return time.Time{}, false
}

// Restore seeds each list that has not been loaded yet from the snapshot
// store. A list already fetched from the Content Service is left alone.
func (c *Cache) Restore(ctx context.Context) error {
	const op = "Cache.Restore"

	if c.store == nil || (c.widgets.Load() != nil && c.announcements.Load() != nil) {
		return nil
	}

	snap, err := c.store.Load(ctx)
	if err != nil {
		if werrors.IsNotFound(err) {
			return nil
		}
		return werrors.NewError(werrors.CodeInternal, "failed to load snapshot", op, err)
	}

	widgets := slices.Clone(snap.Widgets)
	SortWidgets(widgets)
	restoredWidgets := c.widgets.CompareAndSwap(nil, &widgetList{items: widgets, fetchedAt: snap.SavedAt})

	announcements := slices.Clone(snap.Announcements)
	sortAnnouncements(announcements)
	restoredAnnouncements := c.announcements.CompareAndSwap(nil, &announcementList{items: announcements, fetchedAt: snap.SavedAt})

	c.logger.Info("restored content snapshot",
		"widgets", restoredWidgets,
		"announcements", restoredAnnouncements,
		"savedAt", snap.SavedAt,
	)
	return nil
}

// persist saves both lists. A list that has never been loaded keeps the
// copy already in the store so an early refresh cannot erase it.
func (c *Cache) persist(ctx context.Context) {
	if c.store == nil {
		return
	}
	c.persistMu.Lock()
	defer c.persistMu.Unlock()

	widgets, announcements := c.widgets.Load(), c.announcements.Load()
	snap := &Snapshot{SavedAt: c.clock()}
	if widgets != nil {
		snap.Widgets = slices.Clone(widgets.items)
	}
	if announcements != nil {
		snap.Announcements = slices.Clone(announcements.items)
	}

	if widgets == nil || announcements == nil {
		prev, err := c.store.Load(ctx)
		switch {
		case err == nil:
			if widgets == nil {
				snap.Widgets = prev.Widgets
			}
			if announcements == nil {
				snap.Announcements = prev.Announcements
			}
		case !werrors.IsNotFound(err):
			c.logger.Warn("failed to read content snapshot, skipping save", "error", err)
			return
		}
	}

	if err := c.store.Save(ctx, snap); err != nil {
		c.logger.Warn("failed to save content snapshot", "error", err)
	}
}

func (c *Cache) decodeWidgets(raw []json.RawMessage) []v1alpha1.Widget {
	items := make([]v1alpha1.Widget, 0, len(raw))
	for i, r := range raw {
		var w v1alpha1.Widget
		if err := json.Unmarshal(r, &w); err != nil {
			c.logger.Warn("skipping undecodable widget record", "index", i, "error", err)
			continue
		}
		if w.ID == "" {
			c.logger.Warn("skipping widget record without id", "index", i)
			continue
		}
		items = append(items, w)
	}
	SortWidgets(items)
	return items
}

func (c *Cache) decodeAnnouncements(raw []json.RawMessage) []v1alpha1.Announcement {
	items := make([]v1alpha1.Announcement, 0, len(raw))
	for i, r := range raw {
		var a v1alpha1.Announcement
		if err := json.Unmarshal(r, &a); err != nil {
			c.logger.Warn("skipping undecodable announcement record", "index", i, "error", err)
			continue
		}
		items = append(items, a)
	}
	sortAnnouncements(items)
	return items
}

// SortWidgets orders widgets by order, then creation time
func SortWidgets(items []v1alpha1.Widget) {
	slices.SortStableFunc(items, func(a, b v1alpha1.Widget) int {
		if c := cmp.Compare(a.Order, b.Order); c != 0 {
			return c
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
}

// FilterWidgets returns the eligible widgets of a sorted list
func FilterWidgets(items []v1alpha1.Widget, now time.Time) []v1alpha1.Widget {
	var out []v1alpha1.Widget
	for i := range items {
		if schedule.WidgetEligible(&items[i], now) {
			out = append(out, items[i])
		}
	}
	return out
}

func sortAnnouncements(items []v1alpha1.Announcement) {
	slices.SortStableFunc(items, func(a, b v1alpha1.Announcement) int {
		return cmp.Compare(b.Priority, a.Priority)
	})
}
