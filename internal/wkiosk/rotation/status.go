package rotation

import (
	"github.com/wrale/wrale-kiosk/api/types/v1alpha1"
)

// Status returns the latest published status. It is safe to call from
// any goroutine.
func (e *Engine) Status() v1alpha1.DisplayStatus {
	return *e.status.Load()
}

// Ready reports whether content has been loaded at least once
func (e *Engine) Ready() bool {
	return e.status.Load().Loaded
}

func (e *Engine) publishStatus() {
	now := e.now()
	s := &v1alpha1.DisplayStatus{
		TypeMeta: v1alpha1.TypeMeta{
			Kind:       "DisplayStatus",
			APIVersion: v1alpha1.APIVersion,
		},
		DisplayID:         e.cfg.DisplayID.String(),
		State:             e.state(),
		Loaded:            e.content.Loaded(),
		EligibleCount:     len(e.seq),
		AnnouncementCount: len(e.ticker.Items),
		LastFetchError:    e.lastError,
		UpdatedAt:         now,
	}

	if at, ok := e.content.FetchedAt(); ok {
		s.LastRefresh = &at
	}

	if t := e.current; t != nil {
		shownAt, due := t.shownAt, t.due
		s.CurrentWidgetID = t.widget.ID
		s.CurrentWidgetType = t.widget.Type
		s.CurrentTitle = t.widget.Title
		s.CurrentIndex = e.index
		s.ShownAt = &shownAt
		s.NextAdvanceAt = &due
	}

	e.status.Store(s)
}

func (e *Engine) state() v1alpha1.RotationState {
	switch {
	case !e.running:
		return v1alpha1.RotationStopped
	case e.current != nil:
		return v1alpha1.RotationShowing
	default:
		return v1alpha1.RotationEmpty
	}
}
