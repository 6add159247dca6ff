// Package ticker builds the scrolling announcement banner
package ticker

import (
	"time"

	"github.com/wrale/wrale-kiosk/api/types/v1alpha1"
)

var icons = map[v1alpha1.AnnouncementType]string{
	v1alpha1.AnnouncementUrgent:          "🚨",
	v1alpha1.AnnouncementInfo:            "ℹ️",
	v1alpha1.AnnouncementEvent:           "📅",
	v1alpha1.AnnouncementCongratulations: "🎉",
}

// Icon returns the banner icon for an announcement type
func Icon(t v1alpha1.AnnouncementType) string {
	if icon, ok := icons[t]; ok {
		return icon
	}
	return "ℹ️"
}

// Build returns the banner for the given eligible announcements, in the
// order given. An empty set hides the banner.
func Build(announcements []v1alpha1.Announcement, now time.Time) v1alpha1.TickerView {
	view := v1alpha1.TickerView{UpdatedAt: now}
	if len(announcements) == 0 {
		return view
	}

	view.Visible = true
	view.Items = make([]v1alpha1.TickerItem, 0, len(announcements))
	for _, a := range announcements {
		view.Items = append(view.Items, v1alpha1.TickerItem{
			ID:       a.ID,
			Type:     a.Type,
			Icon:     Icon(a.Type),
			Title:    a.Title,
			Content:  a.Content,
			Urgent:   a.Type == v1alpha1.AnnouncementUrgent,
			Priority: a.Priority,
		})
	}
	return view
}

// Equal reports whether two banners show the same items
func Equal(a, b v1alpha1.TickerView) bool {
	if a.Visible != b.Visible || len(a.Items) != len(b.Items) {
		return false
	}
	for i := range a.Items {
		if a.Items[i] != b.Items[i] {
			return false
		}
	}
	return true
}
