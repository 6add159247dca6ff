// Package schedule decides whether widgets and announcements may be shown at an instant.
//
// All functions are pure. Times of day are compared as "HH:MM" strings in
// the location of the instant passed in, so callers convert now to the
// display's time zone first. A window whose end is earlier than its start
// (for example 22:00 to 02:00) never matches.
package schedule

import (
	"slices"
	"strings"
	"time"

	"github.com/wrale/wrale-kiosk/api/types/v1alpha1"
)

const clockLayout = "15:04"

// IsEligible reports whether every present field of s is satisfied at now.
// A nil schedule is always eligible.
func IsEligible(s *v1alpha1.WidgetSchedule, now time.Time) bool {
	if s == nil {
		return true
	}
	if s.StartDate != nil && now.Before(*s.StartDate) {
		return false
	}
	if s.EndDate != nil && now.After(*s.EndDate) {
		return false
	}
	if len(s.DaysOfWeek) > 0 && !slices.Contains(s.DaysOfWeek, int(now.Weekday())) {
		return false
	}
	if s.StartTime != "" && s.EndTime != "" {
		clock := now.Format(clockLayout)
		if clock < s.StartTime || clock > s.EndTime {
			return false
		}
	}
	return true
}

// WidgetEligible reports whether w is active and inside its schedule
func WidgetEligible(w *v1alpha1.Widget, now time.Time) bool {
	return w.IsActive && IsEligible(w.Schedule, now)
}

// AnnouncementEligible reports whether a is active and inside its validity
// window. Both bounds are required; a record missing either is never shown.
func AnnouncementEligible(a *v1alpha1.Announcement, now time.Time) bool {
	if !a.IsActive || a.StartDate == nil || a.EndDate == nil {
		return false
	}
	return !now.Before(*a.StartDate) && !now.After(*a.EndDate)
}

// Describe renders a schedule for operators
func Describe(s *v1alpha1.WidgetSchedule) string {
	if s.IsZero() {
		return "Always"
	}

	var parts []string
	if s.StartDate != nil {
		parts = append(parts, "from "+s.StartDate.Format("2006-01-02"))
	}
	if s.EndDate != nil {
		parts = append(parts, "until "+s.EndDate.Format("2006-01-02"))
	}
	if len(s.DaysOfWeek) > 0 {
		days := make([]string, 0, len(s.DaysOfWeek))
		for _, d := range s.DaysOfWeek {
			if d >= 0 && d <= 6 {
				days = append(days, time.Weekday(d).String()[:3])
			}
		}
		parts = append(parts, "on "+strings.Join(days, ","))
	}
	if s.StartTime != "" && s.EndTime != "" {
		parts = append(parts, "at "+s.StartTime+"-"+s.EndTime)
	}
	if len(parts) == 0 {
		return "Always"
	}
	return strings.Join(parts, " ")
}
