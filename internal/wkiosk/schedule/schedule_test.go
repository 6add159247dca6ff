package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wrale/wrale-kiosk/api/types/v1alpha1"
)

// 2024-06-03 is a Monday
func at(day, hour, min int) time.Time {
	return time.Date(2024, time.June, day, hour, min, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time { return &t }

func TestIsEligible(t *testing.T) {
	weekdays := []int{1, 2, 3, 4, 5}

	tests := []struct {
		name     string
		schedule *v1alpha1.WidgetSchedule
		now      time.Time
		want     bool
	}{
		{name: "nil schedule", schedule: nil, now: at(3, 12, 0), want: true},
		{name: "empty schedule", schedule: &v1alpha1.WidgetSchedule{}, now: at(9, 3, 0), want: true},
		{name: "before start", schedule: &v1alpha1.WidgetSchedule{StartDate: ptr(at(4, 0, 0))}, now: at(3, 23, 59), want: false},
		{name: "at start", schedule: &v1alpha1.WidgetSchedule{StartDate: ptr(at(4, 0, 0))}, now: at(4, 0, 0), want: true},
		{name: "at end", schedule: &v1alpha1.WidgetSchedule{EndDate: ptr(at(4, 0, 0))}, now: at(4, 0, 0), want: true},
		{name: "after end", schedule: &v1alpha1.WidgetSchedule{EndDate: ptr(at(4, 0, 0))}, now: at(4, 0, 1), want: false},
		{name: "weekday monday", schedule: &v1alpha1.WidgetSchedule{DaysOfWeek: weekdays}, now: at(3, 8, 0), want: true},
		{name: "weekday friday", schedule: &v1alpha1.WidgetSchedule{DaysOfWeek: weekdays}, now: at(7, 8, 0), want: true},
		{name: "weekday saturday", schedule: &v1alpha1.WidgetSchedule{DaysOfWeek: weekdays}, now: at(8, 8, 0), want: false},
		{name: "weekday sunday", schedule: &v1alpha1.WidgetSchedule{DaysOfWeek: weekdays}, now: at(9, 8, 0), want: false},
		{
			name:     "weekday rule ignores time fields",
			schedule: &v1alpha1.WidgetSchedule{DaysOfWeek: weekdays, StartTime: "00:00", EndTime: "23:59"},
			now:      at(8, 12, 0),
			want:     false,
		},
		{name: "inside window", schedule: &v1alpha1.WidgetSchedule{StartTime: "09:00", EndTime: "17:00"}, now: at(3, 12, 30), want: true},
		{name: "window start inclusive", schedule: &v1alpha1.WidgetSchedule{StartTime: "09:00", EndTime: "17:00"}, now: at(3, 9, 0), want: true},
		{name: "window end inclusive", schedule: &v1alpha1.WidgetSchedule{StartTime: "09:00", EndTime: "17:00"}, now: at(3, 17, 0), want: true},
		{name: "after window", schedule: &v1alpha1.WidgetSchedule{StartTime: "09:00", EndTime: "17:00"}, now: at(3, 17, 1), want: false},
		{name: "only start time", schedule: &v1alpha1.WidgetSchedule{StartTime: "09:00"}, now: at(3, 3, 0), want: true},
		{name: "midnight window late", schedule: &v1alpha1.WidgetSchedule{StartTime: "22:00", EndTime: "02:00"}, now: at(3, 23, 0), want: false},
		{name: "midnight window early", schedule: &v1alpha1.WidgetSchedule{StartTime: "22:00", EndTime: "02:00"}, now: at(3, 1, 0), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsEligible(tt.schedule, tt.now)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, IsEligible(tt.schedule, tt.now), "evaluation must be repeatable")
		})
	}
}

func TestIsEligibleUsesLocationOfNow(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*3600)
	s := &v1alpha1.WidgetSchedule{StartTime: "09:00", EndTime: "10:00"}

	now := time.Date(2024, time.June, 3, 7, 30, 0, 0, time.UTC)
	assert.False(t, IsEligible(s, now))
	assert.True(t, IsEligible(s, now.In(loc)))
}

func TestAlwaysEligibleWithoutSchedule(t *testing.T) {
	w := &v1alpha1.Widget{ID: "a", Type: v1alpha1.WidgetTypeImage, Duration: 10, IsActive: true}
	start := at(1, 0, 0)
	for i := 0; i < 7*24*4; i++ {
		assert.True(t, WidgetEligible(w, start.Add(time.Duration(i)*15*time.Minute)))
	}
}

func TestWidgetEligible(t *testing.T) {
	w := &v1alpha1.Widget{IsActive: false}
	assert.False(t, WidgetEligible(w, at(3, 12, 0)))

	w.IsActive = true
	w.Schedule = &v1alpha1.WidgetSchedule{DaysOfWeek: []int{0}}
	assert.False(t, WidgetEligible(w, at(3, 12, 0)))
	assert.True(t, WidgetEligible(w, at(9, 12, 0)))
}

func TestAnnouncementEligible(t *testing.T) {
	tests := []struct {
		name string
		a    v1alpha1.Announcement
		want bool
	}{
		{"inactive", v1alpha1.Announcement{IsActive: false}, false},
		{"no dates", v1alpha1.Announcement{IsActive: true}, false},
		{"start only", v1alpha1.Announcement{IsActive: true, StartDate: ptr(at(1, 0, 0))}, false},
		{"end only", v1alpha1.Announcement{IsActive: true, EndDate: ptr(at(5, 0, 0))}, false},
		{"inside", v1alpha1.Announcement{IsActive: true, StartDate: ptr(at(1, 0, 0)), EndDate: ptr(at(5, 0, 0))}, true},
		{"not started", v1alpha1.Announcement{IsActive: true, StartDate: ptr(at(4, 0, 0)), EndDate: ptr(at(5, 0, 0))}, false},
		{"expired", v1alpha1.Announcement{IsActive: true, StartDate: ptr(at(1, 0, 0)), EndDate: ptr(at(2, 0, 0))}, false},
		{"boundary", v1alpha1.Announcement{IsActive: true, StartDate: ptr(at(3, 12, 0)), EndDate: ptr(at(3, 12, 0))}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AnnouncementEligible(&tt.a, at(3, 12, 0)))
		})
	}
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "Always", Describe(nil))
	assert.Equal(t, "Always", Describe(&v1alpha1.WidgetSchedule{}))
	assert.Equal(t,
		"from 2024-06-03 on Mon,Fri at 09:00-17:00",
		Describe(&v1alpha1.WidgetSchedule{
			StartDate:  ptr(at(3, 0, 0)),
			DaysOfWeek: []int{1, 5},
			StartTime:  "09:00",
			EndTime:    "17:00",
		}),
	)
}
