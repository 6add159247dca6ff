package util

import (
	"fmt"
	"time"
)

var localLayouts = []string{"2006-01-02T15:04", "2006-01-02 15:04", "2006-01-02"}

// ParseTime parses an instant given on the command line. RFC3339 values
// carry their own offset; other layouts are read in ref's location, and a
// bare "HH:MM" means that time on ref's date.
func ParseTime(value string, ref time.Time) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	loc := ref.Location()
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	if clock, err := time.Parse("15:04", value); err == nil {
		y, m, d := ref.Date()
		return time.Date(y, m, d, clock.Hour(), clock.Minute(), 0, 0, loc), nil
	}
	return time.Time{}, fmt.Errorf("invalid time %q - use RFC3339, YYYY-MM-DD HH:MM or HH:MM", value)
}

// ResolveNow returns the instant a preview is evaluated at: --at when
// given, otherwise the current time, both in the --timezone location
func ResolveNow(at, timezone string) (time.Time, error) {
	loc := time.Local
	if timezone != "" {
		var err error
		if loc, err = time.LoadLocation(timezone); err != nil {
			return time.Time{}, fmt.Errorf("invalid timezone %q: %w", timezone, err)
		}
	}
	now := time.Now().In(loc)
	if at == "" {
		return now, nil
	}
	t, err := ParseTime(at, now)
	if err != nil {
		return time.Time{}, err
	}
	return t.In(loc), nil
}
