// Package util provides shared utilities for the CLI
package util

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"
)

// Output formats accepted by -o
const (
	OutputTable = "table"
	OutputJSON  = "json"
)

// ValidateOutput rejects unknown -o values
func ValidateOutput(format string) error {
	switch format {
	case "", OutputTable, OutputJSON:
		return nil
	}
	return fmt.Errorf("invalid output format %q - use table or json", format)
}

// PrintJSON writes a JSON representation of v to w with proper indentation
func PrintJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// NewTabWriter creates a new tabwriter configured for CLI output
func NewTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// FormatDuration formats a duration in a human-friendly way for CLI output
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return "Just now"
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	}
	return fmt.Sprintf("%dd ago", int(d.Hours()/24))
}

// FormatSince formats how long ago t was, or "Never" when t is nil
func FormatSince(t *time.Time, now time.Time) string {
	if t == nil || t.IsZero() {
		return "Never"
	}
	return FormatDuration(now.Sub(*t))
}

// FormatWindow renders a validity window; "-" marks a missing bound
func FormatWindow(start, end *time.Time) string {
	from, until := "-", "-"
	if start != nil {
		from = start.Format("2006-01-02 15:04")
	}
	if end != nil {
		until = end.Format("2006-01-02 15:04")
	}
	if start == nil && end == nil {
		return "-"
	}
	return from + " to " + until
}

// MaskToken hides all but the first few characters of a secret
func MaskToken(token string) string {
	if token == "" {
		return ""
	}
	const visible = 4
	if len(token) <= visible*2 {
		return strings.Repeat("*", 8)
	}
	return token[:visible] + strings.Repeat("*", 8)
}

// Truncate shortens s to n runes for table cells
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
