package v1alpha1

import (
	"time"

	"github.com/google/uuid"
)

// PlayEventType represents types of proof-of-play events
type PlayEventType string

const (
	// PlayEventVisible indicates a widget became visible
	PlayEventVisible PlayEventType = "CONTENT_VISIBLE"
	// PlayEventError indicates a widget tenure showed an error placeholder
	PlayEventError PlayEventType = "CONTENT_ERROR"
)

// PlayEvent records one widget tenure on a display
type PlayEvent struct {
	ID         uuid.UUID         `json:"id"`
	DisplayID  uuid.UUID         `json:"displayId"`
	Type       PlayEventType     `json:"type"`
	WidgetID   string            `json:"widgetId"`
	WidgetType WidgetType        `json:"widgetType"`
	Timestamp  time.Time         `json:"timestamp"`
	Duration   time.Duration     `json:"duration"`
	Error      *PlayEventFailure `json:"error,omitempty"`
}

// PlayEventFailure describes why a widget rendered as an error
type PlayEventFailure struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WidgetStats summarizes play events for one widget
type WidgetStats struct {
	WidgetID   string         `json:"widgetId"`
	PlayCount  int64          `json:"playCount"`
	ErrorCount int64          `json:"errorCount"`
	LastShown  *time.Time     `json:"lastShown,omitempty"`
	ErrorCodes map[string]int `json:"errorCodes,omitempty"`
	Since      time.Time      `json:"since"`
}
