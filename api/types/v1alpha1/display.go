package v1alpha1

import "time"

// RotationState is the state of a display's rotation engine
type RotationState string

const (
	// RotationEmpty means no widget is eligible
	RotationEmpty RotationState = "EMPTY"
	// RotationShowing means a widget occupies the display
	RotationShowing RotationState = "SHOWING"
	// RotationStopped means the engine is not running
	RotationStopped RotationState = "STOPPED"
)

// DisplayStatus reports what a display client is currently doing
type DisplayStatus struct {
	TypeMeta  `json:",inline"`
	DisplayID string        `json:"displayId"`
	State     RotationState `json:"state"`
	// Loaded is false until content has been fetched or restored once
	Loaded bool `json:"loaded"`

	CurrentWidgetID   string     `json:"currentWidgetId,omitempty"`
	CurrentWidgetType WidgetType `json:"currentWidgetType,omitempty"`
	CurrentTitle      string     `json:"currentTitle,omitempty"`
	CurrentIndex      int        `json:"currentIndex"`
	EligibleCount     int        `json:"eligibleCount"`
	ShownAt           *time.Time `json:"shownAt,omitempty"`
	NextAdvanceAt     *time.Time `json:"nextAdvanceAt,omitempty"`

	AnnouncementCount int        `json:"announcementCount"`
	LastRefresh       *time.Time `json:"lastRefresh,omitempty"`
	LastFetchError    string     `json:"lastFetchError,omitempty"`

	UpdatedAt time.Time `json:"updatedAt"`
}
