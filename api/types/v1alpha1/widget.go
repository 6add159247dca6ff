package v1alpha1

import (
	"bytes"
	"encoding/json"
	"time"
)

// WidgetType identifies how a widget's content is presented
type WidgetType string

const (
	WidgetTypeImage           WidgetType = "image"
	WidgetTypeSlideshow       WidgetType = "slideshow"
	WidgetTypeVideo           WidgetType = "video"
	WidgetTypeWeather         WidgetType = "weather"
	WidgetTypeYouTube         WidgetType = "youtube"
	WidgetTypeIframe          WidgetType = "iframe"
	WidgetTypeList            WidgetType = "list"
	WidgetTypeCongratulations WidgetType = "congratulations"
	WidgetTypeNews            WidgetType = "news"
	WidgetTypePresentation    WidgetType = "pptx"
)

// Widget duration bounds, in seconds
const (
	DefaultWidgetDuration = 10
	MinWidgetDuration     = 3
	MaxWidgetDuration     = 300
)

// Widget is one unit of displayable content authored in the Content Service
type Widget struct {
	// ID is stable across refreshes
	ID    string     `json:"id"`
	Title string     `json:"title"`
	Type  WidgetType `json:"type"`
	// Content is polymorphic by Type: a URL string, an array of URLs,
	// an object, or any of those encoded as a JSON string
	Content json.RawMessage `json:"content,omitempty"`
	// Duration is the dwell time in seconds
	Duration  int             `json:"duration"`
	Order     int             `json:"order"`
	IsActive  bool            `json:"isActive"`
	Settings  *WidgetSettings `json:"settings,omitempty"`
	Schedule  *WidgetSchedule `json:"schedule,omitempty"`
	FileURL   string          `json:"fileUrl,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt,omitempty"`
}

// WidgetSettings carries presentation hints
type WidgetSettings struct {
	AutoPlay        *bool  `json:"autoPlay,omitempty"`
	Loop            *bool  `json:"loop,omitempty"`
	ShowTitle       *bool  `json:"showTitle,omitempty"`
	Transition      string `json:"transition,omitempty"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
	TextColor       string `json:"textColor,omitempty"`
}

// WidgetSchedule restricts when a widget may be shown. Every field is
// optional and an absent field does not constrain eligibility.
type WidgetSchedule struct {
	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`
	// DaysOfWeek uses 0 for Sunday through 6 for Saturday
	DaysOfWeek []int `json:"daysOfWeek,omitempty"`
	// StartTime and EndTime are "HH:MM" local times
	StartTime string `json:"startTime,omitempty"`
	EndTime   string `json:"endTime,omitempty"`
}

// UnmarshalJSON accepts Content Service records, which use "_id" and may
// omit isActive (defaulting to true).
func (w *Widget) UnmarshalJSON(data []byte) error {
	type alias Widget
	aux := struct {
		*alias
		MongoID   string          `json:"_id"`
		IsActive  *bool           `json:"isActive"`
		CreatedAt json.RawMessage `json:"createdAt"`
		UpdatedAt json.RawMessage `json:"updatedAt"`
	}{alias: (*alias)(w)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	w.ID = pickID(w.ID, aux.MongoID)
	w.IsActive = aux.IsActive == nil || *aux.IsActive

	created, err := parseTime(aux.CreatedAt)
	if err != nil {
		return err
	}
	if created != nil {
		w.CreatedAt = *created
	}
	updated, err := parseTime(aux.UpdatedAt)
	if err != nil {
		return err
	}
	if updated != nil {
		w.UpdatedAt = *updated
	}
	return nil
}

// UnmarshalJSON tolerates empty-string and null dates
func (s *WidgetSchedule) UnmarshalJSON(data []byte) error {
	type alias WidgetSchedule
	aux := struct {
		*alias
		StartDate json.RawMessage `json:"startDate"`
		EndDate   json.RawMessage `json:"endDate"`
	}{alias: (*alias)(s)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	if s.StartDate, err = parseTime(aux.StartDate); err != nil {
		return err
	}
	if s.EndDate, err = parseTime(aux.EndDate); err != nil {
		return err
	}
	return nil
}

// IsZero reports whether the schedule constrains nothing
func (s *WidgetSchedule) IsZero() bool {
	return s == nil || (s.StartDate == nil && s.EndDate == nil &&
		len(s.DaysOfWeek) == 0 && s.StartTime == "" && s.EndTime == "")
}

// Dwell returns the outer rotation time for the widget, clamped to the
// allowed bounds.
func (w *Widget) Dwell() time.Duration {
	secs := w.Duration
	switch {
	case secs <= 0:
		secs = DefaultWidgetDuration
	case secs < MinWidgetDuration:
		secs = MinWidgetDuration
	case secs > MaxWidgetDuration:
		secs = MaxWidgetDuration
	}
	return time.Duration(secs) * time.Second
}

// ContentString returns string content unquoted, or the raw JSON text
// for any other shape.
func (w *Widget) ContentString() string {
	raw := bytes.TrimSpace(w.Content)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if raw[0] == '"' && json.Unmarshal(raw, &s) == nil {
		return s
	}
	return string(raw)
}

// DecodeContent decodes structured content into v. Content that arrives
// as a JSON-encoded string is decoded from the string's text.
func (w *Widget) DecodeContent(v interface{}) error {
	raw := bytes.TrimSpace(w.Content)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		raw = []byte(s)
	}
	return json.Unmarshal(raw, v)
}

// ReorderRequest is the body of the Content Service reorder endpoint
type ReorderRequest struct {
	Slides []string `json:"slides"`
}
