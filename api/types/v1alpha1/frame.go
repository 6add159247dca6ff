package v1alpha1

import "time"

// FrameKind describes what occupies the main display area
type FrameKind string

const (
	// FrameWidget shows a rendered widget
	FrameWidget FrameKind = "WIDGET"
	// FrameError shows an in-place error placeholder for a widget
	FrameError FrameKind = "ERROR"
	// FrameEmpty shows the no-content placeholder
	FrameEmpty FrameKind = "EMPTY"
	// FrameOffline shows the connection-error placeholder
	FrameOffline FrameKind = "OFFLINE"
)

// Frame is the presentation of one widget tenure, or of a placeholder
type Frame struct {
	ID         string     `json:"id"`
	Kind       FrameKind  `json:"kind"`
	WidgetID   string     `json:"widgetId,omitempty"`
	WidgetType WidgetType `json:"widgetType,omitempty"`
	Title      string     `json:"title,omitempty"`
	// Index and Count position the widget in the eligible sequence
	Index    int             `json:"index"`
	Count    int             `json:"count"`
	Duration int             `json:"duration,omitempty"`
	ShownAt  time.Time       `json:"shownAt"`
	Style    *WidgetSettings `json:"style,omitempty"`

	Image           *ImageView           `json:"image,omitempty"`
	Slideshow       *SlideshowView       `json:"slideshow,omitempty"`
	Video           *VideoView           `json:"video,omitempty"`
	Embed           *EmbedView           `json:"embed,omitempty"`
	Weather         *WeatherView         `json:"weather,omitempty"`
	List            *ListView            `json:"list,omitempty"`
	Congratulations *CongratulationsView `json:"congratulations,omitempty"`
	News            *NewsView            `json:"news,omitempty"`
	Document        *DocumentView        `json:"document,omitempty"`
	Notice          *NoticeView          `json:"notice,omitempty"`
}

type ImageView struct {
	URL string `json:"url"`
	Alt string `json:"alt,omitempty"`
}

type SlideshowView struct {
	Images  []string `json:"images"`
	Visible int      `json:"visible"`
	// IntervalMillis is the time each image stays visible
	IntervalMillis int64 `json:"intervalMillis"`
}

type VideoView struct {
	URL      string `json:"url"`
	AutoPlay bool   `json:"autoPlay"`
	Loop     bool   `json:"loop"`
	Muted    bool   `json:"muted"`
	Controls bool   `json:"controls"`
}

// EmbedView is an embedded page, used by iframe and youtube widgets
type EmbedView struct {
	URL   string `json:"url"`
	Allow string `json:"allow,omitempty"`
}

type WeatherView struct {
	City        string `json:"city"`
	Temperature string `json:"temperature"`
	Icon        string `json:"icon"`
}

type ListView struct {
	Items []ListItem `json:"items"`
}

type ListItem struct {
	Name string `json:"name"`
	Info string `json:"info,omitempty"`
}

type CongratulationsView struct {
	Icon    string `json:"icon"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

type NewsView struct {
	Title     string     `json:"title"`
	Subtitle  string     `json:"subtitle,omitempty"`
	Headlines []Headline `json:"headlines,omitempty"`
	// Loading is set while no headlines have been fetched
	Loading bool `json:"loading,omitempty"`
}

// Headline is one news item
type Headline struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Source      string     `json:"source,omitempty"`
	URL         string     `json:"url,omitempty"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	Age         string     `json:"age,omitempty"`
}

// DocumentView is a download card for documents that cannot be shown inline
type DocumentView struct {
	Icon  string `json:"icon"`
	Title string `json:"title"`
	URL   string `json:"url"`
	Label string `json:"label"`
}

// NoticeView is a full-screen message used for placeholders and errors
type NoticeView struct {
	Icon     string `json:"icon"`
	Headline string `json:"headline"`
	Detail   string `json:"detail,omitempty"`
	// Code classifies error notices
	Code string `json:"code,omitempty"`
}

// TickerView is the content of the announcement banner
type TickerView struct {
	Visible   bool         `json:"visible"`
	Items     []TickerItem `json:"items,omitempty"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

type TickerItem struct {
	ID       string           `json:"id"`
	Type     AnnouncementType `json:"type"`
	Icon     string           `json:"icon"`
	Title    string           `json:"title"`
	Content  string           `json:"content"`
	Urgent   bool             `json:"urgent,omitempty"`
	Priority int              `json:"priority"`
}

// HeaderView is the weather readout in the display header
type HeaderView struct {
	City        string    `json:"city,omitempty"`
	Temperature string    `json:"temperature"`
	Icon        string    `json:"icon"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
