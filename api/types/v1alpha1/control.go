package v1alpha1

import "time"

// ControlMessageType defines types of control messages
type ControlMessageType string

const (
	// ControlMessageFrame replaces the main display area
	ControlMessageFrame ControlMessageType = "FRAME"
	// ControlMessageSlide advances the visible image of the current slideshow
	ControlMessageSlide ControlMessageType = "SLIDE"
	// ControlMessageTicker replaces the announcement ticker
	ControlMessageTicker ControlMessageType = "TICKER"
	// ControlMessageHeader replaces the header weather readout
	ControlMessageHeader ControlMessageType = "HEADER"
	// ControlMessageStatus carries a display status report
	ControlMessageStatus ControlMessageType = "STATUS"
)

// ControlMessage is pushed to kiosk surfaces over the display websocket
type ControlMessage struct {
	// TypeMeta describes API version details
	TypeMeta `json:",inline"`
	// Type indicates the kind of control message
	Type ControlMessageType `json:"type"`
	// Timestamp indicates when message was created
	Timestamp time.Time `json:"timestamp"`

	Frame  *Frame         `json:"frame,omitempty"`
	Slide  *SlideStep     `json:"slide,omitempty"`
	Ticker *TickerView    `json:"ticker,omitempty"`
	Header *HeaderView    `json:"header,omitempty"`
	Status *DisplayStatus `json:"status,omitempty"`
}

// SlideStep moves a slideshow frame to another image
type SlideStep struct {
	// FrameID identifies the frame this step belongs to; surfaces ignore
	// steps for frames no longer shown
	FrameID string `json:"frameId"`
	// Visible is the index of the image to show
	Visible int `json:"visible"`
}

// NewControlMessage stamps a message with type metadata
func NewControlMessage(t ControlMessageType, now time.Time) ControlMessage {
	return ControlMessage{
		TypeMeta: TypeMeta{
			Kind:       "ControlMessage",
			APIVersion: APIVersion,
		},
		Type:      t,
		Timestamp: now,
	}
}
