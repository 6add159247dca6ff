package v1alpha1

import (
	"encoding/json"
	"time"
)

// AnnouncementType categorizes ticker messages
type AnnouncementType string

const (
	AnnouncementInfo            AnnouncementType = "info"
	AnnouncementUrgent          AnnouncementType = "urgent"
	AnnouncementEvent           AnnouncementType = "event"
	AnnouncementCongratulations AnnouncementType = "congratulations"
)

// DefaultAnnouncementPriority applies when a record omits priority
const DefaultAnnouncementPriority = 5

// Announcement is a scrolling ticker message with a validity window
type Announcement struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	Content   string           `json:"content"`
	Type      AnnouncementType `json:"type"`
	Priority  int              `json:"priority"`
	StartDate *time.Time       `json:"startDate,omitempty"`
	EndDate   *time.Time       `json:"endDate,omitempty"`
	IsActive  bool             `json:"isActive"`
	CreatedAt time.Time        `json:"createdAt"`
}

// UnmarshalJSON accepts Content Service records
func (a *Announcement) UnmarshalJSON(data []byte) error {
	type alias Announcement
	aux := struct {
		*alias
		MongoID   string          `json:"_id"`
		Priority  *int            `json:"priority"`
		IsActive  *bool           `json:"isActive"`
		StartDate json.RawMessage `json:"startDate"`
		EndDate   json.RawMessage `json:"endDate"`
		CreatedAt json.RawMessage `json:"createdAt"`
	}{alias: (*alias)(a)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	a.ID = pickID(a.ID, aux.MongoID)
	a.IsActive = aux.IsActive == nil || *aux.IsActive
	a.Priority = DefaultAnnouncementPriority
	if aux.Priority != nil {
		a.Priority = *aux.Priority
	}

	var err error
	if a.StartDate, err = parseTime(aux.StartDate); err != nil {
		return err
	}
	if a.EndDate, err = parseTime(aux.EndDate); err != nil {
		return err
	}
	created, err := parseTime(aux.CreatedAt)
	if err != nil {
		return err
	}
	if created != nil {
		a.CreatedAt = *created
	}
	return nil
}
