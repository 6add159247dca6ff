// Package content caches the widgets and announcements served by the Content Service.
//
// The cache is the single writer of the lists it holds. Each refresh
// replaces a list atomically and a failed refresh leaves the last good list
// in place.
package content

import (
	"context"
	"encoding/json"
	"time"

	"github.com/wrale/wrale-kiosk/api/types/v1alpha1"
)

// Source reads raw records from the Content Service. Records are decoded
// one at a time by the cache so a single bad record does not poison a
// whole refresh.
type Source interface {
	FetchWidgets(ctx context.Context) ([]json.RawMessage, error)
	FetchAnnouncements(ctx context.Context) ([]json.RawMessage, error)
}

// Snapshot is the persisted last good state of the cache
type Snapshot struct {
	Widgets       []v1alpha1.Widget       `json:"widgets"`
	Announcements []v1alpha1.Announcement `json:"announcements"`
	SavedAt       time.Time               `json:"savedAt"`
}

// SnapshotStore persists snapshots across restarts. Load returns an error
// matching errors.ErrNotFound when nothing has been saved.
type SnapshotStore interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snap *Snapshot) error
}
