// Package postgres stores play events in PostgreSQL
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/wrale/wrale-kiosk/api/types/v1alpha1"
	"github.com/wrale/wrale-kiosk/internal/wkiosk/database"
	"github.com/wrale/wrale-kiosk/internal/wkiosk/playlog"
)

var eventColumns = []string{
	"id", "display_id", "type", "widget_id", "widget_type",
	"timestamp", "duration_ms", "error",
}

type repository struct {
	db *sql.DB
}

// NewRepository creates a play log repository. The schema must already be
// applied with the migrations package.
func NewRepository(db *sql.DB) playlog.Repository {
	return &repository{db: db}
}

// SaveEvent implements playlog.Repository.SaveEvent
func (r *repository) SaveEvent(ctx context.Context, event v1alpha1.PlayEvent) error {
	const op = "PlayLogRepository.SaveEvent"

	// NULL unless the tenure showed an error frame
	var errorJSON any
	if event.Error != nil {
		data, err := json.Marshal(event.Error)
		if err != nil {
			return database.MapError(err, op)
		}
		errorJSON = string(data)
	}

	err := database.RunInTx(ctx, r.db, nil, func(tx *database.Tx) error {
		_, err := tx.ExecContext(ctx, database.GenerateInsertQuery("play_events", eventColumns),
			event.ID,
			event.DisplayID,
			event.Type,
			event.WidgetID,
			event.WidgetType,
			event.Timestamp,
			event.Duration.Milliseconds(),
			errorJSON,
		)
		return err
	})

	return database.MapError(err, op)
}

// WidgetStats implements playlog.Repository.WidgetStats
func (r *repository) WidgetStats(ctx context.Context, widgetID string, since time.Time) (*v1alpha1.WidgetStats, error) {
	const op = "PlayLogRepository.WidgetStats"

	stats := &v1alpha1.WidgetStats{
		WidgetID:   widgetID,
		ErrorCodes: make(map[string]int),
		Since:      since,
	}

	opts := &database.TxOptions{Isolation: database.LevelRepeatableRead, ReadOnly: true}
	err := database.RunInTx(ctx, r.db, opts, func(tx *database.Tx) error {
		var lastShown sql.NullTime
		err := tx.QueryRowContext(ctx, `
			SELECT
				COUNT(*) AS play_count,
				COUNT(*) FILTER (WHERE type = 'CONTENT_ERROR') AS error_count,
				MAX(timestamp) AS last_shown
			FROM play_events
			WHERE widget_id = $1 AND timestamp >= $2
		`, widgetID, since).Scan(&stats.PlayCount, &stats.ErrorCount, &lastShown)
		if err != nil {
			return err
		}
		if lastShown.Valid {
			t := lastShown.Time
			stats.LastShown = &t
		}

		rows, err := tx.QueryContext(ctx, `
			SELECT COALESCE(error->>'code', 'INTERNAL') AS code, COUNT(*)
			FROM play_events
			WHERE widget_id = $1 AND timestamp >= $2 AND type = 'CONTENT_ERROR'
			GROUP BY 1
		`, widgetID, since)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var code string
			var count int
			if err := rows.Scan(&code, &count); err != nil {
				return err
			}
			stats.ErrorCodes[code] = count
		}
		return rows.Err()
	})
	if err != nil {
		return nil, database.MapError(err, op)
	}

	return stats, nil
}
