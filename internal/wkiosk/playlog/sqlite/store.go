// Package sqlite stores play events in a local SQLite file. It suits a
// display that has no database server nearby.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/wrale/wrale-kiosk/api/types/v1alpha1"
	"github.com/wrale/wrale-kiosk/internal/wkiosk/database"
	"github.com/wrale/wrale-kiosk/internal/wkiosk/playlog"
)

// Config defines SQLite operational parameters
type Config struct {
	BusyTimeout  time.Duration
	MaxOpenConns int
}

// DefaultConfig returns the recommended configuration
func DefaultConfig() Config {
	return Config{
		BusyTimeout:  5 * time.Second,
		MaxOpenConns: 4,
	}
}

const schema = `
CREATE TABLE IF NOT EXISTS play_events (
	id            TEXT PRIMARY KEY,
	display_id    TEXT NOT NULL,
	type          TEXT NOT NULL CHECK (type IN ('CONTENT_VISIBLE', 'CONTENT_ERROR')),
	widget_id     TEXT NOT NULL,
	widget_type   TEXT NOT NULL,
	timestamp     INTEGER NOT NULL,
	duration_ms   INTEGER NOT NULL DEFAULT 0,
	error_code    TEXT,
	error_message TEXT
);
CREATE INDEX IF NOT EXISTS idx_play_events_widget_time ON play_events (widget_id, timestamp);
`

// Store is a play log backed by SQLite
type Store struct {
	db *sql.DB
}

var _ playlog.Repository = (*Store)(nil)

// Open opens or creates the database at path and ensures the schema.
// WAL mode and busy_timeout apply to every pooled connection.
func Open(ctx context.Context, path string, cfg Config) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_pragma=synchronous(NORMAL)",
		path, cfg.BusyTimeout.Milliseconds())

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open failed: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxOpenConns)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping failed: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: schema failed: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveEvent implements playlog.Repository.SaveEvent
func (s *Store) SaveEvent(ctx context.Context, event v1alpha1.PlayEvent) error {
	const op = "PlayLogStore.SaveEvent"

	var code, message sql.NullString
	if event.Error != nil {
		code = sql.NullString{String: event.Error.Code, Valid: true}
		message = sql.NullString{String: event.Error.Message, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO play_events (
			id, display_id, type, widget_id, widget_type,
			timestamp, duration_ms, error_code, error_message
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		event.ID.String(),
		event.DisplayID.String(),
		string(event.Type),
		event.WidgetID,
		string(event.WidgetType),
		event.Timestamp.UnixNano(),
		event.Duration.Milliseconds(),
		code,
		message,
	)

	return database.MapError(err, op)
}

// WidgetStats implements playlog.Repository.WidgetStats
func (s *Store) WidgetStats(ctx context.Context, widgetID string, since time.Time) (*v1alpha1.WidgetStats, error) {
	const op = "PlayLogStore.WidgetStats"

	stats := &v1alpha1.WidgetStats{
		WidgetID:   widgetID,
		ErrorCodes: make(map[string]int),
		Since:      since,
	}

	err := database.RunInTx(ctx, s.db, nil, func(tx *database.Tx) error {
		var lastShown sql.NullInt64
		err := tx.QueryRowContext(ctx, `
			SELECT
				COUNT(*),
				COALESCE(SUM(CASE WHEN type = 'CONTENT_ERROR' THEN 1 ELSE 0 END), 0),
				MAX(timestamp)
			FROM play_events
			WHERE widget_id = ? AND timestamp >= ?
		`, widgetID, since.UnixNano()).Scan(&stats.PlayCount, &stats.ErrorCount, &lastShown)
		if err != nil {
			return err
		}
		if lastShown.Valid {
			t := time.Unix(0, lastShown.Int64).UTC()
			stats.LastShown = &t
		}

		rows, err := tx.QueryContext(ctx, `
			SELECT COALESCE(error_code, 'INTERNAL'), COUNT(*)
			FROM play_events
			WHERE widget_id = ? AND timestamp >= ? AND type = 'CONTENT_ERROR'
			GROUP BY 1
		`, widgetID, since.UnixNano())
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
