package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	_ "github.com/lib/pq"

	"github.com/wrale/wrale-kiosk/internal/wkiosk/config"
	"github.com/wrale/wrale-kiosk/internal/wkiosk/content"
	contentfile "github.com/wrale/wrale-kiosk/internal/wkiosk/content/file"
	contentredis "github.com/wrale/wrale-kiosk/internal/wkiosk/content/redis"
	"github.com/wrale/wrale-kiosk/internal/wkiosk/enrichment"
	"github.com/wrale/wrale-kiosk/internal/wkiosk/migrations"
	"github.com/wrale/wrale-kiosk/internal/wkiosk/playlog"
	playlogpg "github.com/wrale/wrale-kiosk/internal/wkiosk/playlog/postgres"
	playlogsqlite "github.com/wrale/wrale-kiosk/internal/wkiosk/playlog/sqlite"
)

func noop() {}

// openSnapshotStore returns nil when snapshots are disabled
func openSnapshotStore(ctx context.Context, cfg *config.Config) (content.SnapshotStore, func(), error) {
	switch cfg.Snapshot.Backend {
	case config.SnapshotFile:
		return contentfile.NewStore(cfg.Snapshot.Path), noop, nil
	case config.SnapshotRedis:
		r := cfg.Snapshot.Redis
		store, err := contentredis.Connect(ctx, contentredis.Config{
			Addr:     r.Addr,
			Password: r.Password,
			DB:       r.DB,
			Key:      r.Key,
			TTL:      r.TTL,
		})
		if err != nil {
			return nil, noop, fmt.Errorf("snapshot store: %w", err)
		}
		return store, func() { _ = store.Close() }, nil
	default:
		return nil, noop, nil
	}
}

func newEnrichment(cfg *config.Config, logger *slog.Logger) *enrichment.Service {
	if !cfg.Enrichment.Enabled {
		return enrichment.NewService(nil, nil, cfg.Enrichment.City, logger)
	}

	hc := &http.Client{Timeout: cfg.Content.Timeout}
	weather := enrichment.NewWeatherClient(
		enrichment.WithWeatherURL(cfg.Enrichment.WeatherURL),
		enrichment.WithWeatherHTTPClient(hc),
	)

	var news enrichment.NewsProvider
	n := cfg.Enrichment.News
	switch n.Provider {
	case config.NewsNewsAPI:
		news = enrichment.NewNewsAPI(n.Endpoint, n.APIKey, n.Country, hc)
	case config.NewsRSS:
		news = enrichment.NewRSSNews(n.FeedURL, hc)
	}

	return enrichment.NewService(weather, news, cfg.Enrichment.City, logger)
}

// openPlayLog returns a nil recorder when the play log is disabled
func openPlayLog(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*playlog.Recorder, func(), error) {
	switch cfg.PlayLog.Backend {
	case config.PlayLogPostgres:
		db, err := sql.Open("postgres", cfg.PlayLog.DSN)
		if err != nil {
			return nil, noop, fmt.Errorf("play log: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, noop, fmt.Errorf("play log: %w", err)
		}
		if err := migrations.NewManager(db, logger).Apply(ctx); err != nil {
			_ = db.Close()
			return nil, noop, fmt.Errorf("play log migrations: %w", err)
		}
		rec := playlog.NewRecorder(playlogpg.NewRepository(db), cfg.PlayLog.Buffer, logger)
		return rec, func() { _ = db.Close() }, nil

	case config.PlayLogSQLite:
		store, err := playlogsqlite.Open(ctx, cfg.PlayLog.Path, playlogsqlite.DefaultConfig())
		if err != nil {
			return nil, noop, fmt.Errorf("play log: %w", err)
		}
		rec := playlog.NewRecorder(store, cfg.PlayLog.Buffer, logger)
		return rec, func() { _ = store.Close() }, nil

	default:
		return nil, noop, nil
	}
}
