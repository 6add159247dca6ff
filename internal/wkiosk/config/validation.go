package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

func (c *Config) validate() error {
	if c.DisplayID != "" {
		if _, err := uuid.Parse(c.DisplayID); err != nil {
			return fmt.Errorf("invalid display id %q: %w", c.DisplayID, err)
		}
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("invalid rate limit: %d", c.Server.RateLimit)
	}

	if err := validateHTTPURL("content base URL", c.Content.BaseURL); err != nil {
		return err
	}
	if c.Content.Timeout <= 0 {
		return fmt.Errorf("content timeout must be positive")
	}

	if c.Rotation.WidgetRefresh < time.Second {
		return fmt.Errorf("widget refresh must be at least 1s")
	}
	if c.Rotation.AnnouncementRefresh < time.Second {
		return fmt.Errorf("announcement refresh must be at least 1s")
	}
	if c.Rotation.SlideInterval < 100*time.Millisecond {
		return fmt.Errorf("slide interval must be at least 100ms")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Rotation.Timezone, err)
	}

	if c.Enrichment.Enabled {
		if err := c.validateEnrichment(); err != nil {
			return err
		}
	}

	switch c.Snapshot.Backend {
	case SnapshotNone:
	case SnapshotFile:
		if c.Snapshot.Path == "" {
			return fmt.Errorf("snapshot path is required for the file backend")
		}
	case SnapshotRedis:
		if c.Snapshot.Redis.Addr == "" {
			return fmt.Errorf("redis address is required for the redis snapshot backend")
		}
	default:
		return fmt.Errorf("unknown snapshot backend %q", c.Snapshot.Backend)
	}

	switch c.PlayLog.Backend {
	case PlayLogNone:
	case PlayLogPostgres:
		if c.PlayLog.DSN == "" {
			return fmt.Errorf("play log dsn is required for the postgres backend")
		}
	case PlayLogSQLite:
		if c.PlayLog.Path == "" {
			return fmt.Errorf("play log path is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("unknown play log backend %q", c.PlayLog.Backend)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format %q", c.Logging.Format)
	}

	return nil
}

func (c *Config) validateEnrichment() error {
	if strings.TrimSpace(c.Enrichment.City) == "" {
		return fmt.Errorf("enrichment city is required")
	}
	if err := validateHTTPURL("weather URL", c.Enrichment.WeatherURL); err != nil {
		return err
	}
	if c.Enrichment.WeatherRefresh < time.Minute {
		return fmt.Errorf("weather refresh must be at least 1m")
	}
	if c.Enrichment.NewsRefresh < time.Minute {
		return fmt.Errorf("news refresh must be at least 1m")
	}

	news := c.Enrichment.News
	switch news.Provider {
	case NewsNone:
	case NewsNewsAPI:
		if news.APIKey == "" {
			return fmt.Errorf("news API key is required for the newsapi provider")
		}
		if err := validateHTTPURL("news endpoint", news.Endpoint); err != nil {
			return err
		}
	case NewsRSS:
		if err := validateHTTPURL("news feed URL", news.FeedURL); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown news provider %q", news.Provider)
	}
	return nil
}

func validateHTTPURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid %s %q: must be an absolute http or https URL", name, raw)
	}
	return nil
}
