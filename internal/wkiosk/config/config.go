// Package config provides configuration management for the Wrale Kiosk display client
package config

import (
	"log/slog"
	"strings"
	"time"
)

// Snapshot store backends
const (
	SnapshotNone  = "none"
	SnapshotFile  = "file"
	SnapshotRedis = "redis"
)

// Play log backends
const (
	PlayLogNone     = "none"
	PlayLogPostgres = "postgres"
	PlayLogSQLite   = "sqlite"
)

// News providers
const (
	NewsNone    = "none"
	NewsNewsAPI = "newsapi"
	NewsRSS     = "rss"
)

// Config holds all configuration for the display client
type Config struct {
	// DisplayID identifies this display in play events; generated at
	// startup when empty
	DisplayID  string           `yaml:"displayId"`
	Server     ServerConfig     `yaml:"server"`
	Content    ContentConfig    `yaml:"content"`
	Rotation   RotationConfig   `yaml:"rotation"`
	Enrichment EnrichmentConfig `yaml:"enrichment"`
	Snapshot   SnapshotConfig   `yaml:"snapshot"`
	PlayLog    PlayLogConfig    `yaml:"playLog"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServerConfig holds local HTTP server settings
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	IdleTimeout  time.Duration `yaml:"idleTimeout"`
	// RateLimit is the per-IP request limit per minute on API routes
	RateLimit int `yaml:"rateLimit"`
}

// ContentConfig holds Content Service settings
type ContentConfig struct {
	BaseURL string        `yaml:"baseURL"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`
}

// RotationConfig holds rotation engine timing
type RotationConfig struct {
	WidgetRefresh       time.Duration `yaml:"widgetRefresh"`
	AnnouncementRefresh time.Duration `yaml:"announcementRefresh"`
	SlideInterval       time.Duration `yaml:"slideInterval"`
	// Timezone is an IANA name used to evaluate schedules; empty means local
	Timezone string `yaml:"timezone"`
}

// EnrichmentConfig holds weather and news settings
type EnrichmentConfig struct {
	Enabled        bool          `yaml:"enabled"`
	City           string        `yaml:"city"`
	WeatherURL     string        `yaml:"weatherURL"`
	WeatherRefresh time.Duration `yaml:"weatherRefresh"`
	NewsRefresh    time.Duration `yaml:"newsRefresh"`
	News           NewsConfig    `yaml:"news"`
}

// NewsConfig selects the headline provider
type NewsConfig struct {
	Provider string `yaml:"provider"`
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"apiKey"`
	Country  string `yaml:"country"`
	FeedURL  string `yaml:"feedURL"`
}

// SnapshotConfig selects where the last good content is persisted
type SnapshotConfig struct {
	Backend string      `yaml:"backend"`
	Path    string      `yaml:"path"`
	Redis   RedisConfig `yaml:"redis"`
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Key      string        `yaml:"key"`
	TTL      time.Duration `yaml:"ttl"`
}

// PlayLogConfig selects where proof-of-play events are stored
type PlayLogConfig struct {
	Backend string `yaml:"backend"`
	// DSN is the Postgres connection string
	DSN string `yaml:"dsn"`
	// Path is the SQLite database file
	Path   string `yaml:"path"`
	Buffer int    `yaml:"buffer"`
}

// LoggingConfig holds log output settings
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when nothing is overridden
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "127.0.0.1",
			Port:         8081,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
			RateLimit:    600,
		},
		Content: ContentConfig{
			BaseURL: "http://localhost:3000/api",
			Timeout: 10 * time.Second,
		},
		Rotation: RotationConfig{
			WidgetRefresh:       30 * time.Second,
			AnnouncementRefresh: 60 * time.Second,
			SlideInterval:       3 * time.Second,
		},
		Enrichment: EnrichmentConfig{
			Enabled:        true,
			City:           "Rabat",
			WeatherURL:     "https://wttr.in",
			WeatherRefresh: 10 * time.Minute,
			NewsRefresh:    15 * time.Minute,
			News: NewsConfig{
				Provider: NewsNone,
				Endpoint: "https://newsapi.org/v2/top-headlines",
				Country:  "us",
			},
		},
		Snapshot: SnapshotConfig{
			Backend: SnapshotFile,
			Path:    "/var/lib/wkiosk/snapshot.json",
			Redis: RedisConfig{
				Addr: "localhost:6379",
				Key:  "default",
				TTL:  7 * 24 * time.Hour,
			},
		},
		PlayLog: PlayLogConfig{
			Backend: PlayLogNone,
			Path:    "/var/lib/wkiosk/plays.db",
			Buffer:  256,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration from defaults and environment variables
func Load() (*Config, error) {
	cfg := Default()
	cfg.overlayEnv()
	return cfg, cfg.validate()
}

// Location returns the time zone used to evaluate schedules
func (c *Config) Location() (*time.Location, error) {
	if c.Rotation.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Rotation.Timezone)
}

// SlogLevel maps the configured level name to a slog level
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.Logging.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// overlayEnv overlays environment variables on top of file-based config
func (c *Config) overlayEnv() {
	if id := getEnv("WKIOSK_DISPLAY_ID", ""); id != "" {
		c.DisplayID = id
	}

	// Server config
	if host := getEnv("WKIOSK_SERVER_HOST", ""); host != "" {
		c.Server.Host = host
	}
	if port := getEnvAsInt("WKIOSK_SERVER_PORT", 0); port != 0 {
		c.Server.Port = port
	}
	if limit := getEnvAsInt("WKIOSK_SERVER_RATE_LIMIT", 0); limit != 0 {
		c.Server.RateLimit = limit
	}

	// Content Service
	if baseURL := getEnv("WKIOSK_CONTENT_URL", ""); baseURL != "" {
		c.Content.BaseURL = baseURL
	}
	if token := getEnv("WKIOSK_CONTENT_TOKEN", ""); token != "" {
		c.Content.Token = token
	}
	if timeout := getEnvAsDuration("WKIOSK_CONTENT_TIMEOUT", 0); timeout != 0 {
		c.Content.Timeout = timeout
	}

	// Rotation
	if d := getEnvAsDuration("WKIOSK_WIDGET_REFRESH", 0); d != 0 {
		c.Rotation.WidgetRefresh = d
	}
	if d := getEnvAsDuration("WKIOSK_ANNOUNCEMENT_REFRESH", 0); d != 0 {
		c.Rotation.AnnouncementRefresh = d
	}
	if d := getEnvAsDuration("WKIOSK_SLIDE_INTERVAL", 0); d != 0 {
		c.Rotation.SlideInterval = d
	}
	if tz := getEnv("WKIOSK_TIMEZONE", ""); tz != "" {
		c.Rotation.Timezone = tz
	}

	// Enrichment
	if enabled, ok := getEnvAsBool("WKIOSK_ENRICHMENT_ENABLED"); ok {
		c.Enrichment.Enabled = enabled
	}
	if city := getEnv("WKIOSK_CITY", ""); city != "" {
		c.Enrichment.City = city
	}
	if provider := getEnv("WKIOSK_NEWS_PROVIDER", ""); provider != "" {
		c.Enrichment.News.Provider = provider
	}
	if key := getEnvMulti([]string{"WKIOSK_NEWS_API_KEY", "NEWS_API_KEY"}, ""); key != "" {
		c.Enrichment.News.APIKey = key
	}
	if feed := getEnv("WKIOSK_NEWS_FEED_URL", ""); feed != "" {
		c.Enrichment.News.FeedURL = feed
	}

	// Snapshot store
	if backend := getEnv("WKIOSK_SNAPSHOT_BACKEND", ""); backend != "" {
		c.Snapshot.Backend = backend
	}
	if path := getEnv("WKIOSK_SNAPSHOT_PATH", ""); path != "" {
		c.Snapshot.Path = path
	}
	if addr := getEnvMulti([]string{"WKIOSK_REDIS_ADDR", "REDIS_ADDR"}, ""); addr != "" {
		c.Snapshot.Redis.Addr = addr
	}
	if password := getEnvMulti([]string{"WKIOSK_REDIS_PASSWORD", "REDIS_PASSWORD"}, ""); password != "" {
		c.Snapshot.Redis.Password = password
	}

	// Play log
	if backend := getEnv("WKIOSK_PLAYLOG_BACKEND", ""); backend != "" {
		c.PlayLog.Backend = backend
	}
	if dsn := getEnvMulti([]string{"WKIOSK_PLAYLOG_DSN", "DATABASE_URL"}, ""); dsn != "" {
		c.PlayLog.DSN = dsn
	}
	if path := getEnv("WKIOSK_PLAYLOG_PATH", ""); path != "" {
		c.PlayLog.Path = path
	}

	// Logging
	if level := getEnv("WKIOSK_LOG_LEVEL", ""); level != "" {
		c.Logging.Level = level
	}
	if format := getEnv("WKIOSK_LOG_FORMAT", ""); format != "" {
		c.Logging.Format = format
	}
}
