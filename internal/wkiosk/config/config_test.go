package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allowDir permits config files in dir for the duration of the test
func allowDir(t *testing.T, dir string) {
	t.Helper()
	real, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)

	saved := DefaultConfigDirs
	DefaultConfigDirs = append([]string{real}, saved...)
	t.Cleanup(func() { DefaultConfigDirs = saved })
}

func writeConfig(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.validate())

	assert.Equal(t, 30*time.Second, cfg.Rotation.WidgetRefresh)
	assert.Equal(t, 60*time.Second, cfg.Rotation.AnnouncementRefresh)
	assert.Equal(t, 3*time.Second, cfg.Rotation.SlideInterval)
	assert.Equal(t, 10*time.Minute, cfg.Enrichment.WeatherRefresh)
	assert.Equal(t, 15*time.Minute, cfg.Enrichment.NewsRefresh)
}

func TestLoad_EnvOverlay(t *testing.T) {
	t.Setenv("WKIOSK_CONTENT_URL", "https://content.example.com/api")
	t.Setenv("WKIOSK_CONTENT_TOKEN", "secret")
	t.Setenv("WKIOSK_WIDGET_REFRESH", "15s")
	t.Setenv("WKIOSK_TIMEZONE", "Africa/Casablanca")
	t.Setenv("WKIOSK_SERVER_PORT", "9090")
	t.Setenv("WKIOSK_ENRICHMENT_ENABLED", "false")
	t.Setenv("WKIOSK_PLAYLOG_BACKEND", "sqlite")
	t.Setenv("WKIOSK_PLAYLOG_PATH", "/tmp/plays.db")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://content.example.com/api", cfg.Content.BaseURL)
	assert.Equal(t, "secret", cfg.Content.Token)
	assert.Equal(t, 15*time.Second, cfg.Rotation.WidgetRefresh)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.False(t, cfg.Enrichment.Enabled)
	assert.Equal(t, PlayLogSQLite, cfg.PlayLog.Backend)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Africa/Casablanca", loc.String())
}

func TestLoad_MalformedEnvIgnored(t *testing.T) {
	t.Setenv("WKIOSK_WIDGET_REFRESH", "often")
	t.Setenv("WKIOSK_SERVER_PORT", "eighty")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.Rotation.WidgetRefresh)
	assert.Equal(t, 8081, cfg.Server.Port)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	allowDir(t, dir)

	path := writeConfig(t, dir, "wkiosk.yaml", `
displayId: 6f1c1f7e-8d0e-4a53-9f44-2f6b7e0c1a10
content:
  baseURL: https://signage.example.com/api
  token: abc
rotation:
  widgetRefresh: 20s
  slideInterval: 5s
enrichment:
  city: Casablanca
  news:
    provider: rss
    feedURL: https://example.com/feed.xml
snapshot:
  backend: redis
  redis:
    addr: redis:6379
    key: lobby
logging:
  level: debug
  format: text
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "6f1c1f7e-8d0e-4a53-9f44-2f6b7e0c1a10", cfg.DisplayID)
	assert.Equal(t, "https://signage.example.com/api", cfg.Content.BaseURL)
	assert.Equal(t, 20*time.Second, cfg.Rotation.WidgetRefresh)
	assert.Equal(t, 5*time.Second, cfg.Rotation.SlideInterval)
	assert.Equal(t, "Casablanca", cfg.Enrichment.City)
	assert.Equal(t, NewsRSS, cfg.Enrichment.News.Provider)
	assert.Equal(t, SnapshotRedis, cfg.Snapshot.Backend)
	assert.Equal(t, "lobby", cfg.Snapshot.Redis.Key)
	assert.Equal(t, "text", cfg.Logging.Format)

	// untouched fields keep their defaults
	assert.Equal(t, 60*time.Second, cfg.Rotation.AnnouncementRefresh)
	assert.Equal(t, 10*time.Second, cfg.Content.Timeout)
	assert.True(t, cfg.Enrichment.Enabled)
}

func TestLoadFile_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	allowDir(t, dir)
	path := writeConfig(t, dir, "wkiosk.yml", "enrichment:\n  city: Casablanca\n")

	t.Setenv("WKIOSK_CITY", "Fes")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Fes", cfg.Enrichment.City)
}

func TestLoadFile_PathValidation(t *testing.T) {
	t.Run("wrong extension", func(t *testing.T) {
		dir := t.TempDir()
		allowDir(t, dir)
		path := writeConfig(t, dir, "wkiosk.json", "{}")

		_, err := LoadFile(path)
		assert.ErrorContains(t, err, ".yaml or .yml")
	})

	t.Run("outside allowed directories", func(t *testing.T) {
		path := writeConfig(t, t.TempDir(), "wkiosk.yaml", "{}")

		_, err := LoadFile(path)
		assert.ErrorContains(t, err, "allowed directory")
	})

	t.Run("sibling with shared prefix", func(t *testing.T) {
		base := t.TempDir()
		allowed := filepath.Join(base, "kiosk")
		sibling := filepath.Join(base, "kiosk-other")
		require.NoError(t, os.Mkdir(allowed, 0o700))
		require.NoError(t, os.Mkdir(sibling, 0o700))
		allowDir(t, allowed)

		_, err := LoadFile(writeConfig(t, sibling, "wkiosk.yaml", "{}"))
		assert.ErrorContains(t, err, "allowed directory")
	})

	t.Run("dev mode allows working directory", func(t *testing.T) {
		dir := t.TempDir()
		wd, err := os.Getwd()
		require.NoError(t, err)
		require.NoError(t, os.Chdir(dir))
		t.Cleanup(func() { _ = os.Chdir(wd) })
		t.Setenv("WKIOSK_DEV_MODE", "1")

		real, err := filepath.EvalSymlinks(dir)
		require.NoError(t, err)
		_, err = LoadFile(writeConfig(t, real, "wkiosk.yaml", "{}"))
		assert.NoError(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		dir := t.TempDir()
		allowDir(t, dir)

		_, err := LoadFile(writeConfig(t, dir, "wkiosk.yaml", "rotation: [unclosed"))
		assert.ErrorContains(t, err, "error parsing config file")
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"bad display id", func(c *Config) { c.DisplayID = "lobby" }, "invalid display id"},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "invalid server port"},
		{"relative content URL", func(c *Config) { c.Content.BaseURL = "/api" }, "content base URL"},
		{"ftp content URL", func(c *Config) { c.Content.BaseURL = "ftp://example.com" }, "content base URL"},
		{"fast widget refresh", func(c *Config) { c.Rotation.WidgetRefresh = 10 * time.Millisecond }, "widget refresh"},
		{"zero slide interval", func(c *Config) { c.Rotation.SlideInterval = 0 }, "slide interval"},
		{"unknown timezone", func(c *Config) { c.Rotation.Timezone = "Mars/Olympus" }, "invalid timezone"},
		{"empty city", func(c *Config) { c.Enrichment.City = " " }, "city is required"},
		{"newsapi without key", func(c *Config) { c.Enrichment.News.Provider = NewsNewsAPI }, "API key"},
		{"rss without feed", func(c *Config) { c.Enrichment.News.Provider = NewsRSS }, "news feed URL"},
		{"unknown news provider", func(c *Config) { c.Enrichment.News.Provider = "telex" }, "unknown news provider"},
		{"unknown snapshot backend", func(c *Config) { c.Snapshot.Backend = "s3" }, "unknown snapshot backend"},
		{"file snapshot without path", func(c *Config) { c.Snapshot.Path = "" }, "snapshot path"},
		{"postgres without dsn", func(c *Config) { c.PlayLog.Backend = PlayLogPostgres }, "dsn is required"},
		{"unknown play log backend", func(c *Config) { c.PlayLog.Backend = "mongo" }, "unknown play log backend"},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "invalid log level"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "invalid log format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.validate(), tt.wantErr)
		})
	}

	t.Run("enrichment disabled skips its checks", func(t *testing.T) {
		cfg := Default()
		cfg.Enrichment.Enabled = false
		cfg.Enrichment.City = ""
		assert.NoError(t, cfg.validate())
	})
}

func TestSlogLevel(t *testing.T) {
	cfg := Default()
	for level, want := range map[string]string{
		"debug": "DEBUG",
		"INFO":  "INFO",
		"warn":  "WARN",
		"error": "ERROR",
		"":      "INFO",
	} {
		cfg.Logging.Level = level
		assert.Equal(t, want, cfg.SlogLevel().String(), level)
	}
}
