// Package testutil provides shared test helpers
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/wrale/wrale-kiosk/internal/wkiosk/migrations"
)

// Session parameters for test database configuration
const (
	defaultStatementTimeout = "5s"
	defaultLockTimeout      = "1s"
)

// Logger returns a logger that discards output
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// SetupTestDB creates a throwaway Postgres database with the play log
// schema applied. The test is skipped unless TEST_DATABASE_URL is set.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	baseURL := os.Getenv("TEST_DATABASE_URL")
	if baseURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	adminDB, err := tryConnect(t, baseURL)
	require.NoError(t, err, "failed to connect to postgres database")
	defer adminDB.Close()

	dbName := fmt.Sprintf("wkiosk_test_%d", time.Now().UnixNano())
	_, err = adminDB.Exec(fmt.Sprintf("CREATE DATABASE %s", dbName))
	require.NoError(t, err)

	u, err := url.Parse(baseURL)
	require.NoError(t, err)
	u.Path = "/" + dbName

	db, err := tryConnect(t, u.String())
	require.NoError(t, err)

	for param, value := range map[string]string{
		"statement_timeout": defaultStatementTimeout,
		"lock_timeout":      defaultLockTimeout,
	} {
		_, err := db.Exec(fmt.Sprintf("SET SESSION %s = '%s'", param, value))
		require.NoError(t, err, "failed to set %s", param)
	}

	require.NoError(t, migrations.NewManager(db, Logger()).Apply(context.Background()))

	t.Cleanup(func() {
		if cerr := db.Close(); cerr != nil {
			t.Logf("error closing test database connection: %v", cerr)
		}

		adminDB, err := sql.Open("postgres", baseURL)
		if err != nil {
			t.Logf("error connecting to drop test database: %v", err)
			return
		}
		defer adminDB.Close()

		_, err = adminDB.Exec("SELECT pg_terminate_backend(pid) FROM pg_stat_activity WHERE datname = $1", dbName)
		if err != nil {
			t.Logf("error terminating connections to test database: %v", err)
		}

		if _, err := adminDB.Exec(fmt.Sprintf("DROP DATABASE IF EXISTS %s", dbName)); err != nil {
			t.Logf("error dropping test database: %v", err)
		}
	})

	return db
}

// tryConnect attempts to connect to the database with retries
func tryConnect(t *testing.T, dbURL string) (*sql.DB, error) {
	t.Helper()

	var db *sql.DB
	var err error
	const maxRetries = 5

	for i := 0; i < maxRetries; i++ {
		db, err = sql.Open("postgres", dbURL)
		if err != nil {
			t.Logf("failed to open database connection (attempt %d/%d): %v", i+1, maxRetries, err)
			time.Sleep(time.Second)
			continue
		}

		if err = db.Ping(); err == nil {
			return db, nil
		}
		t.Logf("failed to ping database (attempt %d/%d): %v", i+1, maxRetries, err)
		_ = db.Close()
		time.Sleep(time.Second)
	}

	return nil, fmt.Errorf("failed to connect after %d attempts: %w", maxRetries, err)
}
