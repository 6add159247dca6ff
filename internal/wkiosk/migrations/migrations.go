// Package migrations manages the Postgres play log schema
package migrations

import (
	"cmp"
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

//go:embed *.sql
var migrationFiles embed.FS

var migrationFilePattern = regexp.MustCompile(`^(\d{3})_(.+)\.sql$`)

// Migration represents a single database migration
type Migration struct {
	Version     int
	Description string
	Up          string
}

// Manager handles executing database migrations
type Manager struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewManager creates a new migration manager
func NewManager(db *sql.DB, logger *slog.Logger) *Manager {
	return &Manager{db: db, logger: logger}
}

// LoadMigrations reads the embedded migration files in version order
func LoadMigrations() ([]Migration, error) {
	entries, err := migrationFiles.ReadDir(".")
	if err != nil {
		return nil, fmt.Errorf("error reading migrations: %w", err)
	}

	var migrations []Migration
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		filename := entry.Name()
		matches := migrationFilePattern.FindStringSubmatch(filename)
		if matches == nil {
			continue
		}

		version, err := strconv.Atoi(matches[1])
		if err != nil {
			return nil, fmt.Errorf("invalid migration version in %s: %w", filename, err)
		}

		content, err := migrationFiles.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("error reading migration %s: %w", filename, err)
		}

		migrations = append(migrations, Migration{
			Version:     version,
			Description: strings.ReplaceAll(matches[2], "_", " "),
			Up:          string(content),
		})
	}

	slices.SortFunc(migrations, func(a, b Migration) int {
		return cmp.Compare(a.Version, b.Version)
	})

	return migrations, nil
}

// Apply runs any pending migrations
func (m *Manager) Apply(ctx context.Context) error {
	if err := m.ensureMigrationTable(ctx); err != nil {
		return fmt.Errorf("error creating migration table: %w", err)
	}

	migrations, err := LoadMigrations()
	if err != nil {
		return fmt.Errorf("error loading migrations: %w", err)
	}

	applied, err := m.appliedVersions(ctx)
	if err != nil {
		return fmt.Errorf("error getting applied migrations: %w", err)
	}

	for _, migration := range migrations {
		if _, ok := applied[migration.Version]; ok {
			continue
		}
		if err := m.applyMigration(ctx, migration); err != nil {
			return fmt.Errorf("error applying migration %d: %w", migration.Version, err)
		}
		m.logger.Info("applied migration",
			"version", migration.Version,
			"description", migration.Description,
		)
	}

	return nil
}

func (m *Manager) ensureMigrationTable(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version     INTEGER PRIMARY KEY,
			applied_at  TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			description TEXT NOT NULL
		)
	`)
	return err
}

func (m *Manager) appliedVersions(ctx context.Context) (map[int]struct{}, error) {
	rows, err := m.db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[int]struct{})
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = struct{}{}
	}

	return applied, rows.Err()
}

// SplitStatements splits a migration on semicolons, dropping empty
// statements and comment-only lines
func SplitStatements(script string) []string {
	var result []string
	for _, stmt := range strings.Split(script, ";") {
		var lines []string
		for _, line := range strings.Split(stmt, "\n") {
			if strings.HasPrefix(strings.TrimSpace(line), "--") {
				continue
			}
			lines = append(lines, line)
		}
		if s := strings.TrimSpace(strings.Join(lines, "\n")); s != "" {
			result = append(result, s)
		}
	}
	return result
}

// applyMigration executes a single migration within a transaction
func (m *Manager) applyMigration(ctx context.Context, migration Migration) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			m.logger.Error("error rolling back migration transaction", "error", err)
		}
	}()

	for _, stmt := range SplitStatements(migration.Up) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("error executing statement: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO schema_migrations (version, description)
		VALUES ($1, $2)
	`, migration.Version, migration.Description); err != nil {
		return err
	}

	return tx.Commit()
}
