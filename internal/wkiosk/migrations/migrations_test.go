package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMigrations(t *testing.T) {
	migrations, err := LoadMigrations()
	require.NoError(t, err)
	require.NotEmpty(t, migrations)

	assert.Equal(t, 1, migrations[0].Version)
	assert.Equal(t, "play events", migrations[0].Description)
	assert.Contains(t, migrations[0].Up, "CREATE TABLE IF NOT EXISTS play_events")

	for i := 1; i < len(migrations); i++ {
		assert.Less(t, migrations[i-1].Version, migrations[i].Version)
	}
}

func TestSplitStatements(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   []string
	}{
		{
			name:   "single statement",
			script: "CREATE TABLE a (id INT);",
			want:   []string{"CREATE TABLE a (id INT)"},
		},
		{
			name:   "comments and blank statements",
			script: "-- header\nCREATE TABLE a (id INT);\n\n;\n-- index\nCREATE INDEX i ON a (id);\n",
			want:   []string{"CREATE TABLE a (id INT)", "CREATE INDEX i ON a (id)"},
		},
		{
			name:   "empty",
			script: "  \n",
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitStatements(tt.script))
		})
	}
}

func TestEmbeddedPlayEventsSchema(t *testing.T) {
	migrations, err := LoadMigrations()
	require.NoError(t, err)

	stmts := SplitStatements(migrations[0].Up)
	assert.Len(t, stmts, 3)
}
