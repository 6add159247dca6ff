package database

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	werrors "github.com/wrale/wrale-kiosk/internal/wkiosk/errors"
)

type codedError struct{ code int }

func (e codedError) Error() string { return fmt.Sprintf("sqlite error %d", e.code) }
func (e codedError) Code() int     { return e.code }

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
		wantIs   error
	}{
		{"unique violation", &pq.Error{Code: "23505"}, werrors.CodeConflict, werrors.ErrConflict},
		{"foreign key violation", &pq.Error{Code: "23503"}, werrors.CodeNotFound, werrors.ErrNotFound},
		{"check violation", &pq.Error{Code: "23514", Message: "bad type"}, werrors.CodeInvalidInput, werrors.ErrInvalidInput},
		{"sqlite primary key", codedError{code: sqliteConstraintPrimaryKey}, werrors.CodeConflict, werrors.ErrConflict},
		{"sqlite check", codedError{code: sqliteConstraintCheck}, werrors.CodeInvalidInput, werrors.ErrInvalidInput},
		{"no rows", fmt.Errorf("scan: %w", sql.ErrNoRows), werrors.CodeNotFound, werrors.ErrNotFound},
		{"other", errors.New("connection reset"), werrors.CodeInternal, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MapError(tt.err, "Test.Op")
			assert.Equal(t, tt.wantCode, werrors.CodeOf(err))
			assert.Contains(t, err.Error(), "Test.Op")
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}
		})
	}

	assert.NoError(t, MapError(nil, "Test.Op"))
}

func TestGenerateInsertQuery(t *testing.T) {
	q := GenerateInsertQuery("play_events", []string{"id", "widget_id", "timestamp"})
	assert.Equal(t, "INSERT INTO play_events (id, widget_id, timestamp) VALUES ($1, $2, $3)", q)
}
