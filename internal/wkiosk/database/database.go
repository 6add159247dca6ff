// Package database provides utilities for the play log's SQL stores
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	werrors "github.com/wrale/wrale-kiosk/internal/wkiosk/errors"
)

// Transaction isolation levels used by the stores
const (
	// LevelDefault uses the database's default isolation level
	LevelDefault = sql.LevelDefault

	// LevelReadCommitted prevents dirty reads
	LevelReadCommitted = sql.LevelReadCommitted

	// LevelRepeatableRead gives aggregate queries one consistent view
	LevelRepeatableRead = sql.LevelRepeatableRead
)

// Tx wraps a database transaction with additional functionality
type Tx struct {
	*sql.Tx
}

// TxOptions defines options for transaction execution
type TxOptions struct {
	// Isolation sets the transaction isolation level
	Isolation sql.IsolationLevel
	// ReadOnly indicates if the transaction is read-only
	ReadOnly bool
}

// RunInTx executes a function within a transaction
func RunInTx(ctx context.Context, db *sql.DB, opts *TxOptions, fn func(*Tx) error) error {
	var txOpts *sql.TxOptions
	if opts != nil {
		txOpts = &sql.TxOptions{
			Isolation: opts.Isolation,
			ReadOnly:  opts.ReadOnly,
		}
	}

	tx, err := db.BeginTx(ctx, txOpts)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}

	wtx := &Tx{Tx: tx}

	if err := fn(wtx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("error rolling back transaction: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}

	return nil
}

// constraintError is implemented by drivers that expose a numeric result
// code, such as modernc.org/sqlite
type constraintError interface {
	Code() int
}

// SQLite extended result codes for constraint failures
const (
	sqliteConstraintCheck      = 275
	sqliteConstraintPrimaryKey = 1555
	sqliteConstraintUnique     = 2067
)

// MapError converts database-specific errors to domain errors
func MapError(err error, op string) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505": // unique_violation
			return werrors.NewError(werrors.CodeConflict, "resource already exists", op, werrors.ErrConflict)
		case "23503": // foreign_key_violation
			return werrors.NewError(werrors.CodeNotFound, "referenced resource not found", op, werrors.ErrNotFound)
		case "23514": // check_violation
			return werrors.NewError(werrors.CodeInvalidInput, pqErr.Message, op, werrors.ErrInvalidInput)
		}
	}

	var codeErr constraintError
	if errors.As(err, &codeErr) {
		switch codeErr.Code() {
		case sqliteConstraintPrimaryKey, sqliteConstraintUnique:
			return werrors.NewError(werrors.CodeConflict, "resource already exists", op, werrors.ErrConflict)
		case sqliteConstraintCheck:
			return werrors.NewError(werrors.CodeInvalidInput, err.Error(), op, werrors.ErrInvalidInput)
		}
	}

	if errors.Is(err, sql.ErrNoRows) {
		return werrors.NewError(werrors.CodeNotFound, "resource not found", op, werrors.ErrNotFound)
	}

	return werrors.NewError(werrors.CodeInternal, "internal database error", op, err)
}

// GenerateInsertQuery creates an INSERT query with numbered placeholders
func GenerateInsertQuery(table string, columns []string) string {
	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		table,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
	)
}
