// Package errors provides standardized error handling for the Wrale Kiosk display client
package errors

import (
	"errors"
	"fmt"
)

// Common sentinel errors that can be used across the application
var (
	// ErrNotFound indicates a requested resource doesn't exist
	ErrNotFound = errors.New("resource not found")

	// ErrConflict indicates a resource already exists
	ErrConflict = errors.New("resource already exists")

	// ErrInvalidInput indicates invalid input parameters
	ErrInvalidInput = errors.New("invalid input")

	// ErrFetch indicates a transport failure talking to the Content or Enrichment Service
	ErrFetch = errors.New("fetch failed")

	// ErrMalformedContent indicates widget content cannot be parsed for its declared type
	ErrMalformedContent = errors.New("malformed content")

	// ErrUnknownType indicates a widget type outside the supported set
	ErrUnknownType = errors.New("unknown widget type")
)

// Machine-readable error codes
const (
	CodeNotFound         = "NOT_FOUND"
	CodeConflict         = "CONFLICT"
	CodeInvalidInput     = "INVALID_INPUT"
	CodeInternal         = "INTERNAL"
	CodeFetchFailed      = "FETCH_FAILED"
	CodeMalformedContent = "MALFORMED_CONTENT"
	CodeUnknownType      = "UNKNOWN_TYPE"
)

// Error represents a domain error with additional context
type Error struct {
	// Code is a machine-readable error code
	Code string
	// Message is a human-readable error description
	Message string
	// Op describes the operation that failed
	Op string
	// Err is the underlying error
	Err error
}

// Error implements the error interface with a formatted message
func (e *Error) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return e.Message
}

// Unwrap returns the underlying error for error chain handling
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new Error with the given details
func NewError(code string, message string, op string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Op:      op,
		Err:     err,
	}
}

// NewFetchError wraps a transport failure so that it matches ErrFetch
// while keeping the cause in the chain.
func NewFetchError(op string, message string, cause error) *Error {
	err := ErrFetch
	if cause != nil {
		err = fmt.Errorf("%w: %w", ErrFetch, cause)
		message = fmt.Sprintf("%s: %v", message, cause)
	}
	return NewError(CodeFetchFailed, message, op, err)
}

// NewMalformedContentError reports content that does not parse for its type
func NewMalformedContentError(op string, message string, cause error) *Error {
	err := ErrMalformedContent
	if cause != nil {
		err = fmt.Errorf("%w: %w", ErrMalformedContent, cause)
	}
	return NewError(CodeMalformedContent, message, op, err)
}

// NewUnknownTypeError reports a widget type outside the supported set
func NewUnknownTypeError(op string, widgetType string) *Error {
	return NewError(CodeUnknownType, fmt.Sprintf("unsupported widget type %q", widgetType), op, ErrUnknownType)
}

// CodeOf returns the code of the first Error in err's chain
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// IsNotFound returns true if err represents a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict returns true if err represents a conflict error
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsInvalidInput returns true if err represents an invalid input error
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsFetch returns true if err represents a fetch failure
func IsFetch(err error) bool {
	return errors.Is(err, ErrFetch)
}

// IsMalformedContent returns true if err represents malformed widget content
func IsMalformedContent(err error) bool {
	return errors.Is(err, ErrMalformedContent)
}

// IsUnknownType returns true if err represents an unsupported widget type
func IsUnknownType(err error) bool {
	return errors.Is(err, ErrUnknownType)
}
