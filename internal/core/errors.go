package core

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyCategory = errors.New("empty category")
	ErrInvalidKind   = errors.New("invalid kind")
	ErrInvalidDate   = errors.New("invalid date")

	// ErrCorrupt marks stored content that exists but cannot be decoded.
	ErrCorrupt = errors.New("corrupt store content")
)

// ValidationError is returned when a record cannot be constructed.
type ValidationError struct {
	Field string
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("validate %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// PersistenceError wraps a failure to read or write the backing store.
type PersistenceError struct {
	Op    string
	Store string
	Path  string // Optional: file path or range
	Err   error
}

func (e *PersistenceError) Error() string {
	if e == nil {
		return "<nil>"
	}

	base := e.Op
	if e.Store != "" {
		base = fmt.Sprintf("%s [%s]", base, e.Store)
	}
	if e.Path != "" {
		base += fmt.Sprintf(" (path=%s)", e.Path)
	}
	if e.Err != nil {
		base += fmt.Sprintf(": %v", e.Err)
	}
	return base
}

func (e *PersistenceError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Corrupt builds a PersistenceError for content that could not be decoded.
func Corrupt(op, store, path string, err error) *PersistenceError {
	return &PersistenceError{
		Op:    op,
		Store: store,
		Path:  path,
		Err:   fmt.Errorf("%w: %w", ErrCorrupt, err),
	}
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsPersistence reports whether err carries a PersistenceError.
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
