// Package apperr holds the error kinds shared by every component.
// Domain errors wrap one of these so handlers can map them with errors.Is.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrConnection: store unreachable or query failed.
	ErrConnection = errors.New("connection error")
	// ErrValidation: missing required field or malformed input.
	ErrValidation = errors.New("validation error")
	// ErrStateConflict: the entity changed state under us (stock exhausted, ticket resolved).
	ErrStateConflict = errors.New("state conflict")
	// ErrNotFound: referenced entity missing.
	ErrNotFound = errors.New("not found")
	// ErrAuthDenied: credential mismatch or missing session.
	ErrAuthDenied = errors.New("auth denied")
)

// Validation wraps ErrValidation with a message.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFound wraps ErrNotFound with the entity name.
func NotFound(entity, id string) error {
	return fmt.Errorf("%w: %s %s", ErrNotFound, entity, id)
}

// Conflict wraps ErrStateConflict with a message.
func Conflict(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrStateConflict, fmt.Sprintf(format, args...))
}

// Connection wraps a store error as ErrConnection, keeping the cause in the chain.
func Connection(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrConnection, op, err)
}

// Kind returns the first kind err belongs to, or nil.
func Kind(err error) error {
	for _, k := range []error{ErrValidation, ErrAuthDenied, ErrNotFound, ErrStateConflict, ErrConnection} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
