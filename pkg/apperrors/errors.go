// Package apperrors holds the typed error taxonomy shared by the repository
// and service layers. Handlers map these onto HTTP status codes; everything
// else inspects them with errors.Is.
package apperrors

import (
	"errors"
	"fmt"
)

// Sentinel errors — use with errors.Is().
var (
	// ErrValidation is returned when input is rejected before any side effect.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a transition targets a request that has
	// already reached a terminal state, including losing the atomic race.
	ErrConflict = errors.New("conflict")

	// ErrUniqueViolation is returned when an insert collides with a unique
	// constraint, e.g. a duplicate user email.
	ErrUniqueViolation = errors.New("unique constraint violation")
)

// ValidationError carries the offending field and the reason it was rejected.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Validation builds a ValidationError for a single field.
func Validation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError identifies the missing entity.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ConflictError identifies an entity that can no longer accept the attempted
// mutation.
type ConflictError struct {
	Entity string
	ID     string
	Reason string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Entity, e.ID, e.Reason)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// UniqueError identifies the field whose uniqueness constraint was violated.
type UniqueError struct {
	Field string
	Value string
}

func (e *UniqueError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Field, e.Value)
}

func (e *UniqueError) Unwrap() error { return ErrUniqueViolation }

// IsValidation reports whether err is a validation failure.
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

// IsNotFound reports whether err indicates a missing entity.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsConflict reports whether err indicates a terminal-state conflict.
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }

// IsUniqueViolation reports whether err indicates a unique constraint hit.
func IsUniqueViolation(err error) bool { return errors.Is(err, ErrUniqueViolation) }
