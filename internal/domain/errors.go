package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for conditions that carry no extra context.
var (
	// ErrModelNotTrained means the vertical model has never completed a
	// training pass; the request cannot be served until a retrain runs.
	ErrModelNotTrained = errors.New("forecast model has not been trained")

	// ErrUpstreamUnavailable means an external signal fetch failed and the
	// deterministic fallback was unusable as well. It is rare: the adapter
	// normally absorbs upstream failures via fallback snapshots.
	ErrUpstreamUnavailable = errors.New("external factor source unavailable")
)

// ValidationError rejects bad input immediately; it is never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid input: %s", e.Reason)
	}
	return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Reason)
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError marks an unknown product or entity.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

// NewNotFoundError builds a NotFoundError.
func NewNotFoundError(entity, id string) error {
	return &NotFoundError{Entity: entity, ID: id}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
