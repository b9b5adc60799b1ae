// Package domain contains the book catalogue entities and business rules.
// Domain errors describe business failures, not transport failures.
// Adapters decide how each one is presented (HTTP status, envelope message).
package domain

import (
	"errors"
	"fmt"

	"cloud.google.com/go/civil"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrConflict indicates a state conflict such as re-inserting a persisted book.
	ErrConflict = errors.New("conflict")

	// ErrValidation indicates input or a business rule was rejected.
	ErrValidation = errors.New("validation failed")

	// ErrUnavailable indicates the backing store could not be reached.
	ErrUnavailable = errors.New("unavailable")
)

// Rejection messages produced by NormalizePublishedDate.
const (
	MsgPublishDateInFuture      = "Invalid date should be before or equal current date."
	MsgPublishDateNotOnCalendar = "Invalid date should be a valid calendar date."
)

// ConflictError provides context for conflict errors.
type ConflictError struct {
	Entity string
	Reason string
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s conflict: %s", e.Entity, e.Reason)
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// NewConflictError creates a conflict error with context.
func NewConflictError(entity, reason string) error {
	return &ConflictError{Entity: entity, Reason: reason}
}

// ValidationError reports a single rejected input field.
type ValidationError struct {
	Field   string
	Message string
	Value   any
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
	}

	return "validation failed: " + e.Message
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError creates a validation error with context.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewValidationErrorWithValue creates a validation error including the invalid value.
func NewValidationErrorWithValue(field, message string, value any) error {
	return &ValidationError{Field: field, Message: message, Value: value}
}

// PublishDateError is the rejection returned when a published date cannot be
// normalized to a Gregorian date on or before the reference day.
// Its Error() text is user-facing and returned verbatim by the API.
type PublishDateError struct {
	// Date is the date as submitted.
	Date civil.Date

	// Adjusted is the Buddhist Era adjusted candidate that was also rejected.
	Adjusted civil.Date

	Message string
}

// Error implements the error interface.
func (e *PublishDateError) Error() string {
	return e.Message
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *PublishDateError) Unwrap() error {
	return ErrValidation
}

// UnavailableError provides context for unavailable errors.
type UnavailableError struct {
	Service string
	Reason  string
}

// Error implements the error interface.
func (e *UnavailableError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("service %q unavailable: %s", e.Service, e.Reason)
	}

	return fmt.Sprintf("service %q unavailable", e.Service)
}

// Unwrap returns the sentinel error for errors.Is() support.
func (e *UnavailableError) Unwrap() error {
	return ErrUnavailable
}

// NewUnavailableError creates an unavailable error with context.
func NewUnavailableError(service, reason string) error {
	return &UnavailableError{Service: service, Reason: reason}
}

// IsConflict checks if an error is a conflict error.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsValidation checks if an error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsUnavailable checks if an error is an unavailable error.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
