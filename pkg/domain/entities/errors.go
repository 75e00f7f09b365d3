package entities

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation matches any *ValidationError via errors.Is
	ErrValidation = errors.New("validation failed")
	// ErrNotFound matches any *NotFoundError via errors.Is
	ErrNotFound = errors.New("not found")
)

// ValidationError reports a rejected write, naming the offending field
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError creates a ValidationError with a formatted reason
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// Is reports whether target is ErrValidation
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NotFoundError reports a lookup of an unknown resource
type NotFoundError struct {
	Resource string
	ID       string
}

// NewSKUNotFoundError creates a NotFoundError for a SKU
func NewSKUNotFoundError(sku SKUID) *NotFoundError {
	return &NotFoundError{Resource: "sku", ID: string(sku)}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// Is reports whether target is ErrNotFound
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// InsufficientDataError reports a forecast shorter than the critical window.
// It is informational only: the engine sums whatever is available.
type InsufficientDataError struct {
	Required  int
	Available int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("forecast covers %d of %d critical window days", e.Available, e.Required)
}
