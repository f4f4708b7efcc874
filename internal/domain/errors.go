package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound          = errors.New("not found")
	ErrAlreadyExists     = errors.New("already exists")
	ErrValidation        = errors.New("validation error")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrComplexity        = errors.New("query complexity exceeded")
	ErrResourceExhausted = errors.New("resource exhausted")
)

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// ComplexityError is returned by admission control when a query
// exceeds the complexity or depth budget. It is raised before any
// store access and is not retryable.
type ComplexityError struct {
	Complexity    int
	MaxComplexity int
	Depth         int
	MaxDepth      int
}

func (e *ComplexityError) Error() string {
	if e.Depth > e.MaxDepth {
		return fmt.Sprintf("query depth %d exceeds maximum %d", e.Depth, e.MaxDepth)
	}
	return fmt.Sprintf("query complexity %d exceeds maximum %d", e.Complexity, e.MaxComplexity)
}

func (e *ComplexityError) Unwrap() error { return ErrComplexity }
