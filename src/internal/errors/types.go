package errors

import (
	"context"
	"errors"
	"fmt"
)

// ValidationError represents an invalid input value such as a malformed URI
// or a position that no longer exists in the document.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidationError checks if an error is a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// NoProviderError is returned when a tree operation is attempted while no
// backing data provider is set. This indicates an orchestration bug: a
// provider is always installed before the view is shown.
type NoProviderError struct {
	Operation string
}

func (e *NoProviderError) Error() string {
	return fmt.Sprintf("%s: no active data provider", e.Operation)
}

// NewNoProviderError creates a new NoProviderError for the given tree operation
func NewNoProviderError(operation string) error {
	return &NoProviderError{Operation: operation}
}

// IsNoProviderError checks if an error is a NoProviderError
func IsNoProviderError(err error) bool {
	var npe *NoProviderError
	return errors.As(err, &npe)
}

// ResolutionError wraps a failure while resolving a tree input into a model.
// Resolution failures are logged and swallowed at the delegate boundary, so
// this type mostly shows up in logs rather than in return paths.
type ResolutionError struct {
	Kind  string
	Cause error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("failed to resolve %s input: %v", e.Kind, e.Cause)
}

func (e *ResolutionError) Unwrap() error {
	return e.Cause
}

// NewResolutionError creates a new ResolutionError
func NewResolutionError(kind string, cause error) error {
	return &ResolutionError{Kind: kind, Cause: cause}
}

// IsResolutionError checks if an error is a ResolutionError
func IsResolutionError(err error) bool {
	var re *ResolutionError
	return errors.As(err, &re)
}

// WrapWithContext wraps an error with operation context for better error messages
func WrapWithContext(operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", operation, err)
}

// IsCancellationError checks whether an error stems from context cancellation
func IsCancellationError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
