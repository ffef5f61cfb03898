package common

import (
	"symbols-view/src/internal/errors"
)

// Thin wrappers over the unified error system so callers only need one import.

// WrapProcessingError wraps an error with operation context for better error messages
func WrapProcessingError(operation string, err error) error {
	return errors.WrapWithContext(operation, err)
}

// CreateValidationErrorForURI creates a validation error for URI-related issues
func CreateValidationErrorForURI(msg string) error {
	return errors.NewValidationError("uri", msg)
}

// CreateValidationErrorForPosition creates a validation error for position-related issues
func CreateValidationErrorForPosition(msg string) error {
	return errors.NewValidationError("position", msg)
}

// NoActiveProviderError returns a standardized error for tree operations
// attempted before any backing provider was installed
func NoActiveProviderError(operation string) error {
	return errors.NewNoProviderError(operation)
}

// GetErrorCategory returns a category string for error classification
func GetErrorCategory(err error) string {
	if err == nil {
		return "none"
	}

	switch {
	case errors.IsValidationError(err):
		return "validation"
	case errors.IsNoProviderError(err):
		return "no-provider"
	case errors.IsResolutionError(err):
		return "resolution"
	case errors.IsCancellationError(err):
		return "cancellation"
	default:
		return "general"
	}
}
