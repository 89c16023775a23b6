package errors

import (
	"errors"
	"fmt"
)

// ErrorCategory groups failures for logging and metrics labels
type ErrorCategory string

const (
	CategoryInvalidRequest ErrorCategory = "invalid_request"
	CategoryGatewayError   ErrorCategory = "gateway_error"
	CategoryNetworkError   ErrorCategory = "network_error"
	CategorySystemError    ErrorCategory = "system_error"
)

// ErrInvalidArgument is matched by every ValidationError through errors.Is.
// It marks a caller contract violation: the input was structurally wrong and
// retrying with the same input will fail the same way.
var ErrInvalidArgument = errors.New("invalid argument")

// ValidationError represents input validation errors
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// Is reports ErrInvalidArgument as the kind of every validation error
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// Category always returns CategoryInvalidRequest
func (e *ValidationError) Category() ErrorCategory {
	return CategoryInvalidRequest
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// AsValidationError unwraps err into a ValidationError when possible
func AsValidationError(err error) (*ValidationError, bool) {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr, true
	}
	return nil, false
}
