package errors

import (
	"errors"
	"fmt"
)

// Common error types for the portal
var (
	// Credential errors
	ErrUnauthorized   = errors.New("unauthorized")
	ErrNoRefreshToken = fmt.Errorf("no refresh token: %w", ErrUnauthorized)

	// Transport errors
	ErrNetwork = errors.New("network error")
	ErrBackend = errors.New("backend error")

	// Catalog errors
	ErrCourseNotFound = errors.New("course not found")

	ErrNotFound = errors.New("not found")

	// Standards errors
	ErrStandardNotFound = fmt.Errorf("standard %w", ErrNotFound)
	ErrSubjectNotFound  = fmt.Errorf("subject %w", ErrNotFound)
)

// ValidationError is a form-level error. Msg is safe to show to the user.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Msg
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Msg)
}

// NewValidationError creates a ValidationError
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Msg: msg}
}

// IsValidation reports whether err carries a ValidationError and returns it
func IsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
