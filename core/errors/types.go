// ABOUTME: Custom error types for the fetch-cache-extract engine
// ABOUTME: Classifies HTTP failures as retryable or terminal and carries config validation errors

package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// HTTPStatusError is returned when a source answers with a non-2xx status
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

// Error implements the error interface
func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("GET %s: %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// Terminal reports whether retrying the request cannot change the outcome
func (e *HTTPStatusError) Terminal() bool {
	return IsTerminalStatus(e.StatusCode)
}

// IsTerminalStatus reports whether code is one of the statuses that stop the retry loop
func IsTerminalStatus(code int) bool {
	switch code {
	case http.StatusForbidden, http.StatusNotFound, http.StatusGone:
		return true
	}
	return false
}

// IsNotFound checks if an error is a NotFoundError
func IsNotFound(err error) bool {
	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr)
}

// IsValidation checks if an error is a ValidationError
func IsValidation(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// IsHTTPStatus checks if an error is an HTTPStatusError
func IsHTTPStatus(err error) bool {
	var statusErr *HTTPStatusError
	return errors.As(err, &statusErr)
}

// StatusCode extracts the HTTP status code from err, or 0 when err carries none
func StatusCode(err error) int {
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}

// WrapError wraps an error with additional context
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
