// Package errors defines structured error types for the API.
package errors

import (
	"fmt"
	"net/http"
)

// ErrorCode defines specific error types for the API.
type ErrorCode string

const (
	// ErrValidationFailed is returned when input data fails validation
	ErrValidationFailed ErrorCode = "VALIDATION_FAILED"
	// ErrMissingField is returned when a required field is missing
	ErrMissingField ErrorCode = "MISSING_FIELD"

	// ErrNotFound is returned when a resource is not found
	ErrNotFound ErrorCode = "NOT_FOUND"
	// ErrStoreNotFound is returned when a store id does not resolve
	ErrStoreNotFound ErrorCode = "STORE_NOT_FOUND"
	// ErrInventoryNotFound is returned when an inventory id does not resolve
	ErrInventoryNotFound ErrorCode = "INVENTORY_NOT_FOUND"

	// ErrInvalidCredentials is returned when sign-in matches no user record
	ErrInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	// ErrUnauthorized is returned when authentication is missing or invalid
	ErrUnauthorized ErrorCode = "UNAUTHORIZED"

	// ErrUpstream is returned when the collection store request fails
	ErrUpstream ErrorCode = "UPSTREAM_ERROR"
	// ErrInternal is returned when an unexpected server error occurs
	ErrInternal ErrorCode = "INTERNAL_ERROR"
)

// ErrorWithStatus is an error that includes an HTTP status code and error code.
type ErrorWithStatus interface {
	Error() string
	StatusCode() int
	Code() ErrorCode
	Details() map[string]any
}

// APIError is a concrete error type with status code, code, and optional details.
type APIError struct {
	statusCode int
	code       ErrorCode
	message    string
	details    map[string]any
	wrappedErr error
}

// NewAPIError creates a new APIError with the given status code and message.
func NewAPIError(statusCode int, code ErrorCode, message string) *APIError {
	return &APIError{
		statusCode: statusCode,
		code:       code,
		message:    message,
		details:    make(map[string]any),
	}
}

// WithDetail adds a single detail to the error.
func (e *APIError) WithDetail(key string, value any) *APIError {
	if e.details == nil {
		e.details = make(map[string]any)
	}
	e.details[key] = value
	return e
}

// Wrap wraps an underlying error.
func (e *APIError) Wrap(err error) *APIError {
	e.wrappedErr = err
	return e
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.wrappedErr != nil {
		return fmt.Sprintf("%s: %v", e.message, e.wrappedErr)
	}
	return e.message
}

// Unwrap returns the wrapped error, if any.
func (e *APIError) Unwrap() error {
	return e.wrappedErr
}

// StatusCode returns the HTTP status code.
func (e *APIError) StatusCode() int {
	return e.statusCode
}

// Code returns the error code.
func (e *APIError) Code() ErrorCode {
	return e.code
}

// Details returns additional error details.
func (e *APIError) Details() map[string]any {
	return e.details
}

// MissingField creates an error for a missing required field.
func MissingField(field string) *APIError {
	return NewAPIError(http.StatusBadRequest, ErrMissingField, fmt.Sprintf("Missing required field: %s", field)).
		WithDetail("field", field)
}

// Validation creates an error for input that fails validation.
func Validation(message string) *APIError {
	return NewAPIError(http.StatusBadRequest, ErrValidationFailed, message)
}

// NotFound creates an error for a missing resource.
func NotFound(code ErrorCode, message string) *APIError {
	return NewAPIError(http.StatusNotFound, code, message)
}

// Unauthorized creates an error for a request with no valid identity. The
// redirect detail tells the caller where the sign-in flow lives.
func Unauthorized(message string) *APIError {
	return NewAPIError(http.StatusUnauthorized, ErrUnauthorized, message).
		WithDetail("redirect", "/login")
}

// UpstreamWithError creates an error for a failed collection store request.
func UpstreamWithError(message string, err error) *APIError {
	return NewAPIError(http.StatusBadGateway, ErrUpstream, message).Wrap(err)
}

// InternalWithError creates an internal error wrapping an underlying cause.
func InternalWithError(message string, err error) *APIError {
	return NewAPIError(http.StatusInternalServerError, ErrInternal, message).Wrap(err)
}
