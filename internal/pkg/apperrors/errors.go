package apperrors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Taxonomy errors. Every error returned by a service wraps exactly one of these.
var (
	// ErrNotFound means a referenced document id does not resolve
	ErrNotFound = errors.New("resource not found")

	// ErrAccessDenied means an access predicate failed for the caller
	ErrAccessDenied = errors.New("access denied")

	// ErrValidationFailed means a required field is missing or malformed
	ErrValidationFailed = errors.New("validation failed")

	// ErrBackendUnavailable means the persistence or auth collaborator rejected the call
	ErrBackendUnavailable = errors.New("backend unavailable")
)

// Authentication errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrEmailAlreadyExists = errors.New("email already exists")
)

// NewNotFoundError creates a not-found error naming the missing resource
func NewNotFoundError(resource, id string) *CustomError {
	return &CustomError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s %s not found", resource, id),
		Details: map[string]interface{}{"resource": resource, "id": id},
	}
}

// NewAccessDeniedError creates a new custom error for a failed access check
func NewAccessDeniedError(message string) *CustomError {
	return &CustomError{
		Err:     ErrAccessDenied,
		Message: message,
	}
}

// NewValidationError creates a validation error with per-field messages
func NewValidationError(fields map[string]string) *CustomError {
	details := make(map[string]interface{}, len(fields))
	keys := make([]string, 0, len(fields))
	for k, v := range fields {
		details[k] = v
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, fields[k])
	}

	return &CustomError{
		Err:     ErrValidationFailed,
		Message: strings.Join(msgs, "; "),
		Details: details,
	}
}

// NewBackendError wraps a collaborator failure
func NewBackendError(op string, err error) *CustomError {
	return &CustomError{
		Err:     ErrBackendUnavailable,
		Message: fmt.Sprintf("%s: %v", op, err),
		cause:   err,
	}
}

// Is returns whether target matches any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Code    string
	Details map[string]interface{}

	cause error
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap exposes both the taxonomy sentinel and the underlying cause
func (e *CustomError) Unwrap() []error {
	if e.cause != nil {
		return []error{e.Err, e.cause}
	}
	return []error{e.Err}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}

// FieldErrors returns the per-field validation messages, if any
func FieldErrors(err error) map[string]string {
	var ce *CustomError
	if !errors.As(err, &ce) || !errors.Is(ce.Err, ErrValidationFailed) {
		return nil
	}
	out := make(map[string]string, len(ce.Details))
	for k, v := range ce.Details {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}
