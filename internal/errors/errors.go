// Package errors defines the service error taxonomy shared across layers.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode identifies a class of failure in API responses.
type ErrorCode string

const (
	CodeValidation       ErrorCode = "VALIDATION_FAILED"
	CodeUnauthorized     ErrorCode = "UNAUTHORIZED"
	CodeTokenExpired     ErrorCode = "TOKEN_EXPIRED"
	CodeTokenInvalid     ErrorCode = "TOKEN_INVALID"
	CodeConflict         ErrorCode = "CONFLICT"
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeMethodNotAllowed ErrorCode = "METHOD_NOT_ALLOWED"
	CodeInternal         ErrorCode = "INTERNAL_ERROR"
)

// ServiceError carries a code, a user-facing message, and the HTTP status
// the boundary should respond with. Err retains the underlying cause for
// logging; it is never serialized.
type ServiceError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Details    map[string]interface{}
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// WithDetails attaches a key/value pair for the response body.
func (e *ServiceError) WithDetails(key string, value interface{}) *ServiceError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// Validation reports malformed or out-of-range input.
func Validation(message string) *ServiceError {
	return &ServiceError{Code: CodeValidation, Message: message, HTTPStatus: http.StatusBadRequest}
}

// Unauthorized reports a missing or failed authentication.
func Unauthorized(message string) *ServiceError {
	return &ServiceError{Code: CodeUnauthorized, Message: message, HTTPStatus: http.StatusUnauthorized}
}

// ExpiredToken reports a token whose signature verified but whose expiry
// has elapsed.
func ExpiredToken(message string) *ServiceError {
	return &ServiceError{Code: CodeTokenExpired, Message: message, HTTPStatus: http.StatusUnauthorized}
}

// InvalidToken reports a token that could not be verified at all.
func InvalidToken(message string, err error) *ServiceError {
	return &ServiceError{Code: CodeTokenInvalid, Message: message, HTTPStatus: http.StatusUnauthorized, Err: err}
}

// Conflict reports a unique-key violation.
func Conflict(message string) *ServiceError {
	return &ServiceError{Code: CodeConflict, Message: message, HTTPStatus: http.StatusConflict}
}

// NotFound reports a missing resource.
func NotFound(message string) *ServiceError {
	return &ServiceError{Code: CodeNotFound, Message: message, HTTPStatus: http.StatusNotFound}
}

// MethodNotAllowed reports an operation the resource never supports.
func MethodNotAllowed(message string) *ServiceError {
	return &ServiceError{Code: CodeMethodNotAllowed, Message: message, HTTPStatus: http.StatusMethodNotAllowed}
}

// Internal wraps an unexpected failure. The cause is kept for logs; the
// message is what callers see.
func Internal(message string, err error) *ServiceError {
	return &ServiceError{Code: CodeInternal, Message: message, HTTPStatus: http.StatusInternalServerError, Err: err}
}

// GetServiceError returns the ServiceError in err's chain, or nil.
func GetServiceError(err error) *ServiceError {
	var serviceErr *ServiceError
	if stderrors.As(err, &serviceErr) {
		return serviceErr
	}
	return nil
}

// IsCode reports whether err is a ServiceError with the given code.
func IsCode(err error, code ErrorCode) bool {
	serviceErr := GetServiceError(err)
	return serviceErr != nil && serviceErr.Code == code
}
