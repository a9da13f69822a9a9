package httpclient

import (
	"errors"
	"fmt"
)

// ErrorCode classifies HTTP client errors.
type ErrorCode int

const (
	// ErrCodeTimeout indicates the request context expired.
	ErrCodeTimeout ErrorCode = iota
	// ErrCodeConnection indicates no response was received (refused, DNS, proxy).
	ErrCodeConnection
	// ErrCodeStatus indicates a response with a non-2xx status.
	ErrCodeStatus
	// ErrCodeValidation indicates the request could not be built.
	ErrCodeValidation
)

// String returns the error code name.
func (c ErrorCode) String() string {
	switch c {
	case ErrCodeTimeout:
		return "timeout"
	case ErrCodeConnection:
		return "connection"
	case ErrCodeStatus:
		return "status"
	case ErrCodeValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// Error is a structured HTTP client error.
type Error struct {
	// StatusCode is the HTTP status code (0 when no response was received).
	StatusCode int
	Code       ErrorCode
	Message    string
	Body       []byte
	Err        error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("httpclient: %s (HTTP %d): %s", e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("httpclient: %s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewTimeoutError creates a timeout error.
func NewTimeoutError(err error) *Error {
	return &Error{Code: ErrCodeTimeout, Message: err.Error(), Err: err}
}

// NewConnectionError creates a connection error.
func NewConnectionError(err error) *Error {
	return &Error{Code: ErrCodeConnection, Message: err.Error(), Err: err}
}

// NewValidationError creates a request validation error.
func NewValidationError(msg string) *Error {
	return &Error{Code: ErrCodeValidation, Message: msg}
}

// ClassifyStatusCode returns nil for 2xx and a status error otherwise.
func ClassifyStatusCode(statusCode int, body []byte) *Error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}
	return &Error{
		StatusCode: statusCode,
		Code:       ErrCodeStatus,
		Message:    fmt.Sprintf("HTTP %d", statusCode),
		Body:       body,
	}
}

// StatusCodeOf returns the HTTP status carried by err, or 0.
func StatusCodeOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return 0
}

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeTimeout
}

// IsConnection checks if an error is a connection error.
func IsConnection(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeConnection
}

// IsStatus checks if an error carries a non-2xx response.
func IsStatus(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeStatus
}
