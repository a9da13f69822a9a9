package errors

import (
	"fmt"
	"net/http"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// Severity returns the level the error is surfaced to the user with.
func (e *AppError) Severity() Severity { return SeverityOfCode(e.Code) }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// --- Catalog errors ---

// InvalidURL creates an error for a catalog root that is not a valid URL.
func InvalidURL(raw string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidURL, Message: fmt.Sprintf("Invalid URL: %q. Please enter a valid URL.", raw),
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"url": raw},
	}
}

// FetchFailed creates an error for an unsuccessful discovery request.
// A status of 0 means no response was received.
func FetchFailed(status int, url string) *AppError {
	msg := fmt.Sprintf("Failed to fetch from URL. Status: %d from URL: %s", status, url)
	if status == 0 {
		msg = fmt.Sprintf("Error fetching from URL: %s", url)
	}
	return &AppError{
		Code: ErrCodeFetchFailed, Message: msg,
		HTTPStatus: http.StatusBadGateway,
		Details:    map[string]any{"status": status, "url": url},
	}
}

// ShapeMismatch creates an error for a catalog body that violates the shape contract.
func ShapeMismatch(reason string) *AppError {
	return &AppError{
		Code: ErrCodeShapeMismatch, Message: fmt.Sprintf("Unexpected pipeline catalog format: %s", reason),
		HTTPStatus: http.StatusBadGateway,
	}
}

// --- Generation errors ---

// InvalidPrefix creates an error for a rejected microflow naming prefix.
func InvalidPrefix(prefix, reason string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidPrefix, Message: fmt.Sprintf("Invalid microflow prefix %q: %s", prefix, reason),
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"prefix": prefix},
	}
}

// GenerationFailed creates an error for a pipeline that cannot be turned into a template.
func GenerationFailed(pipeline, reason string) *AppError {
	return &AppError{
		Code: ErrCodeGenerationFailed, Message: fmt.Sprintf("Cannot generate microflow for %q: %s", pipeline, reason),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"pipeline": pipeline},
	}
}

// HostOperation wraps a failure surfaced by the host model. A client error
// from the host (not found, conflict, bad input) keeps its HTTP status.
func HostOperation(operation string, cause error) *AppError {
	e := &AppError{
		Code: ErrCodeHostOperation, Message: fmt.Sprintf("Host operation %s failed.", operation),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"operation": operation}, Cause: cause,
	}
	if appErr, ok := AsAppError(cause); ok {
		e.Message = fmt.Sprintf("Host operation %s failed: %s", operation, appErr.Message)
		if appErr.HTTPStatus >= 400 && appErr.HTTPStatus < 500 {
			e.HTTPStatus = appErr.HTTPStatus
		}
	}
	return e
}

// --- Common errors ---

// NotFound creates a new AppError for a resource that was not found.
func NotFound(resource, id string) *AppError {
	details := map[string]any{"resource": resource}
	if id != "" {
		details["id"] = id
	}
	return &AppError{
		Code: ErrCodeNotFound, Message: fmt.Sprintf("The requested %s was not found.", resource),
		HTTPStatus: http.StatusNotFound, Details: details,
	}
}

// Conflict creates a new AppError for a conflict with the current state of the resource.
func Conflict(reason string) *AppError {
	return &AppError{
		Code: ErrCodeConflict, Message: reason,
		HTTPStatus: http.StatusConflict,
	}
}

// InvalidInput creates a new AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		HTTPStatus: http.StatusBadRequest, Details: details,
	}
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// Internal creates a new AppError for an internal error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred.",
		HTTPStatus: http.StatusInternalServerError, Cause: cause,
	}
}
