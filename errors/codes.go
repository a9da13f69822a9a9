package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Catalog errors
const (
	// ErrCodeInvalidURL indicates the catalog root URL is not a valid absolute URL.
	ErrCodeInvalidURL ErrorCode = "INVALID_URL"
	// ErrCodeFetchFailed indicates the catalog discovery request did not succeed.
	ErrCodeFetchFailed ErrorCode = "FETCH_FAILED"
	// ErrCodeShapeMismatch indicates the catalog body does not satisfy the pipeline shape contract.
	ErrCodeShapeMismatch ErrorCode = "SHAPE_MISMATCH"
)

// Generation errors
const (
	// ErrCodeInvalidPrefix indicates the microflow naming prefix is rejected.
	ErrCodeInvalidPrefix ErrorCode = "INVALID_PREFIX"
	// ErrCodeGenerationFailed indicates a template could not be generated for a pipeline.
	ErrCodeGenerationFailed ErrorCode = "GENERATION_FAILED"
	// ErrCodeHostOperation indicates the host model rejected an operation.
	ErrCodeHostOperation ErrorCode = "HOST_OPERATION_FAILED"
)

// Resource errors
const (
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeConflict indicates a conflict with the current state of the resource.
	ErrCodeConflict ErrorCode = "CONFLICT"
)

// Validation and internal errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeInternal indicates an internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Severity is the level a failure is shown to the user with.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

var severities = map[ErrorCode]Severity{
	ErrCodeInvalidURL:       SeverityError,
	ErrCodeFetchFailed:      SeverityError,
	ErrCodeShapeMismatch:    SeverityError,
	ErrCodeInvalidPrefix:    SeverityWarning,
	ErrCodeGenerationFailed: SeverityError,
	ErrCodeHostOperation:    SeverityError,
	ErrCodeNotFound:         SeverityWarning,
	ErrCodeConflict:         SeverityWarning,
	ErrCodeInvalidInput:     SeverityWarning,
	ErrCodeInternal:         SeverityError,
}

// SeverityOfCode returns the notice severity for an error code.
// Unknown codes are reported as errors.
func SeverityOfCode(code ErrorCode) Severity {
	if s, ok := severities[code]; ok {
		return s
	}
	return SeverityError
}
