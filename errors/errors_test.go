package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestAppError_New_Success(t *testing.T) {
	err := New(ErrCodeNotFound, "not found", http.StatusNotFound)
	if err.Code != ErrCodeNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeNotFound, err.Code)
	}
	if err.Message != "not found" {
		t.Errorf("expected message 'not found', got %q", err.Message)
	}
	if err.HTTPStatus != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, err.HTTPStatus)
	}
}

func TestAppError_FetchFailed_CarriesStatusAndURL(t *testing.T) {
	err := FetchFailed(503, "http://h/v1/pipelines/params")
	if err.Code != ErrCodeFetchFailed {
		t.Errorf("expected FETCH_FAILED, got %s", err.Code)
	}
	if err.Details["status"] != 503 {
		t.Errorf("expected status=503, got %v", err.Details["status"])
	}
	if err.Details["url"] != "http://h/v1/pipelines/params" {
		t.Errorf("expected url detail, got %v", err.Details["url"])
	}
	if !strings.Contains(err.Message, "Status: 503") {
		t.Errorf("expected message to mention status, got %q", err.Message)
	}
}

func TestAppError_FetchFailed_NoResponse(t *testing.T) {
	err := FetchFailed(0, "http://h")
	if strings.Contains(err.Message, "Status") {
		t.Errorf("expected message without status for transport failure, got %q", err.Message)
	}
}

func TestAppError_NotFound_EmptyID(t *testing.T) {
	err := NotFound("microflow", "")
	if _, ok := err.Details["id"]; ok {
		t.Error("expected no 'id' key in details when id is empty")
	}
}

func TestAppError_HostOperation_KeepsClientStatus(t *testing.T) {
	err := HostOperation("open", NotFound("microflow", "42"))
	if err.HTTPStatus != http.StatusNotFound {
		t.Errorf("expected 404, got %d", err.HTTPStatus)
	}
	if !strings.Contains(err.Message, "microflow was not found") {
		t.Errorf("expected cause message in %q", err.Message)
	}
	if err := HostOperation("persist", Internal(nil)); err.HTTPStatus != http.StatusInternalServerError {
		t.Errorf("expected 500 for server-side cause, got %d", err.HTTPStatus)
	}
}

func TestAppError_HostOperation_WrapsCause(t *testing.T) {
	cause := fmt.Errorf("save conflict")
	err := HostOperation("persist", cause)
	if err.Unwrap() != cause {
		t.Error("Unwrap should return the cause")
	}
	if !strings.Contains(err.Error(), "save conflict") {
		t.Errorf("Error() should contain cause, got %q", err.Error())
	}
}

func TestAppError_WithDetail_NilMap(t *testing.T) {
	err := &AppError{}
	err.WithDetail("key", "value")
	if err.Details["key"] != "value" {
		t.Errorf("expected key=value, got %v", err.Details["key"])
	}
}

func TestAppError_Constructors_Table(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		code     ErrorCode
		status   int
		severity Severity
	}{
		{"InvalidURL", InvalidURL("nope"), ErrCodeInvalidURL, http.StatusBadRequest, SeverityError},
		{"FetchFailed", FetchFailed(404, "u"), ErrCodeFetchFailed, http.StatusBadGateway, SeverityError},
		{"ShapeMismatch", ShapeMismatch("x"), ErrCodeShapeMismatch, http.StatusBadGateway, SeverityError},
		{"InvalidPrefix", InvalidPrefix("H", "too short"), ErrCodeInvalidPrefix, http.StatusBadRequest, SeverityWarning},
		{"GenerationFailed", GenerationFailed("p", "bad"), ErrCodeGenerationFailed, http.StatusUnprocessableEntity, SeverityError},
		{"HostOperation", HostOperation("persist", nil), ErrCodeHostOperation, http.StatusInternalServerError, SeverityError},
		{"Conflict", Conflict("busy"), ErrCodeConflict, http.StatusConflict, SeverityWarning},
		{"Validation", Validation("bad input"), ErrCodeInvalidInput, http.StatusBadRequest, SeverityWarning},
		{"Internal", Internal(nil), ErrCodeInternal, http.StatusInternalServerError, SeverityError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Code != tc.code {
				t.Errorf("expected code %s, got %s", tc.code, tc.err.Code)
			}
			if tc.err.HTTPStatus != tc.status {
				t.Errorf("expected status %d, got %d", tc.status, tc.err.HTTPStatus)
			}
			if tc.err.Severity() != tc.severity {
				t.Errorf("expected severity %s, got %s", tc.severity, tc.err.Severity())
			}
		})
	}
}

func TestAppError_ToResponse_Success(t *testing.T) {
	resp := InvalidPrefix("H", "too short").ToResponse()
	if resp.Error.Code != ErrCodeInvalidPrefix {
		t.Errorf("expected code INVALID_PREFIX in response, got %s", resp.Error.Code)
	}
	if resp.Error.Severity != SeverityWarning {
		t.Errorf("expected warning severity, got %s", resp.Error.Severity)
	}
	if resp.Error.Details["prefix"] != "H" {
		t.Error("expected prefix=H in response details")
	}
}

func TestAsAppError_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("wrap: %w", ShapeMismatch("missing name"))

	got, ok := AsAppError(wrapped)
	if !ok {
		t.Fatal("expected AsAppError to succeed for wrapped AppError")
	}
	if got.Code != ErrCodeShapeMismatch {
		t.Errorf("expected SHAPE_MISMATCH, got %s", got.Code)
	}
	if !HasCode(wrapped, ErrCodeShapeMismatch) {
		t.Error("expected HasCode to match through wrapping")
	}

	if _, ok := AsAppError(fmt.Errorf("plain")); ok {
		t.Error("expected AsAppError to return false for non-AppError")
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil) != nil {
		t.Error("Wrap(nil) should return nil")
	}

	orig := NotFound("item", "1")
	if Wrap(orig) != orig {
		t.Error("Wrap should return the original AppError unchanged")
	}

	plain := fmt.Errorf("something broke")
	got := Wrap(plain)
	if got.Code != ErrCodeInternal {
		t.Errorf("expected INTERNAL_ERROR, got %s", got.Code)
	}
	if got.Cause != plain {
		t.Error("expected cause to be the original error")
	}
}

func TestSeverityOf(t *testing.T) {
	if SeverityOf(fmt.Errorf("plain")) != SeverityError {
		t.Error("plain errors should be reported as errors")
	}
	if SeverityOf(Conflict("busy")) != SeverityWarning {
		t.Error("conflicts should be reported as warnings")
	}
	if SeverityOfCode("SOMETHING_ELSE") != SeverityError {
		t.Error("unknown codes should default to error severity")
	}
}

func TestAppError_ImplementsErrorInterface(t *testing.T) {
	var err error = NotFound("test", "1")
	var appErr *AppError
	if !stderrors.As(err, &appErr) {
		t.Error("stderrors.As should work with AppError")
	}
}
