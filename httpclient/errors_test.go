package httpclient

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorCode_String(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want string
	}{
		{ErrCodeTimeout, "timeout"},
		{ErrCodeConnection, "connection"},
		{ErrCodeStatus, "status"},
		{ErrCodeValidation, "validation"},
		{ErrorCode(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.code.String(); got != tt.want {
			t.Errorf("ErrorCode(%d).String() = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestError_Error(t *testing.T) {
	e := &Error{StatusCode: 404, Code: ErrCodeStatus, Message: "HTTP 404"}
	if got, want := e.Error(), "httpclient: status (HTTP 404): HTTP 404"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	e2 := NewConnectionError(errors.New("connection refused"))
	if got, want := e2.Error(), "httpclient: connection: connection refused"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestClassifyStatusCode(t *testing.T) {
	for _, code := range []int{200, 201, 204} {
		if err := ClassifyStatusCode(code, nil); err != nil {
			t.Errorf("ClassifyStatusCode(%d) = %v, want nil", code, err)
		}
	}
	for _, code := range []int{301, 400, 404, 500} {
		err := ClassifyStatusCode(code, []byte("x"))
		if err == nil || err.Code != ErrCodeStatus || err.StatusCode != code {
			t.Errorf("ClassifyStatusCode(%d) = %v", code, err)
		}
	}
}

func TestStatusCodeOf_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("fetch: %w", ClassifyStatusCode(502, nil))
	if StatusCodeOf(wrapped) != 502 {
		t.Errorf("expected 502, got %d", StatusCodeOf(wrapped))
	}
	if StatusCodeOf(errors.New("plain")) != 0 {
		t.Error("expected 0 for foreign errors")
	}
	if !IsStatus(wrapped) || IsTimeout(wrapped) || IsConnection(wrapped) {
		t.Error("unexpected classification for wrapped status error")
	}
}
