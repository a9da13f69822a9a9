package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kbukum/pipegen/errors"
	"github.com/kbukum/pipegen/httpclient"
	"github.com/kbukum/pipegen/logger"
)

const ordersCatalog = `{"pipelines":[{"name":"Orders Sync","description":"","parameters":{"required":["id","active"],"properties":{"id":{"type":"integer"},"active":{"type":"boolean"}}}}]}`

func newTestFetcher(t *testing.T, cfg httpclient.Config) *Fetcher {
	t.Helper()
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	f, err := NewFetcher(cfg, WithLogger(logger.NewNop()), WithClock(func() time.Time { return fixed }))
	if err != nil {
		t.Fatalf("NewFetcher() error: %v", err)
	}
	return f
}

func TestFetch_Success(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(ordersCatalog))
	}))
	defer srv.Close()

	cat, err := newTestFetcher(t, httpclient.Config{}).Fetch(context.Background(), srv.URL+"/doc/index.html")
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if path != "/v1/pipelines/params" {
		t.Errorf("expected discovery path, got %q", path)
	}
	if cat.BaseURL != srv.URL+"/" {
		t.Errorf("expected base %q, got %q", srv.URL+"/", cat.BaseURL)
	}
	if len(cat.Pipelines) != 1 || cat.Pipelines[0].Name != "Orders Sync" {
		t.Errorf("unexpected pipelines: %+v", cat.Pipelines)
	}
	if cat.FetchedAt.Year() != 2026 {
		t.Errorf("expected injected clock, got %v", cat.FetchedAt)
	}
}

func TestFetch_BearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"pipelines":[]}`))
	}))
	defer srv.Close()

	f := newTestFetcher(t, httpclient.Config{Auth: httpclient.BearerAuth("secret")})
	if _, err := f.Fetch(context.Background(), srv.URL); err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
}

func TestFetch_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestFetcher(t, httpclient.Config{}).Fetch(context.Background(), srv.URL+"/")
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.Code != errors.ErrCodeFetchFailed {
		t.Fatalf("expected FETCH_FAILED, got %v", err)
	}
	if appErr.Details["status"] != http.StatusNotFound {
		t.Errorf("expected status 404, got %v", appErr.Details["status"])
	}
	if appErr.Details["url"] != srv.URL+"/v1/pipelines/params" {
		t.Errorf("expected resolved url, got %v", appErr.Details["url"])
	}
	if !strings.Contains(appErr.Message, "Status: 404") {
		t.Errorf("unexpected message %q", appErr.Message)
	}
}

func TestFetch_ShapeErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "<html>swagger</html>"},
		{"wrong shape", `{"pipelines":[{"name":"a","description":""}]}`},
		{"legacy string list", `{"pipelines":["a","b"]}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := newTestFetcher(t, httpclient.Config{}).Fetch(context.Background(), srv.URL)
			if !errors.HasCode(err, errors.ErrCodeShapeMismatch) {
				t.Errorf("expected SHAPE_MISMATCH, got %v", err)
			}
		})
	}
}

func TestFetch_InvalidURL_NoRequest(t *testing.T) {
	var calls atomic.Int32
	transport := roundTripper(func(*http.Request) (*http.Response, error) {
		calls.Add(1)
		return nil, nil
	})

	_, err := newTestFetcher(t, httpclient.Config{Transport: transport}).Fetch(context.Background(), "not a url")
	if !errors.HasCode(err, errors.ErrCodeInvalidURL) {
		t.Fatalf("expected INVALID_URL, got %v", err)
	}
	if calls.Load() != 0 {
		t.Errorf("expected no request, got %d", calls.Load())
	}
}

func TestFetch_TransportFailure(t *testing.T) {
	transport := roundTripper(func(*http.Request) (*http.Response, error) {
		return nil, fmt.Errorf("proxy refused")
	})

	_, err := newTestFetcher(t, httpclient.Config{Transport: transport}).Fetch(context.Background(), "http://h")
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.Code != errors.ErrCodeFetchFailed {
		t.Fatalf("expected FETCH_FAILED, got %v", err)
	}
	if appErr.Details["status"] != 0 {
		t.Errorf("expected status 0, got %v", appErr.Details["status"])
	}
}

type roundTripper func(*http.Request) (*http.Response, error)

func (f roundTripper) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }
