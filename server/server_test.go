package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/pipegen/errors"
	"github.com/kbukum/pipegen/logger"
)

func newTestServer() *Server {
	cfg := Config{Host: "127.0.0.1"}
	cfg.ApplyDefaults()
	cfg.Port = 0
	s := New(cfg, logger.NewNop())
	s.ApplyDefaults("pipegen")
	return s
}

func TestConfig(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Port != 8080 || cfg.MaxBodySize != "1MB" || len(cfg.CORS.AllowedOrigins) != 1 {
		t.Errorf("unexpected defaults %+v", cfg)
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"port too high", func(c *Config) { c.Port = 70000 }, true},
		{"negative read timeout", func(c *Config) { c.ReadTimeout = -1 }, true},
		{"bad body size", func(c *Config) { c.MaxBodySize = "huge" }, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := cfg
			tc.mutate(&c)
			if err := c.Validate(); (err != nil) != tc.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestServer_DefaultEndpoints(t *testing.T) {
	s := newTestServer()
	for _, path := range []string{"/health", "/alive", "/ready", "/version", "/metrics"} {
		rr := httptest.NewRecorder()
		s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, http.NoBody))
		if rr.Code != http.StatusOK {
			t.Errorf("GET %s: expected 200, got %d", path, rr.Code)
		}
		if rr.Header().Get("X-Request-Id") == "" {
			t.Errorf("GET %s: expected request id header", path)
		}
	}
}

func TestServer_Responses(t *testing.T) {
	s := newTestServer()
	e := s.GinEngine()
	e.GET("/ok", func(c *gin.Context) { RespondOK(c, gin.H{"n": 1}) })
	e.GET("/app-error", func(c *gin.Context) { RespondWithError(c, apperrors.NotFound("pipeline", "x")) })
	e.GET("/plain-error", func(c *gin.Context) { RespondWithError(c, fmt.Errorf("boom")) })

	tests := []struct {
		path     string
		wantCode int
		wantErr  apperrors.ErrorCode
	}{
		{"/ok", http.StatusOK, ""},
		{"/app-error", http.StatusNotFound, apperrors.ErrCodeNotFound},
		{"/plain-error", http.StatusInternalServerError, apperrors.ErrCodeInternal},
	}
	for _, tc := range tests {
		rr := httptest.NewRecorder()
		s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tc.path, http.NoBody))
		if rr.Code != tc.wantCode {
			t.Errorf("GET %s: expected %d, got %d", tc.path, tc.wantCode, rr.Code)
			continue
		}
		if tc.wantErr == "" {
			continue
		}
		var body apperrors.ErrorResponse
		if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if body.Error.Code != tc.wantErr {
			t.Errorf("GET %s: expected %s, got %s", tc.path, tc.wantErr, body.Error.Code)
		}
	}
}

func TestServer_StartStop(t *testing.T) {
	s := newTestServer()
	ctx := context.Background()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop(ctx)

	resp, err := http.Get("http://" + s.Addr() + "/alive")
	if err != nil {
		t.Fatalf("GET /alive: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestServer_Routes(t *testing.T) {
	s := newTestServer()
	s.GinEngine().POST("/api/v1/microflows", func(c *gin.Context) {})
	routes := s.Routes()
	if len(routes) == 0 || routes[0].Path != "/api/v1/microflows" {
		t.Errorf("expected API routes first, got %+v", routes)
	}
}

func TestFormatHandlerName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"github.com/kbukum/pipegen/api.(*Handler).CreateMicroflow-fm", "Handler.CreateMicroflow"},
		{"github.com/kbukum/pipegen/server/endpoint.Health.func1", "health"},
	}
	for _, tc := range tests {
		if got := formatHandlerName(tc.in); got != tc.want {
			t.Errorf("formatHandlerName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
