package httpclient

import (
	"net/http"
	"testing"
)

func TestAuthConfig_Apply(t *testing.T) {
	tests := []struct {
		name   string
		auth   *AuthConfig
		header string
		want   string
	}{
		{"bearer", BearerAuth("tok"), "Authorization", "Bearer tok"},
		{"api key default header", APIKeyAuth("k1", ""), "X-API-Key", "k1"},
		{"api key custom header", APIKeyAuth("k2", "X-Token"), "X-Token", "k2"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
			tc.auth.apply(req)
			if got := req.Header.Get(tc.header); got != tc.want {
				t.Errorf("%s = %q, want %q", tc.header, got, tc.want)
			}
		})
	}
}

func TestBasicAuth(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
	BasicAuth("user", "pass").apply(req)
	u, p, ok := req.BasicAuth()
	if !ok || u != "user" || p != "pass" {
		t.Errorf("basic auth not set correctly: user=%q pass=%q ok=%v", u, p, ok)
	}
}

func TestNilAuth(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
	var a *AuthConfig
	a.apply(req)
	if len(req.Header) != 0 {
		t.Errorf("expected no headers, got %v", req.Header)
	}
}
