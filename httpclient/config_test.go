package httpclient

import (
	"testing"
	"time"
)

func TestConfig_ApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Timeout != 30*time.Second {
		t.Errorf("expected 30s default timeout, got %s", cfg.Timeout)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Timeout: time.Second}, false},
		{"zero timeout", Config{}, true},
		{"valid proxy", Config{Timeout: time.Second, Proxy: "http://p:8080"}, false},
		{"relative proxy", Config{Timeout: time.Second, Proxy: "p:8080"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.cfg.Validate(); (err != nil) != tc.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestNew_RejectsInvalidProxy(t *testing.T) {
	if _, err := New(Config{Proxy: "::bad"}); err == nil {
		t.Error("expected error for invalid proxy")
	}
}
