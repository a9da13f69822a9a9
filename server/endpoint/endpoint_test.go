package endpoint

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/pipegen/observability"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type staticChecker observability.Health

func (s staticChecker) CheckHealth(context.Context) observability.Health {
	return observability.Health(s)
}

func serve(h gin.HandlerFunc) *httptest.ResponseRecorder {
	r := gin.New()
	r.GET("/", h)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
	return rr
}

func TestHealth(t *testing.T) {
	up := staticChecker{Name: "store", Status: observability.HealthStatusUp}
	degraded := staticChecker{Name: "store", Status: observability.HealthStatusDegraded}
	down := staticChecker{Name: "store", Status: observability.HealthStatusDown, Message: "closed"}

	tests := []struct {
		name       string
		checkers   []observability.HealthChecker
		wantCode   int
		wantStatus observability.HealthStatus
	}{
		{"no checkers", nil, http.StatusOK, observability.HealthStatusUp},
		{"up", []observability.HealthChecker{up}, http.StatusOK, observability.HealthStatusUp},
		{"degraded", []observability.HealthChecker{up, degraded}, http.StatusOK, observability.HealthStatusDegraded},
		{"down", []observability.HealthChecker{degraded, down}, http.StatusServiceUnavailable, observability.HealthStatusDown},
		{"nil checker skipped", []observability.HealthChecker{nil}, http.StatusOK, observability.HealthStatusUp},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := serve(Health("pipegen", tc.checkers...))
			if rr.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d", tc.wantCode, rr.Code)
			}
			var body observability.ServiceHealth
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if body.Status != tc.wantStatus || body.Service != "pipegen" {
				t.Errorf("unexpected body %+v", body)
			}
		})
	}
}

func TestReadiness(t *testing.T) {
	down := staticChecker{Name: "store", Status: observability.HealthStatusDown}
	if rr := serve(Readiness("pipegen", down)); rr.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 when down, got %d", rr.Code)
	}
	degraded := staticChecker{Name: "store", Status: observability.HealthStatusDegraded}
	if rr := serve(Readiness("pipegen", degraded)); rr.Code != http.StatusOK {
		t.Errorf("expected 200 when degraded, got %d", rr.Code)
	}
}

func TestLivenessAndVersion(t *testing.T) {
	rr := serve(Liveness("pipegen"))
	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil || body["status"] != "alive" {
		t.Errorf("unexpected liveness body %s", rr.Body.String())
	}

	rr = serve(Version())
	var v map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil || v["version"] == "" {
		t.Errorf("unexpected version body %s", rr.Body.String())
	}
}

func TestRuntime(t *testing.T) {
	rr := serve(Runtime())
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if _, ok := body["goroutines"]; !ok {
		t.Error("expected goroutines in runtime body")
	}
}
