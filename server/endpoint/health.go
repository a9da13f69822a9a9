package endpoint

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/pipegen/observability"
	"github.com/kbukum/pipegen/version"
)

// checkTimeout bounds a single component check.
const checkTimeout = 3 * time.Second

func collect(ctx context.Context, serviceName string, checkers []observability.HealthChecker) *observability.ServiceHealth {
	sh := observability.NewServiceHealth(serviceName, version.Get().String())
	for _, hc := range checkers {
		if hc == nil {
			continue
		}
		cctx, cancel := context.WithTimeout(ctx, checkTimeout)
		sh.AddComponent(hc.CheckHealth(cctx))
		cancel()
	}
	return sh
}

// Health reports service health including every checker's component
// status. A component that is down makes the response 503.
func Health(serviceName string, checkers ...observability.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		sh := collect(c.Request.Context(), serviceName, checkers)
		status := http.StatusOK
		if sh.Status == observability.HealthStatusDown {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, sh)
	}
}
