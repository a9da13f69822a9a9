package endpoint

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/pipegen/observability"
)

// Readiness reports whether the workspace store can take traffic. A
// degraded component still counts as ready.
func Readiness(serviceName string, checkers ...observability.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, httpStatus := "ready", http.StatusOK
		if collect(c.Request.Context(), serviceName, checkers).Status == observability.HealthStatusDown {
			status, httpStatus = "not_ready", http.StatusServiceUnavailable
		}
		c.JSON(httpStatus, gin.H{
			"status":    status,
			"service":   serviceName,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}
