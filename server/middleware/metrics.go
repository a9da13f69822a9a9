package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/pipegen/observability"
)

// Metrics records request count and duration per route template. Requests
// that match no route are recorded under "unmatched".
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RecordRequest(c.Request.Context(), c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
