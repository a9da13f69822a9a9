package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/pipegen/logger"
)

var quietPaths = map[string]bool{
	"/health":  true,
	"/alive":   true,
	"/ready":   true,
	"/metrics": true,
}

// RequestLogger logs each request with method, path, status and latency.
// Health, readiness and metrics endpoints are skipped.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if quietPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		path := c.Request.URL.Path
		if q := c.Request.URL.RawQuery; q != "" {
			path = path + "?" + q
		}
		fields := map[string]interface{}{
			"method":             c.Request.Method,
			"path":               path,
			logger.FieldStatus:   status,
			logger.FieldDuration: latency.Milliseconds(),
			"client":             c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			fields[logger.FieldError] = c.Errors.String()
		}
		if latency > 500*time.Millisecond {
			fields["slow"] = true
		}
		logByStatus(log.WithContext(c.Request.Context()), fields, status)
	}
}

func logByStatus(log *logger.Logger, fields map[string]interface{}, status int) {
	switch {
	case status >= 500:
		log.Error("Request completed", fields)
	case status >= 400:
		log.Warn("Request completed", fields)
	default:
		log.Debug("Request completed", fields)
	}
}
