// internal/middleware/metrics_middleware.go
package middleware

import (
	"time"

	"console-service/internal/metrics"

	"github.com/gin-gonic/gin"
)

// MetricsMiddleware records inbound request latency by route template.
func MetricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
