package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/uniformco/backoffice/internal/infrastructure/telemetry"
)

// HTTPMetrics records request count and latency per matched route.
// Unmatched requests are grouped under "unmatched" to keep label cardinality bounded.
func HTTPMetrics(m *telemetry.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveHTTP(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
