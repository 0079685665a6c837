package middleware

import (
	"strconv"
	"time"

	"github.com/Taitilchheda/Taitil-Graphics-sub001/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
)

// HTTPMetrics records request count, latency and in-flight requests on the
// Prometheus collectors of m. A nil m disables collection.
//
// Routes are labelled with the gin route pattern (e.g. "/api/v1/orders/:id")
// rather than the raw path to keep label cardinality bounded.
func HTTPMetrics(m *telemetry.Metrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	inFlight := m.InFlight()
	return func(c *gin.Context) {
		start := time.Now()
		inFlight.Inc()
		defer inFlight.Dec()

		c.Next()

		m.ObserveHTTP(
			c.Request.Method,
			getRoutePattern(c),
			strconv.Itoa(c.Writer.Status()),
			time.Since(start),
		)
	}
}

// getRoutePattern returns the matched route pattern, or "unknown" for 404s
func getRoutePattern(c *gin.Context) string {
	route := c.FullPath()
	if route == "" {
		return "unknown"
	}
	return route
}
