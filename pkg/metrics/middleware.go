package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// unmatched keeps scanners probing random paths from exploding label cardinality.
const unmatched = "unmatched"

// GinMiddleware records latency, totals and in-flight requests per route.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = unmatched
		}

		HTTPInFlight.WithLabelValues(route).Inc()
		start := time.Now()

		c.Next()

		HTTPInFlight.WithLabelValues(route).Dec()
		status := strconv.Itoa(c.Writer.Status())
		HTTPRequestDuration.WithLabelValues(route, c.Request.Method, status).Observe(time.Since(start).Seconds())
		HTTPRequestsTotal.WithLabelValues(route, c.Request.Method, status).Inc()
	}
}
