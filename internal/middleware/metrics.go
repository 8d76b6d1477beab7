package middleware

import (
	"strconv"
	"time"

	"backoffice/internal/metrics"

	"github.com/gin-gonic/gin"
)

// Metrics records request latency labelled by the matched route template, so
// /api/debts/:id is one series regardless of the id.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
