package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/finrl-desk/internal/metrics"
)

// Metrics records request counts and latency per route template
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		done := metrics.RequestStarted()
		defer done()

		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.ObserveRequest(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
