package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
	"go.uber.org/zap"

	"github.com/finrl-desk/internal/metrics"
	"github.com/finrl-desk/pkg/response"
)

// limiterIdle is how long a client's limiter survives without requests
const limiterIdle = 10 * time.Minute

// RateLimit throttles requests per client IP with a token bucket.
// A non-positive rate disables the limit.
func RateLimit(perSecond float64, burst int, logger *zap.Logger) gin.HandlerFunc {
	if perSecond <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if burst <= 0 {
		burst = 1
	}

	limiters := gocache.New(limiterIdle, limiterIdle)

	return func(c *gin.Context) {
		ip := c.ClientIP()

		var limiter *rate.Limiter
		if v, ok := limiters.Get(ip); ok {
			limiter = v.(*rate.Limiter)
		} else {
			limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
			// Add loses to a concurrent insert; use whichever won
			if err := limiters.Add(ip, limiter, limiterIdle); err != nil {
				if v, ok := limiters.Get(ip); ok {
					limiter = v.(*rate.Limiter)
				}
			}
		}
		limiters.Set(ip, limiter, limiterIdle)

		if !limiter.Allow() {
			metrics.AuthDenied("rate_limited")
			logger.Warn("Request rate limited",
				zap.String("client_ip", ip),
				zap.String("path", c.Request.URL.Path),
			)
			response.TooManyRequests(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
