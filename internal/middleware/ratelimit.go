package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Limiter decides whether a keyed request may proceed
type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

// RateLimit throttles requests per token subject, falling back to the
// client IP for unauthenticated calls. Rejected requests get 429.
func RateLimit(limiter Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := AuthID(c)
		if key == "" {
			key = "ip:" + c.ClientIP()
		}
		if !limiter.Allow(c.Request.Context(), key) {
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
