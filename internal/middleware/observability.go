package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lajospolya/popular-vote/internal/observability"
	"github.com/lajospolya/popular-vote/internal/utils"
)

const requestIDHeader = "X-Request-ID"

// RequestTracker tracks active connections
func RequestTracker() gin.HandlerFunc {
	return func(c *gin.Context) {
		observability.ActiveConnections.Inc()
		defer observability.ActiveConnections.Dec()
		c.Next()
	}
}

// RequestID propagates the caller's X-Request-ID or assigns a new one, and
// seeds the audit context with the request's origin.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}
		c.Set("RequestID", requestID)
		c.Header(requestIDHeader, requestID)

		ctx := utils.WithAuditContext(c.Request.Context(), utils.AuditContext{
			IPAddress: c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
			RequestID: requestID,
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
