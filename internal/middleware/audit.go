package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lajospolya/popular-vote/internal/utils"
)

// AuditMiddleware records every successful write request. Services record
// the domain-level events; this trail keeps the raw request shape.
func AuditMiddleware(auditor utils.Auditor) gin.HandlerFunc {
	return func(c *gin.Context) {
		method := c.Request.Method
		if method != http.MethodPost && method != http.MethodPut && method != http.MethodDelete && method != http.MethodPatch {
			c.Next()
			return
		}

		c.Next()

		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			return
		}

		metadata := map[string]string{
			"endpoint":        c.Request.URL.Path,
			"route":           c.FullPath(),
			"method":          method,
			"response_status": strconv.Itoa(status),
			"resource":        resourceFromRoute(c.FullPath()),
		}
		if c.Request.URL.RawQuery != "" {
			metadata["query_params"] = c.Request.URL.RawQuery
		}

		auditor.Record(c.Request.Context(), actionForMethod(method), utils.AuditResourceHTTPRequest, c.Param("id"), nil, metadata)
	}
}

func actionForMethod(method string) string {
	switch method {
	case http.MethodPost:
		return utils.AuditActionCreate
	case http.MethodDelete:
		return utils.AuditActionDelete
	default:
		return utils.AuditActionUpdate
	}
}

// resourceFromRoute returns the first path segment of a route,
// "/policies/:id/bookmark" yields "policies".
func resourceFromRoute(route string) string {
	first, _, _ := strings.Cut(strings.TrimPrefix(route, "/"), "/")
	if first == "" {
		return "unknown"
	}
	return first
}
