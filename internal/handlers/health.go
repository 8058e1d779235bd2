package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lajospolya/popular-vote/internal/logging"
	"github.com/lajospolya/popular-vote/internal/utils"
	"go.uber.org/zap"
)

// Pinger checks one backing service
type Pinger func(ctx context.Context) error

// HealthResponse is returned by /ready
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

// HealthHandlers serves liveness and readiness probes
type HealthHandlers struct {
	pingers map[string]Pinger
	logger  *logging.SafeLogger
}

func NewHealthHandlers(pingers map[string]Pinger, logger *logging.SafeLogger) *HealthHandlers {
	return &HealthHandlers{pingers: pingers, logger: logger}
}

// Health godoc
// @Summary Liveness probe
// @Tags health
// @Success 204
// @Router /health [get]
func (h *HealthHandlers) Health(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Ready godoc
// @Summary Readiness probe
// @Description Pings PostgreSQL, Redis and MongoDB when configured.
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /ready [get]
func (h *HealthHandlers) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	health := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Services:  make(map[string]string, len(h.pingers)),
	}

	names := make([]string, 0, len(h.pingers))
	for name := range h.pingers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		spanCtx, span := utils.TraceExternalService(ctx, name, "ping")
		if err := h.pingers[name](spanCtx); err != nil {
			utils.RecordErrorInSpan(span, err, map[string]interface{}{
				"service.name":      name,
				"service.operation": "ping",
			})
			h.logger.Warn("readiness check failed", zap.String("service", name), zap.Error(err))
			health.Status = "unhealthy"
			health.Services[name] = "unhealthy"
		} else {
			health.Services[name] = "healthy"
		}
		span.End()
	}

	if health.Status != "healthy" {
		c.JSON(http.StatusServiceUnavailable, health)
		return
	}
	c.JSON(http.StatusOK, health)
}
