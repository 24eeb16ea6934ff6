package handler

import (
	"context"
	"net/http"
	"time"

	coreport "github.com/amirhossein-jamali/wingo-engine/internal/domain/port/core"
	"github.com/amirhossein-jamali/wingo-engine/internal/infrastructure/adapter/api/dto"
	"github.com/amirhossein-jamali/wingo-engine/internal/infrastructure/adapter/database"
	"github.com/gin-gonic/gin"
)

const healthProbeTimeout = 2 * time.Second

// DatabaseProbe reports the durable store's state; nil for the in-memory store
type DatabaseProbe interface {
	Ping(ctx context.Context) error
	PoolMetrics() database.ConnectionPoolMetrics
}

// HealthHandler serves GET /health
type HealthHandler struct {
	probe  DatabaseProbe
	logger coreport.Logger
}

// NewHealthHandler creates a health handler. probe may be nil.
func NewHealthHandler(probe DatabaseProbe, logger coreport.Logger) *HealthHandler {
	return &HealthHandler{probe: probe, logger: logger}
}

// Health reports 503 when the database does not answer a ping
func (h *HealthHandler) Health(c *gin.Context) {
	if h.probe == nil {
		c.JSON(http.StatusOK, dto.HealthResponse{Status: "ok", Database: "memory"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), healthProbeTimeout)
	defer cancel()
	if err := h.probe.Ping(ctx); err != nil {
		h.logger.Warn("Health check failed", map[string]any{"error": err.Error()})
		c.JSON(http.StatusServiceUnavailable, dto.HealthResponse{Status: "degraded", Database: "unreachable"})
		return
	}
	c.JSON(http.StatusOK, dto.HealthResponse{Status: "ok", Database: "up", Pool: h.probe.PoolMetrics()})
}
