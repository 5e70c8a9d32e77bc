package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CacheChecker reports whether the cache backend is reachable.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler exposes the cache health probe the uptime monitor polls.
type HealthHandler struct {
	cache  CacheChecker
	logger *zap.Logger
}

func NewHealthHandler(cache CacheChecker, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		cache:  cache,
		logger: logger,
	}
}

func (h *HealthHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/cache/healthcheck", h.CacheHealthCheck)
}

// CacheHealthCheck handles GET /cache/healthcheck.
func (h *HealthHandler) CacheHealthCheck(c *gin.Context) {
	if err := h.cache.HealthCheck(c.Request.Context()); err != nil {
		h.logger.Warn("cache health check failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"status": "unhealthy", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
