package handler

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthChecker is a dependency that can report whether it is reachable
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports process and dependency health
type HealthHandler struct {
	checkers map[string]HealthChecker
	timeout  time.Duration
	logger   *slog.Logger
}

// NewHealthHandler creates a health handler over the named dependencies
func NewHealthHandler(logger *slog.Logger, timeout time.Duration, checkers map[string]HealthChecker) *HealthHandler {
	return &HealthHandler{
		checkers: checkers,
		timeout:  timeout,
		logger:   logger,
	}
}

// Check pings every dependency and answers 503 when any of them fails
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.checkers))
	for name := range h.checkers {
		names = append(names, name)
	}
	sort.Strings(names)

	status := "ok"
	dependencies := make(gin.H, len(names))
	for _, name := range names {
		if err := h.checkers[name].Ping(ctx); err != nil {
			h.logger.Warn("Health check failed", "dependency", name, "error", err)
			dependencies[name] = "unavailable"
			status = "degraded"
			continue
		}
		dependencies[name] = "ok"
	}

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":       status,
		"dependencies": dependencies,
		"timestamp":    time.Now().UTC(),
	})
}
