package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/clinic-backoffice/cashflow/internal/api/handler"
	"github.com/clinic-backoffice/cashflow/internal/api/service"
	"github.com/clinic-backoffice/cashflow/internal/config"
)

const healthCheckTimeout = 2 * time.Second

// Server handles HTTP requests and manages the application's lifecycle
type Server struct {
	logger     *slog.Logger // For structured logging
	httpServer *http.Server // Underlying HTTP server
	httpRouter *gin.Engine  // Gin router instance
}

// NewServer creates and configures the forecast HTTP server. checkers are
// the dependencies reported by /health.
func NewServer(
	log *slog.Logger,
	cfg *config.Config,
	forecastService service.ForecastService,
	balanceService service.BalanceService,
	checkers map[string]handler.HealthChecker,
) *Server {
	if cfg.Application.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	httpRouter := gin.New()

	forecastHandler := handler.NewForecastHandler(log, forecastService)
	balanceHandler := handler.NewBalanceHandler(log, balanceService)
	healthHandler := handler.NewHealthHandler(log, healthCheckTimeout, checkers)

	setupRouter(log, httpRouter, forecastHandler, balanceHandler, healthHandler)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpRouter,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &Server{
		logger:     log,
		httpServer: httpServer,
		httpRouter: httpRouter,
	}
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.httpRouter
}

// Start begins listening for HTTP requests
func (s *Server) Start() error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop drains in-flight requests, bounded by ctx
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to stop HTTP server: %w", err)
	}
	return nil
}
