package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/clinic-backoffice/cashflow/internal/api/handler"
	"github.com/clinic-backoffice/cashflow/internal/api/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	forecastHandler *handler.ForecastHandler,
	balanceHandler *handler.BalanceHandler,
	healthHandler *handler.HealthHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Logger(logger))

	// API v1 endpoints, scoped to the clinic in X-Clinic-ID
	v1 := r.Group("/api/v1", middleware.ClinicID())
	{
		accounts := v1.Group("/accounts/:id")
		{
			accounts.GET("/forecast/daily", forecastHandler.Daily)
			accounts.GET("/forecast/monthly", forecastHandler.Monthly)
			accounts.GET("/realized", forecastHandler.Realized)
			accounts.POST("/sync", balanceHandler.Sync)
			accounts.GET("/corrections", balanceHandler.Corrections)
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", healthHandler.Check)
}
