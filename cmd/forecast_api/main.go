package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/clinic-backoffice/cashflow/internal/api"
	"github.com/clinic-backoffice/cashflow/internal/api/handler"
	"github.com/clinic-backoffice/cashflow/internal/api/service"
	"github.com/clinic-backoffice/cashflow/internal/balance_syncer/components"
	"github.com/clinic-backoffice/cashflow/internal/config"
	"github.com/clinic-backoffice/cashflow/internal/data/mongo"
	"github.com/clinic-backoffice/cashflow/internal/data/postgres"
	"github.com/clinic-backoffice/cashflow/internal/logger"
	"github.com/clinic-backoffice/cashflow/internal/platform/persistence"
	"github.com/clinic-backoffice/cashflow/internal/settlement"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("forecast_api")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	// Initialize databases with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	accountRepo := postgres.NewAccountRepository(log, postgresDB)
	ledgerRepo := postgres.NewLedgerRepository(log, postgresDB)
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	correctionRepo := mongo.NewCorrectionRepository(log, mongoDB.Database())

	engine := settlement.NewEngine(settlement.SystemClock, cfg.Forecast.Location)

	// On-demand syncs share the balance syncer's write path; the syncer's
	// outbox poller publishes the corrections they produce.
	syncService, err := components.CreateSyncService(postgresDB, accountRepo, ledgerRepo, outboxRepo, engine, log, cfg)
	if err != nil {
		log.Error("Failed to initialize sync service", "error", err)
		os.Exit(1)
	}

	// Initialize services
	loader := components.NewSnapshotLoader(accountRepo, ledgerRepo, engine, log)
	forecastService := service.NewForecastService(loader, engine, cfg.Forecast.BalanceTolerance, cfg.Forecast.DefaultHorizonDays)
	balanceService := service.NewBalanceService(syncService, accountRepo, correctionRepo)

	// Initialize REST server
	server := api.NewServer(log, cfg, forecastService, balanceService, map[string]handler.HealthChecker{
		"postgres": postgresDB,
		"mongodb":  mongoDB,
	})
	log.Info("REST server initialized", "timezone", cfg.Forecast.Timezone)

	// Create error channel for server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	log.Info("Starting graceful shutdown...")

	// Stop accepting requests before releasing what they depend on
	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	syncService.Shutdown()
	postgresDB.Close()

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
		os.Exit(1)
	}
	log.Info("Server shutdown completed successfully")
}
