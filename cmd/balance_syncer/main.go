package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/clinic-backoffice/cashflow/internal/balance_syncer/components"
	"github.com/clinic-backoffice/cashflow/internal/balance_syncer/consumer"
	"github.com/clinic-backoffice/cashflow/internal/balance_syncer/outbox_poller"
	"github.com/clinic-backoffice/cashflow/internal/balance_syncer/scheduler"
	"github.com/clinic-backoffice/cashflow/internal/config"
	"github.com/clinic-backoffice/cashflow/internal/data/mongo"
	"github.com/clinic-backoffice/cashflow/internal/data/postgres"
	"github.com/clinic-backoffice/cashflow/internal/logger"
	"github.com/clinic-backoffice/cashflow/internal/platform/messaging/consumers"
	"github.com/clinic-backoffice/cashflow/internal/platform/messaging/producers"
	"github.com/clinic-backoffice/cashflow/internal/platform/persistence"
	"github.com/clinic-backoffice/cashflow/internal/settlement"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("balance_syncer")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	log.Info("Starting Balance Syncer",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
		"timezone", cfg.Forecast.Timezone,
	)

	// The syncer owns the schema; the API only reads and writes through it
	if cfg.Postgres.MigrationsPath != "" {
		if err := persistence.RunMigrations(cfg.Postgres.URL, cfg.Postgres.MigrationsPath); err != nil {
			log.Error("Failed to run PostgreSQL migrations", "error", err)
			os.Exit(1)
		}
		log.Info("PostgreSQL migrations applied", "path", cfg.Postgres.MigrationsPath)
	}

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

	if err := mongoDB.EnsureIndexes(appCtx, mongo.CorrectionCollectionName, persistence.CorrectionIndexes()); err != nil {
		log.Error("Failed to create MongoDB indexes", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	accountRepo := postgres.NewAccountRepository(log, postgresDB)
	ledgerRepo := postgres.NewLedgerRepository(log, postgresDB)
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	correctionRepo := mongo.NewCorrectionRepository(log, mongoDB.Database())

	engine := settlement.NewEngine(settlement.SystemClock, cfg.Forecast.Location)

	// Initialize Kafka producers
	correctionProducer, err := producers.NewCorrectionEventProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize correction Kafka producer", "error", err)
		os.Exit(1)
	}

	dlqProducer, err := producers.NewDLQProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize DLQ Kafka producer", "error", err)
		os.Exit(1)
	}
	// A nil *DLQProducer would be a non-nil interface value
	var deadLetters producers.DeadLetterPublisher
	if dlqProducer != nil {
		deadLetters = dlqProducer
	}

	// Initialize Kafka consumer
	kafkaConsumer := consumers.NewKafkaConsumer(appCtx, log, &cfg.Kafka)

	// Initialize sync service backed by the worker pool
	syncService, err := components.CreateSyncService(postgresDB, accountRepo, ledgerRepo, outboxRepo, engine, log, cfg)
	if err != nil {
		log.Error("Failed to initialize sync service", "error", err)
		os.Exit(1)
	}

	// Initialize ledger event handler
	ledgerEventHandler := consumer.NewLedgerEventHandler(log, syncService, deadLetters)
	kafkaConsumer.OnExhausted(ledgerEventHandler.HandleExhausted)

	// Initialize outbox poller
	correctionPublisher := outbox_poller.NewCorrectionPublisher(outboxRepo, correctionRepo, correctionProducer, log)
	poller := outbox_poller.NewPoller(&cfg.Outbox, outboxRepo, correctionPublisher, log)

	// Initialize periodic full sync
	syncScheduler := scheduler.NewScheduler(&cfg.Sync, accountRepo, syncService, log)

	// Create error channel for service errors
	errChan := make(chan error, 1)

	// Create wait group for graceful shutdown
	var wg sync.WaitGroup

	log.Info("Starting Kafka consumer",
		"topic", cfg.Kafka.LedgerTopic,
		"group", cfg.Kafka.ConsumerGroup,
	)
	if err := kafkaConsumer.Subscribe(appCtx, ledgerEventHandler.HandleMessage); err != nil {
		errChan <- fmt.Errorf("kafka consumer error: %w", err)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("Starting Outbox Poller",
			"interval", cfg.Outbox.PollingInterval.String(),
			"batch_size", cfg.Outbox.BatchSize,
		)
		poller.Start(appCtx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("Starting sync scheduler",
			"interval", cfg.Sync.Interval.String(),
			"run_on_startup", cfg.Sync.RunOnStartup,
		)
		syncScheduler.Start(appCtx)
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serviceErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Service error occurred", "error", err)
		serviceErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	log.Info("Starting graceful shutdown...")

	// Wait for the poller and the scheduler to finish their current pass
	wgChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(wgChan)
	}()

	select {
	case <-wgChan:
		log.Info("All services stopped successfully")
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout reached, forcing exit")
	}

	log.Info("Shutting down worker pool", "running_workers", syncService.Running())
	syncService.Shutdown()

	if err = kafkaConsumer.Close(); err != nil {
		log.Error("Error closing Kafka consumer", "error", err)
	}

	if err = correctionProducer.Close(); err != nil {
		log.Error("Error closing correction Kafka producer", "error", err)
	}

	if deadLetters != nil {
		if err = deadLetters.Close(); err != nil {
			log.Error("Error closing DLQ Kafka producer", "error", err)
		}
	}

	postgresDB.Close()

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	if serviceErr != nil {
		log.Error("Balance syncer shutdown with errors", "error", serviceErr)
		os.Exit(1)
	}
	log.Info("Balance syncer shutdown completed successfully")
}
