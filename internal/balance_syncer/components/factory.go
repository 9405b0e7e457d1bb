package components

import (
	"fmt"
	"log/slog"

	"github.com/clinic-backoffice/cashflow/internal/balance_syncer/service"
	"github.com/clinic-backoffice/cashflow/internal/config"
	"github.com/clinic-backoffice/cashflow/internal/domain/account"
	"github.com/clinic-backoffice/cashflow/internal/domain/ledger"
	"github.com/clinic-backoffice/cashflow/internal/domain/outbox"
	"github.com/clinic-backoffice/cashflow/internal/settlement"
)

// CreateSyncService wires the sync service and wraps it in the worker pool
func CreateSyncService(
	db service.TxRunner,
	accountRepo account.Repository,
	ledgerRepo ledger.Repository,
	outboxRepo outbox.Repository,
	engine *settlement.Engine,
	logger *slog.Logger,
	cfg *config.Config,
) (*service.WorkerPoolSyncService, error) {
	loader := NewSnapshotLoader(accountRepo, ledgerRepo, engine, logger)
	writer := NewBalanceWriter(accountRepo, logger)
	outboxManager := NewOutboxManager(outboxRepo, logger)

	baseService := service.NewSyncService(
		db,
		loader,
		writer,
		outboxManager,
		engine,
		cfg.Forecast.BalanceTolerance,
		logger,
	)

	workerPoolService, err := service.NewWorkerPoolSyncService(
		baseService,
		service.WorkerPoolConfig{
			Size: cfg.WorkerPool.Size,
		},
		logger.With("component", "worker_pool"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sync worker pool: %w", err)
	}

	logger.Info("Created worker pool sync service", "pool_size", cfg.WorkerPool.Size)
	return workerPoolService, nil
}
