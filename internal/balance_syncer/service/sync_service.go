package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/clinic-backoffice/cashflow/internal/domain/correction"
	"github.com/clinic-backoffice/cashflow/internal/settlement"
)

type SyncServiceImpl struct {
	db            TxRunner
	loader        SnapshotLoader
	writer        BalanceWriter
	outboxManager OutboxManager
	engine        *settlement.Engine
	tolerance     decimal.Decimal
	now           func() time.Time
	logger        *slog.Logger
}

func NewSyncService(
	db TxRunner,
	loader SnapshotLoader,
	writer BalanceWriter,
	outboxManager OutboxManager,
	engine *settlement.Engine,
	tolerance decimal.Decimal,
	logger *slog.Logger,
) *SyncServiceImpl {
	return &SyncServiceImpl{
		db:            db,
		loader:        loader,
		writer:        writer,
		outboxManager: outboxManager,
		engine:        engine,
		tolerance:     tolerance,
		now:           time.Now,
		logger:        logger,
	}
}

// SyncAccount computes the realized balance from a snapshot taken outside the
// transaction, then locks the account and writes the correction together
// with its outbox entry. The lock re-checks the stored balance so a
// concurrent sync that already wrote the same value is a no-op.
func (s *SyncServiceImpl) SyncAccount(ctx context.Context, request *SyncRequest) (*SyncResult, error) {
	logger := s.logger.With("account_id", request.AccountID.String(), "trigger", request.Trigger)
	if request.CorrelationID != "" {
		logger = logger.With("correlation_id", request.CorrelationID)
	}

	// 1. Snapshot
	acc, entries, err := s.loader.Load(ctx, request)
	if err != nil {
		return nil, err
	}

	// 2. Compute
	realization := s.engine.Realized(acc, entries, s.tolerance)
	result := &SyncResult{Realization: realization}
	if !realization.NeedsCorrection {
		logger.Debug("Stored balance within tolerance",
			"stored", realization.StoredBalance.StringFixed(2),
			"computed", realization.CorrectedBalance.StringFixed(2),
		)
		return result, nil
	}

	// 3. Write
	var applied *correction.Correction
	err = s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		previous, ok, err := s.writer.LockAndCorrect(ctx, tx, acc.ID, realization.CorrectedBalance, s.tolerance)
		if err != nil {
			return err
		}
		if !ok {
			logger.Info("Balance already corrected by a concurrent sync")
			return nil
		}

		c := correction.New(
			acc.ClinicID, acc.ID,
			previous, realization.CorrectedBalance,
			realization.Summary.Revenue, realization.Summary.Expense,
			request.CorrelationID,
			s.now().UTC(),
		)
		if err := s.outboxManager.CreateOutboxEntry(ctx, tx, c); err != nil {
			return err
		}
		applied = c
		return nil
	})
	if err != nil {
		logger.Error("Failed to write balance correction", "error", err)
		return nil, fmt.Errorf("failed to sync account %s: %w", request.AccountID.String(), err)
	}

	if applied != nil {
		result.Applied = true
		result.Correction = applied
		logger.Info("Balance corrected",
			"correction_id", applied.ID.String(),
			"previous", applied.PreviousBalance.StringFixed(2),
			"corrected", applied.CorrectedBalance.StringFixed(2),
			"difference", applied.Difference.StringFixed(2),
		)
	}
	return result, nil
}
