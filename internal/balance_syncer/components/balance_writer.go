package components

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/clinic-backoffice/cashflow/internal/balance_syncer/service"
	"github.com/clinic-backoffice/cashflow/internal/domain/account"
)

// BalanceWriterImpl implements the BalanceWriter interface
type BalanceWriterImpl struct {
	accountRepo account.Repository
	logger      *slog.Logger
}

// NewBalanceWriter creates a new BalanceWriterImpl
func NewBalanceWriter(accountRepo account.Repository, logger *slog.Logger) service.BalanceWriter {
	return &BalanceWriterImpl{
		accountRepo: accountRepo,
		logger:      logger,
	}
}

// LockAndCorrect locks the account row, re-checks the drift against the
// locked balance and overwrites it under the row's version.
func (w *BalanceWriterImpl) LockAndCorrect(ctx context.Context, tx pgx.Tx, accountID uuid.UUID, corrected, tolerance decimal.Decimal) (decimal.Decimal, bool, error) {
	accountRepoTx := w.accountRepo.WithTx(tx)

	locked, err := accountRepoTx.LockForUpdate(ctx, accountID)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound{}) {
			w.logger.Warn("Account disappeared before correction", "acc_id", accountID.String())
			return decimal.Zero, false, err
		}
		w.logger.Error("Failed to lock account", "acc_id", accountID.String(), "error", err)
		return decimal.Zero, false, fmt.Errorf("failed to lock account %s: %w", accountID.String(), err)
	}

	previous := locked.CurrentBalance
	if !locked.NeedsCorrection(corrected, tolerance) {
		return previous, false, nil
	}

	if err := accountRepoTx.UpdateCurrentBalance(ctx, locked.ID, corrected, locked.Version); err != nil {
		if errors.As(err, &account.ErrConcurrentModification{}) {
			w.logger.Warn("Concurrent modification on balance update", "acc_id", locked.ID.String(), "ver", locked.Version)
		} else {
			w.logger.Error("Failed to update account balance", "acc_id", locked.ID.String(), "error", err)
		}
		return decimal.Zero, false, err
	}

	locked.ApplyCorrection(corrected)
	w.logger.Info("Account balance overwritten",
		"acc_id", locked.ID.String(),
		"prev_bal", previous.StringFixed(2),
		"new_bal", corrected.StringFixed(2),
		"new_ver", locked.Version,
	)
	return previous, true, nil
}
