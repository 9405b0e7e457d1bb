package components

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/clinic-backoffice/cashflow/internal/balance_syncer/service"
	"github.com/clinic-backoffice/cashflow/internal/domain/account"
	"github.com/clinic-backoffice/cashflow/internal/domain/ledger"
	"github.com/clinic-backoffice/cashflow/internal/settlement"
)

// SnapshotLoaderImpl implements the SnapshotLoader interface
type SnapshotLoaderImpl struct {
	accountRepo account.Repository
	ledgerRepo  ledger.Repository
	engine      *settlement.Engine
	logger      *slog.Logger
}

// NewSnapshotLoader creates a new SnapshotLoaderImpl
func NewSnapshotLoader(accountRepo account.Repository, ledgerRepo ledger.Repository, engine *settlement.Engine, logger *slog.Logger) service.SnapshotLoader {
	return &SnapshotLoaderImpl{
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
		engine:      engine,
		logger:      logger,
	}
}

// Load reads the account scoped to its clinic and the rows booked against it
func (l *SnapshotLoaderImpl) Load(ctx context.Context, request *service.SyncRequest) (*account.BankAccount, []ledger.Entry, error) {
	acc, err := l.accountRepo.GetByID(ctx, request.ClinicID, request.AccountID)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound{}) {
			l.logger.Warn("Account not found for sync",
				"clinic_id", request.ClinicID.String(),
				"account_id", request.AccountID.String(),
			)
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("failed to load account %s: %w", request.AccountID.String(), err)
	}

	rows, err := l.ledgerRepo.ListRows(ctx, ledger.RowFilter{ClinicID: acc.ClinicID, AccountID: &acc.ID})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load ledger rows of account %s: %w", acc.ID.String(), err)
	}

	entries := l.engine.Entries(rows)
	l.logger.Debug("Loaded account snapshot",
		"account_id", acc.ID.String(),
		"rows", len(rows),
		"stored_balance", acc.CurrentBalance.StringFixed(2),
	)
	return acc, entries, nil
}
