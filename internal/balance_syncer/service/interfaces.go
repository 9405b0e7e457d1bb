package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/clinic-backoffice/cashflow/internal/domain/account"
	"github.com/clinic-backoffice/cashflow/internal/domain/correction"
	"github.com/clinic-backoffice/cashflow/internal/domain/ledger"
	"github.com/clinic-backoffice/cashflow/internal/settlement"
)

// Sync triggers, recorded in logs
const (
	TriggerLedgerEvent = "ledger_event"
	TriggerSchedule    = "schedule"
	TriggerAPI         = "api"
)

// SyncRequest asks for the stored balance of one account to be recomputed
type SyncRequest struct {
	ClinicID      uuid.UUID
	AccountID     uuid.UUID
	CorrelationID string
	Trigger       string
}

// SyncResult reports what a sync computed and whether it wrote a correction
type SyncResult struct {
	Realization settlement.Realization
	Applied     bool
	Correction  *correction.Correction
}

// SyncService recomputes an account's current balance from its realized
// ledger entries and persists it when it drifted past the tolerance.
type SyncService interface {
	SyncAccount(ctx context.Context, request *SyncRequest) (*SyncResult, error)
}

// TxRunner runs fn inside a database transaction
type TxRunner interface {
	ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// SnapshotLoader reads the account and its normalized ledger entries
type SnapshotLoader interface {
	Load(ctx context.Context, request *SyncRequest) (*account.BankAccount, []ledger.Entry, error)
}

// BalanceWriter locks the account row and overwrites its balance. It reports
// the balance it replaced and false when the locked row no longer needs the
// correction.
type BalanceWriter interface {
	LockAndCorrect(ctx context.Context, tx pgx.Tx, accountID uuid.UUID, corrected, tolerance decimal.Decimal) (decimal.Decimal, bool, error)
}

// OutboxManager records an applied correction for asynchronous publishing
type OutboxManager interface {
	CreateOutboxEntry(ctx context.Context, tx pgx.Tx, c *correction.Correction) error
}
