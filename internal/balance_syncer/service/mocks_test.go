package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/clinic-backoffice/cashflow/internal/domain/account"
	"github.com/clinic-backoffice/cashflow/internal/domain/correction"
	"github.com/clinic-backoffice/cashflow/internal/domain/ledger"
	"github.com/clinic-backoffice/cashflow/internal/domain/shared"
)

type MockSnapshotLoader struct {
	mock.Mock
}

func (m *MockSnapshotLoader) Load(ctx context.Context, request *SyncRequest) (*account.BankAccount, []ledger.Entry, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*account.BankAccount), args.Get(1).([]ledger.Entry), args.Error(2)
}

type MockBalanceWriter struct {
	mock.Mock
}

func (m *MockBalanceWriter) LockAndCorrect(ctx context.Context, tx pgx.Tx, accountID uuid.UUID, corrected, tolerance decimal.Decimal) (decimal.Decimal, bool, error) {
	args := m.Called(ctx, tx, accountID, corrected, tolerance)
	return args.Get(0).(decimal.Decimal), args.Bool(1), args.Error(2)
}

type MockOutboxManager struct {
	mock.Mock
}

func (m *MockOutboxManager) CreateOutboxEntry(ctx context.Context, tx pgx.Tx, c *correction.Correction) error {
	args := m.Called(ctx, tx, c)
	return args.Error(0)
}

type MockSyncService struct {
	mock.Mock
}

func (m *MockSyncService) SyncAccount(ctx context.Context, request *SyncRequest) (*SyncResult, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*SyncResult), args.Error(1)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// decEq matches a decimal argument by value rather than representation
func decEq(s string) interface{} {
	want := dec(s)
	return mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(want) })
}

// pixRevenue is a single-installment PIX revenue that settles on its issue date
func pixRevenue(issue time.Time, amount string) ledger.Entry {
	return ledger.Entry{
		ID:                 uuid.New(),
		Kind:               shared.EntryKindRevenue,
		Status:             shared.EntryStatusPending,
		IssueDate:          &issue,
		PaymentMethodLabel: "PIX",
		GrossAmount:        dec(amount),
		InstallmentCount:   1,
	}
}
