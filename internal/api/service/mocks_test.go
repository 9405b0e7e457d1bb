package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	syncservice "github.com/clinic-backoffice/cashflow/internal/balance_syncer/service"
	"github.com/clinic-backoffice/cashflow/internal/domain/account"
	"github.com/clinic-backoffice/cashflow/internal/domain/correction"
	"github.com/clinic-backoffice/cashflow/internal/domain/ledger"
	"github.com/clinic-backoffice/cashflow/internal/domain/shared"
)

type MockSnapshotLoader struct {
	mock.Mock
}

func (m *MockSnapshotLoader) Load(ctx context.Context, request *syncservice.SyncRequest) (*account.BankAccount, []ledger.Entry, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*account.BankAccount), args.Get(1).([]ledger.Entry), args.Error(2)
}

type MockSyncService struct {
	mock.Mock
}

func (m *MockSyncService) SyncAccount(ctx context.Context, request *syncservice.SyncRequest) (*syncservice.SyncResult, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*syncservice.SyncResult), args.Error(1)
}

type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) GetByID(ctx context.Context, clinicID, id uuid.UUID) (*account.BankAccount, error) {
	args := m.Called(ctx, clinicID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.BankAccount), args.Error(1)
}

func (m *MockAccountRepository) ListByClinic(ctx context.Context, clinicID uuid.UUID) ([]*account.BankAccount, error) {
	args := m.Called(ctx, clinicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*account.BankAccount), args.Error(1)
}

func (m *MockAccountRepository) ListAll(ctx context.Context) ([]*account.BankAccount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*account.BankAccount), args.Error(1)
}

func (m *MockAccountRepository) UpdateCurrentBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal, version int) error {
	args := m.Called(ctx, id, balance, version)
	return args.Error(0)
}

func (m *MockAccountRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*account.BankAccount, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.BankAccount), args.Error(1)
}

func (m *MockAccountRepository) WithTx(tx pgx.Tx) account.Repository {
	args := m.Called(tx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(account.Repository)
}

type MockCorrectionRepository struct {
	mock.Mock
}

func (m *MockCorrectionRepository) Create(ctx context.Context, c *correction.Correction) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCorrectionRepository) ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*correction.Correction, error) {
	args := m.Called(ctx, accountID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*correction.Correction), args.Error(1)
}

func (m *MockCorrectionRepository) CountByAccount(ctx context.Context, accountID uuid.UUID) (int64, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(int64), args.Error(1)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

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
