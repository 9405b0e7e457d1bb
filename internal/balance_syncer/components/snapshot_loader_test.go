package components

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/clinic-backoffice/cashflow/internal/balance_syncer/service"
	"github.com/clinic-backoffice/cashflow/internal/domain/account"
	"github.com/clinic-backoffice/cashflow/internal/domain/ledger"
	"github.com/clinic-backoffice/cashflow/internal/domain/shared"
	"github.com/clinic-backoffice/cashflow/internal/settlement"
)

func TestSnapshotLoader_Load(t *testing.T) {
	ctx := context.Background()
	engine := settlement.NewEngine(settlement.FixedClock(time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)), time.UTC)
	acc := &account.BankAccount{ID: uuid.New(), ClinicID: uuid.New(), CurrentBalance: dec("10.00")}
	request := &service.SyncRequest{ClinicID: acc.ClinicID, AccountID: acc.ID}

	t.Run("normalizes rows", func(t *testing.T) {
		accountRepo, ledgerRepo := new(MockAccountRepo), new(MockLedgerRepo)
		loader := NewSnapshotLoader(accountRepo, ledgerRepo, engine, newTestLogger())

		rows := []ledger.Row{{
			ID:                 uuid.New(),
			ClinicID:           acc.ClinicID,
			AccountID:          &acc.ID,
			Kind:               shared.EntryKindExpense,
			IssueDate:          "2026-02-01",
			PaymentMethodLabel: "Boleto",
			Amount:             "1.234,56",
			Status:             "pago",
		}}
		accountRepo.On("GetByID", ctx, acc.ClinicID, acc.ID).Return(acc, nil).Once()
		ledgerRepo.On("ListRows", ctx, mock.MatchedBy(func(f ledger.RowFilter) bool {
			return f.ClinicID == acc.ClinicID && f.AccountID != nil && *f.AccountID == acc.ID
		})).Return(rows, nil).Once()

		loaded, entries, err := loader.Load(ctx, request)
		require.NoError(t, err)
		assert.Same(t, acc, loaded)
		require.Len(t, entries, 1)
		assert.True(t, entries[0].GrossAmount.Equal(dec("1234.56")))
		assert.Equal(t, shared.EntryStatusSettled, entries[0].Status)
		accountRepo.AssertExpectations(t)
		ledgerRepo.AssertExpectations(t)
	})

	t.Run("account not found", func(t *testing.T) {
		accountRepo, ledgerRepo := new(MockAccountRepo), new(MockLedgerRepo)
		loader := NewSnapshotLoader(accountRepo, ledgerRepo, engine, newTestLogger())
		accountRepo.On("GetByID", ctx, acc.ClinicID, acc.ID).
			Return(nil, account.ErrAccountNotFound{AccountID: acc.ID}).Once()

		_, _, err := loader.Load(ctx, request)
		assert.ErrorIs(t, err, account.ErrAccountNotFound{})
		ledgerRepo.AssertNotCalled(t, "ListRows", mock.Anything, mock.Anything)
	})

	t.Run("ledger error", func(t *testing.T) {
		accountRepo, ledgerRepo := new(MockAccountRepo), new(MockLedgerRepo)
		loader := NewSnapshotLoader(accountRepo, ledgerRepo, engine, newTestLogger())
		dbErr := errors.New("connection reset")
		accountRepo.On("GetByID", ctx, acc.ClinicID, acc.ID).Return(acc, nil).Once()
		ledgerRepo.On("ListRows", ctx, mock.Anything).Return(nil, dbErr).Once()

		_, _, err := loader.Load(ctx, request)
		assert.ErrorIs(t, err, dbErr)
	})
}
