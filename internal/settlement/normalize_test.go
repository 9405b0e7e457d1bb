package settlement

import (
	"testing"
	"time"

	"github.com/clinic-backoffice/cashflow/internal/domain/ledger"
	"github.com/clinic-backoffice/cashflow/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRow(t *testing.T) {
	t.Run("FullRow", func(t *testing.T) {
		accountID := uuid.New()
		row := ledger.Row{
			ID:                        uuid.New(),
			ClinicID:                  uuid.New(),
			AccountID:                 &accountID,
			Kind:                      shared.EntryKindRevenue,
			IssueDate:                 "2026-01-01",
			ExplicitDate:              "2026-01-20",
			RealizedDate:              "2026-01-21T10:00:00Z",
			PaymentMethodLabel:        "Cartão de Crédito",
			Installments:              "3",
			ManualInstallmentDatesRaw: `["2026-02-01", "2026-03-01"]`,
			Amount:                    "300,00",
			Status:                    "recebido",
		}

		entry := NormalizeRow(row, time.UTC)

		assert.Equal(t, row.ID, entry.ID)
		assert.Equal(t, row.ClinicID, entry.ClinicID)
		assert.Equal(t, accountID, entry.AccountID)
		assert.Equal(t, shared.EntryStatusSettled, entry.Status)
		require.NotNil(t, entry.IssueDate)
		assert.Equal(t, "2026-01-01", ymd(*entry.IssueDate))
		require.NotNil(t, entry.ExplicitSettlementDate)
		assert.Equal(t, "2026-01-20", ymd(*entry.ExplicitSettlementDate))
		require.NotNil(t, entry.RealizedDate)
		assert.Equal(t, "2026-01-21", ymd(*entry.RealizedDate))
		assert.True(t, amount("300").Equal(entry.GrossAmount))
		assert.Equal(t, 3, entry.InstallmentCount)
		assert.Equal(t, []string{"2026-02-01", "2026-03-01"}, ymds(entry.ManualInstallmentDates))
		assert.Equal(t, 2, entry.EffectiveInstallments(), "manual dates override the installment count")
	})

	t.Run("MalformedRowDegrades", func(t *testing.T) {
		row := ledger.Row{
			ID:                        uuid.New(),
			Kind:                      shared.EntryKindExpense,
			IssueDate:                 "yesterday",
			Installments:              "many",
			ManualInstallmentDatesRaw: `{broken`,
			Amount:                    "n/a",
			Status:                    "",
		}

		entry := NormalizeRow(row, time.UTC)

		assert.Equal(t, uuid.Nil, entry.AccountID)
		assert.Nil(t, entry.IssueDate)
		assert.Nil(t, entry.ExplicitSettlementDate)
		assert.True(t, entry.GrossAmount.IsZero())
		assert.Equal(t, 1, entry.InstallmentCount)
		assert.Nil(t, entry.ManualInstallmentDates)
		assert.Equal(t, shared.EntryStatusPending, entry.Status)
	})
}

func TestNormalizeRows(t *testing.T) {
	rows := []ledger.Row{
		{ID: uuid.New(), Kind: shared.EntryKindRevenue, Amount: "1"},
		{ID: uuid.New(), Kind: shared.EntryKindExpense, Amount: "2"},
	}

	entries := NormalizeRows(rows, time.UTC)

	require.Len(t, entries, 2)
	assert.Equal(t, rows[0].ID, entries[0].ID)
	assert.Equal(t, shared.EntryKindExpense, entries[1].Kind)
}
