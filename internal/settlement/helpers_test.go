package settlement

import (
	"time"

	"github.com/clinic-backoffice/cashflow/internal/domain/ledger"
	"github.com/clinic-backoffice/cashflow/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dayPtr(y int, m time.Month, d int) *time.Time {
	t := day(y, m, d)
	return &t
}

func ymd(t time.Time) string {
	return t.Format("2006-01-02")
}

func ymds(ts []time.Time) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = ymd(t)
	}
	return out
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newEntry(kind shared.EntryKind, label string, gross string, installments int, issue *time.Time) ledger.Entry {
	return ledger.Entry{
		ID:                 uuid.New(),
		ClinicID:           uuid.New(),
		AccountID:          uuid.New(),
		Kind:               kind,
		Status:             shared.EntryStatusPending,
		IssueDate:          issue,
		PaymentMethodLabel: label,
		GrossAmount:        amount(gross),
		InstallmentCount:   installments,
	}
}
