package settlement

import (
	"time"

	"github.com/clinic-backoffice/cashflow/internal/domain/account"
	"github.com/clinic-backoffice/cashflow/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Engine binds the pure functions of this package to a clock and the clinic's
// time zone. It holds no state between calls and is safe for concurrent use.
type Engine struct {
	now      Clock
	location *time.Location
}

// NewEngine creates an engine; a nil clock means SystemClock and a nil
// location means time.Local.
func NewEngine(now Clock, location *time.Location) *Engine {
	if now == nil {
		now = SystemClock
	}
	if location == nil {
		location = time.Local
	}
	return &Engine{now: now, location: location}
}

// Location is the time zone dates are interpreted in
func (e *Engine) Location() *time.Location {
	return e.location
}

// Today is midnight of the current day in the engine's location
func (e *Engine) Today() time.Time {
	return StartOfDay(e.now().In(e.location))
}

// Entries normalizes stored rows in the engine's location
func (e *Engine) Entries(rows []ledger.Row) []ledger.Entry {
	return NormalizeRows(rows, e.location)
}

// Forecast is the reconciled projection of one account
type Forecast struct {
	AccountID   uuid.UUID       `json:"account_id"`
	Today       time.Time       `json:"today"`
	RealBalance decimal.Decimal `json:"real_balance"`
	Offset      decimal.Decimal `json:"offset"`
	Daily       []DailyBucket   `json:"daily"`
	Monthly     []MonthlyBucket `json:"monthly"`
}

// Forecast projects entries onto settlement dates, aggregates them inside
// [from, to] seeded with the account's initial balance and reconciles both
// series against the account's reported current balance.
func (e *Engine) Forecast(acc *account.BankAccount, entries []ledger.Entry, from, to *time.Time) Forecast {
	today := e.Today()
	window := Window{From: from, To: to, Today: today}
	parcels := GenerateParcels(entries)

	daily := AggregateDaily(parcels, window, acc.InitialBalance)
	monthly := AggregateMonthly(parcels, window, acc.InitialBalance)

	offset := ReconcileDaily(daily, today, acc.CurrentBalance)
	ReconcileMonthly(monthly, today, acc.CurrentBalance)

	return Forecast{
		AccountID:   acc.ID,
		Today:       today,
		RealBalance: acc.CurrentBalance,
		Offset:      offset,
		Daily:       daily,
		Monthly:     monthly,
	}
}

// Realization compares what has cleared with the stored balance of an account
type Realization struct {
	AccountID        uuid.UUID       `json:"account_id"`
	Summary          RealizedSummary `json:"summary"`
	InitialBalance   decimal.Decimal `json:"initial_balance"`
	StoredBalance    decimal.Decimal `json:"stored_balance"`
	CorrectedBalance decimal.Decimal `json:"corrected_balance"`
	Difference       decimal.Decimal `json:"difference"`
	NeedsCorrection  bool            `json:"needs_correction"`
}

// Realized computes the corrected balance of acc as of today. It does not
// write anything; the caller decides whether to persist the correction.
func (e *Engine) Realized(acc *account.BankAccount, entries []ledger.Entry, tolerance decimal.Decimal) Realization {
	summary := RealizedTotals(entries, e.Today())
	corrected := CorrectedBalance(acc.InitialBalance, summary)

	return Realization{
		AccountID:        acc.ID,
		Summary:          summary,
		InitialBalance:   acc.InitialBalance,
		StoredBalance:    acc.CurrentBalance,
		CorrectedBalance: corrected,
		Difference:       corrected.Sub(acc.CurrentBalance),
		NeedsCorrection:  acc.NeedsCorrection(corrected, tolerance),
	}
}
