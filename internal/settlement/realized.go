package settlement

import (
	"time"

	"github.com/clinic-backoffice/cashflow/internal/domain/ledger"
	"github.com/clinic-backoffice/cashflow/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ComputeRealizedAmount sums the installments of entry that settle on or before
// today. Installments dated after today are still projected and never count.
func ComputeRealizedAmount(entry *ledger.Entry, today time.Time) decimal.Decimal {
	dates, ok := ScheduleEntry(entry)
	if !ok {
		return decimal.Zero
	}

	amounts := Split(entry.GrossAmount, len(dates))
	realized := decimal.Zero
	for i, date := range dates {
		if onOrBefore(date, today) {
			realized = realized.Add(amounts[i])
		}
	}
	return realized
}

// RealizedSummary is the cash that has actually cleared for a set of entries
type RealizedSummary struct {
	AsOf    time.Time       `json:"as_of"`
	Revenue decimal.Decimal `json:"realized_revenue"`
	Expense decimal.Decimal `json:"realized_expense"`
}

// Net is revenue minus expense
func (s RealizedSummary) Net() decimal.Decimal {
	return s.Revenue.Sub(s.Expense)
}

// RealizedTotals accumulates realized revenue and expense as of today.
// Expenses only count once their own status marks them settled.
func RealizedTotals(entries []ledger.Entry, today time.Time) RealizedSummary {
	summary := RealizedSummary{
		AsOf:    StartOfDay(today),
		Revenue: decimal.Zero,
		Expense: decimal.Zero,
	}
	for i := range entries {
		entry := &entries[i]
		switch entry.Kind {
		case shared.EntryKindRevenue:
			summary.Revenue = summary.Revenue.Add(ComputeRealizedAmount(entry, today))
		case shared.EntryKindExpense:
			if entry.Status != shared.EntryStatusSettled {
				continue
			}
			summary.Expense = summary.Expense.Add(ComputeRealizedAmount(entry, today))
		}
	}
	return summary
}

// CorrectedBalance is the balance an account should hold given its initial
// balance and what has been realized.
func CorrectedBalance(initial decimal.Decimal, summary RealizedSummary) decimal.Decimal {
	return initial.Add(summary.Net())
}
