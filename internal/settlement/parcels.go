package settlement

import (
	"time"

	"github.com/clinic-backoffice/cashflow/internal/domain/ledger"
	"github.com/clinic-backoffice/cashflow/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CashParcel is one dated installment of an entry. Amount is always the
// unsigned installment value; Kind says which side of the balance it hits.
type CashParcel struct {
	SourceEntryID uuid.UUID        `json:"source_entry_id"`
	Index         int              `json:"index"`
	Kind          shared.EntryKind `json:"kind"`
	Amount        decimal.Decimal  `json:"amount"`
	ScheduledDate time.Time        `json:"scheduled_date"`
}

// ScheduleEntry returns the forecast settlement date of every installment.
// ok is false when the entry has no issue date or is cancelled.
// Realized mode uses the same schedule; the recorded realization date never
// moves an installment.
func ScheduleEntry(entry *ledger.Entry) (dates []time.Time, ok bool) {
	if entry.IssueDate == nil || entry.IsCancelled() {
		return nil, false
	}

	policy := PolicyFor(ResolveMethod(entry.PaymentMethodLabel))
	var base time.Time
	if entry.ExplicitSettlementDate != nil {
		base = StartOfDay(*entry.ExplicitSettlementDate)
	} else {
		base = policy.baseDate(*entry.IssueDate)
	}

	dates = make([]time.Time, entry.EffectiveInstallments())
	for i := range dates {
		if i < len(entry.ManualInstallmentDates) {
			dates[i] = StartOfDay(entry.ManualInstallmentDates[i])
			continue
		}
		dates[i] = policy.installmentDate(base, i)
	}
	return dates, true
}

// GenerateParcels expands entries into their forecast cash parcels. Entries
// that cannot be scheduled contribute nothing.
func GenerateParcels(entries []ledger.Entry) []CashParcel {
	var parcels []CashParcel
	for i := range entries {
		entry := &entries[i]
		dates, ok := ScheduleEntry(entry)
		if !ok {
			continue
		}
		amounts := Split(entry.GrossAmount, len(dates))
		for idx, date := range dates {
			parcels = append(parcels, CashParcel{
				SourceEntryID: entry.ID,
				Index:         idx,
				Kind:          entry.Kind,
				Amount:        amounts[idx],
				ScheduledDate: date,
			})
		}
	}
	return parcels
}
