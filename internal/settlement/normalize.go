package settlement

import (
	"time"

	"github.com/clinic-backoffice/cashflow/internal/domain/ledger"
	"github.com/clinic-backoffice/cashflow/internal/domain/shared"
)

// NormalizeRow interprets a stored row. It never fails: malformed values
// degrade to their documented defaults and a missing issue date is left nil so
// the entry drops out of every projection.
func NormalizeRow(row ledger.Row, loc *time.Location) ledger.Entry {
	entry := ledger.Entry{
		ID:                     row.ID,
		ClinicID:               row.ClinicID,
		Kind:                   row.Kind,
		Status:                 shared.ParseEntryStatus(row.Status),
		IssueDate:              ParseOptionalDate(row.IssueDate, loc),
		ExplicitSettlementDate: ParseOptionalDate(row.ExplicitDate, loc),
		RealizedDate:           ParseOptionalDate(row.RealizedDate, loc),
		PaymentMethodLabel:     row.PaymentMethodLabel,
		GrossAmount:            ToAmount(row.Amount),
		InstallmentCount:       ToInstallmentCount(row.Installments),
	}
	if row.AccountID != nil {
		entry.AccountID = *row.AccountID
	}

	if manual := ParseManualDates(row.ManualInstallmentDatesRaw, loc); manual.Valid() {
		entry.ManualInstallmentDates = manual.Dates()
	}
	return entry
}

// NormalizeRows normalizes rows in order
func NormalizeRows(rows []ledger.Row, loc *time.Location) []ledger.Entry {
	entries := make([]ledger.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, NormalizeRow(row, loc))
	}
	return entries
}
