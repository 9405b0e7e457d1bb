package ledger

import (
	"time"

	"github.com/clinic-backoffice/cashflow/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Entry is one booked revenue or expense in typed form.
// Dates are calendar days at midnight in the clinic's location.
type Entry struct {
	ID        uuid.UUID          `json:"id"`
	ClinicID  uuid.UUID          `json:"clinic_id"`
	AccountID uuid.UUID          `json:"account_id"`
	Kind      shared.EntryKind   `json:"kind"`
	Status    shared.EntryStatus `json:"status"`

	IssueDate              *time.Time `json:"issue_date,omitempty"` // competência
	ExplicitSettlementDate *time.Time `json:"explicit_settlement_date,omitempty"`
	RealizedDate           *time.Time `json:"realized_date,omitempty"`

	PaymentMethodLabel     string          `json:"payment_method_label"`
	GrossAmount            decimal.Decimal `json:"gross_amount"`
	InstallmentCount       int             `json:"installment_count"`
	ManualInstallmentDates []time.Time     `json:"manual_installment_dates,omitempty"`
}

// EffectiveInstallments is the number of parcels the entry expands into
func (e *Entry) EffectiveInstallments() int {
	if len(e.ManualInstallmentDates) > 0 {
		return len(e.ManualInstallmentDates)
	}
	if e.InstallmentCount < 1 {
		return 1
	}
	return e.InstallmentCount
}

// IsCancelled reports whether the entry must be ignored entirely
func (e *Entry) IsCancelled() bool {
	return e.Status == shared.EntryStatusCancelled
}

// Row is a revenue or expense row exactly as stored: every column that legacy
// screens write as free text is kept as text here and only interpreted when
// the row is normalized into an Entry.
type Row struct {
	ID                        uuid.UUID
	ClinicID                  uuid.UUID
	AccountID                 *uuid.UUID
	Kind                      shared.EntryKind
	IssueDate                 string
	ExplicitDate              string
	RealizedDate              string
	PaymentMethodLabel        string
	Installments              string
	ManualInstallmentDatesRaw string
	Amount                    string // net amount when recorded, gross otherwise
	Status                    string
}
