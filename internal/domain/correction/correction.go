package correction

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Correction is the audit record of one applied balance correction
type Correction struct {
	ID               uuid.UUID       `json:"id"`
	ClinicID         uuid.UUID       `json:"clinic_id"`
	AccountID        uuid.UUID       `json:"account_id"`
	PreviousBalance  decimal.Decimal `json:"previous_balance"`
	CorrectedBalance decimal.Decimal `json:"corrected_balance"`
	Difference       decimal.Decimal `json:"difference"`
	RealizedRevenue  decimal.Decimal `json:"realized_revenue"`
	RealizedExpense  decimal.Decimal `json:"realized_expense"`
	CorrelationID    string          `json:"correlation_id,omitempty"`
	ComputedAt       time.Time       `json:"computed_at"`
}

// New builds a correction record; Difference is corrected minus previous
func New(
	clinicID, accountID uuid.UUID,
	previous, corrected, realizedRevenue, realizedExpense decimal.Decimal,
	correlationID string,
	computedAt time.Time,
) *Correction {
	return &Correction{
		ID:               uuid.New(),
		ClinicID:         clinicID,
		AccountID:        accountID,
		PreviousBalance:  previous,
		CorrectedBalance: corrected,
		Difference:       corrected.Sub(previous),
		RealizedRevenue:  realizedRevenue,
		RealizedExpense:  realizedExpense,
		CorrelationID:    correlationID,
		ComputedAt:       computedAt,
	}
}
