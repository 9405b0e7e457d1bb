package shared

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerChangedEvent is published by the back-office whenever a revenue or
// expense row is created, edited or deleted. It carries no amounts; the
// syncer always reloads the full row set of the account.
type LedgerChangedEvent struct {
	ClinicID      uuid.UUID `json:"clinic_id"`
	AccountID     uuid.UUID `json:"account_id"`
	EntryID       uuid.UUID `json:"entry_id"`
	Kind          EntryKind `json:"kind"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// BalanceCorrectedEvent announces that a stored account balance was rewritten
type BalanceCorrectedEvent struct {
	CorrectionID     uuid.UUID       `json:"correction_id"`
	ClinicID         uuid.UUID       `json:"clinic_id"`
	AccountID        uuid.UUID       `json:"account_id"`
	PreviousBalance  decimal.Decimal `json:"previous_balance"`
	CorrectedBalance decimal.Decimal `json:"corrected_balance"`
	CorrelationID    string          `json:"correlation_id,omitempty"`
	ComputedAt       time.Time       `json:"computed_at"`
}
