package outbox

import (
	"encoding/json"
	"time"

	"github.com/clinic-backoffice/cashflow/internal/domain/correction"
	"github.com/clinic-backoffice/cashflow/internal/domain/shared"
	"github.com/google/uuid"
)

// Message stores an applied balance correction for reliable publishing
type Message struct {
	ID            int64               `json:"id"`
	CorrectionID  uuid.UUID           `json:"correction_id"`
	AccountID     uuid.UUID           `json:"account_id"`
	Payload       json.RawMessage     `json:"payload"`
	Status        shared.OutboxStatus `json:"status"`
	Attempts      int                 `json:"attempts"`
	CreatedAt     time.Time           `json:"created_at"`
	LastAttemptAt *time.Time          `json:"last_attempt_at,omitempty"`
}

func NewMessage(c *correction.Correction) (*Message, error) {
	payload, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}

	return &Message{
		CorrectionID: c.ID,
		AccountID:    c.AccountID,
		Payload:      payload,
		Status:       shared.OutboxStatusPending,
		Attempts:     0,
		CreatedAt:    time.Now(),
	}, nil
}

// GetCorrection extracts the correction from the payload
func (m *Message) GetCorrection() (*correction.Correction, error) {
	var c correction.Correction
	if err := json.Unmarshal(m.Payload, &c); err != nil {
		return nil, err
	}
	return &c, nil
}
