package correction

import (
	"context"

	"github.com/google/uuid"
)

// Repository stores the balance correction audit trail
type Repository interface {
	Create(ctx context.Context, c *Correction) error
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]*Correction, error)
	CountByAccount(ctx context.Context, accountID uuid.UUID) (int64, error)
}

// ErrDuplicateCorrection indicates the correction was already recorded
type ErrDuplicateCorrection struct {
	ID uuid.UUID
}

func (e ErrDuplicateCorrection) Error() string {
	return "duplicate balance correction: " + e.ID.String()
}
