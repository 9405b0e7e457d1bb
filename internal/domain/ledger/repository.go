package ledger

import (
	"context"

	"github.com/google/uuid"
)

// RowFilter narrows the rows a Repository returns
type RowFilter struct {
	ClinicID  uuid.UUID
	AccountID *uuid.UUID // nil selects every account of the clinic
}

// Repository reads revenue and expense rows from the back-office store
type Repository interface {
	ListRows(ctx context.Context, filter RowFilter) ([]Row, error)
}
