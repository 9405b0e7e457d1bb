package account

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Repository defines bank account persistence operations
type Repository interface {
	GetByID(ctx context.Context, clinicID, id uuid.UUID) (*BankAccount, error)
	ListByClinic(ctx context.Context, clinicID uuid.UUID) ([]*BankAccount, error)
	ListAll(ctx context.Context) ([]*BankAccount, error)

	// UpdateCurrentBalance uses optimistic locking on version
	UpdateCurrentBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal, version int) error

	// LockForUpdate acquires a pessimistic lock while a correction is written
	LockForUpdate(ctx context.Context, id uuid.UUID) (*BankAccount, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrConcurrentModification indicates optimistic lock failure
type ErrConcurrentModification struct {
	AccountID uuid.UUID
}

func (e ErrConcurrentModification) Error() string {
	return "concurrent modification detected for account: " + e.AccountID.String()
}

// ErrAccountNotFound indicates missing account
type ErrAccountNotFound struct {
	AccountID uuid.UUID
}

func (e ErrAccountNotFound) Error() string {
	return "account not found: " + e.AccountID.String()
}

// Is matches any ErrAccountNotFound when the target carries no ID
func (e ErrAccountNotFound) Is(target error) bool {
	t, ok := target.(ErrAccountNotFound)
	if !ok {
		return false
	}
	if t.AccountID == uuid.Nil {
		return true
	}
	return e.AccountID == t.AccountID
}
