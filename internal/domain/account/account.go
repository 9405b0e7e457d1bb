package account

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Common errors
var (
	ErrEmptyName = errors.New("account name cannot be empty")
)

// DefaultBalanceTolerance is the largest stored-vs-computed difference that is
// treated as rounding noise rather than drift.
var DefaultBalanceTolerance = decimal.RequireFromString("0.009")

// BankAccount is the snapshot of a clinic bank account the engine works from.
// CurrentBalance is the balance reported by the bank-accounts screen and is
// treated as ground truth for "today"; InitialBalance only seeds
// recomputation.
type BankAccount struct {
	ID             uuid.UUID       `json:"id"`
	ClinicID       uuid.UUID       `json:"clinic_id"`
	Name           string          `json:"name"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	Version        int             `json:"version"` // For optimistic locking
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// NewBankAccount creates an account whose current balance starts at the initial balance
func NewBankAccount(clinicID uuid.UUID, name string, initialBalance decimal.Decimal) (*BankAccount, error) {
	if name == "" {
		return nil, ErrEmptyName
	}

	now := time.Now()
	return &BankAccount{
		ID:             uuid.New(),
		ClinicID:       clinicID,
		Name:           name,
		InitialBalance: initialBalance,
		CurrentBalance: initialBalance,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// NeedsCorrection reports whether computed differs from the stored current
// balance by more than tolerance.
func (a *BankAccount) NeedsCorrection(computed, tolerance decimal.Decimal) bool {
	return computed.Sub(a.CurrentBalance).Abs().GreaterThan(tolerance)
}

// ApplyCorrection overwrites the stored current balance
func (a *BankAccount) ApplyCorrection(corrected decimal.Decimal) {
	a.CurrentBalance = corrected
	a.UpdatedAt = time.Now()
	a.Version++
}
