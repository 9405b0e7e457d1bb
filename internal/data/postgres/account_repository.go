// Package postgres provides PostgreSQL implementations of the domain repositories.
// Bank accounts, revenue and expense rows and the correction outbox all live in
// the clinic back-office database.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/clinic-backoffice/cashflow/internal/domain/account"
	"github.com/clinic-backoffice/cashflow/internal/platform/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Balances are selected as text and parsed with decimal so no value ever
// passes through float64.
const accountColumns = `id, clinic_id, name, initial_balance::text, current_balance::text, version, created_at, updated_at`

// AccountRepository implements the account.Repository interface for PostgreSQL
type AccountRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewAccountRepository creates a new PostgreSQL account repository
func NewAccountRepository(logger *slog.Logger, db *persistence.PostgresDB) account.Repository {
	return &AccountRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction, allowing for atomic operations
// across multiple repository calls.
func (r *AccountRepository) WithTx(tx pgx.Tx) account.Repository {
	return &AccountRepository{
		querier: tx,
		logger:  r.logger,
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAccount(row rowScanner) (*account.BankAccount, error) {
	var (
		acc              account.BankAccount
		initial, current string
	)
	if err := row.Scan(
		&acc.ID,
		&acc.ClinicID,
		&acc.Name,
		&initial,
		&current,
		&acc.Version,
		&acc.CreatedAt,
		&acc.UpdatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if acc.InitialBalance, err = decimal.NewFromString(initial); err != nil {
		return nil, fmt.Errorf("invalid initial balance %q: %w", initial, err)
	}
	if acc.CurrentBalance, err = decimal.NewFromString(current); err != nil {
		return nil, fmt.Errorf("invalid current balance %q: %w", current, err)
	}
	return &acc, nil
}

// GetByID retrieves an account of a clinic. Accounts of other clinics are
// reported as not found.
func (r *AccountRepository) GetByID(ctx context.Context, clinicID, id uuid.UUID) (*account.BankAccount, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM bank_accounts
		WHERE id = $1 AND clinic_id = $2
	`

	acc, err := scanAccount(r.querier.QueryRow(ctx, query, id, clinicID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrAccountNotFound{AccountID: id}
		}
		r.logger.Error("Failed to get account", "id", id.String(), "clinic_id", clinicID.String(), "error", err)
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return acc, nil
}

// ListByClinic returns every account of a clinic ordered by name
func (r *AccountRepository) ListByClinic(ctx context.Context, clinicID uuid.UUID) ([]*account.BankAccount, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM bank_accounts
		WHERE clinic_id = $1
		ORDER BY name ASC
	`
	return r.list(ctx, "list clinic accounts", query, clinicID)
}

// ListAll returns every account of every clinic, used by the periodic full sync
func (r *AccountRepository) ListAll(ctx context.Context) ([]*account.BankAccount, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM bank_accounts
		ORDER BY clinic_id, id
	`
	return r.list(ctx, "list accounts", query)
}

func (r *AccountRepository) list(ctx context.Context, op, query string, args ...interface{}) ([]*account.BankAccount, error) {
	rows, err := r.querier.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to "+op, "error", err)
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}
	defer rows.Close()

	var accounts []*account.BankAccount
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			r.logger.Error("Failed to scan account", "error", err)
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, acc)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over accounts", "error", err)
		return nil, fmt.Errorf("error iterating over accounts: %w", err)
	}

	return accounts, nil
}

// UpdateCurrentBalance overwrites the stored balance using optimistic locking.
// Returns ErrConcurrentModification if the account was modified between read and update.
func (r *AccountRepository) UpdateCurrentBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal, version int) error {
	query := `
		UPDATE bank_accounts
		SET current_balance = $1::numeric, version = version + 1, updated_at = NOW()
		WHERE id = $2 AND version = $3
	`

	result, err := r.querier.Exec(ctx, query, balance.StringFixed(2), id, version)
	if err != nil {
		r.logger.Error("Failed to update account balance", "id", id.String(), "error", err)
		return fmt.Errorf("failed to update account balance: %w", err)
	}

	if result.RowsAffected() == 0 {
		return account.ErrConcurrentModification{AccountID: id}
	}

	return nil
}

// LockForUpdate obtains a pessimistic lock on the account and returns its current state.
// This should be used within a transaction when strong consistency is required.
func (r *AccountRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*account.BankAccount, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM bank_accounts
		WHERE id = $1
		FOR UPDATE
	`

	acc, err := scanAccount(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrAccountNotFound{AccountID: id}
		}
		r.logger.Error("Failed to lock account for update", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to lock account for update: %w", err)
	}

	return acc, nil
}
