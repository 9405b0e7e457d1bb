package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/clinic-backoffice/cashflow/internal/domain/ledger"
	"github.com/clinic-backoffice/cashflow/internal/domain/shared"
	"github.com/clinic-backoffice/cashflow/internal/platform/persistence"
	"github.com/google/uuid"
)

// Every column is read back as text: the back-office screens wrote these
// tables for years without validation and the settlement engine owns the
// interpretation of each value.
const ledgerRowsQuery = `
		SELECT id::text, clinic_id::text, COALESCE(bank_account_id::text, ''), 'REVENUE'::text,
			COALESCE(issue_date::text, ''), COALESCE(settlement_date::text, ''), COALESCE(realized_at::text, ''),
			COALESCE(payment_method, ''), COALESCE(installments::text, ''), COALESCE(installment_dates::text, ''),
			COALESCE(COALESCE(net_amount, gross_amount)::text, ''), COALESCE(status, '')
		FROM revenues
		WHERE clinic_id = $1 AND ($2::uuid IS NULL OR bank_account_id = $2)
		UNION ALL
		SELECT id::text, clinic_id::text, COALESCE(bank_account_id::text, ''), 'EXPENSE'::text,
			COALESCE(issue_date::text, ''), COALESCE(settlement_date::text, ''), COALESCE(realized_at::text, ''),
			COALESCE(payment_method, ''), COALESCE(installments::text, ''), COALESCE(installment_dates::text, ''),
			COALESCE(amount::text, ''), COALESCE(status, '')
		FROM expenses
		WHERE clinic_id = $1 AND ($2::uuid IS NULL OR bank_account_id = $2)
	`

// LedgerRepository reads revenue and expense rows for the settlement engine
type LedgerRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewLedgerRepository creates a new PostgreSQL ledger repository
func NewLedgerRepository(logger *slog.Logger, db *persistence.PostgresDB) ledger.Repository {
	return &LedgerRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// ListRows returns the raw revenue and expense rows of a clinic, optionally
// restricted to one bank account.
func (r *LedgerRepository) ListRows(ctx context.Context, filter ledger.RowFilter) ([]ledger.Row, error) {
	var accountArg interface{}
	if filter.AccountID != nil {
		accountArg = *filter.AccountID
	}

	rows, err := r.querier.Query(ctx, ledgerRowsQuery, filter.ClinicID, accountArg)
	if err != nil {
		r.logger.Error("Failed to list ledger rows", "clinic_id", filter.ClinicID.String(), "error", err)
		return nil, fmt.Errorf("failed to list ledger rows: %w", err)
	}
	defer rows.Close()

	var result []ledger.Row
	for rows.Next() {
		var (
			row                     ledger.Row
			id, clinicID, accountID string
			kind                    string
		)
		if err := rows.Scan(
			&id,
			&clinicID,
			&accountID,
			&kind,
			&row.IssueDate,
			&row.ExplicitDate,
			&row.RealizedDate,
			&row.PaymentMethodLabel,
			&row.Installments,
			&row.ManualInstallmentDatesRaw,
			&row.Amount,
			&row.Status,
		); err != nil {
			r.logger.Error("Failed to scan ledger row", "error", err)
			return nil, fmt.Errorf("failed to scan ledger row: %w", err)
		}

		if row.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("invalid ledger row id %q: %w", id, err)
		}
		if row.ClinicID, err = uuid.Parse(clinicID); err != nil {
			return nil, fmt.Errorf("invalid clinic id %q on row %s: %w", clinicID, id, err)
		}
		if accountID != "" {
			parsed, err := uuid.Parse(accountID)
			if err != nil {
				return nil, fmt.Errorf("invalid bank account id %q on row %s: %w", accountID, id, err)
			}
			row.AccountID = &parsed
		}
		row.Kind = shared.EntryKind(kind)

		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over ledger rows", "error", err)
		return nil, fmt.Errorf("error iterating over ledger rows: %w", err)
	}

	return result, nil
}
