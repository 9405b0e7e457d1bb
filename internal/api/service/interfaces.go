package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	syncservice "github.com/clinic-backoffice/cashflow/internal/balance_syncer/service"
	"github.com/clinic-backoffice/cashflow/internal/domain/correction"
	"github.com/clinic-backoffice/cashflow/internal/settlement"
)

// ForecastQuery selects the account and the inclusive day range of a forecast.
// From and To are raw query values; empty means the default window.
type ForecastQuery struct {
	ClinicID  uuid.UUID
	AccountID uuid.UUID
	From      string
	To        string
}

// ForecastService computes read-only cash views of an account
type ForecastService interface {
	// Forecast returns the reconciled daily and monthly series
	// Returns ErrAccountNotFound if the account doesn't belong to the clinic
	// Returns ErrInvalidQuery if the range cannot be parsed
	Forecast(ctx context.Context, query *ForecastQuery) (*settlement.Forecast, error)

	// Realized returns realized totals and the corrected balance without writing it
	Realized(ctx context.Context, clinicID, accountID uuid.UUID) (*settlement.Realization, error)
}

// BalanceService runs balance syncs on demand and reads their audit trail
type BalanceService interface {
	// Sync recomputes the stored balance and writes a correction when it drifted
	Sync(ctx context.Context, clinicID, accountID uuid.UUID, correlationID string) (*syncservice.SyncResult, error)

	// Corrections returns a page of corrections, newest first, and the total count
	Corrections(ctx context.Context, clinicID, accountID uuid.UUID, page, perPage int) ([]*correction.Correction, int64, error)
}

// ErrInvalidQuery reports a query parameter the service could not use
type ErrInvalidQuery struct {
	Field  string
	Value  string
	Reason string
}

func (e ErrInvalidQuery) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}
