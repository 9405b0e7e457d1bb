package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	syncservice "github.com/clinic-backoffice/cashflow/internal/balance_syncer/service"
	"github.com/clinic-backoffice/cashflow/internal/settlement"
)

// ForecastServiceImpl implements the ForecastService interface
type ForecastServiceImpl struct {
	loader      syncservice.SnapshotLoader
	engine      *settlement.Engine
	tolerance   decimal.Decimal
	horizonDays int
}

// NewForecastService creates a forecast service. horizonDays bounds forecasts
// that have no end date.
func NewForecastService(loader syncservice.SnapshotLoader, engine *settlement.Engine, tolerance decimal.Decimal, horizonDays int) ForecastService {
	return &ForecastServiceImpl{
		loader:      loader,
		engine:      engine,
		tolerance:   tolerance,
		horizonDays: horizonDays,
	}
}

// Forecast loads the account snapshot and projects it over the requested window
func (s *ForecastServiceImpl) Forecast(ctx context.Context, query *ForecastQuery) (*settlement.Forecast, error) {
	from, to, err := s.window(query.From, query.To)
	if err != nil {
		return nil, err
	}

	acc, entries, err := s.loader.Load(ctx, &syncservice.SyncRequest{
		ClinicID:  query.ClinicID,
		AccountID: query.AccountID,
	})
	if err != nil {
		return nil, err
	}

	forecast := s.engine.Forecast(acc, entries, from, to)
	return &forecast, nil
}

// Realized loads the account snapshot and computes what has cleared as of today
func (s *ForecastServiceImpl) Realized(ctx context.Context, clinicID, accountID uuid.UUID) (*settlement.Realization, error) {
	acc, entries, err := s.loader.Load(ctx, &syncservice.SyncRequest{
		ClinicID:  clinicID,
		AccountID: accountID,
	})
	if err != nil {
		return nil, err
	}

	realization := s.engine.Realized(acc, entries, s.tolerance)
	return &realization, nil
}

// window parses the range. A missing start leaves the series open so it
// begins at the first scheduled parcel; a missing end is today plus the
// configured horizon.
func (s *ForecastServiceImpl) window(rawFrom, rawTo string) (*time.Time, *time.Time, error) {
	loc := s.engine.Location()

	var from *time.Time
	if rawFrom != "" {
		t, ok := settlement.ParseDate(rawFrom, loc)
		if !ok {
			return nil, nil, ErrInvalidQuery{Field: "from", Value: rawFrom, Reason: "not a date"}
		}
		from = &t
	}

	var to *time.Time
	if rawTo != "" {
		t, ok := settlement.ParseDate(rawTo, loc)
		if !ok {
			return nil, nil, ErrInvalidQuery{Field: "to", Value: rawTo, Reason: "not a date"}
		}
		to = &t
	} else {
		end := settlement.AddCalendarDays(s.engine.Today(), s.horizonDays)
		to = &end
	}

	if from != nil && from.After(*to) {
		return nil, nil, ErrInvalidQuery{
			Field:  "from",
			Value:  rawFrom,
			Reason: fmt.Sprintf("after end of range %s", to.Format(time.DateOnly)),
		}
	}
	return from, to, nil
}
