package handler

import (
	"time"

	"github.com/shopspring/decimal"

	syncservice "github.com/clinic-backoffice/cashflow/internal/balance_syncer/service"
	"github.com/clinic-backoffice/cashflow/internal/domain/correction"
	"github.com/clinic-backoffice/cashflow/internal/settlement"
)

// ForecastRangeParams holds the optional inclusive day range of a forecast
type ForecastRangeParams struct {
	From string `form:"from"`
	To   string `form:"to"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=10" binding:"min=1,max=100"`
}

// DailyBucketResponse is one day of a forecast. Amounts are fixed to cents.
type DailyBucketResponse struct {
	Date              string `json:"date"`
	TotalIn           string `json:"total_in"`
	TotalOut          string `json:"total_out"`
	Net               string `json:"net"`
	CumulativeBalance string `json:"cumulative_balance"`
	ReconciledBalance string `json:"reconciled_balance"`
}

// DailyForecastResponse represents the reconciled daily series
type DailyForecastResponse struct {
	AccountID   string                `json:"account_id"`
	Today       string                `json:"today"`
	RealBalance string                `json:"real_balance"`
	Offset      string                `json:"offset"`
	Days        []DailyBucketResponse `json:"days"`
}

// MonthlyBucketResponse is one calendar month of a forecast
type MonthlyBucketResponse struct {
	Year              int    `json:"year"`
	Month             int    `json:"month"`
	TotalIn           string `json:"total_in"`
	TotalOut          string `json:"total_out"`
	Net               string `json:"net"`
	CumulativeBalance string `json:"cumulative_balance"`
	ReconciledBalance string `json:"reconciled_balance"`
}

// MonthlyForecastResponse represents the reconciled monthly series
type MonthlyForecastResponse struct {
	AccountID   string                  `json:"account_id"`
	Today       string                  `json:"today"`
	RealBalance string                  `json:"real_balance"`
	Months      []MonthlyBucketResponse `json:"months"`
}

// RealizedResponse represents realized totals and the balance they imply
type RealizedResponse struct {
	AccountID        string `json:"account_id"`
	AsOf             string `json:"as_of"`
	RealizedRevenue  string `json:"realized_revenue"`
	RealizedExpense  string `json:"realized_expense"`
	InitialBalance   string `json:"initial_balance"`
	StoredBalance    string `json:"stored_balance"`
	CorrectedBalance string `json:"corrected_balance"`
	Difference       string `json:"difference"`
	NeedsCorrection  bool   `json:"needs_correction"`
}

// SyncResponse reports the outcome of an on-demand balance sync
type SyncResponse struct {
	Applied      bool             `json:"applied"`
	CorrectionID string           `json:"correction_id,omitempty"`
	Realized     RealizedResponse `json:"realized"`
}

// CorrectionResponse represents one entry of the correction audit trail
type CorrectionResponse struct {
	ID               string `json:"id"`
	AccountID        string `json:"account_id"`
	PreviousBalance  string `json:"previous_balance"`
	CorrectedBalance string `json:"corrected_balance"`
	Difference       string `json:"difference"`
	RealizedRevenue  string `json:"realized_revenue"`
	RealizedExpense  string `json:"realized_expense"`
	CorrelationID    string `json:"correlation_id,omitempty"`
	ComputedAt       string `json:"computed_at"`
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func mapDailyForecastToResponse(f *settlement.Forecast) DailyForecastResponse {
	days := make([]DailyBucketResponse, len(f.Daily))
	for i, b := range f.Daily {
		days[i] = DailyBucketResponse{
			Date:              b.Date.Format(time.DateOnly),
			TotalIn:           money(b.TotalIn),
			TotalOut:          money(b.TotalOut),
			Net:               money(b.Net),
			CumulativeBalance: money(b.CumulativeBalance),
			ReconciledBalance: money(b.ReconciledBalance),
		}
	}
	return DailyForecastResponse{
		AccountID:   f.AccountID.String(),
		Today:       f.Today.Format(time.DateOnly),
		RealBalance: money(f.RealBalance),
		Offset:      money(f.Offset),
		Days:        days,
	}
}

func mapMonthlyForecastToResponse(f *settlement.Forecast) MonthlyForecastResponse {
	months := make([]MonthlyBucketResponse, len(f.Monthly))
	for i, b := range f.Monthly {
		months[i] = MonthlyBucketResponse{
			Year:              b.Year,
			Month:             int(b.Month),
			TotalIn:           money(b.TotalIn),
			TotalOut:          money(b.TotalOut),
			Net:               money(b.Net),
			CumulativeBalance: money(b.CumulativeBalance),
			ReconciledBalance: money(b.ReconciledBalance),
		}
	}
	return MonthlyForecastResponse{
		AccountID:   f.AccountID.String(),
		Today:       f.Today.Format(time.DateOnly),
		RealBalance: money(f.RealBalance),
		Months:      months,
	}
}

func mapRealizationToResponse(r *settlement.Realization) RealizedResponse {
	return RealizedResponse{
		AccountID:        r.AccountID.String(),
		AsOf:             r.Summary.AsOf.Format(time.DateOnly),
		RealizedRevenue:  money(r.Summary.Revenue),
		RealizedExpense:  money(r.Summary.Expense),
		InitialBalance:   money(r.InitialBalance),
		StoredBalance:    money(r.StoredBalance),
		CorrectedBalance: money(r.CorrectedBalance),
		Difference:       money(r.Difference),
		NeedsCorrection:  r.NeedsCorrection,
	}
}

func mapSyncResultToResponse(result *syncservice.SyncResult) SyncResponse {
	response := SyncResponse{
		Applied:  result.Applied,
		Realized: mapRealizationToResponse(&result.Realization),
	}
	if result.Correction != nil {
		response.CorrectionID = result.Correction.ID.String()
	}
	return response
}

func mapCorrectionToResponse(c *correction.Correction) CorrectionResponse {
	return CorrectionResponse{
		ID:               c.ID.String(),
		AccountID:        c.AccountID.String(),
		PreviousBalance:  money(c.PreviousBalance),
		CorrectedBalance: money(c.CorrectedBalance),
		Difference:       money(c.Difference),
		RealizedRevenue:  money(c.RealizedRevenue),
		RealizedExpense:  money(c.RealizedExpense),
		CorrelationID:    c.CorrelationID,
		ComputedAt:       c.ComputedAt.UTC().Format(time.RFC3339),
	}
}
