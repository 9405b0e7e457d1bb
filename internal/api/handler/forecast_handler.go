package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/clinic-backoffice/cashflow/internal/api/service"
	"github.com/clinic-backoffice/cashflow/internal/settlement"
)

// ForecastHandler serves the read-only cash views of an account
type ForecastHandler struct {
	forecastService service.ForecastService
	logger          *slog.Logger
}

// NewForecastHandler creates a new forecast handler
func NewForecastHandler(logger *slog.Logger, forecastService service.ForecastService) *ForecastHandler {
	return &ForecastHandler{
		forecastService: forecastService,
		logger:          logger,
	}
}

// Daily returns the reconciled daily series
func (h *ForecastHandler) Daily(c *gin.Context) {
	forecast, ok := h.forecast(c)
	if !ok {
		return
	}
	RespondOK(c, mapDailyForecastToResponse(forecast))
}

// Monthly returns the reconciled monthly series
func (h *ForecastHandler) Monthly(c *gin.Context) {
	forecast, ok := h.forecast(c)
	if !ok {
		return
	}
	RespondOK(c, mapMonthlyForecastToResponse(forecast))
}

// Realized returns realized totals and the corrected balance. Nothing is written.
func (h *ForecastHandler) Realized(c *gin.Context) {
	clinicID, accountID, ok := accountScope(c, h.logger)
	if !ok {
		return
	}

	realization, err := h.forecastService.Realized(c.Request.Context(), clinicID, accountID)
	if err != nil {
		respondServiceError(c, h.logger, err, "Failed to compute realized balance", "account_id", accountID)
		return
	}

	RespondOK(c, mapRealizationToResponse(realization))
}

func (h *ForecastHandler) forecast(c *gin.Context) (*settlement.Forecast, bool) {
	clinicID, accountID, ok := accountScope(c, h.logger)
	if !ok {
		return nil, false
	}

	var params ForecastRangeParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "Invalid query parameters: "+err.Error())
		return nil, false
	}

	forecast, err := h.forecastService.Forecast(c.Request.Context(), &service.ForecastQuery{
		ClinicID:  clinicID,
		AccountID: accountID,
		From:      params.From,
		To:        params.To,
	})
	if err != nil {
		respondServiceError(c, h.logger, err, "Failed to compute forecast", "account_id", accountID)
		return nil, false
	}
	return forecast, true
}
