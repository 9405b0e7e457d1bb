package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clinic-backoffice/cashflow/internal/api/middleware"
	"github.com/clinic-backoffice/cashflow/internal/api/service"
)

// BalanceHandler handles on-demand balance syncs and the correction history
type BalanceHandler struct {
	balanceService service.BalanceService
	logger         *slog.Logger
}

// NewBalanceHandler creates a new balance handler
func NewBalanceHandler(logger *slog.Logger, balanceService service.BalanceService) *BalanceHandler {
	return &BalanceHandler{
		balanceService: balanceService,
		logger:         logger,
	}
}

// Sync recomputes the stored balance of an account and corrects it when it drifted
func (h *BalanceHandler) Sync(c *gin.Context) {
	clinicID, accountID, ok := accountScope(c, h.logger)
	if !ok {
		return
	}

	correlationID := middleware.GetCorrelationID(c)
	result, err := h.balanceService.Sync(c.Request.Context(), clinicID, accountID, correlationID)
	if err != nil {
		respondServiceError(c, h.logger, err, "Failed to sync account balance",
			"account_id", accountID,
			"correlation_id", correlationID,
		)
		return
	}

	if result.Applied {
		h.logger.Info("Balance corrected on request",
			"account_id", accountID,
			"correlation_id", correlationID,
			"corrected_balance", result.Realization.CorrectedBalance.String(),
		)
	}
	RespondOK(c, mapSyncResultToResponse(result))
}

// Corrections returns the paginated correction history, newest first
func (h *BalanceHandler) Corrections(c *gin.Context) {
	clinicID, accountID, ok := accountScope(c, h.logger)
	if !ok {
		return
	}

	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}

	corrections, total, err := h.balanceService.Corrections(c.Request.Context(), clinicID, accountID, pagination.Page, pagination.PerPage)
	if err != nil {
		respondServiceError(c, h.logger, err, "Failed to list corrections", "account_id", accountID)
		return
	}

	items := make([]CorrectionResponse, len(corrections))
	for i, item := range corrections {
		items[i] = mapCorrectionToResponse(item)
	}
	RespondWithPaginatedData(c, http.StatusOK, items, pagination.Page, pagination.PerPage, int(total))
}
