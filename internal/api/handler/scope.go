package handler

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clinic-backoffice/cashflow/internal/api/middleware"
	"github.com/clinic-backoffice/cashflow/internal/api/service"
	"github.com/clinic-backoffice/cashflow/internal/domain/account"
)

// accountScope reads the clinic set by the middleware and the account path
// parameter. It writes the error response itself and reports false on failure.
func accountScope(c *gin.Context, logger *slog.Logger) (uuid.UUID, uuid.UUID, bool) {
	clinicID, ok := middleware.GetClinicID(c)
	if !ok {
		RespondUnauthorized(c, middleware.ClinicIDHeader+" header is required")
		return uuid.Nil, uuid.Nil, false
	}

	idParam := c.Param("id")
	accountID, err := uuid.Parse(idParam)
	if err != nil {
		logger.Warn("Invalid account ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid account ID")
		return uuid.Nil, uuid.Nil, false
	}

	return clinicID, accountID, true
}

// respondServiceError maps service errors onto HTTP statuses
func respondServiceError(c *gin.Context, logger *slog.Logger, err error, msg string, attrs ...any) {
	var invalidQuery service.ErrInvalidQuery
	switch {
	case errors.Is(err, account.ErrAccountNotFound{}):
		RespondNotFound(c, "Account not found")
	case errors.As(err, &invalidQuery):
		RespondBadRequest(c, invalidQuery.Error())
	default:
		logger.Error(msg, append(attrs, "error", err)...)
		RespondInternalError(c)
	}
}
