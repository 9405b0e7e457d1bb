package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// ClinicIDHeader carries the tenant every /api/v1 request is scoped to
	ClinicIDHeader = "X-Clinic-ID"

	// ClinicIDKey is the gin context key holding the parsed clinic ID
	ClinicIDKey = "clinic_id"
)

// ClinicID rejects requests without a valid clinic header and stores the
// parsed ID for handlers.
func ClinicID() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(ClinicIDHeader)
		if raw == "" {
			abortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", ClinicIDHeader+" header is required")
			return
		}

		clinicID, err := uuid.Parse(raw)
		if err != nil || clinicID == uuid.Nil {
			abortWithError(c, http.StatusBadRequest, "BAD_REQUEST", "Invalid "+ClinicIDHeader+" header")
			return
		}

		c.Set(ClinicIDKey, clinicID)
		c.Next()
	}
}

// GetClinicID returns the clinic stored by ClinicID
func GetClinicID(c *gin.Context) (uuid.UUID, bool) {
	if v, exists := c.Get(ClinicIDKey); exists {
		if clinicID, ok := v.(uuid.UUID); ok {
			return clinicID, true
		}
	}
	return uuid.Nil, false
}

// abortWithError writes the standard error envelope and stops the chain
func abortWithError(c *gin.Context, status int, code, message string) {
	response := gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	}
	if correlationID := GetCorrelationID(c); correlationID != "" {
		response["correlation_id"] = correlationID
	}
	c.AbortWithStatusJSON(status, response)
}
