package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/clinic-backoffice/cashflow/internal/api/middleware"
	"github.com/clinic-backoffice/cashflow/internal/api/service"
	syncservice "github.com/clinic-backoffice/cashflow/internal/balance_syncer/service"
	"github.com/clinic-backoffice/cashflow/internal/domain/correction"
	"github.com/clinic-backoffice/cashflow/internal/settlement"
)

type MockForecastService struct {
	mock.Mock
}

func (m *MockForecastService) Forecast(ctx context.Context, query *service.ForecastQuery) (*settlement.Forecast, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*settlement.Forecast), args.Error(1)
}

func (m *MockForecastService) Realized(ctx context.Context, clinicID, accountID uuid.UUID) (*settlement.Realization, error) {
	args := m.Called(ctx, clinicID, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*settlement.Realization), args.Error(1)
}

type MockBalanceService struct {
	mock.Mock
}

func (m *MockBalanceService) Sync(ctx context.Context, clinicID, accountID uuid.UUID, correlationID string) (*syncservice.SyncResult, error) {
	args := m.Called(ctx, clinicID, accountID, correlationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*syncservice.SyncResult), args.Error(1)
}

func (m *MockBalanceService) Corrections(ctx context.Context, clinicID, accountID uuid.UUID, page, perPage int) ([]*correction.Correction, int64, error) {
	args := m.Called(ctx, clinicID, accountID, page, perPage)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*correction.Correction), args.Get(1).(int64), args.Error(2)
}

type MockHealthChecker struct {
	mock.Mock
}

func (m *MockHealthChecker) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// setupTestRouter mirrors the /api/v1 middleware chain
func setupTestRouter() (*gin.Engine, *gin.RouterGroup) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.CorrelationID())
	v1 := r.Group("/api/v1", middleware.ClinicID())
	return r, v1
}

func doRequest(r *gin.Engine, method, path string, clinicID uuid.UUID) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, nil)
	if clinicID != uuid.Nil {
		req.Header.Set(middleware.ClinicIDHeader, clinicID.String())
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
