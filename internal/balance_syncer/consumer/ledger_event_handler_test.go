package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/clinic-backoffice/cashflow/internal/balance_syncer/service"
	"github.com/clinic-backoffice/cashflow/internal/domain/account"
	"github.com/clinic-backoffice/cashflow/internal/domain/shared"
)

type MockSyncService struct {
	mock.Mock
}

func (m *MockSyncService) SyncAccount(ctx context.Context, request *service.SyncRequest) (*service.SyncResult, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SyncResult), args.Error(1)
}

type MockDLQProducer struct {
	mock.Mock
}

func (m *MockDLQProducer) PublishToDLQ(ctx context.Context, key string, originalMessageValue []byte, reason string) error {
	args := m.Called(ctx, key, originalMessageValue, reason)
	return args.Error(0)
}

func (m *MockDLQProducer) Close() error {
	return m.Called().Error(0)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func validEvent(t *testing.T) (shared.LedgerChangedEvent, []byte) {
	t.Helper()
	event := shared.LedgerChangedEvent{
		ClinicID:      uuid.New(),
		AccountID:     uuid.New(),
		EntryID:       uuid.New(),
		Kind:          shared.EntryKindRevenue,
		CorrelationID: "corr-7",
		OccurredAt:    time.Now().UTC(),
	}
	value, err := json.Marshal(event)
	require.NoError(t, err)
	return event, value
}

func TestLedgerEventHandler_HandleMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("syncs the account", func(t *testing.T) {
		syncService, dlq := new(MockSyncService), new(MockDLQProducer)
		handler := NewLedgerEventHandler(newTestLogger(), syncService, dlq)
		event, value := validEvent(t)

		syncService.On("SyncAccount", ctx, mock.MatchedBy(func(r *service.SyncRequest) bool {
			return r.ClinicID == event.ClinicID &&
				r.AccountID == event.AccountID &&
				r.CorrelationID == "corr-7" &&
				r.Trigger == service.TriggerLedgerEvent
		})).Return(&service.SyncResult{Applied: true}, nil).Once()

		assert.NoError(t, handler.HandleMessage(ctx, []byte("k"), value))
		syncService.AssertExpectations(t)
		dlq.AssertNotCalled(t, "PublishToDLQ", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("undecodable goes to DLQ and is acknowledged", func(t *testing.T) {
		syncService, dlq := new(MockSyncService), new(MockDLQProducer)
		handler := NewLedgerEventHandler(newTestLogger(), syncService, dlq)
		value := []byte(`{"clinic_id":`)

		dlq.On("PublishToDLQ", ctx, "k", value, mock.MatchedBy(func(reason string) bool {
			return strings.HasPrefix(reason, "failed to unmarshal ledger event")
		})).Return(nil).Once()

		assert.NoError(t, handler.HandleMessage(ctx, []byte("k"), value))
		dlq.AssertExpectations(t)
		syncService.AssertNotCalled(t, "SyncAccount", mock.Anything, mock.Anything)
	})

	t.Run("missing account id goes to DLQ", func(t *testing.T) {
		syncService, dlq := new(MockSyncService), new(MockDLQProducer)
		handler := NewLedgerEventHandler(newTestLogger(), syncService, dlq)
		value := []byte(`{"clinic_id":"` + uuid.NewString() + `"}`)

		dlq.On("PublishToDLQ", ctx, "k", value, "ledger event without clinic or account id").Return(nil).Once()

		assert.NoError(t, handler.HandleMessage(ctx, []byte("k"), value))
		dlq.AssertExpectations(t)
	})

	t.Run("undecodable without DLQ is an error", func(t *testing.T) {
		handler := NewLedgerEventHandler(newTestLogger(), new(MockSyncService), nil)

		err := handler.HandleMessage(ctx, []byte("k"), []byte("not json"))
		assert.ErrorContains(t, err, "unprocessable ledger event")
	})

	t.Run("DLQ failure is an error", func(t *testing.T) {
		dlq := new(MockDLQProducer)
		handler := NewLedgerEventHandler(newTestLogger(), new(MockSyncService), dlq)
		dlq.On("PublishToDLQ", ctx, "k", mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()

		assert.Error(t, handler.HandleMessage(ctx, []byte("k"), []byte("not json")))
	})

	t.Run("unknown account is acknowledged", func(t *testing.T) {
		syncService := new(MockSyncService)
		handler := NewLedgerEventHandler(newTestLogger(), syncService, nil)
		event, value := validEvent(t)

		syncService.On("SyncAccount", ctx, mock.Anything).
			Return(nil, account.ErrAccountNotFound{AccountID: event.AccountID}).Once()

		assert.NoError(t, handler.HandleMessage(ctx, []byte("k"), value))
	})

	t.Run("sync failure is returned for retry", func(t *testing.T) {
		syncService := new(MockSyncService)
		handler := NewLedgerEventHandler(newTestLogger(), syncService, nil)
		_, value := validEvent(t)
		syncErr := errors.New("deadlock detected")

		syncService.On("SyncAccount", ctx, mock.Anything).Return(nil, syncErr).Once()

		assert.ErrorIs(t, handler.HandleMessage(ctx, []byte("k"), value), syncErr)
	})
}

func TestLedgerEventHandler_HandleExhausted(t *testing.T) {
	ctx := context.Background()
	dlq := new(MockDLQProducer)
	handler := NewLedgerEventHandler(newTestLogger(), new(MockSyncService), dlq)

	dlq.On("PublishToDLQ", ctx, "k", []byte("v"), "sync retries exhausted: lock timeout").Return(nil).Once()

	handler.HandleExhausted(ctx, []byte("k"), []byte("v"), errors.New("lock timeout"))
	dlq.AssertExpectations(t)

	withoutDLQ := NewLedgerEventHandler(newTestLogger(), new(MockSyncService), nil)
	assert.NotPanics(t, func() {
		withoutDLQ.HandleExhausted(ctx, []byte("k"), []byte("v"), errors.New("lock timeout"))
	})
}
