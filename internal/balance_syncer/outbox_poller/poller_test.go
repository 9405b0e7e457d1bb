package outbox_poller

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/clinic-backoffice/cashflow/internal/config"
	"github.com/clinic-backoffice/cashflow/internal/domain/outbox"
	"github.com/clinic-backoffice/cashflow/internal/domain/shared"
)

func TestPoller_ProcessPendingMessages(t *testing.T) {
	cfg := &config.OutboxConfig{
		PollingInterval:  time.Second,
		BatchSize:        10,
		MaxRetryAttempts: 3,
	}

	message1 := &outbox.Message{ID: 1, CorrectionID: uuid.New(), Status: shared.OutboxStatusPending}
	message2 := &outbox.Message{ID: 2, CorrectionID: uuid.New(), Status: shared.OutboxStatusPending}

	var (
		outboxRepo *MockOutboxRepo
		publisher  *MockCorrectionPublisher
	)

	tests := []struct {
		name          string
		setupMocks    func()
		expectedError string
	}{
		{
			name: "successful processing of pending messages",
			setupMocks: func() {
				outboxRepo.On("GetPending", mock.Anything, 10).Return([]*outbox.Message{message1, message2}, nil).Once()
				publisher.On("Publish", mock.Anything, message1).Return(nil).Once()
				publisher.On("Publish", mock.Anything, message2).Return(nil).Once()
			},
		},
		{
			name: "error getting pending messages",
			setupMocks: func() {
				outboxRepo.On("GetPending", mock.Anything, 10).Return(nil, errors.New("db error")).Once()
			},
			expectedError: "failed to get pending outbox messages",
		},
		{
			name: "no pending messages",
			setupMocks: func() {
				outboxRepo.On("GetPending", mock.Anything, 10).Return([]*outbox.Message{}, nil).Once()
			},
		},
		{
			name: "error publishing one message",
			setupMocks: func() {
				outboxRepo.On("GetPending", mock.Anything, 10).Return([]*outbox.Message{message1, message2}, nil).Once()
				publisher.On("Publish", mock.Anything, message1).Return(errors.New("publish error")).Once()
				outboxRepo.On("IncrementAttempts", mock.Anything, int64(1)).Return(nil).Once()
				publisher.On("Publish", mock.Anything, message2).Return(nil).Once()
			},
		},
		{
			name: "max retry attempts reached",
			setupMocks: func() {
				exhausted := &outbox.Message{ID: 3, CorrectionID: uuid.New(), Status: shared.OutboxStatusPending, Attempts: 2}
				outboxRepo.On("GetPending", mock.Anything, 10).Return([]*outbox.Message{exhausted}, nil).Once()
				publisher.On("Publish", mock.Anything, exhausted).Return(errors.New("publish error")).Once()
				outboxRepo.On("IncrementAttempts", mock.Anything, int64(3)).Return(nil).Once()
				outboxRepo.On("UpdateStatus", mock.Anything, int64(3), shared.OutboxStatusFailedToPublish).Return(nil).Once()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outboxRepo = &MockOutboxRepo{}
			publisher = &MockCorrectionPublisher{}
			poller := NewPoller(cfg, outboxRepo, publisher, newTestLogger())

			tt.setupMocks()

			err := poller.processPendingMessages(context.Background())
			if tt.expectedError != "" {
				assert.ErrorContains(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
			}

			outboxRepo.AssertExpectations(t)
			publisher.AssertExpectations(t)
		})
	}
}

func TestPoller_Start(t *testing.T) {
	outboxRepo := &MockOutboxRepo{}
	cfg := &config.OutboxConfig{
		PollingInterval:  10 * time.Millisecond,
		BatchSize:        10,
		MaxRetryAttempts: 3,
	}
	poller := NewPoller(cfg, outboxRepo, &MockCorrectionPublisher{}, newTestLogger())

	polled := make(chan struct{}, 1)
	outboxRepo.On("GetPending", mock.Anything, 10).Return([]*outbox.Message{}, nil).Run(func(mock.Arguments) {
		select {
		case polled <- struct{}{}:
		default:
		}
	}).Maybe()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		poller.Start(ctx)
		close(done)
	}()

	select {
	case <-polled:
	case <-time.After(time.Second):
		t.Fatal("poller never polled")
	}
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop after cancel")
	}
}
