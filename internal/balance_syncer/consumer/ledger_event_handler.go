package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/clinic-backoffice/cashflow/internal/balance_syncer/service"
	"github.com/clinic-backoffice/cashflow/internal/domain/account"
	"github.com/clinic-backoffice/cashflow/internal/domain/shared"
	"github.com/clinic-backoffice/cashflow/internal/platform/messaging/producers"
)

// LedgerEventHandler turns ledger change notifications into account syncs
type LedgerEventHandler struct {
	syncService service.SyncService
	producer    producers.DeadLetterPublisher
	logger      *slog.Logger
}

// NewLedgerEventHandler creates a new handler. producer may be nil when the
// DLQ is disabled.
func NewLedgerEventHandler(
	logger *slog.Logger,
	syncService service.SyncService,
	producer producers.DeadLetterPublisher,
) *LedgerEventHandler {
	return &LedgerEventHandler{
		syncService: syncService,
		producer:    producer,
		logger:      logger,
	}
}

// HandleMessage processes one Kafka message. Undecodable events go to the
// DLQ and are acknowledged; sync failures are returned so the consumer retries.
func (h *LedgerEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var event shared.LedgerChangedEvent
	if err := json.Unmarshal(value, &event); err != nil {
		return h.deadLetter(ctx, key, value, fmt.Sprintf("failed to unmarshal ledger event: %s", err.Error()), err)
	}
	if event.ClinicID == uuid.Nil || event.AccountID == uuid.Nil {
		err := errors.New("ledger event without clinic or account id")
		return h.deadLetter(ctx, key, value, err.Error(), err)
	}

	logger := h.logger
	if event.CorrelationID != "" {
		logger = h.logger.With("correlation_id", event.CorrelationID)
	}

	logger.Info("Received ledger change",
		"clinic_id", event.ClinicID.String(),
		"account_id", event.AccountID.String(),
		"entry_id", event.EntryID.String(),
		"kind", event.Kind,
	)

	result, err := h.syncService.SyncAccount(ctx, &service.SyncRequest{
		ClinicID:      event.ClinicID,
		AccountID:     event.AccountID,
		CorrelationID: event.CorrelationID,
		Trigger:       service.TriggerLedgerEvent,
	})
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound{}) {
			logger.Warn("Ledger change for unknown account, skipping", "account_id", event.AccountID.String())
			return nil
		}
		logger.Error("Failed to sync account after ledger change",
			"account_id", event.AccountID.String(),
			"error", err,
		)
		return fmt.Errorf("sync of account %s failed: %w", event.AccountID.String(), err)
	}

	logger.Info("Account synced", "account_id", event.AccountID.String(), "corrected", result.Applied)
	return nil
}

// HandleExhausted forwards a message whose sync kept failing to the DLQ
func (h *LedgerEventHandler) HandleExhausted(ctx context.Context, key []byte, value []byte, err error) {
	if h.producer == nil {
		h.logger.Error("Dropping ledger event after retries, DLQ disabled", "message_key", string(key), "error", err)
		return
	}
	if dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, "sync retries exhausted: "+err.Error()); dlqErr != nil {
		h.logger.Error("Failed to publish exhausted ledger event to DLQ", "dlq_error", dlqErr, "message_key", string(key))
	}
}

func (h *LedgerEventHandler) deadLetter(ctx context.Context, key, value []byte, reason string, cause error) error {
	h.logger.Error("Unprocessable ledger event", "error", cause, "message_key", string(key))

	if h.producer != nil {
		if dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, reason); dlqErr != nil {
			h.logger.Error("Failed to publish message to DLQ",
				"dlq_error", dlqErr,
				"original_error", cause,
				"message_key", string(key),
			)
			return fmt.Errorf("unprocessable ledger event: %w", cause)
		}
		h.logger.Info("Published unprocessable message to DLQ", "message_key", string(key), "reason", reason)
		return nil
	}
	return fmt.Errorf("unprocessable ledger event: %w", cause)
}
