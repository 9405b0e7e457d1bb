package outbox_poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/clinic-backoffice/cashflow/internal/domain/correction"
	"github.com/clinic-backoffice/cashflow/internal/domain/outbox"
	"github.com/clinic-backoffice/cashflow/internal/domain/shared"
	"github.com/clinic-backoffice/cashflow/internal/platform/messaging/producers"
)

// CorrectionPublisher delivers one outbox message to its downstream sinks
type CorrectionPublisher interface {
	Publish(ctx context.Context, message *outbox.Message) error
}

// CorrectionPublisherImpl writes the correction to the audit store, announces
// it on Kafka and marks the outbox message processed. Every step is safe to
// repeat: the audit store rejects duplicates by correction id and consumers
// of the event deduplicate on it too.
type CorrectionPublisherImpl struct {
	outboxRepo     outbox.Repository
	correctionRepo correction.Repository
	events         producers.CorrectionPublisher
	logger         *slog.Logger
}

// NewCorrectionPublisher creates a new publisher
func NewCorrectionPublisher(
	outboxRepo outbox.Repository,
	correctionRepo correction.Repository,
	events producers.CorrectionPublisher,
	logger *slog.Logger,
) CorrectionPublisher {
	return &CorrectionPublisherImpl{
		outboxRepo:     outboxRepo,
		correctionRepo: correctionRepo,
		events:         events,
		logger:         logger,
	}
}

// Publish processes and publishes a single outbox message
func (p *CorrectionPublisherImpl) Publish(ctx context.Context, message *outbox.Message) error {
	c, err := message.GetCorrection()
	if err != nil {
		p.logger.Error("Failed to unmarshal correction from outbox payload",
			"outbox_id", message.ID, "correction_id", message.CorrectionID, "error", err,
		)
		if updateErr := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusFailedToPublish); updateErr != nil {
			p.logger.Error("Also failed to update outbox status to FAILED_TO_PUBLISH after unmarshal error", "outbox_id", message.ID, "update_error", updateErr)
		}
		return fmt.Errorf("unmarshal payload for outbox %d failed: %w", message.ID, err)
	}

	logger := p.logger
	if c.CorrelationID != "" {
		logger = p.logger.With("correlation_id", c.CorrelationID)
	}

	if err := p.correctionRepo.Create(ctx, c); err != nil {
		if !errors.As(err, &correction.ErrDuplicateCorrection{}) {
			return fmt.Errorf("failed to store correction %s: %w", c.ID, err)
		}
		logger.Info("Correction already stored", "correction_id", c.ID.String())
	}

	event := shared.BalanceCorrectedEvent{
		CorrectionID:     c.ID,
		ClinicID:         c.ClinicID,
		AccountID:        c.AccountID,
		PreviousBalance:  c.PreviousBalance,
		CorrectedBalance: c.CorrectedBalance,
		CorrelationID:    c.CorrelationID,
		ComputedAt:       c.ComputedAt,
	}
	if err := p.events.PublishCorrection(ctx, event); err != nil {
		return fmt.Errorf("failed to announce correction %s: %w", c.ID, err)
	}

	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusProcessed); err != nil {
		logger.Error("Failed to update outbox message status to PROCESSED",
			"outbox_id", message.ID, "correction_id", c.ID.String(), "error", err,
		)
		return fmt.Errorf("correction %s published, but failed to mark outbox %d as PROCESSED: %w", c.ID, message.ID, err)
	}

	logger.Info("Outbox message processed", "outbox_id", message.ID, "correction_id", c.ID.String())
	return nil
}
