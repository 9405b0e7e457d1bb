package components

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/clinic-backoffice/cashflow/internal/balance_syncer/service"
	"github.com/clinic-backoffice/cashflow/internal/domain/correction"
	"github.com/clinic-backoffice/cashflow/internal/domain/outbox"
)

type OutboxManagerImpl struct {
	outboxRepo outbox.Repository
	logger     *slog.Logger
}

func NewOutboxManager(outboxRepo outbox.Repository, logger *slog.Logger) service.OutboxManager {
	return &OutboxManagerImpl{
		outboxRepo: outboxRepo,
		logger:     logger,
	}
}

// CreateOutboxEntry stores the correction in the outbox inside tx, so it is
// published if and only if the balance write commits.
func (m *OutboxManagerImpl) CreateOutboxEntry(ctx context.Context, tx pgx.Tx, c *correction.Correction) error {
	logger := m.logger
	if c.CorrelationID != "" {
		logger = m.logger.With("correlation_id", c.CorrelationID)
	}

	outboxMessage, err := outbox.NewMessage(c)
	if err != nil {
		logger.Error("Failed to create new outbox message (marshal payload)",
			"correction_id", c.ID.String(),
			"error", err,
		)
		return fmt.Errorf("failed to create outbox message payload for correction %s: %w", c.ID.String(), err)
	}

	if err = m.outboxRepo.WithTx(tx).Create(ctx, outboxMessage); err != nil {
		logger.Error("Failed to create outbox message",
			"correction_id", c.ID.String(),
			"acc_id", c.AccountID.String(),
			"error", err,
		)
		return fmt.Errorf("failed to create outbox message for correction %s: %w", c.ID.String(), err)
	}
	logger.Info("Outbox message created successfully",
		"correction_id", c.ID.String(),
		"outbox_id", outboxMessage.ID,
	)

	return nil
}
