package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/clinic-backoffice/cashflow/internal/config"
	"github.com/clinic-backoffice/cashflow/internal/domain/shared"
)

const correlationHeader = "correlation-id"

// CorrectionEventProducer publishes BalanceCorrectedEvent messages keyed by
// account id, so corrections of one account stay ordered within a partition.
type CorrectionEventProducer struct {
	logger *slog.Logger
	writer KafkaWriter
	topic  string
}

// NewCorrectionEventProducer creates the producer and ensures the topic exists
func NewCorrectionEventProducer(_ context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*CorrectionEventProducer, error) {
	if cfg.CorrectionTopic == "" {
		return nil, fmt.Errorf("kafka correction topic is not configured")
	}

	if err := EnsureTopic(logger, cfg, cfg.CorrectionTopic); err != nil {
		return nil, fmt.Errorf("failed to ensure correction topic %s exists: %w", cfg.CorrectionTopic, err)
	}

	// Synchronous writes: the outbox poller only marks a message processed
	// once the broker acknowledged it.
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.CorrectionTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		WriteTimeout: cfg.MaxWait,
	}

	return &CorrectionEventProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.CorrectionTopic,
	}, nil
}

// PublishCorrection writes one correction event
func (p *CorrectionEventProducer) PublishCorrection(ctx context.Context, event shared.BalanceCorrectedEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal correction event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.AccountID.String()),
		Value: value,
	}
	if event.CorrelationID != "" {
		msg.Headers = append(msg.Headers, kafka.Header{Key: correlationHeader, Value: []byte(event.CorrelationID)})
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish correction event",
			"topic", p.topic,
			"correction_id", event.CorrectionID.String(),
			"error", err,
		)
		return fmt.Errorf("failed to publish correction event to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published correction event",
		"topic", p.topic,
		"correction_id", event.CorrectionID.String(),
		"account_id", event.AccountID.String(),
	)
	return nil
}

func (p *CorrectionEventProducer) Close() error {
	p.logger.Info("Closing correction event producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
