package producers

import (
	"context"

	"github.com/segmentio/kafka-go"

	"github.com/clinic-backoffice/cashflow/internal/domain/shared"
)

// CorrectionPublisher announces applied balance corrections
type CorrectionPublisher interface {
	PublishCorrection(ctx context.Context, event shared.BalanceCorrectedEvent) error
	Close() error
}

// DeadLetterPublisher handles publishing messages to a Dead Letter Queue
type DeadLetterPublisher interface {
	PublishToDLQ(ctx context.Context, key string, originalMessageValue []byte, reason string) error
	Close() error
}

// KafkaWriter wraps kafka.Writer methods for testing
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}
