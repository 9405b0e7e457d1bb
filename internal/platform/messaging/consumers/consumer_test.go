package consumers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinic-backoffice/cashflow/internal/config"
)

// fakeReader serves queued messages and cancels the consumer once drained
type fakeReader struct {
	mu        sync.Mutex
	messages  []kafka.Message
	fetchErrs []error
	committed []int64
	cancel    context.CancelFunc
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.fetchErrs) > 0 {
		err := r.fetchErrs[0]
		r.fetchErrs = r.fetchErrs[1:]
		return kafka.Message{}, err
	}
	if len(r.messages) == 0 {
		r.cancel()
		return kafka.Message{}, ctx.Err()
	}
	msg := r.messages[0]
	r.messages = r.messages[1:]
	return msg, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

func newTestConsumer(reader KafkaReader) *KafkaConsumer {
	return &KafkaConsumer{
		reader:   reader,
		logger:   slog.New(slog.NewJSONHandler(io.Discard, nil)),
		topic:    "ledger_changes",
		groupID:  "balance-syncer-group",
		attempts: 3,
	}
}

func TestNewKafkaConsumer(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	cfg := &config.KafkaConfig{
		Brokers:       "localhost:9092",
		LedgerTopic:   "ledger_changes",
		ConsumerGroup: "balance-syncer-group",
		MinBytes:      1024,
		MaxBytes:      10240,
		MaxWait:       time.Second,
	}

	consumer := NewKafkaConsumer(context.Background(), logger, cfg)
	require.NotNil(t, consumer)
	require.NotNil(t, consumer.reader)
	assert.Equal(t, "ledger_changes", consumer.topic)
	assert.Equal(t, "balance-syncer-group", consumer.groupID)
	assert.Equal(t, defaultHandlerAttempts, consumer.attempts)
	assert.NoError(t, consumer.Close())
}

func TestKafkaConsumer_Run(t *testing.T) {
	t.Run("CommitsHandledMessages", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		reader := &fakeReader{
			messages: []kafka.Message{{Offset: 1, Value: []byte("a")}, {Offset: 2, Value: []byte("b")}},
			cancel:   cancel,
		}
		consumer := newTestConsumer(reader)

		var seen []string
		consumer.run(ctx, func(_ context.Context, _ []byte, value []byte) error {
			seen = append(seen, string(value))
			return nil
		})

		assert.Equal(t, []string{"a", "b"}, seen)
		assert.Equal(t, []int64{1, 2}, reader.committed)
	})

	t.Run("RetriesThenSucceeds", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		reader := &fakeReader{messages: []kafka.Message{{Offset: 7}}, cancel: cancel}
		consumer := newTestConsumer(reader)

		calls := 0
		consumer.run(ctx, func(context.Context, []byte, []byte) error {
			calls++
			if calls < 2 {
				return errors.New("deadlock detected")
			}
			return nil
		})

		assert.Equal(t, 2, calls)
		assert.Equal(t, []int64{7}, reader.committed)
	})

	t.Run("ExhaustedMessagesAreHandedOffAndCommitted", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		reader := &fakeReader{messages: []kafka.Message{{Offset: 9, Key: []byte("k")}}, cancel: cancel}
		consumer := newTestConsumer(reader)

		handlerErr := errors.New("account locked")
		var exhaustedErr error
		consumer.OnExhausted(func(_ context.Context, key []byte, _ []byte, err error) {
			assert.Equal(t, "k", string(key))
			exhaustedErr = err
		})

		calls := 0
		consumer.run(ctx, func(context.Context, []byte, []byte) error {
			calls++
			return handlerErr
		})

		assert.Equal(t, 3, calls)
		assert.ErrorIs(t, exhaustedErr, handlerErr)
		assert.Equal(t, []int64{9}, reader.committed)
	})

	t.Run("FetchErrorIsRetried", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		reader := &fakeReader{
			fetchErrs: []error{errors.New("broker unavailable")},
			messages:  []kafka.Message{{Offset: 3}},
			cancel:    cancel,
		}
		consumer := newTestConsumer(reader)

		handled := 0
		consumer.run(ctx, func(context.Context, []byte, []byte) error {
			handled++
			return nil
		})

		assert.Equal(t, 1, handled)
		assert.Equal(t, []int64{3}, reader.committed)
	})
}

func TestKafkaConsumer_Close(t *testing.T) {
	consumer := &KafkaConsumer{reader: nil, logger: slog.Default()}
	require.NoError(t, consumer.Close(), "Close should return nil if reader is nil")
}
