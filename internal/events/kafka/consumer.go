package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"budget/internal/events"

	"github.com/segmentio/kafka-go"
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Consumer struct {
	reader messageReader
}

var _ events.Consumer = (*Consumer)(nil)

// NewConsumer joins groupID on topic.
func NewConsumer(brokers []string, topic, groupID string) (*Consumer, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka: no brokers configured")
	}
	if topic == "" {
		topic = DefaultTopic
	}
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers: brokers,
			Topic:   topic,
			GroupID: groupID,
		}),
	}, nil
}

// ConsumeRecordAdded commits a message once handler accepts it. Undecodable
// messages are committed and skipped; a handler error stops consumption so
// the message is redelivered on the next run.
func (c *Consumer) ConsumeRecordAdded(ctx context.Context, handler events.Handler) error {
	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("kafka fetch: %w", err)
		}

		msg, err := events.RecordAddedFromJSON(m.Value)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to unmarshal message", "error", err, "offset", m.Offset)
		} else if err := handler(ctx, msg); err != nil {
			return fmt.Errorf("handle message %s: %w", msg.ID, err)
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil {
			return fmt.Errorf("kafka commit: %w", err)
		}
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
