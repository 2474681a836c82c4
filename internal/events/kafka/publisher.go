// Package kafka publishes and consumes ledger notifications on a Kafka topic.
package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"budget/internal/events"

	"github.com/segmentio/kafka-go"
)

const DefaultTopic = "ledger.record_added"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Publisher struct {
	writer messageWriter
	topic  string
}

var _ events.Publisher = (*Publisher)(nil)

func NewPublisher(brokers []string, topic string) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka: no brokers configured")
	}
	if topic == "" {
		topic = DefaultTopic
	}
	return &Publisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.LeastBytes{},
			RequiredAcks:           kafka.RequireAll,
			AllowAutoTopicCreation: true,
		},
		topic: topic,
	}, nil
}

// PublishRecordAdded writes msg keyed by its ID.
func (p *Publisher) PublishRecordAdded(ctx context.Context, msg events.RecordAdded) error {
	data, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.ID),
		Value: data,
	})
	if err != nil {
		return fmt.Errorf("kafka write to %s: %w", p.topic, err)
	}

	slog.DebugContext(ctx, "Published record added message",
		"message_id", msg.ID,
		"position", msg.Position,
		"topic", p.topic)
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
