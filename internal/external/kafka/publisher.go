package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"OrderDesk/internal/messaging"
	"OrderDesk/pkg/correlation"
	"OrderDesk/pkg/logger"
	"OrderDesk/pkg/metrics"

	"github.com/segmentio/kafka-go"
)

// messageWriter is the part of *kafka.Writer used by Publisher.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher implements messaging.Publisher using Kafka.
type Publisher struct {
	writer messageWriter
	topic  string
}

var _ messaging.Publisher = (*Publisher)(nil)

// NewPublisher creates a Kafka publisher. Messages with the same key land on
// the same partition.
func NewPublisher(brokers []string, topic string) *Publisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}

	return &Publisher{
		writer: writer,
		topic:  topic,
	}
}

// Publish sends an envelope to Kafka. The request correlation id travels
// as a message header.
func (p *Publisher) Publish(ctx context.Context, env messaging.Envelope) error {
	value, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(env.Key),
		Value: value,
	}
	if id := correlation.FromContext(ctx); id != "" {
		msg.Headers = append(msg.Headers, kafka.Header{Key: correlation.HeaderName, Value: []byte(id)})
	}

	if err = p.writer.WriteMessages(ctx, msg); err != nil {
		metrics.KafkaMessagesPublished.WithLabelValues(p.topic, "error").Inc()
		slog.ErrorContext(ctx, "Failed to publish message",
			slog.String("topic", p.topic),
			slog.String("key", env.Key),
			logger.Err(err))
		return fmt.Errorf("publish to %s: %w", p.topic, err)
	}

	metrics.KafkaMessagesPublished.WithLabelValues(p.topic, "success").Inc()
	slog.DebugContext(ctx, "Message published",
		slog.String("topic", p.topic),
		slog.String("key", env.Key),
		slog.String("event_id", env.EventID),
		slog.String("type", env.Type))
	return nil
}

// Close closes the Kafka writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
