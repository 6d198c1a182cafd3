package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"OrderDesk/internal/messaging"
	"OrderDesk/pkg/correlation"
	"OrderDesk/pkg/logger"

	"github.com/segmentio/kafka-go"
)

// messageReader is the part of *kafka.Reader used by Consumer.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer implements messaging.Worker using Kafka.
type Consumer struct {
	reader  messageReader
	topic   string
	groupID string
}

var _ messaging.Worker = (*Consumer)(nil)

func NewConsumer(brokers []string, topic, groupID string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})

	return &Consumer{
		reader:  reader,
		topic:   topic,
		groupID: groupID,
	}
}

// Start consumes messages and passes them to handler, committing each one
// only after handler succeeds. A handler error stops the consumer without
// committing, so the message is redelivered to the next consumer of the group.
// Blocks until ctx is cancelled or an error occurs.
func (c *Consumer) Start(ctx context.Context, handler messaging.MessageHandler) error {
	slog.InfoContext(ctx, "Consumer started", slog.String("topic", c.topic), slog.String("group_id", c.groupID))

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
				slog.InfoContext(ctx, "Consumer stopped (context cancelled)", slog.String("topic", c.topic))
				return nil
			}
			slog.ErrorContext(ctx, "Failed to fetch message", slog.String("topic", c.topic), logger.Err(err))
			return err
		}

		msgCtx := messageContext(ctx, msg)
		attrs := []any{
			slog.String("topic", msg.Topic),
			slog.Int("partition", msg.Partition),
			slog.Int64("offset", msg.Offset),
			slog.String("key", string(msg.Key)),
		}
		slog.DebugContext(msgCtx, "Message received", attrs...)

		if err := handler(msgCtx, msg.Key, msg.Value); err != nil {
			slog.ErrorContext(msgCtx, "Handler error, message not committed", append(attrs, logger.Err(err))...)
			return fmt.Errorf("handle message at offset %d: %w", msg.Offset, err)
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			slog.ErrorContext(msgCtx, "Failed to commit message", append(attrs, logger.Err(err))...)
			return err
		}
		slog.DebugContext(msgCtx, "Message committed", attrs...)
	}
}

// messageContext carries the producer's correlation id, or a fresh one.
func messageContext(ctx context.Context, msg kafka.Message) context.Context {
	for _, h := range msg.Headers {
		if h.Key == correlation.HeaderName && len(h.Value) > 0 {
			return correlation.WithID(ctx, string(h.Value))
		}
	}
	return correlation.WithID(ctx, correlation.NewID())
}

// Close closes the Kafka reader.
func (c *Consumer) Close() error {
	slog.Info("Closing consumer", slog.String("topic", c.topic), slog.String("group_id", c.groupID))
	return c.reader.Close()
}
