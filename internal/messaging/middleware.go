package messaging

import (
	"context"
	"time"

	"OrderDesk/pkg/metrics"
)

// WithMetrics records processing duration and outcome per message.
func WithMetrics(topic, consumerGroup string, handler MessageHandler) MessageHandler {
	return func(ctx context.Context, key, value []byte) error {
		start := time.Now()
		err := handler(ctx, key, value)

		status := "success"
		if err != nil {
			status = "error"
		}
		metrics.KafkaProcessingDuration.WithLabelValues(topic, consumerGroup, status).Observe(time.Since(start).Seconds())
		metrics.KafkaMessagesProcessed.WithLabelValues(topic, consumerGroup, status).Inc()
		return err
	}
}
