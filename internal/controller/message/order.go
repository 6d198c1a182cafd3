package message

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"OrderDesk/internal/domain/order"
	"OrderDesk/internal/messaging"
	"OrderDesk/internal/webhook"
	"OrderDesk/pkg/logger"
	"OrderDesk/pkg/metrics"
)

type intentApplier interface {
	ApplyIntent(ctx context.Context, intent order.Intent, meta order.DeliveryMeta) (order.Outcome, error)
}

// OrderMessageController applies order intents consumed from Kafka.
type OrderMessageController struct {
	service intentApplier
}

func NewOrderMessageController(s intentApplier) *OrderMessageController {
	return &OrderMessageController{service: s}
}

// HandleMessage applies one envelope. Messages that can never succeed are
// logged and acknowledged; storage failures are returned so the message is
// not committed.
func (c *OrderMessageController) HandleMessage(ctx context.Context, key, value []byte) error {
	env, err := messaging.ParseEnvelope(value)
	if err != nil {
		slog.ErrorContext(ctx, "Dropping undecodable envelope", slog.String("key", string(key)), logger.Err(err))
		return nil
	}

	var msg webhook.OrderMessage
	if err := env.Decode(&msg); err != nil {
		slog.ErrorContext(ctx, "Dropping undecodable order message",
			slog.String("event_id", env.EventID), logger.Err(err))
		return nil
	}

	outcome, err := c.service.ApplyIntent(ctx, msg.Intent, msg.Delivery)
	if err != nil {
		if errors.Is(err, order.ErrValidation) {
			metrics.WebhookIntentsTotal.WithLabelValues(string(msg.Intent.Kind), metrics.ResultRejected).Inc()
			slog.WarnContext(ctx, "Dropping invalid order intent",
				slog.String("event_id", env.EventID), slog.String("type", env.Type), logger.Err(err))
			return nil
		}
		metrics.WebhookIntentsTotal.WithLabelValues(string(msg.Intent.Kind), metrics.ResultFailed).Inc()
		return fmt.Errorf("apply intent %s: %w", env.EventID, err)
	}

	result := metrics.ResultApplied
	if outcome.RowsAffected == 0 {
		result = metrics.ResultNoop
	}
	metrics.WebhookIntentsTotal.WithLabelValues(string(outcome.Action), result).Inc()

	slog.InfoContext(ctx, "Order intent applied",
		slog.String("event_id", env.EventID),
		slog.String("order_id", msg.Intent.OrderID()),
		slog.String("action", string(outcome.Action)),
		slog.Int64("rows_affected", outcome.RowsAffected))
	return nil
}
