package webhook

import (
	"context"
	"fmt"

	"OrderDesk/internal/domain/order"
	"OrderDesk/internal/messaging"
)

// AsyncProcessor publishes intents to Kafka; a consumer applies them later.
type AsyncProcessor struct {
	publisher messaging.Publisher
}

func NewAsyncProcessor(publisher messaging.Publisher) *AsyncProcessor {
	return &AsyncProcessor{publisher: publisher}
}

// Process keys the message by order id so that every intent for one order
// lands on the same partition and is applied in delivery order.
func (p *AsyncProcessor) Process(ctx context.Context, intent order.Intent, meta order.DeliveryMeta) (order.Outcome, error) {
	if err := intent.Validate(); err != nil {
		return order.Outcome{}, err
	}

	envelope, err := messaging.NewEnvelope(intent.OrderID(), EnvelopeType(intent.Kind), OrderMessage{
		Intent:   intent,
		Delivery: meta,
	})
	if err != nil {
		return order.Outcome{}, fmt.Errorf("create envelope: %w", err)
	}

	if err := p.publisher.Publish(ctx, envelope); err != nil {
		return order.Outcome{}, fmt.Errorf("publish intent: %w", err)
	}
	return order.Outcome{Action: intent.Kind, Queued: true}, nil
}

func EnvelopeType(kind order.Kind) string {
	if kind == order.KindDelete {
		return messaging.TypeOrderDelete
	}
	return messaging.TypeOrderUpsert
}
