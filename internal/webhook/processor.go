// Package webhook hands normalized order intents to storage, either directly
// or through Kafka.
package webhook

import (
	"context"

	"OrderDesk/internal/domain/order"
)

// Processor applies or enqueues a normalized webhook intent.
type Processor interface {
	Process(ctx context.Context, intent order.Intent, meta order.DeliveryMeta) (order.Outcome, error)
}

// OrderMessage is the envelope payload on the orders topic.
type OrderMessage struct {
	Intent   order.Intent       `json:"intent"`
	Delivery order.DeliveryMeta `json:"delivery"`
}
