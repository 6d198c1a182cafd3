package webhook

import (
	"context"

	"OrderDesk/internal/domain/order"
)

type intentApplier interface {
	ApplyIntent(ctx context.Context, intent order.Intent, meta order.DeliveryMeta) (order.Outcome, error)
}

// SyncProcessor applies intents in the request path.
type SyncProcessor struct {
	orderService intentApplier
}

func NewSyncProcessor(orderService intentApplier) *SyncProcessor {
	return &SyncProcessor{orderService: orderService}
}

func (p *SyncProcessor) Process(ctx context.Context, intent order.Intent, meta order.DeliveryMeta) (order.Outcome, error) {
	return p.orderService.ApplyIntent(ctx, intent, meta)
}
