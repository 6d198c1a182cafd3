package order

import (
	"context"
	"encoding/json"
	"time"
)

//go:generate mockgen -source event.go -destination mock_event_mirror.go -package order

// EventMirror receives committed order events for secondary indexing.
type EventMirror interface {
	MirrorOrderEvent(ctx context.Context, event OrderEvent) error
}

type OrderEvent struct {
	EventID string `json:"event_id"`
	NewOrderEvent
}

type NewOrderEvent struct {
	OrderID      string          `json:"order_id"`
	Kind         OrderEventKind  `json:"kind"`
	Topic        string          `json:"topic,omitempty"`
	WebhookID    string          `json:"webhook_id,omitempty"`
	RowsAffected int64           `json:"rows_affected"`
	Data         json.RawMessage `json:"data"`
	CreatedAt    time.Time       `json:"created_at"`
}

type OrderEventKind string

const (
	OrderEventWebhookInserted     OrderEventKind = "webhook_inserted"
	OrderEventWebhookDuplicate    OrderEventKind = "webhook_duplicate"
	OrderEventWebhookDeleted      OrderEventKind = "webhook_deleted"
	OrderEventWebhookDeleteMissed OrderEventKind = "webhook_delete_missed"
	OrderEventStatusUpdated       OrderEventKind = "status_updated"
	OrderEventDashboardDeleted    OrderEventKind = "dashboard_deleted"
)

func webhookEventKind(kind Kind, rows int64) OrderEventKind {
	switch {
	case kind == KindUpsert && rows > 0:
		return OrderEventWebhookInserted
	case kind == KindUpsert:
		return OrderEventWebhookDuplicate
	case rows > 0:
		return OrderEventWebhookDeleted
	default:
		return OrderEventWebhookDeleteMissed
	}
}
