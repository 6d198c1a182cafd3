package order

import "fmt"

type Kind string

const (
	KindUpsert Kind = "upsert"
	KindDelete Kind = "delete"
)

// Intent is the storage-agnostic result of normalizing a webhook.
// Exactly one of Upsert and Delete is set, matching Kind.
type Intent struct {
	Kind   Kind          `json:"kind"`
	Upsert *UpsertIntent `json:"upsert,omitempty"`
	Delete *DeleteIntent `json:"delete,omitempty"`
}

// UpsertIntent inserts an order unless its id already exists.
// Optional fields are passed through from the payload untouched.
type UpsertIntent struct {
	OrderID      string  `json:"order_id"`
	CreatedAt    *string `json:"created_at"`
	CustomerName string  `json:"customer_name"`
	Email        *string `json:"email"`
	Phone        *string `json:"phone"`
	TotalPrice   *string `json:"total_price"`
	Currency     *string `json:"currency"`
}

type DeleteIntent struct {
	OrderID string `json:"order_id"`
}

func NewUpsertIntent(u UpsertIntent) Intent {
	return Intent{Kind: KindUpsert, Upsert: &u}
}

func NewDeleteIntent(orderID string) Intent {
	return Intent{Kind: KindDelete, Delete: &DeleteIntent{OrderID: orderID}}
}

// OrderID returns the id targeted by the intent.
func (i Intent) OrderID() string {
	switch {
	case i.Kind == KindUpsert && i.Upsert != nil:
		return i.Upsert.OrderID
	case i.Kind == KindDelete && i.Delete != nil:
		return i.Delete.OrderID
	default:
		return ""
	}
}

func (i Intent) Validate() error {
	switch i.Kind {
	case KindUpsert:
		if i.Upsert == nil {
			return fmt.Errorf("%w: upsert payload missing", ErrInvalidIntent)
		}
	case KindDelete:
		if i.Delete == nil {
			return fmt.Errorf("%w: delete payload missing", ErrInvalidIntent)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidIntent, i.Kind)
	}

	if i.OrderID() == "" {
		return ErrMissingOrderID
	}
	return nil
}

// DeliveryMeta describes the webhook delivery an intent came from.
type DeliveryMeta struct {
	Topic     string `json:"topic,omitempty"`
	WebhookID string `json:"webhook_id,omitempty"`
}

// Outcome reports what applying an intent did to the store.
type Outcome struct {
	Action       Kind  `json:"action"`
	RowsAffected int64 `json:"rows_affected"`
	Queued       bool  `json:"queued,omitempty"`
}
