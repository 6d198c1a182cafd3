package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"OrderDesk/internal/domain/order"

	"github.com/opensearch-project/opensearch-go"
)

var _ order.EventMirror = (*OrderEventMirror)(nil)

// OrderEventMirror indexes committed order events into OpenSearch for
// full-text lookups. Postgres stays the source of truth.
type OrderEventMirror struct {
	client *opensearch.Client
	index  string
}

func NewOrderEventMirror(ctx context.Context, urls []string, index string) (*OrderEventMirror, error) {
	if len(urls) == 0 {
		return nil, errors.New("no OpenSearch addresses configured")
	}

	client, err := opensearch.NewClient(opensearch.Config{
		Addresses: urls,
		Transport: &http.Transport{
			MaxIdleConnsPerHost: 10,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("opensearch client: %w", err)
	}

	mirror := &OrderEventMirror{client: client, index: index}
	if err := mirror.ensureIndex(ctx); err != nil {
		return nil, err
	}
	return mirror, nil
}

func (m *OrderEventMirror) ensureIndex(ctx context.Context) error {
	res, err := m.client.Indices.Exists([]string{m.index}, m.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("indices.exists: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK {
		return nil
	}

	body := map[string]any{
		"mappings": map[string]any{
			"properties": map[string]any{
				"event_id":      map[string]any{"type": "keyword"},
				"order_id":      map[string]any{"type": "keyword"},
				"kind":          map[string]any{"type": "keyword"},
				"topic":         map[string]any{"type": "keyword"},
				"webhook_id":    map[string]any{"type": "keyword"},
				"rows_affected": map[string]any{"type": "long"},
				"created_at":    map[string]any{"type": "date"},
				"data":          map[string]any{"type": "object", "enabled": false},
			},
		},
	}
	buf, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal index mapping: %w", err)
	}

	cr, err := m.client.Indices.Create(
		m.index,
		m.client.Indices.Create.WithBody(bytes.NewReader(buf)),
		m.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("indices.create: %w", err)
	}
	defer cr.Body.Close()
	if cr.IsError() {
		return fmt.Errorf("indices.create error: %s", cr.String())
	}
	return nil
}

type orderEventDoc struct {
	EventID      string               `json:"event_id"`
	OrderID      string               `json:"order_id"`
	Kind         order.OrderEventKind `json:"kind"`
	Topic        string               `json:"topic,omitempty"`
	WebhookID    string               `json:"webhook_id,omitempty"`
	RowsAffected int64                `json:"rows_affected"`
	Data         json.RawMessage      `json:"data,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
}

// MirrorOrderEvent indexes the event under its own id, so mirroring the
// same event twice leaves one document.
func (m *OrderEventMirror) MirrorOrderEvent(ctx context.Context, event order.OrderEvent) error {
	payload, err := json.Marshal(orderEventDoc{
		EventID:      event.EventID,
		OrderID:      event.OrderID,
		Kind:         event.Kind,
		Topic:        event.Topic,
		WebhookID:    event.WebhookID,
		RowsAffected: event.RowsAffected,
		Data:         event.Data,
		CreatedAt:    event.CreatedAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}

	res, err := m.client.Index(
		m.index,
		bytes.NewReader(payload),
		m.client.Index.WithDocumentID(event.EventID),
		m.client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index error: %s", res.String())
	}
	return nil
}

// Ping backs the readiness check.
func (m *OrderEventMirror) Ping(ctx context.Context) error {
	res, err := m.client.Ping(m.client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("ping error: %s", res.Status())
	}
	return nil
}
