package order

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// DefaultWindow is how far back the dashboard list reaches.
const DefaultWindow = 30 * 24 * time.Hour

type OrderService struct {
	orderRepo OrderRepo
	mirror    EventMirror
	window    time.Duration
	now       func() time.Time
}

type Option func(*OrderService)

func WithEventMirror(mirror EventMirror) Option {
	return func(s *OrderService) {
		s.mirror = mirror
	}
}

func WithWindow(window time.Duration) Option {
	return func(s *OrderService) {
		if window > 0 {
			s.window = window
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *OrderService) {
		s.now = now
	}
}

func NewOrderService(orderRepo OrderRepo, opts ...Option) *OrderService {
	s := &OrderService{
		orderRepo: orderRepo,
		window:    DefaultWindow,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ApplyIntent writes a normalized webhook intent and its event record in one
// transaction. Re-delivered intents are absorbed as zero-row outcomes.
func (s *OrderService) ApplyIntent(ctx context.Context, intent Intent, meta DeliveryMeta) (Outcome, error) {
	if err := intent.Validate(); err != nil {
		return Outcome{}, err
	}

	data, err := json.Marshal(intent)
	if err != nil {
		return Outcome{}, fmt.Errorf("encode intent: %w", err)
	}

	var (
		outcome Outcome
		stored  *OrderEvent
	)
	err = s.orderRepo.InTransaction(ctx, func(tx TxOrderRepo) error {
		rows, err := applyIntent(ctx, tx, intent)
		if err != nil {
			return err
		}
		outcome = Outcome{Action: intent.Kind, RowsAffected: rows}

		stored, err = tx.CreateEvent(ctx, NewOrderEvent{
			OrderID:      intent.OrderID(),
			Kind:         webhookEventKind(intent.Kind, rows),
			Topic:        meta.Topic,
			WebhookID:    meta.WebhookID,
			RowsAffected: rows,
			Data:         data,
			CreatedAt:    s.now().UTC(),
		})
		if err != nil {
			return fmt.Errorf("store event: %w", err)
		}
		return nil
	})
	if err != nil {
		return Outcome{}, storageError(err)
	}

	s.mirrorEvent(ctx, stored)
	return outcome, nil
}

func applyIntent(ctx context.Context, tx TxOrderRepo, intent Intent) (int64, error) {
	switch intent.Kind {
	case KindDelete:
		rows, err := tx.DeleteOrder(ctx, intent.Delete.OrderID)
		if err != nil {
			return 0, fmt.Errorf("delete order: %w", err)
		}
		return rows, nil
	default:
		rows, err := tx.InsertOrder(ctx, *intent.Upsert)
		if err != nil {
			return 0, fmt.Errorf("insert order: %w", err)
		}
		return rows, nil
	}
}

// UpdateStatus sets the status of an order from dashboard input. The raw
// status is validated before storage is touched.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, rawStatus string) (int64, error) {
	if orderID == "" {
		return 0, ErrMissingOrderID
	}
	status, err := NewStatus(rawStatus)
	if err != nil {
		return 0, err
	}

	data, err := json.Marshal(map[string]Status{"status": status})
	if err != nil {
		return 0, fmt.Errorf("encode status: %w", err)
	}

	return s.mutate(ctx, orderID, OrderEventStatusUpdated, data, func(tx TxOrderRepo) (int64, error) {
		rows, err := tx.UpdateStatus(ctx, orderID, status)
		if err != nil {
			return 0, fmt.Errorf("update status: %w", err)
		}
		return rows, nil
	})
}

func (s *OrderService) DeleteOrder(ctx context.Context, orderID string) (int64, error) {
	if orderID == "" {
		return 0, ErrMissingOrderID
	}

	return s.mutate(ctx, orderID, OrderEventDashboardDeleted, json.RawMessage(`{}`), func(tx TxOrderRepo) (int64, error) {
		rows, err := tx.DeleteOrder(ctx, orderID)
		if err != nil {
			return 0, fmt.Errorf("delete order: %w", err)
		}
		return rows, nil
	})
}

// mutate runs a dashboard write and records kind when it changed a row.
func (s *OrderService) mutate(
	ctx context.Context,
	orderID string,
	kind OrderEventKind,
	data json.RawMessage,
	write func(tx TxOrderRepo) (int64, error),
) (int64, error) {
	var (
		rows   int64
		stored *OrderEvent
	)
	err := s.orderRepo.InTransaction(ctx, func(tx TxOrderRepo) error {
		var err error
		rows, err = write(tx)
		if err != nil {
			return err
		}
		if rows == 0 {
			return nil
		}

		stored, err = tx.CreateEvent(ctx, NewOrderEvent{
			OrderID:      orderID,
			Kind:         kind,
			RowsAffected: rows,
			Data:         data,
			CreatedAt:    s.now().UTC(),
		})
		if err != nil {
			return fmt.Errorf("store event: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, storageError(err)
	}

	s.mirrorEvent(ctx, stored)
	return rows, nil
}

// SearchOrders lists orders created within the window, newest first. q is
// trimmed; an empty q disables filtering.
func (s *OrderService) SearchOrders(ctx context.Context, q string) ([]Order, error) {
	query := OrdersQuery{
		Search:       strings.TrimSpace(q),
		CreatedSince: s.now().Add(-s.window),
	}

	orders, err := s.orderRepo.SearchOrders(ctx, query)
	if err != nil {
		return nil, storageError(fmt.Errorf("search orders: %w", err))
	}
	return orders, nil
}

func (s *OrderService) GetEvents(ctx context.Context, orderID string) ([]OrderEvent, error) {
	if orderID == "" {
		return nil, ErrMissingOrderID
	}

	events, err := s.orderRepo.GetEvents(ctx, orderID)
	if err != nil {
		return nil, storageError(fmt.Errorf("get events for order %s: %w", orderID, err))
	}
	return events, nil
}

func (s *OrderService) mirrorEvent(ctx context.Context, event *OrderEvent) {
	if s.mirror == nil || event == nil {
		return
	}
	if err := s.mirror.MirrorOrderEvent(ctx, *event); err != nil {
		slog.WarnContext(ctx, "Failed to mirror order event",
			slog.String("event_id", event.EventID),
			slog.String("order_id", event.OrderID),
			slog.Any("error", err))
	}
}
