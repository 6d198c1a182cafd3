package order

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type serviceFixture struct {
	service *OrderService
	repo    *MockOrderRepo
	mirror  *MockEventMirror
}

func orderService(t *testing.T) serviceFixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	repo := NewMockOrderRepo(ctrl)
	mirror := NewMockEventMirror(ctrl)
	service := NewOrderService(repo,
		WithEventMirror(mirror),
		WithWindow(DefaultWindow),
		WithClock(func() time.Time { return fixedNow }),
	)

	return serviceFixture{service: service, repo: repo, mirror: mirror}
}

// runInTx makes InTransaction invoke fn against tx directly.
func runInTx(tx TxOrderRepo) func(context.Context, func(TxOrderRepo) error) error {
	return func(_ context.Context, fn func(TxOrderRepo) error) error {
		return fn(tx)
	}
}

func storedEvent(_ context.Context, event NewOrderEvent) (*OrderEvent, error) {
	return &OrderEvent{EventID: "evt-1", NewOrderEvent: event}, nil
}

func TestOrderService_ApplyIntent(t *testing.T) {
	t.Parallel()

	upsert := NewUpsertIntent(UpsertIntent{OrderID: "123", CustomerName: "Ann Lee"})
	remove := NewDeleteIntent("123")
	meta := DeliveryMeta{Topic: "orders/create", WebhookID: "wh-1"}

	testCases := []struct {
		name            string
		intent          Intent
		mock            func(f serviceFixture)
		expectedOutcome Outcome
		expectedErr     error
	}{
		{
			name:   "should insert a fresh order and record the insert",
			intent: upsert,
			mock: func(f serviceFixture) {
				f.repo.EXPECT().InTransaction(gomock.Any(), gomock.Any()).DoAndReturn(runInTx(f.repo))
				f.repo.EXPECT().InsertOrder(gomock.Any(), *upsert.Upsert).Return(int64(1), nil)
				f.repo.EXPECT().CreateEvent(gomock.Any(), gomock.Any()).DoAndReturn(
					func(ctx context.Context, event NewOrderEvent) (*OrderEvent, error) {
						assert.Equal(t, OrderEventWebhookInserted, event.Kind)
						assert.Equal(t, "123", event.OrderID)
						assert.Equal(t, "orders/create", event.Topic)
						assert.Equal(t, "wh-1", event.WebhookID)
						assert.Equal(t, fixedNow, event.CreatedAt)

						var data Intent
						require.NoError(t, json.Unmarshal(event.Data, &data))
						assert.Equal(t, upsert, data)
						return storedEvent(ctx, event)
					})
				f.mirror.EXPECT().MirrorOrderEvent(gomock.Any(), gomock.Any()).Return(nil)
			},
			expectedOutcome: Outcome{Action: KindUpsert, RowsAffected: 1},
		},
		{
			name:   "should absorb a re-delivered order as a duplicate",
			intent: upsert,
			mock: func(f serviceFixture) {
				f.repo.EXPECT().InTransaction(gomock.Any(), gomock.Any()).DoAndReturn(runInTx(f.repo))
				f.repo.EXPECT().InsertOrder(gomock.Any(), *upsert.Upsert).Return(int64(0), nil)
				f.repo.EXPECT().CreateEvent(gomock.Any(), gomock.Any()).DoAndReturn(
					func(ctx context.Context, event NewOrderEvent) (*OrderEvent, error) {
						assert.Equal(t, OrderEventWebhookDuplicate, event.Kind)
						return storedEvent(ctx, event)
					})
				f.mirror.EXPECT().MirrorOrderEvent(gomock.Any(), gomock.Any()).Return(nil)
			},
			expectedOutcome: Outcome{Action: KindUpsert, RowsAffected: 0},
		},
		{
			name:   "should delete an existing order",
			intent: remove,
			mock: func(f serviceFixture) {
				f.repo.EXPECT().InTransaction(gomock.Any(), gomock.Any()).DoAndReturn(runInTx(f.repo))
				f.repo.EXPECT().DeleteOrder(gomock.Any(), "123").Return(int64(1), nil)
				f.repo.EXPECT().CreateEvent(gomock.Any(), gomock.Any()).DoAndReturn(
					func(ctx context.Context, event NewOrderEvent) (*OrderEvent, error) {
						assert.Equal(t, OrderEventWebhookDeleted, event.Kind)
						return storedEvent(ctx, event)
					})
				f.mirror.EXPECT().MirrorOrderEvent(gomock.Any(), gomock.Any()).Return(nil)
			},
			expectedOutcome: Outcome{Action: KindDelete, RowsAffected: 1},
		},
		{
			name:   "should treat deleting an absent order as a no-op",
			intent: remove,
			mock: func(f serviceFixture) {
				f.repo.EXPECT().InTransaction(gomock.Any(), gomock.Any()).DoAndReturn(runInTx(f.repo))
				f.repo.EXPECT().DeleteOrder(gomock.Any(), "123").Return(int64(0), nil)
				f.repo.EXPECT().CreateEvent(gomock.Any(), gomock.Any()).DoAndReturn(
					func(ctx context.Context, event NewOrderEvent) (*OrderEvent, error) {
						assert.Equal(t, OrderEventWebhookDeleteMissed, event.Kind)
						return storedEvent(ctx, event)
					})
				f.mirror.EXPECT().MirrorOrderEvent(gomock.Any(), gomock.Any()).Return(nil)
			},
			expectedOutcome: Outcome{Action: KindDelete, RowsAffected: 0},
		},
		{
			name:   "should still succeed when the mirror fails",
			intent: remove,
			mock: func(f serviceFixture) {
				f.repo.EXPECT().InTransaction(gomock.Any(), gomock.Any()).DoAndReturn(runInTx(f.repo))
				f.repo.EXPECT().DeleteOrder(gomock.Any(), "123").Return(int64(1), nil)
				f.repo.EXPECT().CreateEvent(gomock.Any(), gomock.Any()).DoAndReturn(storedEvent)
				f.mirror.EXPECT().MirrorOrderEvent(gomock.Any(), gomock.Any()).Return(errors.New("opensearch down"))
			},
			expectedOutcome: Outcome{Action: KindDelete, RowsAffected: 1},
		},
		{
			name:   "should wrap insert failures as storage errors",
			intent: upsert,
			mock: func(f serviceFixture) {
				f.repo.EXPECT().InTransaction(gomock.Any(), gomock.Any()).DoAndReturn(runInTx(f.repo))
				f.repo.EXPECT().InsertOrder(gomock.Any(), gomock.Any()).Return(int64(0), errors.New("connection refused"))
			},
			expectedErr: ErrStorage,
		},
		{
			name:   "should fail when the event cannot be stored",
			intent: upsert,
			mock: func(f serviceFixture) {
				f.repo.EXPECT().InTransaction(gomock.Any(), gomock.Any()).DoAndReturn(runInTx(f.repo))
				f.repo.EXPECT().InsertOrder(gomock.Any(), gomock.Any()).Return(int64(1), nil)
				f.repo.EXPECT().CreateEvent(gomock.Any(), gomock.Any()).Return(nil, errors.New("disk full"))
			},
			expectedErr: ErrStorage,
		},
		{
			name:        "should reject an invalid intent before touching storage",
			intent:      Intent{Kind: KindUpsert},
			mock:        func(f serviceFixture) {},
			expectedErr: ErrValidation,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// given
			f := orderService(t)
			tc.mock(f)

			// when
			outcome, err := f.service.ApplyIntent(context.Background(), tc.intent, meta)

			// then
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				assert.Equal(t, Outcome{}, outcome)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedOutcome, outcome)
		})
	}

	t.Run("storage errors keep the operation and cause", func(t *testing.T) {
		t.Parallel()

		f := orderService(t)
		f.repo.EXPECT().InTransaction(gomock.Any(), gomock.Any()).DoAndReturn(runInTx(f.repo))
		f.repo.EXPECT().InsertOrder(gomock.Any(), gomock.Any()).Return(int64(0), errors.New("connection refused"))

		_, err := f.service.ApplyIntent(context.Background(), upsert, meta)

		assert.EqualError(t, err, "storage failure: insert order: connection refused")
	})
}

func TestOrderService_UpdateStatus(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name         string
		orderID      string
		rawStatus    string
		mock         func(f serviceFixture)
		expectedRows int64
		expectedErr  error
	}{
		{
			name:      "should update the status and record it",
			orderID:   "123",
			rawStatus: "Shipped",
			mock: func(f serviceFixture) {
				f.repo.EXPECT().InTransaction(gomock.Any(), gomock.Any()).DoAndReturn(runInTx(f.repo))
				f.repo.EXPECT().UpdateStatus(gomock.Any(), "123", StatusShipped).Return(int64(1), nil)
				f.repo.EXPECT().CreateEvent(gomock.Any(), gomock.Any()).DoAndReturn(
					func(ctx context.Context, event NewOrderEvent) (*OrderEvent, error) {
						assert.Equal(t, OrderEventStatusUpdated, event.Kind)
						assert.JSONEq(t, `{"status":"Shipped"}`, string(event.Data))
						return storedEvent(ctx, event)
					})
				f.mirror.EXPECT().MirrorOrderEvent(gomock.Any(), gomock.Any()).Return(nil)
			},
			expectedRows: 1,
		},
		{
			name:      "should not record an event for an unknown order",
			orderID:   "404",
			rawStatus: "Delivered",
			mock: func(f serviceFixture) {
				f.repo.EXPECT().InTransaction(gomock.Any(), gomock.Any()).DoAndReturn(runInTx(f.repo))
				f.repo.EXPECT().UpdateStatus(gomock.Any(), "404", StatusDelivered).Return(int64(0), nil)
			},
			expectedRows: 0,
		},
		{
			name:        "should reject a status outside the enum without touching storage",
			orderID:     "123",
			rawStatus:   "Refunded",
			mock:        func(f serviceFixture) {},
			expectedErr: ErrInvalidStatus,
		},
		{
			name:        "should reject an empty order id",
			rawStatus:   "Shipped",
			mock:        func(f serviceFixture) {},
			expectedErr: ErrMissingOrderID,
		},
		{
			name:      "should wrap repository failures",
			orderID:   "123",
			rawStatus: "Cancelled",
			mock: func(f serviceFixture) {
				f.repo.EXPECT().InTransaction(gomock.Any(), gomock.Any()).Return(errors.New("begin transaction: timeout"))
			},
			expectedErr: ErrStorage,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// given
			f := orderService(t)
			tc.mock(f)

			// when
			rows, err := f.service.UpdateStatus(context.Background(), tc.orderID, tc.rawStatus)

			// then
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedRows, rows)
		})
	}
}

func TestOrderService_DeleteOrder(t *testing.T) {
	t.Parallel()

	t.Run("should delete and record a dashboard delete", func(t *testing.T) {
		t.Parallel()

		// given
		f := orderService(t)
		f.repo.EXPECT().InTransaction(gomock.Any(), gomock.Any()).DoAndReturn(runInTx(f.repo))
		f.repo.EXPECT().DeleteOrder(gomock.Any(), "123").Return(int64(1), nil)
		f.repo.EXPECT().CreateEvent(gomock.Any(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, event NewOrderEvent) (*OrderEvent, error) {
				assert.Equal(t, OrderEventDashboardDeleted, event.Kind)
				return storedEvent(ctx, event)
			})
		f.mirror.EXPECT().MirrorOrderEvent(gomock.Any(), gomock.Any()).Return(nil)

		// when
		rows, err := f.service.DeleteOrder(context.Background(), "123")

		// then
		require.NoError(t, err)
		assert.Equal(t, int64(1), rows)
	})

	t.Run("should wrap delete failures", func(t *testing.T) {
		t.Parallel()

		f := orderService(t)
		f.repo.EXPECT().InTransaction(gomock.Any(), gomock.Any()).DoAndReturn(runInTx(f.repo))
		f.repo.EXPECT().DeleteOrder(gomock.Any(), "123").Return(int64(0), errors.New("database error"))

		_, err := f.service.DeleteOrder(context.Background(), "123")

		assert.ErrorIs(t, err, ErrStorage)
		assert.EqualError(t, err, "storage failure: delete order: database error")
	})
}

func TestOrderService_SearchOrders(t *testing.T) {
	t.Parallel()

	orders := []Order{{ID: "2", CustomerName: "Ann Lee", OrderStatus: StatusPending}}

	t.Run("should trim the search and bound the window", func(t *testing.T) {
		t.Parallel()

		// given
		f := orderService(t)
		f.repo.EXPECT().SearchOrders(gomock.Any(), OrdersQuery{
			Search:       "O'Brien",
			CreatedSince: fixedNow.Add(-DefaultWindow),
		}).Return(orders, nil)

		// when
		result, err := f.service.SearchOrders(context.Background(), "  O'Brien \t")

		// then
		require.NoError(t, err)
		assert.Equal(t, orders, result)
	})

	t.Run("should wrap repository failures", func(t *testing.T) {
		t.Parallel()

		f := orderService(t)
		f.repo.EXPECT().SearchOrders(gomock.Any(), gomock.Any()).Return(nil, errors.New("database error"))

		result, err := f.service.SearchOrders(context.Background(), "")

		assert.Nil(t, result)
		assert.EqualError(t, err, "storage failure: search orders: database error")
	})
}

func TestOrderService_GetEvents(t *testing.T) {
	t.Parallel()

	f := orderService(t)
	events := []OrderEvent{{EventID: "evt-1", NewOrderEvent: NewOrderEvent{OrderID: "123", Kind: OrderEventWebhookInserted}}}
	f.repo.EXPECT().GetEvents(gomock.Any(), "123").Return(events, nil)

	result, err := f.service.GetEvents(context.Background(), "123")

	require.NoError(t, err)
	assert.Equal(t, events, result)

	_, err = f.service.GetEvents(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingOrderID)
}
