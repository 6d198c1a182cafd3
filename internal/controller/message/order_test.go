package message

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"OrderDesk/internal/domain/order"
	"OrderDesk/internal/messaging"
	"OrderDesk/internal/webhook"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func envelopeBytes(t *testing.T, intent order.Intent, meta order.DeliveryMeta) []byte {
	t.Helper()

	env, err := messaging.NewEnvelope(intent.OrderID(), webhook.EnvelopeType(intent.Kind), webhook.OrderMessage{
		Intent:   intent,
		Delivery: meta,
	})
	require.NoError(t, err)
	value, err := json.Marshal(env)
	require.NoError(t, err)
	return value
}

func newController(t *testing.T) (*OrderMessageController, *order.MockOrderRepo) {
	t.Helper()

	repo := order.NewMockOrderRepo(gomock.NewController(t))
	return NewOrderMessageController(order.NewOrderService(repo)), repo
}

func inTx(repo *order.MockOrderRepo) {
	repo.EXPECT().InTransaction(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, fn func(order.TxOrderRepo) error) error {
			return fn(repo)
		})
}

func TestOrderMessageController_HandleMessage(t *testing.T) {
	meta := order.DeliveryMeta{Topic: "orders/create", WebhookID: "wh-1"}
	upsert := order.NewUpsertIntent(order.UpsertIntent{OrderID: "123", CustomerName: "Ann Lee"})

	t.Run("should apply the intent carried by the envelope", func(t *testing.T) {
		controller, repo := newController(t)
		inTx(repo)
		repo.EXPECT().InsertOrder(gomock.Any(), *upsert.Upsert).Return(int64(1), nil)
		repo.EXPECT().CreateEvent(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, event order.NewOrderEvent) (*order.OrderEvent, error) {
				assert.Equal(t, "wh-1", event.WebhookID)
				return &order.OrderEvent{EventID: "evt-1", NewOrderEvent: event}, nil
			})

		err := controller.HandleMessage(context.Background(), []byte("123"), envelopeBytes(t, upsert, meta))

		require.NoError(t, err)
	})

	t.Run("should acknowledge redelivered intents", func(t *testing.T) {
		controller, repo := newController(t)
		inTx(repo)
		repo.EXPECT().InsertOrder(gomock.Any(), gomock.Any()).Return(int64(0), nil)
		repo.EXPECT().CreateEvent(gomock.Any(), gomock.Any()).Return(&order.OrderEvent{}, nil)

		err := controller.HandleMessage(context.Background(), []byte("123"), envelopeBytes(t, upsert, meta))

		require.NoError(t, err)
	})

	t.Run("should return storage errors so the message is not committed", func(t *testing.T) {
		controller, repo := newController(t)
		inTx(repo)
		repo.EXPECT().DeleteOrder(gomock.Any(), "123").Return(int64(0), errors.New("connection reset"))

		err := controller.HandleMessage(context.Background(), []byte("123"), envelopeBytes(t, order.NewDeleteIntent("123"), meta))

		assert.ErrorIs(t, err, order.ErrStorage)
	})

	t.Run("should drop messages that can never be applied", func(t *testing.T) {
		controller, _ := newController(t)

		assert.NoError(t, controller.HandleMessage(context.Background(), nil, []byte("not json")))
		assert.NoError(t, controller.HandleMessage(context.Background(), nil, []byte(`{"type":"order.upsert","payload":"oops"}`)))
		assert.NoError(t, controller.HandleMessage(context.Background(), nil, []byte(`{"type":"order.refund","payload":{}}`)))
		assert.NoError(t, controller.HandleMessage(context.Background(), nil,
			envelopeBytes(t, order.Intent{Kind: "merge"}, meta)))
	})
}
