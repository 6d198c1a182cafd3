package order

import "context"

//go:generate mockgen -source order_repo.go -destination mock_order_repo.go -package order

type OrderRepo interface {
	TxOrderRepo
	InTransaction(ctx context.Context, fn func(repo TxOrderRepo) error) error
}

type TxOrderRepo interface {
	SearchOrders(ctx context.Context, query OrdersQuery) ([]Order, error)
	GetEvents(ctx context.Context, orderID string) ([]OrderEvent, error)

	// InsertOrder returns 0 when the id already exists; the row is left untouched.
	InsertOrder(ctx context.Context, order UpsertIntent) (int64, error)
	DeleteOrder(ctx context.Context, orderID string) (int64, error)
	// UpdateStatus does not validate status.
	UpdateStatus(ctx context.Context, orderID string, status Status) (int64, error)
	CreateEvent(ctx context.Context, event NewOrderEvent) (*OrderEvent, error)
}
