package order_repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"OrderDesk/internal/domain/order"
	"OrderDesk/pkg/pointers"
	"OrderDesk/pkg/postgres"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	ordersTable      = "orders"
	orderEventsTable = "order_events"
)

// pool is what PgOrderRepo needs from a connection pool.
type pool interface {
	postgres.Executor
	postgres.TxBeginner
}

type PgOrderRepo struct {
	pool pool
	repo
}

var _ order.OrderRepo = (*PgOrderRepo)(nil)

func NewPgOrderRepo(pg *postgres.Postgres) *PgOrderRepo {
	return newPgOrderRepo(pg.Pool, pg.Builder)
}

func newPgOrderRepo(p pool, builder squirrel.StatementBuilderType) *PgOrderRepo {
	return &PgOrderRepo{
		pool: p,
		repo: repo{db: p, builder: builder},
	}
}

// InTransaction runs fn on a single checked-out connection. The connection
// goes back to the pool on commit, rollback and panic.
func (r *PgOrderRepo) InTransaction(ctx context.Context, fn func(repo order.TxOrderRepo) error) error {
	return postgres.InTransaction(ctx, r.pool, func(tx postgres.Executor) error {
		return fn(&repo{db: tx, builder: r.builder})
	})
}

type repo struct {
	db      postgres.Executor
	builder squirrel.StatementBuilderType
}

func (r *repo) InsertOrder(ctx context.Context, o order.UpsertIntent) (int64, error) {
	query, args, err := r.builder.Insert(ordersTable).
		Columns("id", "created_at", "customer_name", "email", "phone", "total_price", "currency").
		Values(o.OrderID, o.CreatedAt, o.CustomerName, o.Email, o.Phone, o.TotalPrice, o.Currency).
		Suffix("ON CONFLICT (id) DO NOTHING").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("insert order %s: %w", o.OrderID, err)
	}
	return tag.RowsAffected(), nil
}

func (r *repo) DeleteOrder(ctx context.Context, orderID string) (int64, error) {
	query, args, err := r.builder.Delete(ordersTable).
		Where(squirrel.Eq{"id": orderID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete order %s: %w", orderID, err)
	}
	return tag.RowsAffected(), nil
}

func (r *repo) UpdateStatus(ctx context.Context, orderID string, status order.Status) (int64, error) {
	query, args, err := r.builder.Update(ordersTable).
		Set("order_status", string(status)).
		Where(squirrel.Eq{"id": orderID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build update query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("update order %s status: %w", orderID, err)
	}
	return tag.RowsAffected(), nil
}

func (r *repo) CreateEvent(ctx context.Context, event order.NewOrderEvent) (*order.OrderEvent, error) {
	id := uuid.New().String()

	query, args, err := r.builder.Insert(orderEventsTable).
		Columns("id", "order_id", "kind", "topic", "webhook_id", "rows_affected", "data", "created_at").
		Values(id, event.OrderID, event.Kind, pointers.NilIfZero(event.Topic), pointers.NilIfZero(event.WebhookID),
			event.RowsAffected, []byte(event.Data), event.CreatedAt).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert query: %w", err)
	}

	if _, err = r.db.Exec(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("create order event: %w", err)
	}

	return &order.OrderEvent{
		EventID:       id,
		NewOrderEvent: event,
	}, nil
}

func (r *repo) SearchOrders(ctx context.Context, q order.OrdersQuery) ([]order.Order, error) {
	query, args, err := r.buildSearchQuery(q)
	if err != nil {
		return nil, fmt.Errorf("build search query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	return parseOrderRows(rows)
}

func (r *repo) buildSearchQuery(q order.OrdersQuery) (string, []any, error) {
	query := r.builder.
		Select("id", "created_at", "customer_name", "email", "phone", "total_price::text", "currency", "order_status").
		From(ordersTable).
		Where(squirrel.GtOrEq{"created_at": q.CreatedSince}).
		OrderBy("created_at DESC")

	if q.Search != "" {
		pattern := "%" + escapeLike(q.Search) + "%"
		query = query.Where(squirrel.Or{
			squirrel.ILike{"id": pattern},
			squirrel.ILike{"email": pattern},
			squirrel.ILike{"phone": pattern},
			squirrel.ILike{"customer_name": pattern},
		})
	}

	return query.ToSql()
}

func (r *repo) GetEvents(ctx context.Context, orderID string) ([]order.OrderEvent, error) {
	query, args, err := r.builder.
		Select("id", "order_id", "kind", "topic", "webhook_id", "rows_affected", "data", "created_at").
		From(orderEventsTable).
		Where(squirrel.Eq{"order_id": orderID}).
		OrderBy("created_at DESC", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build events query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query order events: %w", err)
	}
	defer rows.Close()

	return parseEventRows(rows)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func parseOrderRows(rows pgx.Rows) ([]order.Order, error) {
	orders := []order.Order{}
	for rows.Next() {
		var (
			o         order.Order
			createdAt *time.Time
			status    *string
		)
		err := rows.Scan(&o.ID, &createdAt, &o.CustomerName, &o.Email, &o.Phone, &o.TotalPrice, &o.Currency, &status)
		if err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		o.CreatedAt = createdAt
		o.OrderStatus = order.StatusOrDefault(status)

		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}
	return orders, nil
}

func parseEventRows(rows pgx.Rows) ([]order.OrderEvent, error) {
	events := []order.OrderEvent{}
	for rows.Next() {
		var (
			e         order.OrderEvent
			topic     *string
			webhookID *string
			data      []byte
		)
		err := rows.Scan(&e.EventID, &e.OrderID, &e.Kind, &topic, &webhookID, &e.RowsAffected, &data, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan order event row: %w", err)
		}
		if topic != nil {
			e.Topic = *topic
		}
		if webhookID != nil {
			e.WebhookID = *webhookID
		}
		e.Data = data

		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order event rows: %w", err)
	}
	return events, nil
}
