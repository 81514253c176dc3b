package readstore

import (
	"context"
	"time"

	"github.com/ed-robles/shop-template/internal/infra"
	"github.com/ed-robles/shop-template/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const orderListColumns = `o.id, o.checkout_session_id, o.customer_email, o.currency, o.total_in_cents,
	o.status, COALESCE(ic.item_count, 0), o.paid_at, o.created_at`

const orderListJoin = `LEFT JOIN (
		SELECT order_id, COUNT(*)::int AS item_count
		FROM order_items
		GROUP BY order_id
	) ic ON ic.order_id = o.id`

type OrderReadStore struct {
	pool *pgxpool.Pool
}

func NewOrderReadStore(pool *pgxpool.Pool) *OrderReadStore {
	return &OrderReadStore{pool: pool}
}

var _ queries.OrderViewRepo = (*OrderReadStore)(nil)

func (r *OrderReadStore) FindBySessionID(ctx context.Context, sessionID string) (*queries.OrderView, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, checkout_session_id, user_id, customer_email, payment_intent_id, currency,
		        subtotal_in_cents, total_in_cents, status, paid_at, created_at, updated_at
		 FROM orders
		 WHERE checkout_session_id = $1`, sessionID)
	view, err := scanOrderView(row)
	if err != nil {
		return nil, err
	}
	return r.attachItems(ctx, view)
}

func (r *OrderReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.OrderView, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, checkout_session_id, user_id, customer_email, payment_intent_id, currency,
		        subtotal_in_cents, total_in_cents, status, paid_at, created_at, updated_at
		 FROM orders
		 WHERE id = $1`, id)
	view, err := scanOrderView(row)
	if err != nil {
		return nil, err
	}
	return r.attachItems(ctx, view)
}

func (r *OrderReadStore) FindPageForUser(ctx context.Context, userID uuid.UUID, afterCreatedAt *time.Time, afterID *uuid.UUID, limit int32) ([]*queries.OrderListItem, error) {
	sql := `SELECT ` + orderListColumns + `
	        FROM orders o ` + orderListJoin + `
	        WHERE o.user_id = $1
	          AND ($2::timestamptz IS NULL OR (o.created_at, o.id) < ($2, $3))
	        ORDER BY o.created_at DESC, o.id DESC
	        LIMIT $4`
	rows, err := r.pool.Query(ctx, sql, userID, afterCreatedAt, afterID, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list orders for user", err)
	}
	defer rows.Close()
	return collectOrderListItems(rows)
}

func (r *OrderReadStore) FindRecentPage(ctx context.Context, afterCreatedAt *time.Time, afterID *uuid.UUID, limit int32) ([]*queries.OrderListItem, error) {
	sql := `SELECT ` + orderListColumns + `
	        FROM orders o ` + orderListJoin + `
	        WHERE ($1::timestamptz IS NULL OR (o.created_at, o.id) < ($1, $2))
	        ORDER BY o.created_at DESC, o.id DESC
	        LIMIT $3`
	rows, err := r.pool.Query(ctx, sql, afterCreatedAt, afterID, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list recent orders", err)
	}
	defer rows.Close()
	return collectOrderListItems(rows)
}

func (r *OrderReadStore) attachItems(ctx context.Context, view *queries.OrderView) (*queries.OrderView, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, product_id, product_name, unit_amount_in_cents, quantity, line_total_in_cents
		 FROM order_items
		 WHERE order_id = $1
		 ORDER BY created_at ASC, id ASC`, view.ID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load order items", err)
	}
	defer rows.Close()

	items := make([]queries.OrderItemView, 0)
	for rows.Next() {
		var item queries.OrderItemView
		if err := rows.Scan(&item.ID, &item.ProductID, &item.ProductName,
			&item.UnitAmountInCents, &item.Quantity, &item.LineTotalInCents); err != nil {
			return nil, infra.WrapRepoErr("failed to scan order item row", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read order item rows", err)
	}
	view.Items = items
	return view, nil
}

func collectOrderListItems(rows pgx.Rows) ([]*queries.OrderListItem, error) {
	items := make([]*queries.OrderListItem, 0)
	for rows.Next() {
		var item queries.OrderListItem
		if err := rows.Scan(&item.ID, &item.SessionID, &item.CustomerEmail, &item.Currency,
			&item.TotalInCents, &item.Status, &item.ItemCount, &item.PaidAt, &item.CreatedAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan order row", err)
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read order rows", err)
	}
	return items, nil
}

func scanOrderView(row pgx.Row) (*queries.OrderView, error) {
	var view queries.OrderView
	err := row.Scan(&view.ID, &view.SessionID, &view.UserID, &view.CustomerEmail, &view.PaymentIntentID,
		&view.Currency, &view.SubtotalInCents, &view.TotalInCents, &view.Status, &view.PaidAt,
		&view.CreatedAt, &view.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, infra.WrapRepoErr("order not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find order", err)
	}
	return &view, nil
}
