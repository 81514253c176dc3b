package repository

import (
	"context"
	"time"

	"github.com/ed-robles/shop-template/internal/domain/order"
	"github.com/ed-robles/shop-template/internal/infra"
	"github.com/ed-robles/shop-template/internal/infra/db"
	"github.com/ed-robles/shop-template/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var _ shared.OrderRepository = (*OrderRepository)(nil)

const orderColumns = `id, checkout_session_id, user_id, customer_email, payment_intent_id, currency, subtotal_in_cents, total_in_cents, status, paid_at, created_at, updated_at`

// terminalStatusSQL matches orders the domain state machine forbids
// leaving. Status writes carry it so a stale or duplicated webhook
// delivery can never overwrite a settled order.
const terminalStatusSQL = `status IN ('` + string(order.StatusPaid) + `', '` + string(order.StatusStockFailed) + `')`

type OrderRepository struct{}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{}
}

func (r *OrderRepository) FindByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*shared.OrderSnapshot, error) {
	row := tx.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	snapshot, err := scanOrder(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, infra.WrapRepoErr("order not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find order by id", err)
	}
	return snapshot, nil
}

func (r *OrderRepository) FindBySessionID(ctx context.Context, tx db.DBTX, sessionID string) (*shared.OrderSnapshot, error) {
	row := tx.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE checkout_session_id = $1`, sessionID)
	snapshot, err := scanOrder(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, infra.WrapRepoErr("order not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find order by session id", err)
	}
	return snapshot, nil
}

func (r *OrderRepository) Create(ctx context.Context, tx db.DBTX, o shared.NewOrder) (uuid.UUID, error) {
	var id uuid.UUID
	err := tx.QueryRow(ctx,
		`INSERT INTO orders (checkout_session_id, user_id, customer_email, payment_intent_id, currency, subtotal_in_cents, total_in_cents, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		o.SessionID, o.UserID, o.CustomerEmail, o.PaymentIntentID, o.Currency, o.SubtotalInCents, o.TotalInCents, string(o.Status),
	).Scan(&id)
	if err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to create order", err)
	}
	return id, nil
}

func (r *OrderRepository) UpdateFromSession(ctx context.Context, tx db.DBTX, id uuid.UUID, o shared.OrderUpdate) error {
	tag, err := tx.Exec(ctx,
		`UPDATE orders
		 SET user_id = $2, customer_email = $3, payment_intent_id = $4, currency = $5,
		     subtotal_in_cents = $6, total_in_cents = $7,
		     status = CASE WHEN `+terminalStatusSQL+` THEN status ELSE $8 END,
		     updated_at = now()
		 WHERE id = $1`,
		id, o.UserID, o.CustomerEmail, o.PaymentIntentID, o.Currency, o.SubtotalInCents, o.TotalInCents, string(o.Status))
	if err != nil {
		return infra.WrapRepoErr("failed to update order from session", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("order not found", pgx.ErrNoRows, infra.KindNotFound)
	}
	return nil
}

func (r *OrderRepository) MarkPaid(ctx context.Context, tx db.DBTX, id uuid.UUID, paymentIntentID, customerEmail *string, paidAt time.Time) error {
	_, err := tx.Exec(ctx,
		`UPDATE orders
		 SET status = $2, paid_at = $3,
		     payment_intent_id = COALESCE($4, payment_intent_id),
		     customer_email = COALESCE($5, customer_email),
		     updated_at = now()
		 WHERE id = $1 AND NOT (`+terminalStatusSQL+`)`,
		id, string(order.StatusPaid), paidAt, paymentIntentID, customerEmail)
	if err != nil {
		return infra.WrapRepoErr("failed to mark order paid", err)
	}
	return nil
}

func (r *OrderRepository) MarkPaymentFailed(ctx context.Context, tx db.DBTX, id uuid.UUID, paymentIntentID, customerEmail *string) error {
	_, err := tx.Exec(ctx,
		`UPDATE orders
		 SET status = $2,
		     payment_intent_id = COALESCE($3, payment_intent_id),
		     customer_email = COALESCE($4, customer_email),
		     updated_at = now()
		 WHERE id = $1 AND NOT (`+terminalStatusSQL+`)`,
		id, string(order.StatusPaymentFailed), paymentIntentID, customerEmail)
	if err != nil {
		return infra.WrapRepoErr("failed to mark order payment failed", err)
	}
	return nil
}

func (r *OrderRepository) MarkStockFailed(ctx context.Context, tx db.DBTX, id uuid.UUID, paymentIntentID, customerEmail *string) error {
	_, err := tx.Exec(ctx,
		`UPDATE orders
		 SET status = $2, paid_at = NULL,
		     payment_intent_id = COALESCE($3, payment_intent_id),
		     customer_email = COALESCE($4, customer_email),
		     updated_at = now()
		 WHERE id = $1 AND NOT (`+terminalStatusSQL+`)`,
		id, string(order.StatusStockFailed), paymentIntentID, customerEmail)
	if err != nil {
		return infra.WrapRepoErr("failed to mark order stock failed", err)
	}
	return nil
}

// ReplaceItems rebuilds the order's lines wholesale; every upsert from a
// session carries the authoritative line set.
func (r *OrderRepository) ReplaceItems(ctx context.Context, tx db.DBTX, orderID uuid.UUID, items []shared.NewOrderItem) error {
	if _, err := tx.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, orderID); err != nil {
		return infra.WrapRepoErr("failed to delete order items", err)
	}
	for _, item := range items {
		_, err := tx.Exec(ctx,
			`INSERT INTO order_items (order_id, product_id, product_name, unit_amount_in_cents, quantity, line_total_in_cents)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			orderID, item.ProductID, item.ProductName, item.UnitAmountInCents, item.Quantity, item.LineTotalInCents)
		if err != nil {
			return infra.WrapRepoErr("failed to insert order item", err)
		}
	}
	return nil
}

func (r *OrderRepository) Items(ctx context.Context, tx db.DBTX, orderID uuid.UUID) ([]shared.OrderItemSnapshot, error) {
	rows, err := tx.Query(ctx,
		`SELECT id, order_id, product_id, product_name, unit_amount_in_cents, quantity, line_total_in_cents
		 FROM order_items WHERE order_id = $1 ORDER BY created_at ASC, id ASC`,
		orderID)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load order items", err)
	}
	defer rows.Close()

	var items []shared.OrderItemSnapshot
	for rows.Next() {
		var item shared.OrderItemSnapshot
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName,
			&item.UnitAmountInCents, &item.Quantity, &item.LineTotalInCents); err != nil {
			return nil, infra.WrapRepoErr("failed to scan order item row", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate order item rows", err)
	}
	return items, nil
}

func scanOrder(row pgx.Row) (*shared.OrderSnapshot, error) {
	var (
		s      shared.OrderSnapshot
		status string
	)
	if err := row.Scan(&s.ID, &s.SessionID, &s.UserID, &s.CustomerEmail, &s.PaymentIntentID,
		&s.Currency, &s.SubtotalInCents, &s.TotalInCents, &status, &s.PaidAt,
		&s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.Status, _ = order.ParseStatus(status)
	return &s, nil
}
