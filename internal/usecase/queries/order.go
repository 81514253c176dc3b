package queries

import (
	"context"
	"time"

	"github.com/ed-robles/shop-template/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrOrderNotFound = errs.New("order not found")

type OrderQueries interface {
	// GetBySessionForUser backs the checkout success page. The order is
	// visible only to its owner, matched by user ID or customer email.
	GetBySessionForUser(ctx context.Context, sessionID string, userID uuid.UUID, email string) (*OrderView, error)
	ListForUser(ctx context.Context, userID uuid.UUID, after *Cursor, limit int) ([]*OrderListItem, *Cursor, error)
	AdminGetByID(ctx context.Context, id uuid.UUID) (*OrderView, error)
	AdminListRecent(ctx context.Context, after *Cursor, limit int) ([]*OrderListItem, *Cursor, error)
}

type OrderViewRepo interface {
	FindBySessionID(ctx context.Context, sessionID string) (*OrderView, error)
	FindByID(ctx context.Context, id uuid.UUID) (*OrderView, error)
	FindPageForUser(ctx context.Context, userID uuid.UUID, afterCreatedAt *time.Time, afterID *uuid.UUID, limit int32) ([]*OrderListItem, error)
	FindRecentPage(ctx context.Context, afterCreatedAt *time.Time, afterID *uuid.UUID, limit int32) ([]*OrderListItem, error)
}

type orderQueriesImpl struct {
	repo OrderViewRepo
}

func NewOrderQueries(repo OrderViewRepo) OrderQueries {
	return &orderQueriesImpl{repo: repo}
}

func (q *orderQueriesImpl) GetBySessionForUser(ctx context.Context, sessionID string, userID uuid.UUID, email string) (*OrderView, error) {
	view, err := q.repo.FindBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	owned := view.UserID != nil && *view.UserID == userID
	if !owned && view.CustomerEmail != nil && email != "" {
		owned = *view.CustomerEmail == email
	}
	if !owned {
		return nil, ErrOrderNotFound
	}
	return view, nil
}

func (q *orderQueriesImpl) ListForUser(ctx context.Context, userID uuid.UUID, after *Cursor, limit int) ([]*OrderListItem, *Cursor, error) {
	limit = ValidateLimit(limit)
	afterCreatedAt, afterID, err := decodeOptionalCursor(after)
	if err != nil {
		return nil, nil, err
	}
	rows, err := q.repo.FindPageForUser(ctx, userID, afterCreatedAt, afterID, int32(limit+1))
	if err != nil {
		return nil, nil, err
	}
	return paginateOrders(rows, limit)
}

func (q *orderQueriesImpl) AdminGetByID(ctx context.Context, id uuid.UUID) (*OrderView, error) {
	return q.repo.FindByID(ctx, id)
}

func (q *orderQueriesImpl) AdminListRecent(ctx context.Context, after *Cursor, limit int) ([]*OrderListItem, *Cursor, error) {
	limit = ValidateLimit(limit)
	afterCreatedAt, afterID, err := decodeOptionalCursor(after)
	if err != nil {
		return nil, nil, err
	}
	rows, err := q.repo.FindRecentPage(ctx, afterCreatedAt, afterID, int32(limit+1))
	if err != nil {
		return nil, nil, err
	}
	return paginateOrders(rows, limit)
}

func paginateOrders(rows []*OrderListItem, limit int) ([]*OrderListItem, *Cursor, error) {
	if len(rows) <= limit {
		return rows, nil, nil
	}
	page := rows[:limit]
	last := page[len(page)-1]
	next := &Cursor{After: EncodeAfterCursor(last.CreatedAt, last.ID)}
	return page, next, nil
}
