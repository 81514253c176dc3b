package queries

import (
	"context"
	"time"

	"github.com/ed-robles/shop-template/internal/domain/product"
	"github.com/ed-robles/shop-template/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound = errs.New("product not found")
	ErrInvalidCursor   = errs.New("invalid cursor")
	ErrInvalidCategory = errs.New("invalid category")
)

type ProductFilter struct {
	Category *product.Category
}

type ProductQueries interface {
	// ListPublished pages the storefront catalogue, newest first.
	ListPublished(ctx context.Context, filter ProductFilter, after *Cursor, limit int) ([]*ProductListItem, *Cursor, error)
	// GetBySlug serves the product detail page; drafts are invisible here.
	GetBySlug(ctx context.Context, slug string) (*ProductView, error)
	// ListAll includes drafts for the admin catalogue.
	ListAll(ctx context.Context, after *Cursor, limit int) ([]*ProductListItem, *Cursor, error)
	GetByID(ctx context.Context, id uuid.UUID) (*ProductView, error)
}

type ProductViewRepo interface {
	FindPublishedPage(ctx context.Context, category *string, afterCreatedAt *time.Time, afterID *uuid.UUID, limit int32) ([]*ProductListItem, error)
	FindPublishedBySlug(ctx context.Context, slug string) (*ProductView, error)
	FindPage(ctx context.Context, afterCreatedAt *time.Time, afterID *uuid.UUID, limit int32) ([]*ProductListItem, error)
	FindByID(ctx context.Context, id uuid.UUID) (*ProductView, error)
}

type productQueriesImpl struct {
	repo ProductViewRepo
}

func NewProductQueries(repo ProductViewRepo) ProductQueries {
	return &productQueriesImpl{repo: repo}
}

func (q *productQueriesImpl) ListPublished(ctx context.Context, filter ProductFilter, after *Cursor, limit int) ([]*ProductListItem, *Cursor, error) {
	limit = ValidateLimit(limit)

	var category *string
	if filter.Category != nil {
		value := string(*filter.Category)
		category = &value
	}

	afterCreatedAt, afterID, err := decodeOptionalCursor(after)
	if err != nil {
		return nil, nil, err
	}

	// Fetch one extra row to decide whether a next page exists.
	rows, err := q.repo.FindPublishedPage(ctx, category, afterCreatedAt, afterID, int32(limit+1))
	if err != nil {
		return nil, nil, err
	}
	return paginate(rows, limit)
}

func (q *productQueriesImpl) GetBySlug(ctx context.Context, slug string) (*ProductView, error) {
	view, err := q.repo.FindPublishedBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (q *productQueriesImpl) ListAll(ctx context.Context, after *Cursor, limit int) ([]*ProductListItem, *Cursor, error) {
	limit = ValidateLimit(limit)

	afterCreatedAt, afterID, err := decodeOptionalCursor(after)
	if err != nil {
		return nil, nil, err
	}

	rows, err := q.repo.FindPage(ctx, afterCreatedAt, afterID, int32(limit+1))
	if err != nil {
		return nil, nil, err
	}
	return paginate(rows, limit)
}

func (q *productQueriesImpl) GetByID(ctx context.Context, id uuid.UUID) (*ProductView, error) {
	return q.repo.FindByID(ctx, id)
}

func decodeOptionalCursor(after *Cursor) (*time.Time, *uuid.UUID, error) {
	if after == nil || after.After == "" {
		return nil, nil, nil
	}
	createdAt, id, err := DecodeAfterCursor(after.After)
	if err != nil {
		return nil, nil, errs.Mark(err, ErrInvalidCursor)
	}
	return &createdAt, &id, nil
}

func paginate(rows []*ProductListItem, limit int) ([]*ProductListItem, *Cursor, error) {
	if len(rows) <= limit {
		return rows, nil, nil
	}
	page := rows[:limit]
	last := page[len(page)-1]
	next := &Cursor{After: EncodeAfterCursor(last.CreatedAt, last.ID)}
	return page, next, nil
}
