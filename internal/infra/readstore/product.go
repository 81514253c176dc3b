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

const productListColumns = `id, slug, name, COALESCE(image_url, ''), category, price_in_cents, stock_quantity, status, created_at`

// ProductReadStore serves catalogue pages straight from the pool; it
// never participates in a write transaction.
type ProductReadStore struct {
	pool *pgxpool.Pool
}

func NewProductReadStore(pool *pgxpool.Pool) *ProductReadStore {
	return &ProductReadStore{pool: pool}
}

var _ queries.ProductViewRepo = (*ProductReadStore)(nil)

func (r *ProductReadStore) FindPublishedPage(ctx context.Context, category *string, afterCreatedAt *time.Time, afterID *uuid.UUID, limit int32) ([]*queries.ProductListItem, error) {
	sql := `SELECT ` + productListColumns + `
	        FROM products
	        WHERE status = 'PUBLISHED'
	          AND ($1::text IS NULL OR category = $1)
	          AND ($2::timestamptz IS NULL OR (created_at, id) < ($2, $3))
	        ORDER BY created_at DESC, id DESC
	        LIMIT $4`
	rows, err := r.pool.Query(ctx, sql, category, afterCreatedAt, afterID, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list published products", err)
	}
	defer rows.Close()
	return collectProductListItems(rows)
}

func (r *ProductReadStore) FindPublishedBySlug(ctx context.Context, slug string) (*queries.ProductView, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, slug, COALESCE(sku, ''), name, COALESCE(description, ''), COALESCE(image_url, ''),
		        category, price_in_cents, stock_quantity, status, created_at, updated_at
		 FROM products
		 WHERE slug = $1 AND status = 'PUBLISHED'`, slug)
	return scanProductView(row)
}

func (r *ProductReadStore) FindPage(ctx context.Context, afterCreatedAt *time.Time, afterID *uuid.UUID, limit int32) ([]*queries.ProductListItem, error) {
	sql := `SELECT ` + productListColumns + `
	        FROM products
	        WHERE ($1::timestamptz IS NULL OR (created_at, id) < ($1, $2))
	        ORDER BY created_at DESC, id DESC
	        LIMIT $3`
	rows, err := r.pool.Query(ctx, sql, afterCreatedAt, afterID, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list products", err)
	}
	defer rows.Close()
	return collectProductListItems(rows)
}

func (r *ProductReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.ProductView, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, slug, COALESCE(sku, ''), name, COALESCE(description, ''), COALESCE(image_url, ''),
		        category, price_in_cents, stock_quantity, status, created_at, updated_at
		 FROM products
		 WHERE id = $1`, id)
	return scanProductView(row)
}

func collectProductListItems(rows pgx.Rows) ([]*queries.ProductListItem, error) {
	items := make([]*queries.ProductListItem, 0)
	for rows.Next() {
		var item queries.ProductListItem
		if err := rows.Scan(&item.ID, &item.Slug, &item.Name, &item.ImageURL, &item.Category,
			&item.PriceInCents, &item.StockQuantity, &item.Status, &item.CreatedAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan product row", err)
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read product rows", err)
	}
	return items, nil
}

func scanProductView(row pgx.Row) (*queries.ProductView, error) {
	var view queries.ProductView
	err := row.Scan(&view.ID, &view.Slug, &view.SKU, &view.Name, &view.Description, &view.ImageURL,
		&view.Category, &view.PriceInCents, &view.StockQuantity, &view.Status, &view.CreatedAt, &view.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, infra.WrapRepoErr("product not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find product", err)
	}
	return &view, nil
}
