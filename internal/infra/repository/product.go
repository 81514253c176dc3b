package repository

import (
	"context"
	"strconv"
	"strings"

	"github.com/ed-robles/shop-template/internal/domain/product"
	"github.com/ed-robles/shop-template/internal/infra"
	"github.com/ed-robles/shop-template/internal/infra/db"
	"github.com/ed-robles/shop-template/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var _ shared.ProductRepository = (*ProductRepository)(nil)

const productColumns = `id, slug, sku, name, description, image_url, category, price_in_cents, stock_quantity, status, created_at, updated_at`

type ProductRepository struct{}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{}
}

func (r *ProductRepository) FindByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*shared.ProductSnapshot, error) {
	row := tx.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	snapshot, err := scanProduct(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, infra.WrapRepoErr("product not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find product by id", err)
	}
	return snapshot, nil
}

func (r *ProductRepository) FindPublishedByIDs(ctx context.Context, tx db.DBTX, ids []uuid.UUID) ([]shared.ProductSnapshot, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := tx.Query(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = ANY($1) AND status = $2`,
		ids, string(product.StatusPublished))
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find products by ids", err)
	}
	defer rows.Close()

	var snapshots []shared.ProductSnapshot
	for rows.Next() {
		snapshot, err := scanProduct(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan product row", err)
		}
		snapshots = append(snapshots, *snapshot)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate product rows", err)
	}
	return snapshots, nil
}

func (r *ProductRepository) DecrementStock(ctx context.Context, tx db.DBTX, id uuid.UUID, quantity int32) (int64, error) {
	tag, err := tx.Exec(ctx,
		`UPDATE products SET stock_quantity = stock_quantity - $2, updated_at = now()
		 WHERE id = $1 AND stock_quantity >= $2`,
		id, quantity)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to decrement stock", err)
	}
	return tag.RowsAffected(), nil
}

func (r *ProductRepository) Create(ctx context.Context, tx db.DBTX, p shared.NewProduct) (uuid.UUID, error) {
	var id uuid.UUID
	err := tx.QueryRow(ctx,
		`INSERT INTO products (slug, name, description, image_url, category, price_in_cents, stock_quantity, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		p.Slug, p.Name, p.Description, p.ImageURL, string(p.Category), p.PriceInCents, p.StockQuantity, string(p.Status),
	).Scan(&id)
	if err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to create product", err)
	}
	return id, nil
}

func (r *ProductRepository) Update(ctx context.Context, tx db.DBTX, id uuid.UUID, p shared.ProductPatch) error {
	sets := make([]string, 0, 8)
	args := make([]any, 0, 9)
	args = append(args, id)

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}

	if p.Slug != nil {
		add("slug", *p.Slug)
	}
	if p.Name != nil {
		add("name", *p.Name)
	}
	if p.Description != nil {
		add("description", *p.Description)
	}
	if p.ImageURL != nil {
		add("image_url", *p.ImageURL)
	}
	if p.Category != nil {
		add("category", string(*p.Category))
	}
	if p.PriceInCents != nil {
		add("price_in_cents", *p.PriceInCents)
	}
	if p.StockQuantity != nil {
		add("stock_quantity", *p.StockQuantity)
	}
	if p.Status != nil {
		add("status", string(*p.Status))
	}
	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at = now()")

	tag, err := tx.Exec(ctx,
		`UPDATE products SET `+strings.Join(sets, ", ")+` WHERE id = $1`,
		args...)
	if err != nil {
		return infra.WrapRepoErr("failed to update product", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("product not found", pgx.ErrNoRows, infra.KindNotFound)
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, tx db.DBTX, id uuid.UUID) error {
	tag, err := tx.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return infra.WrapRepoErr("failed to delete product", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("product not found", pgx.ErrNoRows, infra.KindNotFound)
	}
	return nil
}

func (r *ProductRepository) FindIDBySlug(ctx context.Context, tx db.DBTX, slug string) (uuid.UUID, error) {
	var id uuid.UUID
	err := tx.QueryRow(ctx, `SELECT id FROM products WHERE slug = $1`, slug).Scan(&id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return uuid.Nil, infra.WrapRepoErr("product not found", err, infra.KindNotFound)
		}
		return uuid.Nil, infra.WrapRepoErr("failed to find product by slug", err)
	}
	return id, nil
}

func (r *ProductRepository) AssignSKU(ctx context.Context, tx db.DBTX, id uuid.UUID, sku string) (int64, error) {
	tag, err := tx.Exec(ctx,
		`UPDATE products SET sku = $2, updated_at = now()
		 WHERE id = $1 AND NOT EXISTS (SELECT 1 FROM products WHERE sku = $2 AND id <> $1)`,
		id, sku)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to assign sku", err)
	}
	return tag.RowsAffected(), nil
}

func scanProduct(row pgx.Row) (*shared.ProductSnapshot, error) {
	var (
		s        shared.ProductSnapshot
		sku      *string
		category string
		status   string
	)
	if err := row.Scan(&s.ID, &s.Slug, &sku, &s.Name, &s.Description, &s.ImageURL, &category,
		&s.PriceInCents, &s.StockQuantity, &status, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	if sku != nil {
		s.SKU = *sku
	}
	s.Category, _ = product.ParseCategory(category)
	s.Status, _ = product.ParseStatus(status)
	return &s, nil
}
