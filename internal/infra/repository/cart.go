package repository

import (
	"context"

	"github.com/ed-robles/shop-template/internal/domain/product"
	"github.com/ed-robles/shop-template/internal/infra"
	"github.com/ed-robles/shop-template/internal/infra/db"
	"github.com/ed-robles/shop-template/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var _ shared.CartRepository = (*CartRepository)(nil)

type CartRepository struct{}

func NewCartRepository() *CartRepository {
	return &CartRepository{}
}

func (r *CartRepository) FindOrCreateByUser(ctx context.Context, tx db.DBTX, userID uuid.UUID) (uuid.UUID, error) {
	var id uuid.UUID
	err := tx.QueryRow(ctx,
		`INSERT INTO carts (user_id) VALUES ($1)
		 ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		 RETURNING id`,
		userID).Scan(&id)
	if err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to find or create cart", err)
	}
	return id, nil
}

func (r *CartRepository) FindByUser(ctx context.Context, tx db.DBTX, userID uuid.UUID) (uuid.UUID, error) {
	var id uuid.UUID
	err := tx.QueryRow(ctx, `SELECT id FROM carts WHERE user_id = $1`, userID).Scan(&id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return uuid.Nil, infra.WrapRepoErr("cart not found", err, infra.KindNotFound)
		}
		return uuid.Nil, infra.WrapRepoErr("failed to find cart by user", err)
	}
	return id, nil
}

// ItemsWithProducts left-joins the live product row so normalization can
// see unpublished and deleted products. Rows come back in insertion
// order to keep snapshots stable.
func (r *CartRepository) ItemsWithProducts(ctx context.Context, tx db.DBTX, cartID uuid.UUID) ([]shared.CartItemWithProduct, error) {
	rows, err := tx.Query(ctx,
		`SELECT ci.id, ci.product_id, ci.quantity,
		        p.id IS NOT NULL AS product_found,
		        COALESCE(p.name, ''), COALESCE(p.slug, ''), COALESCE(p.image_url, ''),
		        COALESCE(p.price_in_cents, 0), COALESCE(p.stock_quantity, 0),
		        COALESCE(p.status, '') = $2 AS published
		 FROM cart_items ci
		 LEFT JOIN products p ON p.id = ci.product_id
		 WHERE ci.cart_id = $1
		 ORDER BY ci.created_at ASC, ci.id ASC`,
		cartID, string(product.StatusPublished))
	if err != nil {
		return nil, infra.WrapRepoErr("failed to load cart items", err)
	}
	defer rows.Close()

	var items []shared.CartItemWithProduct
	for rows.Next() {
		var item shared.CartItemWithProduct
		if err := rows.Scan(&item.ItemID, &item.ProductID, &item.Quantity,
			&item.ProductFound, &item.Name, &item.Slug, &item.ImageURL,
			&item.PriceInCents, &item.StockQuantity, &item.Published); err != nil {
			return nil, infra.WrapRepoErr("failed to scan cart item row", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate cart item rows", err)
	}
	return items, nil
}

func (r *CartRepository) FindItem(ctx context.Context, tx db.DBTX, cartID, itemID uuid.UUID) (*shared.CartItemRecord, error) {
	var item shared.CartItemRecord
	err := tx.QueryRow(ctx,
		`SELECT id, cart_id, product_id, quantity FROM cart_items WHERE id = $1 AND cart_id = $2`,
		itemID, cartID).Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, infra.WrapRepoErr("cart item not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find cart item", err)
	}
	return &item, nil
}

func (r *CartRepository) UpsertItem(ctx context.Context, tx db.DBTX, cartID, productID uuid.UUID, quantity int32) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO cart_items (cart_id, product_id, quantity) VALUES ($1, $2, $3)
		 ON CONFLICT (cart_id, product_id) DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = now()`,
		cartID, productID, quantity)
	if err != nil {
		return infra.WrapRepoErr("failed to upsert cart item", err)
	}
	return nil
}

func (r *CartRepository) UpdateItemQuantity(ctx context.Context, tx db.DBTX, itemID uuid.UUID, quantity int32) error {
	_, err := tx.Exec(ctx,
		`UPDATE cart_items SET quantity = $2, updated_at = now() WHERE id = $1`,
		itemID, quantity)
	if err != nil {
		return infra.WrapRepoErr("failed to update cart item quantity", err)
	}
	return nil
}

func (r *CartRepository) DeleteItem(ctx context.Context, tx db.DBTX, itemID uuid.UUID) error {
	_, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE id = $1`, itemID)
	if err != nil {
		return infra.WrapRepoErr("failed to delete cart item", err)
	}
	return nil
}

func (r *CartRepository) DeleteItems(ctx context.Context, tx db.DBTX, itemIDs []uuid.UUID) error {
	if len(itemIDs) == 0 {
		return nil
	}
	_, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE id = ANY($1)`, itemIDs)
	if err != nil {
		return infra.WrapRepoErr("failed to delete cart items", err)
	}
	return nil
}

func (r *CartRepository) Clear(ctx context.Context, tx db.DBTX, cartID uuid.UUID) error {
	_, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	if err != nil {
		return infra.WrapRepoErr("failed to clear cart", err)
	}
	return nil
}
