//go:build unit || e2e

package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

func CreateTestUser(t *testing.T, db DBLike, email string) uuid.UUID {
	t.Helper()

	userID := uuid.New()
	ctx := context.Background()

	_, err := db.Exec(ctx, "INSERT INTO users (id, email) VALUES ($1, $2)", userID, email)
	require.NoError(t, err)

	return userID
}

func CreateTestProduct(t *testing.T, db DBLike, name string, priceInCents int64, stock int) uuid.UUID {
	t.Helper()

	productID := uuid.New()
	slug := strings.ToLower(strings.ReplaceAll(name, " ", "-")) + "-" + productID.String()[:8]
	sku := fmt.Sprintf("%06d", time.Now().UnixNano()%900000+100000)
	ctx := context.Background()

	_, err := db.Exec(ctx, `
		INSERT INTO products (id, slug, sku, name, description, category, price_in_cents, stock_quantity, status)
		VALUES ($1, $2, $3, $4, $5, 'TOPS', $6, $7, 'PUBLISHED')`,
		productID, slug, sku, name, name+" description", priceInCents, stock)
	require.NoError(t, err)

	return productID
}

func CreateDraftProduct(t *testing.T, db DBLike, name string) uuid.UUID {
	t.Helper()

	productID := uuid.New()
	slug := strings.ToLower(strings.ReplaceAll(name, " ", "-")) + "-" + productID.String()[:8]
	ctx := context.Background()

	_, err := db.Exec(ctx, `
		INSERT INTO products (id, slug, name, description, category, price_in_cents, stock_quantity, status)
		VALUES ($1, $2, $3, '', 'TOPS', 1000, 0, 'DRAFT')`,
		productID, slug, name)
	require.NoError(t, err)

	return productID
}

func ProductSlug(t *testing.T, db DBLike, productID uuid.UUID) string {
	t.Helper()

	var slug string
	err := db.QueryRow(context.Background(), "SELECT slug FROM products WHERE id = $1", productID).Scan(&slug)
	require.NoError(t, err)
	return slug
}

var (
	buildTruncateOnce sync.Once
	truncateSQL       atomic.Value // string
)

// truncates all tables between tests
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	buildTruncateOnce.Do(func() {
		rows, err := pool.Query(ctx, `
		  SELECT 'public.' || quote_ident(tablename)
		  FROM pg_tables
		  WHERE schemaname = 'public'
		    AND tablename NOT IN ('schema_migrations')`)
		if err != nil {
			truncateSQL.Store("")
			return
		}
		defer rows.Close()
		var tables []string
		for rows.Next() {
			var t string
			if err := rows.Scan(&t); err != nil {
				truncateSQL.Store("")
				return
			}
			tables = append(tables, t)
		}
		if rows.Err() != nil {
			truncateSQL.Store("")
			return
		}
		if len(tables) == 0 {
			truncateSQL.Store("SELECT 1")
			return
		}
		truncateSQL.Store("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE;")
	})
	sqlAny := truncateSQL.Load()
	if sqlAny == nil || sqlAny.(string) == "" {
		return fmt.Errorf("failed to build TRUNCATE SQL")
	}
	if _, err := pool.Exec(ctx, sqlAny.(string)); err != nil {
		return err
	}

	return nil
}
