package repository

import (
	"context"

	"github.com/ed-robles/shop-template/internal/infra"
	"github.com/ed-robles/shop-template/internal/infra/db"
	"github.com/ed-robles/shop-template/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var _ shared.UserRepository = (*UserRepository)(nil)

// UserRepository mirrors identities issued by the external auth
// provider into local rows so carts and orders have something to
// reference. It never stores credentials.
type UserRepository struct{}

func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

func (r *UserRepository) Upsert(ctx context.Context, tx db.DBTX, id uuid.UUID, email string) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO users (id, email) VALUES ($1, $2)
		 ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email, updated_at = now()`,
		id, email)
	if err != nil {
		return infra.WrapRepoErr("failed to upsert user", err)
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, tx db.DBTX, id uuid.UUID) (*shared.UserSnapshot, error) {
	var user shared.UserSnapshot
	err := tx.QueryRow(ctx,
		`SELECT id, email, created_at FROM users WHERE id = $1`, id).
		Scan(&user.ID, &user.Email, &user.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, infra.WrapRepoErr("user not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find user by id", err)
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, tx db.DBTX, email string) (*shared.UserSnapshot, error) {
	var user shared.UserSnapshot
	err := tx.QueryRow(ctx,
		`SELECT id, email, created_at FROM users WHERE email = $1`, email).
		Scan(&user.ID, &user.Email, &user.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, infra.WrapRepoErr("user not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find user by email", err)
	}
	return &user, nil
}
