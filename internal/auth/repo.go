package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mandap-rentals/mandap-server/internal/shared"
)

// Repository loads accounts for credential checks.
type Repository interface {
	FindByUsername(ctx context.Context, username string) (*User, error)
}

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the postgres-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

func (r *pgRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	var u User
	err := r.pool.QueryRow(ctx,
		`SELECT id, username, full_name, password_hash, is_active, created_at
		 FROM users WHERE LOWER(username) = LOWER($1)`, username).
		Scan(&u.ID, &u.Username, &u.FullName, &u.PasswordHash, &u.IsActive, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
