package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xynexis/speaker-registration/internal/models"
	"github.com/xynexis/speaker-registration/pkg/database"
)

// ErrAdminNotFound is returned when no admin has the given email.
var ErrAdminNotFound = errors.New("admin not found")

// Repository handles admin persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an admin repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByEmail returns an admin by email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	if r.pool == nil {
		return nil, database.ErrNotConfigured
	}
	const q = `SELECT id, email, password_hash, created_at FROM admins WHERE email = $1`
	var a models.Admin
	err := r.pool.QueryRow(ctx, q, email).Scan(&a.ID, &a.Email, &a.Password, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAdminNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Upsert creates the admin or replaces its password hash.
func (r *Repository) Upsert(ctx context.Context, email, passwordHash string) (*models.Admin, error) {
	if r.pool == nil {
		return nil, database.ErrNotConfigured
	}
	const q = `INSERT INTO admins (email, password_hash) VALUES ($1, $2)
		ON CONFLICT (email) DO UPDATE SET password_hash = EXCLUDED.password_hash
		RETURNING id, email, password_hash, created_at`
	var a models.Admin
	if err := r.pool.QueryRow(ctx, q, email, passwordHash).Scan(&a.ID, &a.Email, &a.Password, &a.CreatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}
