package tokens

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xynexis/speaker-registration/internal/models"
	"github.com/xynexis/speaker-registration/pkg/database"
)

// Repository persists submission tokens in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a tokens repository. A nil pool makes every call
// return database.ErrNotConfigured.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a token row; the database generates the token value.
func (r *Repository) Create(ctx context.Context) (*models.SubmissionToken, error) {
	if r.pool == nil {
		return nil, database.ErrNotConfigured
	}
	const q = `INSERT INTO submission_tokens DEFAULT VALUES RETURNING token, created_at`
	var t models.SubmissionToken
	if err := r.pool.QueryRow(ctx, q).Scan(&t.Token, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// Delete removes the token and returns the deleted row, or nil if no row matched.
// Check and removal are one statement, so concurrent callers cannot both see the row.
func (r *Repository) Delete(ctx context.Context, token uuid.UUID) (*models.SubmissionToken, error) {
	if r.pool == nil {
		return nil, database.ErrNotConfigured
	}
	const q = `DELETE FROM submission_tokens WHERE token = $1 RETURNING token, created_at`
	var t models.SubmissionToken
	err := r.pool.QueryRow(ctx, q, token).Scan(&t.Token, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// DeleteCreatedBefore removes every token issued before cutoff and returns how many were removed.
func (r *Repository) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if r.pool == nil {
		return 0, database.ErrNotConfigured
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM submission_tokens WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
