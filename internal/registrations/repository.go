package registrations

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xynexis/speaker-registration/internal/models"
	"github.com/xynexis/speaker-registration/pkg/database"
)

// ErrDuplicateEmail is returned by Create when the email is already registered.
var ErrDuplicateEmail = errors.New("email already registered")

// emailConstraint is the unique constraint on speakers.email.
const emailConstraint = "speakers_email_key"

// Repository handles speaker registration persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a registrations repository. A nil pool makes every
// call return database.ErrNotConfigured.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a registration and fills in its ID and CreatedAt.
// Email uniqueness is left to the database constraint.
func (r *Repository) Create(ctx context.Context, reg *models.SpeakerRegistration) error {
	if r.pool == nil {
		return database.ErrNotConfigured
	}
	const q = `INSERT INTO speakers (full_name, company_name, position, email, phone_number, privacy_consent, marketing_consent)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, q,
		reg.FullName, reg.CompanyName, reg.Position, reg.Email, reg.PhoneNumber, reg.PrivacyConsent, reg.MarketingConsent,
	).Scan(&reg.ID, &reg.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err, emailConstraint) {
			return fmt.Errorf("%w: %v", ErrDuplicateEmail, err)
		}
		return fmt.Errorf("insert speaker: %w", err)
	}
	return nil
}

// List returns all registrations, newest first.
func (r *Repository) List(ctx context.Context) ([]models.SpeakerRegistration, error) {
	if r.pool == nil {
		return nil, database.ErrNotConfigured
	}
	rows, err := r.pool.Query(ctx, `SELECT id, full_name, company_name, position, email, phone_number, privacy_consent, marketing_consent, created_at
		FROM speakers ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := make([]models.SpeakerRegistration, 0)
	for rows.Next() {
		var reg models.SpeakerRegistration
		if err := rows.Scan(&reg.ID, &reg.FullName, &reg.CompanyName, &reg.Position, &reg.Email,
			&reg.PhoneNumber, &reg.PrivacyConsent, &reg.MarketingConsent, &reg.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, reg)
	}
	return list, rows.Err()
}
