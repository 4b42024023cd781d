package tokens

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xynexis/speaker-registration/internal/models"
	"github.com/xynexis/speaker-registration/internal/observability"
	"github.com/xynexis/speaker-registration/pkg/apperror"
	"github.com/xynexis/speaker-registration/pkg/database"
)

// TokenRepository is the storage the Store needs. Delete must remove and
// return the row in a single atomic operation.
type TokenRepository interface {
	Create(ctx context.Context) (*models.SubmissionToken, error)
	Delete(ctx context.Context, token uuid.UUID) (*models.SubmissionToken, error)
}

// Store issues and consumes single-use submission tokens.
type Store struct {
	repo    TokenRepository
	ttl     time.Duration
	timeout time.Duration
	now     func() time.Time
	logger  *zap.Logger
}

// NewStore creates a token store. ttl of zero disables expiry; timeout bounds each store call.
func NewStore(repo TokenRepository, ttl, timeout time.Duration, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{repo: repo, ttl: ttl, timeout: timeout, now: time.Now, logger: logger}
}

// Issue creates a new token and returns its opaque string form.
func (s *Store) Issue(ctx context.Context) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	t, err := s.repo.Create(ctx)
	if err != nil {
		observability.TokensIssuedTotal.WithLabelValues("error").Inc()
		if errors.Is(err, database.ErrNotConfigured) {
			return "", apperror.Configuration(err)
		}
		return "", apperror.Wrap(apperror.KindStorageUnavailable, apperror.MsgTokenIssue, err)
	}
	observability.TokensIssuedTotal.WithLabelValues("success").Inc()
	return t.Token.String(), nil
}

// Consume deletes the token and reports whether it was valid. A false result
// with nil error means the token was never issued, already used, or expired.
// An expired token is still removed by the same delete.
func (s *Store) Consume(ctx context.Context, tokenID string) (bool, error) {
	id, err := uuid.Parse(tokenID)
	if err != nil {
		observability.TokensConsumedTotal.WithLabelValues("invalid").Inc()
		return false, nil
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	t, err := s.repo.Delete(ctx, id)
	if err != nil {
		observability.TokensConsumedTotal.WithLabelValues("error").Inc()
		if errors.Is(err, database.ErrNotConfigured) {
			return false, apperror.Configuration(err)
		}
		return false, apperror.Wrap(apperror.KindStorageUnavailable, apperror.MsgInternal, err)
	}
	if t == nil {
		observability.TokensConsumedTotal.WithLabelValues("invalid").Inc()
		return false, nil
	}
	if s.expired(t) {
		observability.TokensConsumedTotal.WithLabelValues("expired").Inc()
		s.logger.Debug("expired token presented", zap.Time("created_at", t.CreatedAt))
		return false, nil
	}
	observability.TokensConsumedTotal.WithLabelValues("consumed").Inc()
	return true, nil
}

func (s *Store) expired(t *models.SubmissionToken) bool {
	return s.ttl > 0 && s.now().Sub(t.CreatedAt) > s.ttl
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}
