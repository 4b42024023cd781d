package registrations

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xynexis/speaker-registration/internal/models"
	"github.com/xynexis/speaker-registration/internal/observability"
	"github.com/xynexis/speaker-registration/pkg/apperror"
	"github.com/xynexis/speaker-registration/pkg/database"
	"github.com/xynexis/speaker-registration/pkg/validation"
)

// TokenConsumer consumes single-use submission tokens.
type TokenConsumer interface {
	Consume(ctx context.Context, tokenID string) (bool, error)
}

// SpeakerRepository stores registrations.
type SpeakerRepository interface {
	Create(ctx context.Context, reg *models.SpeakerRegistration) error
	List(ctx context.Context) ([]models.SpeakerRegistration, error)
}

// Submission is one registration attempt as received from the client.
type Submission struct {
	FullName         string
	CompanyName      string
	Position         string
	Email            string
	PhoneNumber      *string
	PrivacyConsent   bool
	MarketingConsent bool
	Token            string
}

// Result acknowledges an accepted submission.
type Result struct {
	ID      uuid.UUID
	Message string
}

// Service runs the submission pipeline.
type Service struct {
	tokens  TokenConsumer
	repo    SpeakerRepository
	timeout time.Duration
	logger  *zap.Logger
}

// NewService creates the submission service. timeout bounds each store call.
func NewService(tokens TokenConsumer, repo SpeakerRepository, timeout time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{tokens: tokens, repo: repo, timeout: timeout, logger: logger}
}

// Submit validates the submission, consumes its token and stores the record.
//
// Presence, consent and field checks run before the token is touched, so a
// malformed submission leaves the token usable. Once consumed, the token stays
// spent even if the insert fails afterwards.
func (s *Service) Submit(ctx context.Context, sub Submission) (*Result, error) {
	if sub.FullName == "" || sub.CompanyName == "" || sub.Email == "" || sub.Position == "" || sub.Token == "" {
		return nil, s.reject("missing_fields", apperror.MissingFields())
	}
	if fe := validation.PrivacyConsent(sub.PrivacyConsent); fe != nil {
		return nil, s.reject("consent_required", apperror.ConsentRequired(fe.Message))
	}
	if fe := validation.Registration(validation.Input{
		FullName:       sub.FullName,
		CompanyName:    sub.CompanyName,
		Position:       sub.Position,
		Email:          sub.Email,
		PhoneNumber:    sub.PhoneNumber,
		PrivacyConsent: sub.PrivacyConsent,
	}); fe != nil {
		return nil, s.reject("invalid_field", apperror.Validation(fe.Message))
	}

	ok, err := s.tokens.Consume(ctx, sub.Token)
	if err != nil {
		s.logger.Error("consume submission token failed", zap.Error(err))
		return nil, s.reject("error", err)
	}
	if !ok {
		return nil, s.reject("invalid_token", apperror.TokenInvalid())
	}

	reg := normalize(sub)

	insertCtx, cancel := s.withTimeout(ctx)
	defer cancel()
	if err := s.repo.Create(insertCtx, reg); err != nil {
		switch {
		case errors.Is(err, ErrDuplicateEmail):
			s.logger.Info("duplicate speaker email", zap.String("email_domain", emailDomain(reg.Email)))
			return nil, s.reject("duplicate_email", apperror.DuplicateEmail(err))
		case errors.Is(err, database.ErrNotConfigured):
			s.logger.Error("registration store not configured", zap.Error(err))
			return nil, s.reject("error", apperror.Configuration(err))
		default:
			s.logger.Error("insert speaker registration failed", zap.Error(err))
			return nil, s.reject("error", apperror.Storage(err))
		}
	}

	observability.SubmissionsTotal.WithLabelValues("success").Inc()
	s.logger.Info("speaker registered", zap.String("id", reg.ID.String()), zap.String("email_domain", emailDomain(reg.Email)))
	return &Result{ID: reg.ID, Message: "Success"}, nil
}

// List returns all registrations, newest first.
func (s *Service) List(ctx context.Context) ([]models.SpeakerRegistration, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	list, err := s.repo.List(ctx)
	if err != nil {
		if errors.Is(err, database.ErrNotConfigured) {
			return nil, apperror.Configuration(err)
		}
		return nil, apperror.Storage(err)
	}
	return list, nil
}

func (s *Service) reject(result string, err error) error {
	observability.SubmissionsTotal.WithLabelValues(result).Inc()
	return err
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// normalize trims every string, lower-cases the email and turns a blank phone into nil.
func normalize(sub Submission) *models.SpeakerRegistration {
	reg := &models.SpeakerRegistration{
		FullName:         strings.TrimSpace(sub.FullName),
		CompanyName:      strings.TrimSpace(sub.CompanyName),
		Position:         strings.TrimSpace(sub.Position),
		Email:            strings.ToLower(strings.TrimSpace(sub.Email)),
		PrivacyConsent:   sub.PrivacyConsent,
		MarketingConsent: sub.MarketingConsent,
	}
	if sub.PhoneNumber != nil {
		if p := strings.TrimSpace(*sub.PhoneNumber); p != "" {
			reg.PhoneNumber = &p
		}
	}
	return reg
}

func emailDomain(email string) string {
	if i := strings.LastIndexByte(email, '@'); i >= 0 {
		return email[i+1:]
	}
	return ""
}
