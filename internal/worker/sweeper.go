package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xynexis/speaker-registration/internal/observability"
)

// ExpiredTokenDeleter removes tokens issued before a cutoff.
type ExpiredTokenDeleter interface {
	DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Sweeper periodically removes expired submission tokens. Tokens that are
// never presented would otherwise stay in the store forever.
type Sweeper struct {
	repo     ExpiredTokenDeleter
	ttl      time.Duration
	interval time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

// NewSweeper creates a token sweeper.
func NewSweeper(repo ExpiredTokenDeleter, ttl, interval time.Duration, logger *zap.Logger) *Sweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sweeper{repo: repo, ttl: ttl, interval: interval, now: time.Now, logger: logger}
}

// SweepOnce deletes every token older than the TTL and returns the count.
func (s *Sweeper) SweepOnce(ctx context.Context) (int64, error) {
	if s.ttl <= 0 {
		return 0, nil
	}
	n, err := s.repo.DeleteCreatedBefore(ctx, s.now().Add(-s.ttl))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		observability.TokensSweptTotal.Add(float64(n))
	}
	return n, nil
}

// Run sweeps immediately and then on every interval until ctx is done.
// Failures are logged and retried on the next tick.
func (s *Sweeper) Run(ctx context.Context) {
	if s.ttl <= 0 {
		s.logger.Info("token expiry disabled; sweeper not running")
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		n, err := s.SweepOnce(ctx)
		if err != nil {
			s.logger.Warn("token sweep failed", zap.Error(err))
		} else {
			s.logger.Debug("token sweep complete", zap.Int64("deleted", n))
		}

		select {
		case <-ctx.Done():
			s.logger.Info("token sweeper stopping")
			return
		case <-ticker.C:
		}
	}
}
