// Package testutil provides in-memory stand-ins for the PostgreSQL repositories
// and a helper that connects integration tests to a real database.
// The stand-ins keep the same contracts: token deletion is atomic and email is unique.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xynexis/speaker-registration/internal/models"
	"github.com/xynexis/speaker-registration/internal/registrations"
)

// TokenRepo is an in-memory token table.
type TokenRepo struct {
	mu   sync.Mutex
	rows map[uuid.UUID]time.Time
	Now  func() time.Time
	Err  error // returned by every call when set
}

// NewTokenRepo returns an empty token table.
func NewTokenRepo() *TokenRepo {
	return &TokenRepo{rows: make(map[uuid.UUID]time.Time), Now: time.Now}
}

func (r *TokenRepo) Create(ctx context.Context) (*models.SubmissionToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	t := models.SubmissionToken{Token: uuid.New(), CreatedAt: r.Now()}
	r.rows[t.Token] = t.CreatedAt
	return &t, nil
}

func (r *TokenRepo) Delete(ctx context.Context, token uuid.UUID) (*models.SubmissionToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	created, ok := r.rows[token]
	if !ok {
		return nil, nil
	}
	delete(r.rows, token)
	return &models.SubmissionToken{Token: token, CreatedAt: created}, nil
}

func (r *TokenRepo) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return 0, r.Err
	}
	var n int64
	for tok, created := range r.rows {
		if created.Before(cutoff) {
			delete(r.rows, tok)
			n++
		}
	}
	return n, nil
}

// Put inserts a token with a chosen creation time.
func (r *TokenRepo) Put(token uuid.UUID, createdAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[token] = createdAt
}

// Has reports whether the token row still exists.
func (r *TokenRepo) Has(token string) bool {
	id, err := uuid.Parse(token)
	if err != nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.rows[id]
	return ok
}

// Len returns the number of stored tokens.
func (r *TokenRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

// SpeakerRepo is an in-memory speakers table with a unique email column.
type SpeakerRepo struct {
	mu   sync.Mutex
	rows []models.SpeakerRegistration
	Err  error // returned by every call when set
}

// NewSpeakerRepo returns an empty speakers table.
func NewSpeakerRepo() *SpeakerRepo {
	return &SpeakerRepo{}
}

func (r *SpeakerRepo) Create(ctx context.Context, reg *models.SpeakerRegistration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	for _, existing := range r.rows {
		if existing.Email == reg.Email {
			return registrations.ErrDuplicateEmail
		}
	}
	reg.ID = uuid.New()
	reg.CreatedAt = time.Now()
	r.rows = append(r.rows, *reg)
	return nil
}

func (r *SpeakerRepo) List(ctx context.Context) ([]models.SpeakerRegistration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	out := make([]models.SpeakerRegistration, len(r.rows))
	copy(out, r.rows)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Len returns the number of stored registrations.
func (r *SpeakerRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}
