package tokens

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xynexis/speaker-registration/internal/testutil"
	"github.com/xynexis/speaker-registration/pkg/apperror"
	"github.com/xynexis/speaker-registration/pkg/database"
)

func newTestStore(ttl time.Duration) (*Store, *testutil.TokenRepo) {
	repo := testutil.NewTokenRepo()
	return NewStore(repo, ttl, time.Second, nil), repo
}

func TestStore_IssueThenConsumeOnce(t *testing.T) {
	store, repo := newTestStore(time.Hour)
	ctx := context.Background()

	tok, err := store.Issue(ctx)
	require.NoError(t, err)
	_, err = uuid.Parse(tok)
	require.NoError(t, err, "token is a UUID string")
	assert.True(t, repo.Has(tok))

	ok, err := store.Consume(ctx, tok)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, repo.Has(tok))

	ok, err = store.Consume(ctx, tok)
	require.NoError(t, err)
	assert.False(t, ok, "a token is valid only once")
}

func TestStore_IssueIsDistinct(t *testing.T) {
	store, repo := newTestStore(0)
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		tok, err := store.Issue(context.Background())
		require.NoError(t, err)
		assert.False(t, seen[tok])
		seen[tok] = true
	}
	assert.Equal(t, 50, repo.Len())
}

func TestStore_ConsumeUnknownOrMalformed(t *testing.T) {
	store, _ := newTestStore(time.Hour)
	ctx := context.Background()

	for _, tok := range []string{uuid.NewString(), "", "not-a-uuid", "'; DELETE FROM submission_tokens; --"} {
		ok, err := store.Consume(ctx, tok)
		assert.NoError(t, err, tok)
		assert.False(t, ok, tok)
	}
}

func TestStore_ConcurrentConsumeSucceedsOnce(t *testing.T) {
	store, _ := newTestStore(time.Hour)
	tok, err := store.Issue(context.Background())
	require.NoError(t, err)

	const workers = 32
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		wins  int
		start = make(chan struct{})
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			ok, err := store.Consume(context.Background(), tok)
			if err == nil && ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, wins)
}

func TestStore_ExpiredTokenIsRejectedAndRemoved(t *testing.T) {
	store, repo := newTestStore(time.Hour)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	stale := uuid.New()
	repo.Put(stale, now.Add(-2*time.Hour))
	fresh := uuid.New()
	repo.Put(fresh, now.Add(-59*time.Minute))

	ok, err := store.Consume(context.Background(), stale.String())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, repo.Has(stale.String()))

	ok, err = store.Consume(context.Background(), fresh.String())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStore_ZeroTTLNeverExpires(t *testing.T) {
	store, repo := newTestStore(0)
	old := uuid.New()
	repo.Put(old, time.Now().Add(-24*365*time.Hour))

	ok, err := store.Consume(context.Background(), old.String())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStore_NotConfigured(t *testing.T) {
	store := NewStore(NewRepository(nil), time.Hour, time.Second, nil)

	_, err := store.Issue(context.Background())
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindConfiguration))
	assert.Equal(t, apperror.MsgConfiguration, apperror.From(err).Message)

	ok, err := store.Consume(context.Background(), uuid.NewString())
	assert.False(t, ok)
	assert.True(t, apperror.Is(err, apperror.KindConfiguration))
	assert.ErrorIs(t, err, database.ErrNotConfigured)
}

func TestStore_StorageUnavailable(t *testing.T) {
	store, repo := newTestStore(time.Hour)
	repo.Err = errors.New("dial tcp: connection refused")

	_, err := store.Issue(context.Background())
	require.Error(t, err)
	appErr := apperror.From(err)
	assert.Equal(t, apperror.KindStorageUnavailable, appErr.Kind)
	assert.Equal(t, apperror.MsgTokenIssue, appErr.Message)

	ok, err := store.Consume(context.Background(), uuid.NewString())
	assert.False(t, ok)
	assert.True(t, apperror.Is(err, apperror.KindStorageUnavailable))
	assert.Equal(t, 500, apperror.From(err).Status())
}
