package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/yourusername/reviewbot-api/internal/pkg/errors"
)

func newTestSessionRepo(t *testing.T) (*SessionRepo, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	repo, err := NewSessionRepo(client)
	require.NoError(t, err)
	return repo, mr
}

func TestSessionRepo_BindAndResolve(t *testing.T) {
	repo, mr := newTestSessionRepo(t)
	ctx := context.Background()
	userID := uuid.New()

	err := repo.Bind(ctx, "token-abc", userID, time.Hour)
	require.NoError(t, err)

	resolved, err := repo.Resolve(ctx, "token-abc")
	require.NoError(t, err)
	assert.Equal(t, userID, resolved)

	// The binding carries the TTL, not the cookie.
	ttl := mr.TTL(sessionKeyPrefix + "token-abc")
	assert.Greater(t, ttl, time.Duration(0))
}

func TestSessionRepo_Resolve_UnknownToken(t *testing.T) {
	repo, _ := newTestSessionRepo(t)

	resolved, err := repo.Resolve(context.Background(), "never-bound")

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, uuid.Nil, resolved)
}

func TestSessionRepo_Resolve_ExpiredToken(t *testing.T) {
	repo, mr := newTestSessionRepo(t)
	ctx := context.Background()

	err := repo.Bind(ctx, "short-lived", uuid.New(), time.Minute)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = repo.Resolve(ctx, "short-lived")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSessionRepo_Bind_LastWriteWins(t *testing.T) {
	repo, _ := newTestSessionRepo(t)
	ctx := context.Background()
	first := uuid.New()
	second := uuid.New()

	require.NoError(t, repo.Bind(ctx, "token-abc", first, time.Hour))
	require.NoError(t, repo.Bind(ctx, "token-abc", second, time.Hour))

	resolved, err := repo.Resolve(ctx, "token-abc")
	require.NoError(t, err)
	assert.Equal(t, second, resolved)
}

func TestSessionRepo_Unbind(t *testing.T) {
	repo, _ := newTestSessionRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Bind(ctx, "token-abc", uuid.New(), time.Hour))
	require.NoError(t, repo.Unbind(ctx, "token-abc"))

	_, err := repo.Resolve(ctx, "token-abc")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	// Unbinding an already-removed token is not an error.
	assert.NoError(t, repo.Unbind(ctx, "token-abc"))
}
