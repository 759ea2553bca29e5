package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/yourusername/reviewbot-api/internal/pkg/errors"
)

func newTestCacheRepo(t *testing.T) (*CacheRepo, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	repo, err := NewCacheRepo(client)
	require.NoError(t, err)
	return repo, mr
}

func TestCacheRepo_SetGetDelete(t *testing.T) {
	repo, _ := newTestCacheRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "oauth_state:abc", "google", 10*time.Minute))

	val, err := repo.Get(ctx, "oauth_state:abc")
	require.NoError(t, err)
	assert.Equal(t, "google", val)

	require.NoError(t, repo.Delete(ctx, "oauth_state:abc"))

	_, err = repo.Get(ctx, "oauth_state:abc")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCacheRepo_Expiration(t *testing.T) {
	repo, mr := newTestCacheRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "short", "value", time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err := repo.Get(ctx, "short")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCacheRepo_GetDel(t *testing.T) {
	repo, _ := newTestCacheRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "oauth_state:abc", "google", time.Minute))

	// First consume wins and removes the key in the same step.
	val, err := repo.GetDel(ctx, "oauth_state:abc")
	require.NoError(t, err)
	assert.Equal(t, "google", val)

	_, err = repo.GetDel(ctx, "oauth_state:abc")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = repo.Get(ctx, "oauth_state:abc")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
