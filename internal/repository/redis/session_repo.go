package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	apperrors "github.com/yourusername/reviewbot-api/internal/pkg/errors"
)

const sessionKeyPrefix = "session:"

// SessionRepo implements repository.SessionRepository on Redis. Each binding
// is a single key session:<token> holding the user ID, expired by Redis TTL.
type SessionRepo struct {
	client redis.UniversalClient
}

// NewSessionRepo creates a Redis-backed session repository.
func NewSessionRepo(client redis.UniversalClient) (*SessionRepo, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required for SessionRepo")
	}
	return &SessionRepo{client: client}, nil
}

// Bind stores the token → user binding with the given TTL. An existing
// binding for the same token is overwritten (last write wins).
func (r *SessionRepo) Bind(ctx context.Context, token string, userID uuid.UUID, ttl time.Duration) error {
	return r.client.Set(ctx, sessionKeyPrefix+token, userID.String(), ttl).Err()
}

// Resolve returns the user ID bound to the token, or ErrNotFound if the
// binding is missing or expired.
func (r *SessionRepo) Resolve(ctx context.Context, token string) (uuid.UUID, error) {
	val, err := r.client.Get(ctx, sessionKeyPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return uuid.Nil, apperrors.ErrNotFound
		}
		return uuid.Nil, fmt.Errorf("failed to resolve session: %w", err)
	}
	userID, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, fmt.Errorf("corrupt session binding for token: %w", err)
	}
	return userID, nil
}

// Unbind deletes the binding. Deleting a token that is not bound is a no-op.
func (r *SessionRepo) Unbind(ctx context.Context, token string) error {
	return r.client.Del(ctx, sessionKeyPrefix+token).Err()
}
