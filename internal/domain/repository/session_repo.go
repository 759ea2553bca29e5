package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SessionRepository binds opaque session tokens to user IDs with a TTL.
// Expiry is owned entirely by the backing store; a token that outlives its
// TTL simply resolves to ErrNotFound. Concurrent Bind/Unbind for the same
// token is last-write-wins.
type SessionRepository interface {
	Bind(ctx context.Context, token string, userID uuid.UUID, ttl time.Duration) error
	// Resolve returns the bound user ID, or ErrNotFound for unknown or
	// expired tokens.
	Resolve(ctx context.Context, token string) (uuid.UUID, error)
	// Unbind removes the binding. Unbinding an unknown token is not an error.
	Unbind(ctx context.Context, token string) error
}
