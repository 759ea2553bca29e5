package repository

import (
	"context"
	"time"
)

// CacheRepository provides short-lived key/value storage. Used for one-shot
// values such as OAuth state tokens.
type CacheRepository interface {
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
	// GetDel atomically reads and removes the key, or returns ErrNotFound.
	// Of two concurrent callers presenting the same key, exactly one wins.
	GetDel(ctx context.Context, key string) (string, error)
}
