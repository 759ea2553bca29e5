package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/yourusername/reviewbot-api/internal/domain/entity"
)

// UserRepository is the identity store. Implementations own credential
// hashing on the write path: any write carrying a non-empty plaintext
// password hashes it before it reaches storage, and never re-hashes a value
// that is already in hashed form. Uniqueness of email and provider IDs is
// enforced by the database constraint layer; violations surface as
// ErrEmailTaken / ErrProviderIDTaken.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByProviderID(ctx context.Context, provider entity.AuthProvider, providerID string) (*entity.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, newPassword string) error
	UpdateProviderID(ctx context.Context, id uuid.UUID, provider entity.AuthProvider, providerID string) error
	Delete(ctx context.Context, id uuid.UUID) error
	// List returns users with pagination. The projection never includes
	// password hashes.
	List(ctx context.Context, limit, offset int) ([]entity.User, error)
}
