package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yourusername/reviewbot-api/internal/domain/entity"
	"github.com/yourusername/reviewbot-api/internal/domain/repository"
)

// UserService provides read and administrative operations on accounts.
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a user service.
func NewUserService(userRepo repository.UserRepository) (*UserService, error) {
	if userRepo == nil {
		return nil, fmt.Errorf("UserRepository is required for UserService")
	}
	return &UserService{userRepo: userRepo}, nil
}

// GetByID returns a single user.
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// List returns users with pagination. The store projection already excludes
// password hashes.
func (s *UserService) List(ctx context.Context, limit, offset int) ([]entity.User, error) {
	if limit <= 0 {
		limit = 20
	} else if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.userRepo.List(ctx, limit, offset)
}

// Delete removes an account. Administrative operation; not reachable from
// the auth flows.
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.userRepo.Delete(ctx, id)
}
