package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/yourusername/reviewbot-api/internal/domain/entity"
	"github.com/yourusername/reviewbot-api/internal/domain/repository"
	apperrors "github.com/yourusername/reviewbot-api/internal/pkg/errors"
	"github.com/yourusername/reviewbot-api/pkg/auth"
)

// minPasswordLength is the minimum accepted local password length.
const minPasswordLength = 8

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// AuthService orchestrates local signup, login and credential changes.
// Session binding stays with the handlers; this service only decides whether
// an identity is authenticated.
type AuthService struct {
	userRepo repository.UserRepository
	hasher   *auth.PasswordHasher
}

// NewAuthService creates the auth facade.
func NewAuthService(userRepo repository.UserRepository, hasher *auth.PasswordHasher) (*AuthService, error) {
	if userRepo == nil {
		return nil, fmt.Errorf("UserRepository is required for AuthService")
	}
	if hasher == nil {
		return nil, fmt.Errorf("PasswordHasher is required for AuthService")
	}
	return &AuthService{userRepo: userRepo, hasher: hasher}, nil
}

// SignUp creates a local account. The email is normalized before any lookup
// or write; uniqueness is ultimately enforced by the store's constraint
// layer, so a concurrent duplicate signup surfaces as ErrEmailTaken from
// Create even when the pre-check passed.
func (s *AuthService) SignUp(ctx context.Context, email, password string) (*entity.User, error) {
	email = normalizeEmail(email)

	if !emailRegex.MatchString(email) {
		return nil, fmt.Errorf("%w: invalid email format", apperrors.ErrValidation)
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters long", apperrors.ErrValidation, minPasswordLength)
	}

	_, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil, repository.ErrEmailTaken
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email existence: %w", err)
	}

	user := &entity.User{
		Email:        email,
		PasswordHash: password, // hashed by the repository write path
		AuthProvider: entity.ProviderLocal,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	log.Printf("[AuthService] User %s registered (id=%s)", user.Email, user.ID)
	return user, nil
}

// Login authenticates a local account. Every failure mode returns
// ErrInvalidCredentials; the logs record the real cause.
func (s *AuthService) Login(ctx context.Context, email, password string) (*entity.User, error) {
	email = normalizeEmail(email)

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			log.Printf("[AuthService] Login rejected: no account for %s", email)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !user.HasPassword() {
		log.Printf("[AuthService] Login rejected: account %s has no local password (provider=%s)", email, user.AuthProvider)
		return nil, ErrInvalidCredentials
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		log.Printf("[AuthService] Login rejected: bad password for %s", email)
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// ChangePassword verifies the current credential and routes the new one
// through the store's hashing write path. OAuth-only accounts set their
// first password with an empty oldPassword.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters long", apperrors.ErrValidation, minPasswordLength)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.HasPassword() && !s.hasher.Verify(oldPassword, user.PasswordHash) {
		return ErrInvalidCredentials
	}

	return s.userRepo.UpdatePassword(ctx, userID, newPassword)
}

// normalizeEmail lower-cases and trims an email for store-boundary
// comparison.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
