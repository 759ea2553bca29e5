package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yourusername/reviewbot-api/internal/domain/entity"
	"github.com/yourusername/reviewbot-api/internal/domain/repository"
	apperrors "github.com/yourusername/reviewbot-api/internal/pkg/errors"
	"github.com/yourusername/reviewbot-api/pkg/auth"
)

// MockUserRepository implements repository.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *entity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) GetByProviderID(ctx context.Context, provider entity.AuthProvider, providerID string) (*entity.User, error) {
	args := m.Called(ctx, provider, providerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, newPassword string) error {
	args := m.Called(ctx, id, newPassword)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateProviderID(ctx context.Context, id uuid.UUID, provider entity.AuthProvider, providerID string) error {
	args := m.Called(ctx, id, provider, providerID)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) List(ctx context.Context, limit, offset int) ([]entity.User, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.User), args.Error(1)
}

func newTestHasher(t *testing.T) *auth.PasswordHasher {
	t.Helper()
	hasher, err := auth.NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)
	return hasher
}

func TestAuthService_SignUp_Success(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepository)
	mockUserRepo.On("GetByEmail", mock.Anything, "new@example.com").Return(nil, apperrors.ErrNotFound)
	mockUserRepo.On("Create", mock.Anything, mock.AnythingOfType("*entity.User")).Return(nil)

	authService, err := NewAuthService(mockUserRepo, newTestHasher(t))
	require.NoError(t, err)

	// Act
	user, err := authService.SignUp(context.Background(), "new@example.com", "password123")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", user.Email)
	assert.Equal(t, entity.ProviderLocal, user.AuthProvider)
	mockUserRepo.AssertExpectations(t)
}

func TestAuthService_SignUp_NormalizesEmail(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	// The lookup and the write both see the normalized form.
	mockUserRepo.On("GetByEmail", mock.Anything, "user@example.com").Return(nil, apperrors.ErrNotFound)
	mockUserRepo.On("Create", mock.Anything, mock.AnythingOfType("*entity.User")).Return(nil)

	authService, err := NewAuthService(mockUserRepo, newTestHasher(t))
	require.NoError(t, err)

	user, err := authService.SignUp(context.Background(), "  USER@Example.COM  ", "password123")

	require.NoError(t, err)
	assert.Equal(t, "user@example.com", user.Email)
	mockUserRepo.AssertExpectations(t)
}

func TestAuthService_SignUp_InvalidEmail(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	authService, err := NewAuthService(mockUserRepo, newTestHasher(t))
	require.NoError(t, err)

	for _, email := range []string{"", "noatsign", "missing@tld", "spaces in@example.com"} {
		user, err := authService.SignUp(context.Background(), email, "password123")
		assert.ErrorIs(t, err, apperrors.ErrValidation, "email %q should be rejected", email)
		assert.Nil(t, user)
	}
	// No store call for an invalid email.
	mockUserRepo.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
}

func TestAuthService_SignUp_PasswordTooShort(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	authService, err := NewAuthService(mockUserRepo, newTestHasher(t))
	require.NoError(t, err)

	user, err := authService.SignUp(context.Background(), "new@example.com", "short")

	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Nil(t, user)
	mockUserRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_SignUp_DuplicateEmail(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	existing := &entity.User{ID: uuid.New(), Email: "existing@example.com"}
	mockUserRepo.On("GetByEmail", mock.Anything, "existing@example.com").Return(existing, nil)

	authService, err := NewAuthService(mockUserRepo, newTestHasher(t))
	require.NoError(t, err)

	user, err := authService.SignUp(context.Background(), "existing@example.com", "password123")

	assert.ErrorIs(t, err, repository.ErrEmailTaken)
	assert.Nil(t, user)
	mockUserRepo.AssertExpectations(t)
}

func TestAuthService_SignUp_RaceSurfacesAsEmailTaken(t *testing.T) {
	// The pre-check passes but a concurrent signup wins the constraint;
	// Create's rejection propagates unchanged.
	mockUserRepo := new(MockUserRepository)
	mockUserRepo.On("GetByEmail", mock.Anything, "race@example.com").Return(nil, apperrors.ErrNotFound)
	mockUserRepo.On("Create", mock.Anything, mock.AnythingOfType("*entity.User")).Return(repository.ErrEmailTaken)

	authService, err := NewAuthService(mockUserRepo, newTestHasher(t))
	require.NoError(t, err)

	user, err := authService.SignUp(context.Background(), "race@example.com", "password123")

	assert.ErrorIs(t, err, repository.ErrEmailTaken)
	assert.Nil(t, user)
	mockUserRepo.AssertExpectations(t)
}

func TestAuthService_Login_Success(t *testing.T) {
	hasher := newTestHasher(t)
	hash, err := hasher.Hash("correctPassword123")
	require.NoError(t, err)

	existing := &entity.User{
		ID:           uuid.New(),
		Email:        "test@example.com",
		PasswordHash: hash,
		AuthProvider: entity.ProviderLocal,
	}
	mockUserRepo := new(MockUserRepository)
	mockUserRepo.On("GetByEmail", mock.Anything, "test@example.com").Return(existing, nil)

	authService, err := NewAuthService(mockUserRepo, hasher)
	require.NoError(t, err)

	user, err := authService.Login(context.Background(), "Test@Example.com", "correctPassword123")

	require.NoError(t, err)
	assert.Equal(t, existing.ID, user.ID)
	mockUserRepo.AssertExpectations(t)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	mockUserRepo.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, apperrors.ErrNotFound)

	authService, err := NewAuthService(mockUserRepo, newTestHasher(t))
	require.NoError(t, err)

	user, err := authService.Login(context.Background(), "nobody@example.com", "whatever123")

	// The caller cannot tell an unknown email from a bad password.
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Nil(t, user)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	hasher := newTestHasher(t)
	hash, err := hasher.Hash("correctPassword123")
	require.NoError(t, err)

	existing := &entity.User{ID: uuid.New(), Email: "test@example.com", PasswordHash: hash}
	mockUserRepo := new(MockUserRepository)
	mockUserRepo.On("GetByEmail", mock.Anything, "test@example.com").Return(existing, nil)

	authService, err := NewAuthService(mockUserRepo, hasher)
	require.NoError(t, err)

	user, err := authService.Login(context.Background(), "test@example.com", "wrongPassword")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Nil(t, user)
}

func TestAuthService_Login_OAuthOnlyAccount(t *testing.T) {
	// An account created via a provider callback has no local credential;
	// password login fails with the same uniform error.
	googleID := "google-sub-123"
	existing := &entity.User{
		ID:           uuid.New(),
		Email:        "oauth@example.com",
		GoogleID:     &googleID,
		AuthProvider: entity.ProviderGoogle,
	}
	mockUserRepo := new(MockUserRepository)
	mockUserRepo.On("GetByEmail", mock.Anything, "oauth@example.com").Return(existing, nil)

	authService, err := NewAuthService(mockUserRepo, newTestHasher(t))
	require.NoError(t, err)

	user, err := authService.Login(context.Background(), "oauth@example.com", "anyPassword123")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Nil(t, user)
}

func TestAuthService_ChangePassword_Success(t *testing.T) {
	hasher := newTestHasher(t)
	hash, err := hasher.Hash("oldPassword123")
	require.NoError(t, err)

	userID := uuid.New()
	existing := &entity.User{ID: userID, Email: "test@example.com", PasswordHash: hash}
	mockUserRepo := new(MockUserRepository)
	mockUserRepo.On("GetByID", mock.Anything, userID).Return(existing, nil)
	mockUserRepo.On("UpdatePassword", mock.Anything, userID, "newPassword456").Return(nil)

	authService, err := NewAuthService(mockUserRepo, hasher)
	require.NoError(t, err)

	err = authService.ChangePassword(context.Background(), userID, "oldPassword123", "newPassword456")

	require.NoError(t, err)
	mockUserRepo.AssertExpectations(t)
}

func TestAuthService_ChangePassword_WrongOldPassword(t *testing.T) {
	hasher := newTestHasher(t)
	hash, err := hasher.Hash("oldPassword123")
	require.NoError(t, err)

	userID := uuid.New()
	existing := &entity.User{ID: userID, Email: "test@example.com", PasswordHash: hash}
	mockUserRepo := new(MockUserRepository)
	mockUserRepo.On("GetByID", mock.Anything, userID).Return(existing, nil)

	authService, err := NewAuthService(mockUserRepo, hasher)
	require.NoError(t, err)

	err = authService.ChangePassword(context.Background(), userID, "notTheOldOne", "newPassword456")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
	mockUserRepo.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthService_ChangePassword_FirstPasswordForOAuthAccount(t *testing.T) {
	// OAuth-only accounts have no credential to verify; the empty old
	// password is accepted once.
	userID := uuid.New()
	discordID := "discord-42"
	existing := &entity.User{
		ID:           userID,
		Email:        "oauth@example.com",
		DiscordID:    &discordID,
		AuthProvider: entity.ProviderDiscord,
	}
	mockUserRepo := new(MockUserRepository)
	mockUserRepo.On("GetByID", mock.Anything, userID).Return(existing, nil)
	mockUserRepo.On("UpdatePassword", mock.Anything, userID, "firstPassword123").Return(nil)

	authService, err := NewAuthService(mockUserRepo, newTestHasher(t))
	require.NoError(t, err)

	err = authService.ChangePassword(context.Background(), userID, "", "firstPassword123")

	require.NoError(t, err)
	mockUserRepo.AssertExpectations(t)
}

func TestAuthService_ChangePassword_NewPasswordTooShort(t *testing.T) {
	mockUserRepo := new(MockUserRepository)
	authService, err := NewAuthService(mockUserRepo, newTestHasher(t))
	require.NoError(t, err)

	err = authService.ChangePassword(context.Background(), uuid.New(), "oldPassword123", "short")

	assert.ErrorIs(t, err, apperrors.ErrValidation)
	mockUserRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}
