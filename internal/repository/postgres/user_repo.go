package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/yourusername/reviewbot-api/internal/domain/entity"
	"github.com/yourusername/reviewbot-api/internal/domain/repository"
	apperrors "github.com/yourusername/reviewbot-api/internal/pkg/errors"
	"github.com/yourusername/reviewbot-api/pkg/auth"
)

// uniqueViolation is the SQLSTATE for unique-constraint violations.
const uniqueViolation = "23505"

// UserRepo implements repository.UserRepository. Credential hashing is an
// explicit step of this repository's write path: a non-empty plaintext
// password is hashed before the row is written, an already-hashed value is
// written as-is, and OAuth-only writes (empty password) never touch the
// hasher at all.
type UserRepo struct {
	db     *gorm.DB
	hasher *auth.PasswordHasher
}

// NewUserRepo creates a user repository with the hasher wired into the
// write path.
func NewUserRepo(db *gorm.DB, hasher *auth.PasswordHasher) (*UserRepo, error) {
	if db == nil {
		return nil, fmt.Errorf("gorm DB is required for UserRepo")
	}
	if hasher == nil {
		return nil, fmt.Errorf("PasswordHasher is required for UserRepo")
	}
	return &UserRepo{db: db, hasher: hasher}, nil
}

// ensureHashed returns the bcrypt form of a credential. Empty values
// (OAuth-only identities) and values that are already hashes pass through
// untouched, so writing the same value twice never double-hashes.
func (r *UserRepo) ensureHashed(credential string) (string, error) {
	if credential == "" || auth.IsHash(credential) {
		return credential, nil
	}
	return r.hasher.Hash(credential)
}

// hashCredential routes a user's PasswordHash field through ensureHashed.
func (r *UserRepo) hashCredential(user *entity.User) error {
	hashed, err := r.ensureHashed(user.PasswordHash)
	if err != nil {
		return err
	}
	user.PasswordHash = hashed
	return nil
}

// Create inserts a new user. The ID is generated here if the caller did not
// set one. Unique-constraint rejections from the database are translated to
// ErrEmailTaken / ErrProviderIDTaken.
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if err := r.hashCredential(user); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return translateUniqueViolation(err)
	}
	return nil
}

// GetByID returns the user with the given ID.
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByEmail returns the user with the given email. Callers normalize the
// email before lookup; comparison here is exact.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByProviderID returns the user holding the given external provider ID.
// The column is selected by the closed provider enum, never by caller input.
func (r *UserRepo) GetByProviderID(ctx context.Context, provider entity.AuthProvider, providerID string) (*entity.User, error) {
	column := provider.IDColumn()
	if column == "" {
		return nil, fmt.Errorf("%w: unknown auth provider %q", apperrors.ErrValidation, provider)
	}
	var user entity.User
	err := r.db.WithContext(ctx).Where(column+" = ?", providerID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UpdatePassword hashes the new credential and writes it with a direct
// UPDATE, bypassing struct-level save semantics so no other column moves.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, newPassword string) error {
	hashed, err := r.ensureHashed(newPassword)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Exec(
		"UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?",
		hashed, time.Now(), id,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdateProviderID links an external provider ID to an existing user.
// A unique-constraint rejection means the provider ID is already linked to
// another account.
func (r *UserRepo) UpdateProviderID(ctx context.Context, id uuid.UUID, provider entity.AuthProvider, providerID string) error {
	column := provider.IDColumn()
	if column == "" {
		return fmt.Errorf("%w: unknown auth provider %q", apperrors.ErrValidation, provider)
	}
	result := r.db.WithContext(ctx).Model(&entity.User{}).
		Where("id = ?", id).
		Update(column, providerID)
	if result.Error != nil {
		return translateUniqueViolation(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Delete removes a user. Videos cascade at the database level.
func (r *UserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&entity.User{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// List returns users with pagination. password_hash is excluded from the
// projection at the query level, not just at serialization time.
func (r *UserRepo) List(ctx context.Context, limit, offset int) ([]entity.User, error) {
	var users []entity.User
	err := r.db.WithContext(ctx).
		Select("id", "email", "google_id", "discord_id", "auth_provider", "created_at", "updated_at").
		Limit(limit).Offset(offset).Order("created_at").
		Find(&users).Error
	return users, err
}

// translateUniqueViolation maps SQLSTATE 23505 rejections to the typed
// conflict errors the services act on. The constraint name tells email and
// provider conflicts apart.
func translateUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return err
	}
	switch {
	case strings.Contains(pgErr.ConstraintName, "email"):
		return repository.ErrEmailTaken
	case strings.Contains(pgErr.ConstraintName, "google_id"), strings.Contains(pgErr.ConstraintName, "discord_id"):
		return repository.ErrProviderIDTaken
	default:
		return fmt.Errorf("%w: %s", apperrors.ErrConflict, pgErr.ConstraintName)
	}
}
