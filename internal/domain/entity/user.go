package entity

import (
	"time"

	"github.com/google/uuid"
)

// AuthProvider identifies which flow created an account or supplied an
// external identity. The set is closed: local password plus the two
// supported OAuth providers.
type AuthProvider string

const (
	ProviderLocal   AuthProvider = "local"
	ProviderGoogle  AuthProvider = "google"
	ProviderDiscord AuthProvider = "discord"
)

// Valid reports whether p names a supported OAuth provider.
// ProviderLocal is not an OAuth provider and is excluded on purpose.
func (p AuthProvider) Valid() bool {
	return p == ProviderGoogle || p == ProviderDiscord
}

// IDColumn returns the users table column holding this provider's external
// ID, or "" for local. Repositories use it to parameterize provider lookups
// instead of duplicating a query per provider.
func (p AuthProvider) IDColumn() string {
	switch p {
	case ProviderGoogle:
		return "google_id"
	case ProviderDiscord:
		return "discord_id"
	default:
		return ""
	}
}

// User represents an account. A user created via OAuth has no password hash;
// a local user has no provider IDs until one is linked. Both may accumulate
// over the account's lifetime.
type User struct {
	ID           uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string       `gorm:"size:100;not null;uniqueIndex" json:"email"`
	PasswordHash string       `gorm:"size:100;not null;default:''" json:"-"`
	GoogleID     *string      `gorm:"size:255;uniqueIndex" json:"google_id,omitempty"`
	DiscordID    *string      `gorm:"size:255;uniqueIndex" json:"discord_id,omitempty"`
	AuthProvider AuthProvider `gorm:"size:20;not null;default:'local'" json:"auth_provider"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName sets the GORM table name.
func (User) TableName() string {
	return "users"
}

// HasPassword reports whether the user ever set a local password.
// OAuth-only accounts return false and cannot log in with email/password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// ProviderID returns the external ID linked for the given provider, if any.
func (u *User) ProviderID(p AuthProvider) *string {
	switch p {
	case ProviderGoogle:
		return u.GoogleID
	case ProviderDiscord:
		return u.DiscordID
	default:
		return nil
	}
}

// SetProviderID links an external ID for the given provider on the struct.
// Persistence goes through UserRepository.UpdateProviderID.
func (u *User) SetProviderID(p AuthProvider, id string) {
	switch p {
	case ProviderGoogle:
		u.GoogleID = &id
	case ProviderDiscord:
		u.DiscordID = &id
	}
}
