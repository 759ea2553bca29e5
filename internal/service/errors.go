package service

import "errors"

// Auth flow errors used by handlers for stable status mapping.
var (
	// ErrInvalidCredentials is the single externally visible login failure.
	// Unknown email, an OAuth-only account with no password, and a wrong
	// password all collapse into it so nothing about account existence or
	// auth method leaks.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrMissingEmail is returned when an OAuth profile matches no existing
	// identity and carries no email to create one with.
	ErrMissingEmail = errors.New("no email provided by oauth provider")

	// ErrInvalidOAuthState is returned when a callback's state parameter is
	// unknown, reused or expired.
	ErrInvalidOAuthState = errors.New("invalid or expired oauth state")
)
