package repository

import "errors"

// Constraint-layer errors surfaced by the identity store. Creation and
// linking never check-then-act on uniqueness; the database rejects the
// second writer and the repository translates the rejection into one of
// these.
var (
	ErrEmailTaken      = errors.New("email already in use")
	ErrProviderIDTaken = errors.New("provider identity already linked to another account")
)
