package errors

import "errors"

// Shared application errors. Services wrap these with fmt.Errorf("%w: ...")
// and handlers classify them with errors.Is to pick a status code.
var (
	// ErrNotFound is returned when a record or resource does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized is returned for authentication failures (no session, bad credentials).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when the user lacks permission for the action.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation is returned for malformed or rejected input.
	ErrValidation = errors.New("validation failed")

	// ErrConflict is returned for state conflicts, primarily unique-constraint violations.
	ErrConflict = errors.New("resource state conflict")
)
