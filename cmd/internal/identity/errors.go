package identity

import "errors"

var (
	// ErrNotFound is returned when a user id resolves to nothing.
	ErrNotFound = errors.New("user not found")

	// ErrInvalidCredentials is returned when an email/password pair does
	// not match. Indistinguishable from an unknown email by design.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmailTaken is returned when signup hits the unique email
	// constraint.
	ErrEmailTaken = errors.New("email already registered")
)
