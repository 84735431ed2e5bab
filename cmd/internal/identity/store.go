package identity

import (
	"context"

	"github.com/google/uuid"
)

// User mirrors the users table row, minus the password column: credential
// material never leaves the store.
type User struct {
	UUID  uuid.UUID
	Email string
	Role  uuid.UUID
	// Secret is the per-user issuance secret minted at account creation
	// (defense-in-depth capability; the primary sign-in flow signs with the
	// process-wide secret).
	Secret string
}

// Store abstracts user persistence.
type Store interface {
	// Authenticate resolves an email/password pair to a user, or
	// ErrInvalidCredentials.
	Authenticate(ctx context.Context, email, password string) (User, error)

	// Create registers a new user with the default role and a fresh
	// per-user secret. ErrEmailTaken on duplicate email.
	Create(ctx context.Context, email, password string) (User, error)

	// GetByID loads a user by uuid, or ErrNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
}
