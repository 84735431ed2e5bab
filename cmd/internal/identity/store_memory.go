package identity

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"commerce/cmd/security/secrets"
)

// MemoryStore is an in-memory Store for tests and DB-less development.
// Passwords are compared in plaintext; production hashing lives in Postgres
// and is out of reach here.
type MemoryStore struct {
	defaultRole uuid.UUID

	mu       sync.Mutex
	byEmail  map[string]User
	byID     map[uuid.UUID]User
	password map[uuid.UUID]string
}

// NewMemoryStore constructs an in-memory user store.
func NewMemoryStore(defaultRole uuid.UUID) *MemoryStore {
	return &MemoryStore{
		defaultRole: defaultRole,
		byEmail:     make(map[string]User),
		byID:        make(map[uuid.UUID]User),
		password:    make(map[uuid.UUID]string),
	}
}

// Authenticate resolves an email/password pair to a user.
func (s *MemoryStore) Authenticate(ctx context.Context, email, password string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byEmail[email]
	if !ok || s.password[u.UUID] != password {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

// Create registers a new user.
func (s *MemoryStore) Create(ctx context.Context, email, password string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	secret, err := secrets.NewSigningSecret()
	if err != nil {
		return User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[email]; ok {
		return User{}, ErrEmailTaken
	}

	u := User{
		UUID:   uuid.New(),
		Email:  email,
		Role:   s.defaultRole,
		Secret: secret,
	}
	s.byEmail[email] = u
	s.byID[u.UUID] = u
	s.password[u.UUID] = password
	return u, nil
}

// GetByID loads a user by uuid.
func (s *MemoryStore) GetByID(ctx context.Context, id uuid.UUID) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}
