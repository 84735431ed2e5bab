package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"commerce/cmd/security/secrets"
)

// uniqueViolation is the Postgres error code for unique constraint failures.
const uniqueViolation = "23505"

// PostgresStore implements Store using PostgreSQL (users).
type PostgresStore struct {
	pool *pgxpool.Pool

	// defaultRole is assigned to every new account.
	defaultRole uuid.UUID
}

// NewPostgresStore creates a Postgres-backed user store.
func NewPostgresStore(pool *pgxpool.Pool, defaultRole uuid.UUID) *PostgresStore {
	return &PostgresStore{pool: pool, defaultRole: defaultRole}
}

// Authenticate matches email and password in a read-only transaction. The
// password comparison happens inside Postgres via pgcrypto's crypt().
func (s *PostgresStore) Authenticate(ctx context.Context, email, password string) (User, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return User{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var u User
	err = tx.QueryRow(ctx, `
		SELECT uuid, email, role, secret
		FROM users
		WHERE email = $1
		  AND password = crypt($2, password)
	`, email, password).Scan(&u.UUID, &u.Email, &u.Role, &u.Secret)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return User{}, err
	}
	return u, nil
}

// Create inserts a new user. The password is hashed in SQL with a blowfish
// salt; a per-user issuance secret is minted alongside.
func (s *PostgresStore) Create(ctx context.Context, email, password string) (User, error) {
	secret, err := secrets.NewSigningSecret()
	if err != nil {
		return User{}, err
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadWrite})
	if err != nil {
		return User{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	u := User{
		UUID:   uuid.New(),
		Email:  email,
		Role:   s.defaultRole,
		Secret: secret,
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO users (uuid, email, password, role, secret)
		VALUES ($1, $2, crypt($3, gen_salt('bf')), $4, $5)
	`, u.UUID, u.Email, password, u.Role, u.Secret)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return User{}, ErrEmailTaken
		}
		return User{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return User{}, err
	}
	return u, nil
}

// GetByID loads a user by uuid.
func (s *PostgresStore) GetByID(ctx context.Context, id uuid.UUID) (User, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return User{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var u User
	err = tx.QueryRow(ctx, `
		SELECT uuid, email, role, secret
		FROM users
		WHERE uuid = $1
	`, id).Scan(&u.UUID, &u.Email, &u.Role, &u.Secret)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return User{}, err
	}
	return u, nil
}
