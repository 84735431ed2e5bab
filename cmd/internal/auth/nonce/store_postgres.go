package nonce

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"commerce/cmd/internal/auth/session"
)

// PostgresStore implements Store using PostgreSQL (nonces).
type PostgresStore struct {
	pool     *pgxpool.Pool
	sessions *session.PostgresStore
}

// NewPostgresStore creates a Postgres-backed nonce store. The session store
// is needed to fold the existence guarantee into the issuance transaction.
func NewPostgresStore(pool *pgxpool.Pool, sessions *session.PostgresStore) *PostgresStore {
	return &PostgresStore{pool: pool, sessions: sessions}
}

// Upsert writes the nonce in one read-write transaction that first guarantees
// the session row exists. The prior nonce for the session, if any, is
// replaced wholesale.
func (s *PostgresStore) Upsert(ctx context.Context, n Nonce) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadWrite})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := s.sessions.EnsureExistsTx(ctx, tx, n.SessionID); err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO nonces (session_id, nonce, key, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (session_id) DO UPDATE SET
			nonce = EXCLUDED.nonce,
			key = EXCLUDED.key,
			created_at = EXCLUDED.created_at
	`, n.SessionID, n.Value, n.Key, n.CreatedAt)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Take atomically reads and deletes the nonce for a session id. DELETE ...
// RETURNING serializes concurrent takes: one caller sees the row, the rest
// see absence.
func (s *PostgresStore) Take(ctx context.Context, sessionID string) (*Nonce, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadWrite})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var n Nonce
	err = tx.QueryRow(ctx, `
		DELETE FROM nonces
		WHERE session_id = $1
		RETURNING session_id, nonce, key, created_at
	`, sessionID).Scan(&n.SessionID, &n.Value, &n.Key, &n.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, tx.Commit(ctx)
	}
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &n, nil
}
