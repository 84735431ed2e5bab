package session

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store using PostgreSQL (sessions).
type PostgresStore struct {
	pool *pgxpool.Pool
	cfg  Config
}

// NewPostgresStore creates a Postgres-backed session store.
func NewPostgresStore(pool *pgxpool.Pool, cfg Config) (*PostgresStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &PostgresStore{pool: pool, cfg: cfg}, nil
}

// Load resolves a cookie value inside a read-only transaction. Rows that are
// absent, past expiry, or carry an unparseable blob are a miss, not an error.
func (s *PostgresStore) Load(ctx context.Context, cookieValue string) (*Session, error) {
	if cookieValue == "" {
		return nil, nil
	}
	sess := FromCookieValue(s.cfg.Secret, cookieValue)

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var row Row
	err = tx.QueryRow(ctx, `
		SELECT
			id, session_data, expires_at,
			user_agent, last_activity, ip, user_id
		FROM sessions
		WHERE id = $1
		  AND expires_at >= $2
	`, sess.id, time.Now().UTC()).Scan(
		&row.ID,
		&row.SessionData,
		&row.ExpiresAt,
		&row.UserAgent,
		&row.LastActivity,
		&row.IP,
		&row.UserID,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return sessionFromRow(sess, row)
}

// Save upserts the session in a single read-write transaction. Existing rows
// only ever change session_data and last_activity; client metadata and the
// user_id reference are written on first insert.
func (s *PostgresStore) Save(ctx context.Context, sess *Session) (string, error) {
	if sess == nil || sess.id == "" {
		return "", ErrNoSession
	}

	now := time.Now().UTC()
	expires := sess.Expiry
	if expires.IsZero() {
		expires = now.Add(s.cfg.TTL)
	}

	blob, err := encodeState(sess.State)
	if err != nil {
		return "", err
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadWrite})
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO sessions (
			id, session_data, expires_at,
			user_agent, last_activity, ip, user_id
		) VALUES (
			$1, $2, $3,
			$4, $5, $6, $7
		)
		ON CONFLICT (id) DO UPDATE SET
			session_data = EXCLUDED.session_data,
			last_activity = EXCLUDED.last_activity
	`, sess.id, blob, expires,
		nullIfEmpty(sess.UserAgent), now, nullIfEmpty(sess.IP), sess.State.UserID)
	if err != nil {
		return "", err
	}
	if err := tx.Commit(ctx); err != nil {
		return "", err
	}

	return sess.cookieValue, nil
}

// Destroy deletes the session row (idempotent).
func (s *PostgresStore) Destroy(ctx context.Context, sess *Session) error {
	if sess == nil || sess.id == "" {
		return nil
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadWrite})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, sess.id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ClearAll deletes every session row.
func (s *PostgresStore) ClearAll(ctx context.Context) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadWrite})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM sessions`); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// EnsureExists inserts a bare row if absent. Insert-or-ignore semantics mean a
// concurrent Save for the same id never conflicts.
func (s *PostgresStore) EnsureExists(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrNoSession
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadWrite})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := ensureExistsTx(ctx, tx, sessionID, s.cfg.TTL); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ensureExistsTx is the guarantor body, shared with callers that fold the
// guarantee into a larger transaction (nonce issuance).
func ensureExistsTx(ctx context.Context, tx pgx.Tx, sessionID string, ttl time.Duration) error {
	now := time.Now().UTC()
	_, err := tx.Exec(ctx, `
		INSERT INTO sessions (id, session_data, expires_at, last_activity)
		VALUES ($1, NULL, $2, $3)
		ON CONFLICT (id) DO NOTHING
	`, sessionID, now.Add(ttl), now)
	return err
}

// EnsureExistsTx exposes the guarantor for composition into an external
// read-write transaction.
func (s *PostgresStore) EnsureExistsTx(ctx context.Context, tx pgx.Tx, sessionID string) error {
	if sessionID == "" {
		return ErrNoSession
	}
	return ensureExistsTx(ctx, tx, sessionID, s.cfg.TTL)
}

func sessionFromRow(sess *Session, row Row) (*Session, error) {
	if row.SessionData != nil {
		state, ok := decodeState(*row.SessionData)
		if !ok {
			return nil, nil
		}
		sess.State = state
	}
	sess.Expiry = row.ExpiresAt
	if row.UserAgent != nil {
		sess.UserAgent = *row.UserAgent
	}
	if row.IP != nil {
		sess.IP = *row.IP
	}
	return sess, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
