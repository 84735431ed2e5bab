package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store for tests and DB-less development. It
// mirrors the Postgres semantics, including upsert behavior and the
// load-time expiry filter.
type MemoryStore struct {
	cfg Config

	mu   sync.Mutex
	rows map[string]Row

	// now is swappable in tests.
	now func() time.Time
}

// NewMemoryStore constructs an in-memory session store.
func NewMemoryStore(cfg Config) (*MemoryStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &MemoryStore{
		cfg:  cfg,
		rows: make(map[string]Row),
		now:  func() time.Time { return time.Now().UTC() },
	}, nil
}

// Load resolves a cookie value to its live session, or nil.
func (s *MemoryStore) Load(ctx context.Context, cookieValue string) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if cookieValue == "" {
		return nil, nil
	}
	sess := FromCookieValue(s.cfg.Secret, cookieValue)

	s.mu.Lock()
	row, ok := s.rows[sess.id]
	s.mu.Unlock()

	if !ok || row.ExpiresAt.Before(s.now()) {
		return nil, nil
	}

	return sessionFromRow(sess, row)
}

// Save upserts the session and returns the cookie value.
func (s *MemoryStore) Save(ctx context.Context, sess *Session) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if sess == nil || sess.id == "" {
		return "", ErrNoSession
	}

	now := s.now()
	expires := sess.Expiry
	if expires.IsZero() {
		expires = now.Add(s.cfg.TTL)
	}

	blob, err := encodeState(sess.State)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[sess.id]
	if !ok {
		row = Row{
			ID:        sess.id,
			ExpiresAt: expires,
			UserAgent: ptrIfNotEmpty(sess.UserAgent),
			IP:        ptrIfNotEmpty(sess.IP),
			UserID:    sess.State.UserID,
		}
	}
	row.SessionData = &blob
	row.LastActivity = now
	s.rows[sess.id] = row

	return sess.cookieValue, nil
}

// Destroy deletes the session row (idempotent).
func (s *MemoryStore) Destroy(ctx context.Context, sess *Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if sess == nil || sess.id == "" {
		return nil
	}

	s.mu.Lock()
	delete(s.rows, sess.id)
	s.mu.Unlock()
	return nil
}

// ClearAll deletes every session row.
func (s *MemoryStore) ClearAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.rows = make(map[string]Row)
	s.mu.Unlock()
	return nil
}

// EnsureExists inserts a bare row if absent.
func (s *MemoryStore) EnsureExists(ctx context.Context, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if sessionID == "" {
		return ErrNoSession
	}

	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rows[sessionID]; ok {
		return nil
	}
	s.rows[sessionID] = Row{
		ID:           sessionID,
		ExpiresAt:    now.Add(s.cfg.TTL),
		LastActivity: now,
	}
	return nil
}

// Len reports the number of stored rows. Test helper.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

func ptrIfNotEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
