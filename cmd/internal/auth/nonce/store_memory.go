package nonce

import (
	"context"
	"sync"
)

// SessionGuarantor is the slice of the session store the memory nonce store
// needs: the pre-insert that keeps referential integrity intact.
type SessionGuarantor interface {
	EnsureExists(ctx context.Context, sessionID string) error
}

// MemoryStore is an in-memory Store for tests and DB-less development.
type MemoryStore struct {
	sessions SessionGuarantor

	mu   sync.Mutex
	rows map[string]Nonce
}

// NewMemoryStore constructs an in-memory nonce store.
func NewMemoryStore(sessions SessionGuarantor) *MemoryStore {
	return &MemoryStore{
		sessions: sessions,
		rows:     make(map[string]Nonce),
	}
}

// Upsert guarantees the session exists, then replaces the session's nonce.
func (s *MemoryStore) Upsert(ctx context.Context, n Nonce) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.sessions.EnsureExists(ctx, n.SessionID); err != nil {
		return err
	}

	s.mu.Lock()
	s.rows[n.SessionID] = n
	s.mu.Unlock()
	return nil
}

// Take reads and deletes under one lock, so concurrent takes for the same
// session id yield exactly one hit.
func (s *MemoryStore) Take(ctx context.Context, sessionID string) (*Nonce, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.rows[sessionID]
	if !ok {
		return nil, nil
	}
	delete(s.rows, sessionID)
	return &n, nil
}
