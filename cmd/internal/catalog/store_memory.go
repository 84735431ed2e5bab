package catalog

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store for tests and DB-less development.
type MemoryStore struct {
	mu    sync.Mutex
	order []uuid.UUID
	deals map[uuid.UUID]Deal
}

// NewMemoryStore constructs an in-memory catalog store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{deals: make(map[uuid.UUID]Deal)}
}

// GetByID loads a deal, or ErrNotFound.
func (s *MemoryStore) GetByID(ctx context.Context, id uuid.UUID) (Deal, error) {
	if err := ctx.Err(); err != nil {
		return Deal{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.deals[id]
	if !ok {
		return Deal{}, ErrNotFound
	}
	return d, nil
}

// List returns a page of deals in insertion order.
func (s *MemoryStore) List(ctx context.Context, page Page) ([]Deal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	page = page.Clamp()

	s.mu.Lock()
	defer s.mu.Unlock()

	if page.Offset >= int64(len(s.order)) {
		return []Deal{}, nil
	}
	end := page.Offset + page.Limit
	if end > int64(len(s.order)) {
		end = int64(len(s.order))
	}

	deals := make([]Deal, 0, end-page.Offset)
	for _, id := range s.order[page.Offset:end] {
		deals = append(deals, s.deals[id])
	}
	return deals, nil
}

// Create inserts a new deal.
func (s *MemoryStore) Create(ctx context.Context, d Deal) (Deal, error) {
	if err := ctx.Err(); err != nil {
		return Deal{}, err
	}
	d.UUID = uuid.New()

	s.mu.Lock()
	s.order = append(s.order, d.UUID)
	s.deals[d.UUID] = d
	s.mu.Unlock()
	return d, nil
}
