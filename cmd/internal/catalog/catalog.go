// Package catalog persists the deal listings served by the API. It is a
// consumer of the auth core, not part of it.
package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a deal id resolves to nothing.
	ErrNotFound = errors.New("deal not found")
)

// Deal mirrors the deals table row.
type Deal struct {
	UUID        uuid.UUID `json:"uuid"`
	Name        string    `json:"name"`
	Image       string    `json:"image"`
	Price       int32     `json:"price"`
	Description string    `json:"description"`
}

// Page bounds a listing query. Zero values fall back to defaults.
type Page struct {
	Limit  int64
	Offset int64
}

const (
	defaultLimit = 10
	maxLimit     = 100
)

// Clamp applies defaults and bounds.
func (p Page) Clamp() Page {
	if p.Limit <= 0 {
		p.Limit = defaultLimit
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// Store abstracts deal persistence.
type Store interface {
	// GetByID loads a deal, or ErrNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (Deal, error)

	// List returns a page of deals in insertion order.
	List(ctx context.Context, page Page) ([]Deal, error)

	// Create inserts a new deal and returns it with its assigned id.
	Create(ctx context.Context, d Deal) (Deal, error)
}
