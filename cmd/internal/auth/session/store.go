package session

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Row mirrors the sessions table row used by the session subsystem.
type Row struct {
	ID           string
	SessionData  *string
	ExpiresAt    time.Time
	UserAgent    *string
	LastActivity time.Time
	IP           *string
	UserID       *uuid.UUID
}

// Session is the in-memory representation handed to callers. The id is
// derived from the cookie value and is the only part that touches the
// database key space.
type Session struct {
	id          string
	cookieValue string

	// State is the versioned session payload.
	State State

	// Expiry, when non-zero, overrides the store's default horizon on save.
	Expiry time.Time

	// Client metadata, persisted on first insert only.
	UserAgent string
	IP        string
}

// New creates a fresh session with a new cookie value.
func New(secret []byte) (*Session, error) {
	v, err := NewCookieValue()
	if err != nil {
		return nil, err
	}
	return FromCookieValue(secret, v), nil
}

// FromCookieValue rebuilds the session identity for a client-presented cookie
// value without touching the store.
func FromCookieValue(secret []byte, cookieValue string) *Session {
	return &Session{
		id:          DeriveID(secret, cookieValue),
		cookieValue: cookieValue,
	}
}

// ID returns the derived session id (the database key).
func (s *Session) ID() string { return s.id }

// CookieValue returns the opaque value the client holds.
func (s *Session) CookieValue() string { return s.cookieValue }

// Store is the load/store/destroy/clear contract the session middleware
// requires, plus the existence guarantor.
//
// Absence is a normal outcome: Load returns (nil, nil) for a missing,
// expired, or unparseable session, and Destroy of an absent row is not an
// error.
type Store interface {
	// Load resolves a cookie value to its live session, or nil.
	Load(ctx context.Context, cookieValue string) (*Session, error)

	// Save upserts the session and returns the cookie value to hand back.
	// Only session_data and last_activity change on existing rows.
	Save(ctx context.Context, s *Session) (string, error)

	// Destroy deletes the session row. Idempotent.
	Destroy(ctx context.Context, s *Session) error

	// ClearAll deletes every session row. Administrative/test use only.
	ClearAll(ctx context.Context) error

	// EnsureExists inserts a bare row for sessionID if absent. Safe under
	// concurrent callers and concurrent Save for the same id.
	EnsureExists(ctx context.Context, sessionID string) error
}
