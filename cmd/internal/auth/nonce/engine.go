package nonce

import (
	"context"
	"time"
)

// Store abstracts nonce persistence.
//
// Upsert must replace any existing nonce for the session id and must
// guarantee the referenced session row exists before the nonce row is
// written, inside the same atomic unit. Take must read-and-delete atomically:
// under concurrent takes for one session id, exactly one caller gets the row.
type Store interface {
	Upsert(ctx context.Context, n Nonce) error
	Take(ctx context.Context, sessionID string) (*Nonce, error)
}

// Issued is the result of issuing a nonce. The Tag is what the client echoes
// back at sign-in; the raw value and key never leave the server together.
type Issued struct {
	Nonce Nonce
	Tag   string
}

// Engine issues, consumes, and validates nonces.
type Engine struct {
	store  Store
	secret []byte

	// now is swappable in tests.
	now func() time.Time
}

// NewEngine constructs an Engine over a store and the deployment secret.
func NewEngine(store Store, deploymentSecret []byte) (*Engine, error) {
	if store == nil || len(deploymentSecret) == 0 {
		return nil, ErrConfig
	}
	return &Engine{
		store:  store,
		secret: deploymentSecret,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

// Issue creates a fresh nonce for the session, replacing any prior one, and
// returns the plaintext value plus its tag.
func (e *Engine) Issue(ctx context.Context, sessionID string) (Issued, error) {
	if sessionID == "" {
		return Issued{}, ErrNoSession
	}

	n, err := New(sessionID, e.now())
	if err != nil {
		return Issued{}, err
	}
	if err := e.store.Upsert(ctx, n); err != nil {
		return Issued{}, err
	}

	tag, err := n.Tag(e.secret)
	if err != nil {
		return Issued{}, err
	}
	return Issued{Nonce: n, Tag: tag}, nil
}

// Take consumes the session's nonce. A second take for the same id returns
// nil regardless of whether the first caller's validation succeeded.
func (e *Engine) Take(ctx context.Context, sessionID string) (*Nonce, error) {
	if sessionID == "" {
		return nil, ErrNoSession
	}
	return e.store.Take(ctx, sessionID)
}

// Validate checks a taken nonce against the supplied tag. A nil nonce (the
// already-consumed case) is simply invalid.
func (e *Engine) Validate(n *Nonce, suppliedTag string) bool {
	if n == nil {
		return false
	}
	return n.Verify(e.secret, suppliedTag, e.now())
}
