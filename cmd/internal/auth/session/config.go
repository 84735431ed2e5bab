package session

import (
	"net/http"
	"time"
)

const (
	// DefaultTTL is the expiry horizon applied when a session carries no
	// explicit expiry of its own.
	DefaultTTL = 8 * time.Hour

	// CookieName is the session cookie issued to clients.
	CookieName = "sid"

	// CookieTTL is the client-side lifetime of the session cookie. It is
	// deliberately shorter than DefaultTTL; the row's expires_at is
	// authoritative.
	CookieTTL = time.Hour
)

// Config defines runtime configuration for the session store.
type Config struct {
	// Secret keys the cookie-value -> session-id derivation.
	Secret []byte

	// TTL is the default expiry horizon for stored sessions.
	TTL time.Duration

	// Cookie attributes.
	CookieDomain   string
	CookieSecure   bool
	CookieSameSite http.SameSite
}

// DefaultConfig returns cookie and expiry defaults; the secret must be
// supplied by the caller.
func DefaultConfig(secret []byte) Config {
	return Config{
		Secret:         secret,
		TTL:            DefaultTTL,
		CookieSecure:   true,
		CookieSameSite: http.SameSiteStrictMode,
	}
}

// Validate reports whether the config is usable.
func (c Config) Validate() error {
	if len(c.Secret) == 0 {
		return ErrConfig
	}
	if c.TTL <= 0 {
		return ErrConfig
	}
	return nil
}
