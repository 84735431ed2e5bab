package secrets

import (
	"crypto/rand"
	"encoding/base64"
	"os"
	"strings"
)

const (
	// SessionEnvKey is the env var name for the session-signing secret.
	// #nosec G101 -- not a credential; it's an environment variable name.
	SessionEnvKey = "COMMERCE_SESSION_SECRET"
	// NonceEnvKey is the env var name for the nonce deployment secret.
	// #nosec G101
	NonceEnvKey = "COMMERCE_NONCE_SECRET"
	// JWTEnvKey is the env var name for the base64 token-signing secret.
	// #nosec G101
	JWTEnvKey = "COMMERCE_JWT_SECRET"

	// MinSecretBytes is the minimum accepted length for any secret.
	MinSecretBytes = 32
)

// Secrets holds the three process-wide secrets. The JWT secret is kept in its
// base64 form; the token issuer decodes it itself so that per-user secrets
// (which are stored base64-encoded) go through the same path.
type Secrets struct {
	Session []byte
	Nonce   []byte
	JWT     string
}

// FromEnv loads all three secrets, enforcing presence and minimum length.
func FromEnv() (Secrets, error) {
	session := strings.TrimSpace(os.Getenv(SessionEnvKey))
	if session == "" {
		return Secrets{}, ErrSessionSecretMissing
	}
	if len(session) < MinSecretBytes {
		return Secrets{}, ErrSecretTooShort
	}

	nonce := strings.TrimSpace(os.Getenv(NonceEnvKey))
	if nonce == "" {
		return Secrets{}, ErrNonceSecretMissing
	}
	if len(nonce) < MinSecretBytes {
		return Secrets{}, ErrSecretTooShort
	}

	jwtSecret := strings.TrimSpace(os.Getenv(JWTEnvKey))
	if jwtSecret == "" {
		return Secrets{}, ErrJWTSecretMissing
	}
	raw, err := DecodeSigningKey(jwtSecret)
	if err != nil {
		return Secrets{}, err
	}
	if len(raw) < MinSecretBytes {
		return Secrets{}, ErrSecretTooShort
	}

	return Secrets{
		Session: []byte(session),
		Nonce:   []byte(nonce),
		JWT:     jwtSecret,
	}, nil
}

// DecodeSigningKey decodes a base64 signing secret, accepting both standard
// and URL-safe alphabets with or without padding.
func DecodeSigningKey(secret string) ([]byte, error) {
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	} {
		if raw, err := enc.DecodeString(secret); err == nil {
			return raw, nil
		}
	}
	return nil, ErrJWTSecretEncoding
}

// NewSigningSecret returns a fresh high-entropy signing secret, base64url
// encoded without padding. Used to mint per-user issuance secrets at account
// creation.
func NewSigningSecret() (string, error) {
	b := make([]byte, 256)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
