package nonce

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha512"
	"encoding/base64"
	"strconv"
	"time"
)

const (
	// TTL is the fixed validity window of a nonce. It does not extend.
	TTL = 5 * time.Minute

	// valueBytes is the entropy of the nonce value.
	valueBytes = 32
	// keyBytes is the entropy of the per-nonce HMAC key (SHA-384 strength).
	keyBytes = 48
)

// Nonce is one live nonce row, bound to a session id.
type Nonce struct {
	SessionID string
	// Value is the random nonce, base64url no-pad.
	Value string
	// Key is the per-nonce HMAC key material, base64url no-pad. Never sent
	// to the client.
	Key string
	// CreatedAt is epoch seconds.
	CreatedAt int64
}

// New generates a fresh nonce for a session id.
func New(sessionID string, now time.Time) (Nonce, error) {
	value, err := randomString(valueBytes)
	if err != nil {
		return Nonce{}, err
	}
	key, err := randomString(keyBytes)
	if err != nil {
		return Nonce{}, err
	}
	return Nonce{
		SessionID: sessionID,
		Value:     value,
		Key:       key,
		CreatedAt: now.Unix(),
	}, nil
}

// Tag computes the validation tag the client must echo back:
// HMAC-SHA384(key, created_at ":" value ":" deploymentSecret), base64url.
// A captured nonce and key alone cannot forge a tag without the deployment
// secret.
func (n Nonce) Tag(deploymentSecret []byte) (string, error) {
	sum, err := n.tagBytes(deploymentSecret)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(sum), nil
}

// Expired reports whether the validity window has passed at now.
func (n Nonce) Expired(now time.Time) bool {
	return now.Unix()-n.CreatedAt > int64(TTL/time.Second)
}

// Verify recomputes the expected tag and compares it against the supplied one
// in constant time. Expired nonces and malformed key or tag encodings all
// report false; Verify never errors on bad input.
func (n Nonce) Verify(deploymentSecret []byte, suppliedTag string, now time.Time) bool {
	if n.Expired(now) {
		return false
	}

	want, err := n.tagBytes(deploymentSecret)
	if err != nil {
		return false
	}
	got, err := base64.RawURLEncoding.DecodeString(suppliedTag)
	if err != nil {
		return false
	}

	return hmac.Equal(want, got)
}

func (n Nonce) tagBytes(deploymentSecret []byte) ([]byte, error) {
	key, err := base64.RawURLEncoding.DecodeString(n.Key)
	if err != nil {
		return nil, err
	}

	m := hmac.New(sha512.New384, key)
	m.Write([]byte(strconv.FormatInt(n.CreatedAt, 10)))
	m.Write([]byte(":"))
	m.Write([]byte(n.Value))
	m.Write([]byte(":"))
	m.Write(deploymentSecret)
	return m.Sum(nil), nil
}

func randomString(nBytes int) (string, error) {
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
