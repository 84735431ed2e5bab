package session

import (
	"crypto/rand"
	"encoding/base64"

	"golang.org/x/crypto/blake2b"
)

// NewCookieValue generates the opaque random value handed to the client.
// 32 bytes = 256 bits of entropy, URL-safe, no padding.
func NewCookieValue() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// DeriveID maps a cookie value to the session id stored in the database.
//
// The id is a keyed BLAKE2b-256 digest of the cookie value under the session
// secret: the table key identifies the session but cannot be turned back into
// a valid cookie. BLAKE2b keys are capped at 64 bytes, so the secret is first
// compressed to a fixed 32-byte key.
func DeriveID(secret []byte, cookieValue string) string {
	key := blake2b.Sum256(secret)

	h, err := blake2b.New256(key[:])
	if err != nil {
		// Only reachable with an invalid key length, which is fixed above.
		panic(err)
	}
	h.Write([]byte(cookieValue))

	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}
