package secrets

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
)

func validEnv(t *testing.T) {
	t.Helper()
	t.Setenv(SessionEnvKey, strings.Repeat("s", 32))
	t.Setenv(NonceEnvKey, strings.Repeat("n", 32))
	t.Setenv(JWTEnvKey, base64.RawURLEncoding.EncodeToString(make([]byte, 32)))
}

func TestFromEnv_AllPresent(t *testing.T) {
	validEnv(t)

	s, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if len(s.Session) != 32 || len(s.Nonce) != 32 || s.JWT == "" {
		t.Fatalf("unexpected secrets: %+v", s)
	}
}

func TestFromEnv_MissingIsFatal(t *testing.T) {
	cases := []struct {
		name string
		key  string
		want error
	}{
		{"session", SessionEnvKey, ErrSessionSecretMissing},
		{"nonce", NonceEnvKey, ErrNonceSecretMissing},
		{"jwt", JWTEnvKey, ErrJWTSecretMissing},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			validEnv(t)
			t.Setenv(tc.key, "")

			if _, err := FromEnv(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestFromEnv_ShortSecretRejected(t *testing.T) {
	validEnv(t)
	t.Setenv(SessionEnvKey, "short")

	if _, err := FromEnv(); !errors.Is(err, ErrSecretTooShort) {
		t.Fatalf("expected ErrSecretTooShort, got %v", err)
	}
}

func TestFromEnv_BadJWTEncoding(t *testing.T) {
	validEnv(t)
	t.Setenv(JWTEnvKey, "!!! not base64 !!!")

	if _, err := FromEnv(); !errors.Is(err, ErrJWTSecretEncoding) {
		t.Fatalf("expected ErrJWTSecretEncoding, got %v", err)
	}
}

func TestNewSigningSecret_UniqueAndDecodable(t *testing.T) {
	a, err := NewSigningSecret()
	if err != nil {
		t.Fatalf("NewSigningSecret: %v", err)
	}
	b, err := NewSigningSecret()
	if err != nil {
		t.Fatalf("NewSigningSecret: %v", err)
	}
	if a == b {
		t.Fatal("expected distinct secrets")
	}

	raw, err := DecodeSigningKey(a)
	if err != nil {
		t.Fatalf("DecodeSigningKey: %v", err)
	}
	if len(raw) != 256 {
		t.Fatalf("expected 256 bytes, got %d", len(raw))
	}
}
