package secrets

import "errors"

// Public, stable errors for callers.
var (
	ErrSessionSecretMissing = errors.New("session secret missing")
	ErrNonceSecretMissing   = errors.New("nonce secret missing")
	ErrJWTSecretMissing     = errors.New("jwt secret missing")
	ErrSecretTooShort       = errors.New("secret too short")
	ErrJWTSecretEncoding    = errors.New("jwt secret is not valid base64")
)
