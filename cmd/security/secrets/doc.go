// Package secrets loads the process-wide secret material the auth subsystem
// depends on.
//
// Three independent secrets are required:
//   - COMMERCE_SESSION_SECRET: keys the cookie-value -> session-id derivation.
//   - COMMERCE_NONCE_SECRET: the deployment half of every nonce tag HMAC.
//   - COMMERCE_JWT_SECRET: base64-encoded signing key for issued tokens.
//
// All three are loaded exactly once at startup and passed by value into the
// components that need them. A missing or malformed secret is a startup
// failure, never a silent fallback.
package secrets
