// Package token issues and verifies the short-lived claims tokens returned at
// sign-in.
//
// Tokens are compact three-part HS256 JWTs signed with a process-wide
// base64-encoded secret. Validity is purely a function of the signature and
// the iat/nbf/exp window at verification time; nothing is persisted
// server-side and there is no revocation.
package token
