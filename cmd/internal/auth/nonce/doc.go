// Package nonce implements the single-use sign-in nonce protocol.
//
// Each session id owns at most one live nonce. Issuing a nonce upserts the
// row (replacing any prior one) together with the session-existence guarantee
// in a single transaction, so the foreign key into sessions can never be
// violated by call ordering.
//
// The client is handed a tag, not the raw nonce: an HMAC over the nonce,
// its creation time, and a process-wide deployment secret, keyed with
// per-nonce random key material. Consuming a nonce (Take) is an atomic
// read-then-delete: under concurrent takes for the same session exactly one
// caller observes the row. Validation is constant-time and a nonce older than
// five minutes never validates.
package nonce
