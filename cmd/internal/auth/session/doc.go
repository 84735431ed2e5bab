// Package session implements the durable session store behind the auth
// subsystem.
//
// The client holds an opaque random cookie value; the database row is keyed by
// an id derived from that value with a keyed hash, so a leaked sessions table
// does not yield usable cookies. Session data is an explicit versioned record
// rather than a free-form bag.
//
// Stores come in two implementations: a Postgres one for production and an
// in-memory one for tests and DB-less development. Every Postgres operation
// runs inside a single transaction with an access mode matching its intent,
// so a concurrent Load never observes a partially written row.
//
// EnsureExists is the existence guarantor: the middleware issues a cookie
// before it persists the session row, and any write that references a session
// id by foreign key (nonces) must first guarantee the row exists.
package session
