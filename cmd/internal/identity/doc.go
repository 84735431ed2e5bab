// Package identity persists user accounts.
//
// Password hashing is deliberately not implemented here: credentials are
// hashed and verified inside Postgres by the pgcrypto extension
// (crypt/gen_salt), so plaintext passwords only ever transit as query
// parameters and no hash material lives in process memory.
package identity
