// Package authapi wires HTTP endpoints to the session store, nonce engine,
// token issuer, and user/catalog stores.
//
// It is the error boundary: store and crypto failures are collapsed into a
// small taxonomy (not found, unauthorized, conflict, internal) with generic
// messages, so no internal detail and no failure-cause oracle crosses the
// wire.
package authapi
