package session

import "errors"

var (
	// ErrNoSession is returned when an operation needs a session that has
	// not been materialized (empty id or cookie value).
	ErrNoSession = errors.New("no session")

	// ErrConfig is returned for invalid store configuration.
	ErrConfig = errors.New("invalid session config")
)
