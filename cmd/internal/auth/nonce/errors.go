package nonce

import "errors"

var (
	// ErrNoSession is returned when issuing or taking with an empty
	// session id.
	ErrNoSession = errors.New("no session id")

	// ErrConfig is returned for invalid engine configuration.
	ErrConfig = errors.New("invalid nonce config")
)
