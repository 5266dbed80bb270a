package lock

import "errors"

var (
	// ErrInvalidParameter is returned for malformed keys or hashes and out of
	// range timeouts.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrMalformedScript is returned when a script or an address does not
	// match the expected shape.
	ErrMalformedScript = errors.New("malformed script")
)
