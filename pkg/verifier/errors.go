package verifier

import "errors"

var (
	// ErrBackendUnavailable is returned by every signature operation of an
	// engine whose curve backend failed to initialize.
	ErrBackendUnavailable = errors.New("signature backend unavailable")
	// ErrMalformedScript is returned when a locator is not a single-key
	// taproot output script.
	ErrMalformedScript = errors.New("malformed script")
	// ErrInvalidSignature is returned when a signature can't be parsed.
	ErrInvalidSignature = errors.New("invalid signature")
)
