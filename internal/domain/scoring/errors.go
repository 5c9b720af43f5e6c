package scoring

import "errors"

// Sentinel error kinds for this package. These allow errors.Is from callers.
var (
	ErrInvalidResult      = errors.New("invalid race result")
	ErrInvalidTable       = errors.New("invalid point table")
	ErrMalformedBreakdown = errors.New("malformed breakdown")
)
