package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound       = errors.New("team not found")
	ErrInvalidLimit   = errors.New("invalid standings limit")
	ErrResultNotFound = errors.New("race result not found")
)
