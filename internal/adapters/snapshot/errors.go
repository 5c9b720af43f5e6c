package snapshot

import "errors"

// Sentinel kinds for snapshot errors.
var (
	ErrDecode = errors.New("snapshot decode failed")
	ErrEncode = errors.New("snapshot encode failed")
)
