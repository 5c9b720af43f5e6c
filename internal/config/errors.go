package config

import "errors"

// ErrInvalidConfig marks a loaded configuration that fails Validate.
// ErrLoadConfig marks a failure to read the file or environment layers.
var (
	ErrInvalidConfig = errors.New("prixsix: invalid configuration")
	ErrLoadConfig    = errors.New("prixsix: cannot load configuration")
)
