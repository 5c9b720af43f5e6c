package worker

import (
	"github.com/okian/prixsix/pkg/logger"
)

// Option applies a configuration option to a worker or a pool.
type Option func(*settings)

type settings struct {
	name   string
	logger logger.Logger
}

// WithName sets the worker name for identification and logging.
// Pool workers get the name suffixed with their index.
func WithName(name string) Option {
	return func(s *settings) {
		if name != "" {
			s.name = name
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

func apply(defaultName string, opts []Option) settings {
	s := settings{name: defaultName}
	for _, opt := range opts {
		opt(&s)
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	return s
}
