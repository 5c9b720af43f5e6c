package consistency

import "time"

// Option applies a configuration option to the Checker.
type Option func(*Checker)

// WithClock sets the clock used for summary timestamps and for detecting
// results recorded before their race.
func WithClock(now func() time.Time) Option {
	return func(c *Checker) {
		if now != nil {
			c.now = now
		}
	}
}

// WithIDGenerator sets the source of summary correlation ids.
func WithIDGenerator(fn func() string) Option {
	return func(c *Checker) {
		if fn != nil {
			c.newID = fn
		}
	}
}
