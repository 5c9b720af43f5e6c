package scoring

import "github.com/okian/prixsix/internal/domain/raceid"

// Option applies a configuration option to the Calculator.
type Option func(*Calculator)

// WithCarryForward enables or disables scoring teams that did not predict
// the race with their latest prediction for an earlier race. Enabled by
// default; it has no effect without WithSchedule.
func WithCarryForward(enabled bool) Option {
	return func(c *Calculator) {
		c.carryForward = enabled
	}
}

// WithSchedule sets the season schedule. It orders races for carry-forward
// and gives scores the schedule's race id.
func WithSchedule(schedule *raceid.Schedule) Option {
	return func(c *Calculator) {
		c.schedule = schedule
	}
}
