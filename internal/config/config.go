// Package config defines process configuration and its layered loading.
package config

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/okian/prixsix/internal/domain/scoring"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// QueueSize bounds the queue of submitted race results.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of scoring workers and the rescore fan-out.
	WorkerCount int `koanf:"worker_count"`

	// Snapshot is the path of the season file read and written by the CLI.
	Snapshot string `koanf:"snapshot"`

	// MetricsFile, when set, receives a Prometheus textfile export after
	// every CLI command.
	MetricsFile string `koanf:"metrics_file"`

	// Points is the scoring table.
	Points Points `koanf:"points"`
}

// Points mirrors scoring.Table with configuration keys.
type Points struct {
	Exact     int `koanf:"exact"`
	OneOff    int `koanf:"one_off"`
	TwoOff    int `koanf:"two_off"`
	ThreePlus int `koanf:"three_plus"`
	Bonus     int `koanf:"bonus"`
}

// New creates a Config holding the defaults.
func New() *Config {
	t := scoring.DefaultTable()
	return &Config{
		LogLevel:    "info",
		LogFormat:   "text",
		QueueSize:   64,
		WorkerCount: runtime.NumCPU(),
		Snapshot:    "season.yaml",
		Points: Points{
			Exact:     t.Exact,
			OneOff:    t.OneOff,
			TwoOff:    t.TwoOff,
			ThreePlus: t.ThreePlus,
			Bonus:     t.Bonus,
		},
	}
}

// Table returns the configured point table.
func (c *Config) Table() scoring.Table {
	return scoring.Table{
		Exact:     c.Points.Exact,
		OneOff:    c.Points.OneOff,
		TwoOff:    c.Points.TwoOff,
		ThreePlus: c.Points.ThreePlus,
		Bonus:     c.Points.Bonus,
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	if c.QueueSize < 1 {
		return fmt.Errorf("%w: queue_size must be positive, got %d", ErrInvalidConfig, c.QueueSize)
	}
	if c.WorkerCount < 1 {
		return fmt.Errorf("%w: worker_count must be positive, got %d", ErrInvalidConfig, c.WorkerCount)
	}
	if err := c.Table().Validate(); err != nil {
		return fmt.Errorf("%w: points: %w", ErrInvalidConfig, err)
	}
	return nil
}
