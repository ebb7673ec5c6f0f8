package engine

import (
	"io"
	"log/slog"
)

// DefaultCycleCount is the number of ticks in one evaluation.
const DefaultCycleCount = 256

type config struct {
	cycles int
	logger *slog.Logger
	trace  bool
}

func newConfig(opts []Option) config {
	c := config{
		cycles: DefaultCycleCount,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Option configures Compile and Evaluate.
type Option func(*config)

// WithCycleCount sets the number of ticks per run.
// Values below 1 keep the default of 256.
func WithCycleCount(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.cycles = n
		}
	}
}

// WithLogger sets the logger used for schedule and failure diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithTrace records every node's outputs for every tick in CycleResults.Trace.
func WithTrace() Option {
	return func(c *config) {
		c.trace = true
	}
}
