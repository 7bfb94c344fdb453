package engine

import (
	"log/slog"
	"time"
)

// Option configures an Engine during creation.
//
// Example:
//
//	eng := engine.NewEngine(engine.WithTimeout(time.Second))
type Option func(*options)

type options struct {
	timeout time.Duration
	logger  *slog.Logger
}

func defaultOptions() options {
	return options{
		timeout: EvalTimeout,
		logger:  newNopLogger(),
	}
}

// WithTimeout sets the hard limit for a single evaluation. Non-positive
// values keep the default EvalTimeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithLogger sets the logger for evaluation events. A nil logger keeps the
// default, which discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
