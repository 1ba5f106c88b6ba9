package runtime

import (
	"github.com/arbiterlabs/arbiter/arbiterlog"
)

// runtimeOptions holds configuration applied when constructing a
// Runtime. Mirrors eventloop/options.go's loopOptions shape.
type runtimeOptions struct {
	maxStepsPerIter      int
	fuzzingFallback      bool
	livenessTemperature  int
	onFailure            func(error)
	logger               *arbiterlog.Logger
}

// Option configures a Runtime instance.
type Option interface {
	applyRuntime(*runtimeOptions)
}

type optionFunc func(*runtimeOptions)

func (f optionFunc) applyRuntime(o *runtimeOptions) { f(o) }

// WithMaxStepsPerIter aborts an iteration after N schedule points (spec
// §6 "max_steps_per_iter"), guarding against runaway liveness-fair
// exploration.
func WithMaxStepsPerIter(n int) Option {
	return optionFunc(func(o *runtimeOptions) { o.maxStepsPerIter = n })
}

// WithFuzzingFallback stores the fuzzing_fallback setting. The runtime
// does not read it: it has no uncontrolled-concurrency detection and no
// fuzzing mode, so the setting changes no behaviour.
func WithFuzzingFallback(enabled bool) Option {
	return optionFunc(func(o *runtimeOptions) { o.fuzzingFallback = enabled })
}

// WithLivenessTemperature sets the hot-state patience, in schedule
// rounds, before a liveness violation is flagged early (spec §6
// "liveness_temperature").
func WithLivenessTemperature(n int) Option {
	return optionFunc(func(o *runtimeOptions) { o.livenessTemperature = n })
}

// WithOnFailure registers the callback invoked when an operation faults
// or an assertion fails (spec §4.1 "on_failure callback").
func WithOnFailure(fn func(error)) Option {
	return optionFunc(func(o *runtimeOptions) { o.onFailure = fn })
}

// WithLogger attaches a structured logger; defaults to arbiterlog's
// package-level default logger when omitted.
func WithLogger(l *arbiterlog.Logger) Option {
	return optionFunc(func(o *runtimeOptions) { o.logger = l })
}

func resolveOptions(opts []Option) *runtimeOptions {
	cfg := &runtimeOptions{
		maxStepsPerIter:     10_000,
		livenessTemperature: 100,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.applyRuntime(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = arbiterlog.Default()
	}
	return cfg
}
