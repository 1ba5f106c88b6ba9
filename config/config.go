// Package config loads and validates the engine's external
// configuration surface (spec.md §6): the enumerated, no-free-form
// option set shared by the library entry point and the CLI driver.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Strategy names the exploration strategy an iteration runs under
// (spec.md §6's "strategy: {random,pct,dfs,dpor,fair,replay}").
type Strategy string

const (
	StrategyRandom Strategy = "random"
	StrategyPCT    Strategy = "pct"
	StrategyDFS    Strategy = "dfs"
	StrategyDPOR   Strategy = "dpor"
	StrategyFair   Strategy = "fair"
	StrategyReplay Strategy = "replay"
)

func (s Strategy) valid() bool {
	switch s {
	case StrategyRandom, StrategyPCT, StrategyDFS, StrategyDPOR, StrategyFair, StrategyReplay:
		return true
	default:
		return false
	}
}

// Config is the full configuration surface of spec.md §6's table,
// deserialisable from YAML and buildable via the functional-options
// constructors below.
type Config struct {
	Iterations         int      `yaml:"iterations"`
	Seed               int64    `yaml:"seed"`
	Strategy           Strategy `yaml:"strategy"`
	MaxStepsPerIter    int      `yaml:"max_steps_per_iter"`
	FuzzingFallback    bool     `yaml:"fuzzing_fallback"`
	LivenessTemperature int     `yaml:"liveness_temperature"`
	Verbose            bool     `yaml:"verbose"`
	TracePath          string   `yaml:"trace_path"`
}

// Option configures a Config being built by New.
type Option func(*Config)

// WithIterations sets the iteration budget.
func WithIterations(n int) Option { return func(c *Config) { c.Iterations = n } }

// WithSeed sets the strategy RNG seed.
func WithSeed(seed int64) Option { return func(c *Config) { c.Seed = seed } }

// WithStrategy selects the exploration strategy.
func WithStrategy(s Strategy) Option { return func(c *Config) { c.Strategy = s } }

// WithMaxStepsPerIter sets the per-iteration schedule-point cap.
func WithMaxStepsPerIter(n int) Option { return func(c *Config) { c.MaxStepsPerIter = n } }

// WithFuzzingFallback toggles the uncontrolled-concurrency fallback.
func WithFuzzingFallback(enabled bool) Option { return func(c *Config) { c.FuzzingFallback = enabled } }

// WithLivenessTemperature sets the hot-state patience.
func WithLivenessTemperature(n int) Option {
	return func(c *Config) { c.LivenessTemperature = n }
}

// WithVerbose toggles the tagged event/transition log.
func WithVerbose(enabled bool) Option { return func(c *Config) { c.Verbose = enabled } }

// WithTracePath sets where a failing trace is written.
func WithTracePath(path string) Option { return func(c *Config) { c.TracePath = path } }

// defaults mirrors runtime.resolveOptions' defaults so a Config built
// with no options at all is still a usable, conservative iteration
// budget.
func defaults() Config {
	return Config{
		Iterations:          1,
		Strategy:            StrategyRandom,
		MaxStepsPerIter:     10_000,
		LivenessTemperature: 100,
	}
}

// New builds a Config from defaults plus the given options.
func New(opts ...Option) Config {
	cfg := defaults()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Load reads a YAML configuration file, applying defaults for any
// field the file omits.
func Load(path string) (Config, error) {
	cfg := defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// ValidationError reports a rejected Config (spec.md §7's
// "Configuration error" class, detected at startup, never
// mid-iteration). Its own type lets a CLI driver map it to a distinct
// exit code without string-matching error text.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Validate rejects a Config before a single iteration runs.
func (c Config) Validate() error {
	if c.Iterations <= 0 {
		return &ValidationError{Message: fmt.Sprintf("config: iterations must be positive, got %d", c.Iterations)}
	}
	if !c.Strategy.valid() {
		return &ValidationError{Message: fmt.Sprintf("config: unknown strategy %q", c.Strategy)}
	}
	if c.Strategy == StrategyReplay && c.TracePath == "" {
		return &ValidationError{Message: fmt.Sprintf("config: strategy %q requires trace_path to replay from", c.Strategy)}
	}
	return nil
}
