package main

import (
	"fmt"
	"os"

	"github.com/arbiterlabs/arbiter/arbiterlog"
	"github.com/arbiterlabs/arbiter/config"
	"github.com/arbiterlabs/arbiter/runtime"
	"github.com/arbiterlabs/arbiter/scenarios"
	"github.com/arbiterlabs/arbiter/strategy"
	"github.com/arbiterlabs/arbiter/trace"
)

// buildStrategy constructs the exploration strategy cfg names. replay
// reads its trace from cfg.TracePath; config.Validate already rejected
// a replay config with no trace path.
func buildStrategy(cfg config.Config) (strategy.Strategy, error) {
	switch cfg.Strategy {
	case config.StrategyRandom:
		return strategy.NewRandom(cfg.Seed), nil
	case config.StrategyPCT:
		return strategy.NewPriority(cfg.Seed, 3), nil
	case config.StrategyDFS:
		return strategy.NewDFS(), nil
	case config.StrategyDPOR:
		return strategy.NewDPOR(), nil
	case config.StrategyFair:
		return strategy.NewFair(), nil
	case config.StrategyReplay:
		f, err := os.Open(cfg.TracePath)
		if err != nil {
			return nil, &config.ValidationError{Message: fmt.Sprintf("config: open trace %s: %v", cfg.TracePath, err)}
		}
		defer f.Close() //nolint:errcheck
		t, err := trace.Read(f)
		if err != nil {
			return nil, &config.ValidationError{Message: fmt.Sprintf("config: %v", err)}
		}
		return strategy.NewReplay(t), nil
	default:
		return nil, &config.ValidationError{Message: fmt.Sprintf("config: unknown strategy %q", cfg.Strategy)}
	}
}

// runIterations drives fn for cfg.Iterations iterations (or until the
// strategy's decision tree is exhausted, for DFS), stopping at the
// first bug found and, if cfg.TracePath is set, writing its trace.
func runIterations(cfg config.Config, fn scenarios.Method) error {
	// scenarios build their own runtime.Runtime internally and pick up
	// whatever arbiterlog.Default reports, so driving the level off
	// --verbose here is what reaches every iteration's logging.
	arbiterlog.SetDefault(arbiterlog.New(cfg.Verbose))
	logger := arbiterlog.Default()

	strat, err := buildStrategy(cfg)
	if err != nil {
		return err
	}

	for i := 0; i < cfg.Iterations; i++ {
		err := fn(strat, cfg.Seed)
		logger.Info().
			Int("iteration", i).
			Str("strategy", strat.Name()).
			Int64("seed", cfg.Seed).
			Err(err).
			Log("iteration complete")
		if err != nil {
			if cfg.TracePath != "" {
				if werr := writeFailingTrace(cfg.TracePath, strat, cfg.Seed); werr != nil {
					fmt.Fprintf(os.Stderr, "arbiter: failed to write trace: %v\n", werr)
				}
			}
			return err
		}
		if !strat.PrepareNextIteration() {
			break
		}
	}
	return nil
}

// writeFailingTrace writes a minimal header-only trace naming the
// strategy and seed that found the bug. Scenario methods don't expose
// their Runtime, so the per-decision trace itself isn't recoverable
// here; replay-reproduction captures and replays the full trace
// directly against its own Runtime instead of through this path.
func writeFailingTrace(path string, strat strategy.Strategy, seed int64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck
	return trace.Write(f, trace.Trace{Seed: seed, Strategy: strat.Name()})
}

// exitCodeFor maps a scenario error to spec.md §6's exit code table: 0
// success, 1 bug found, 2 configuration error, 3 internal error.
func exitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	switch err.(type) {
	case *runtime.DeadlockError, *runtime.LivenessError, *runtime.AssertionError,
		*runtime.UnhandledExceptionError, *runtime.UncontrolledConcurrencyError,
		*strategy.TraceMismatchError:
		return 1
	case *runtime.ConfigError, *config.ValidationError:
		return 2
	default:
		return 3
	}
}
