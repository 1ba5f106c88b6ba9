package main

import (
	"testing"

	"github.com/arbiterlabs/arbiter/config"
	"github.com/arbiterlabs/arbiter/runtime"
	"github.com/arbiterlabs/arbiter/strategy"
)

func TestBuildStrategyResolvesEachName(t *testing.T) {
	for _, name := range []config.Strategy{
		config.StrategyRandom, config.StrategyPCT, config.StrategyDFS,
		config.StrategyDPOR, config.StrategyFair,
	} {
		cfg := config.New(config.WithStrategy(name), config.WithSeed(1))
		strat, err := buildStrategy(cfg)
		if err != nil {
			t.Fatalf("strategy %s: unexpected error: %v", name, err)
		}
		if strat.Name() == "" {
			t.Fatalf("strategy %s: empty Name()", name)
		}
	}
}

func TestBuildStrategyRejectsMissingReplayTrace(t *testing.T) {
	cfg := config.New(config.WithStrategy(config.StrategyReplay), config.WithTracePath("/nonexistent/trace.txt"))
	if _, err := buildStrategy(cfg); err == nil {
		t.Fatal("expected an error opening a nonexistent trace file")
	} else if _, ok := err.(*config.ValidationError); !ok {
		t.Fatalf("expected *config.ValidationError, got %T", err)
	}
}

func TestExitCodeForMapsErrorClasses(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{&runtime.DeadlockError{}, 1},
		{&runtime.AssertionError{Message: "boom"}, 1},
		{&strategy.TraceMismatchError{}, 1},
		{&config.ValidationError{Message: "bad"}, 2},
		{&runtime.ConfigError{Message: "bad"}, 2},
		{errFromOtherPackage(), 3},
	}
	for _, tc := range cases {
		if got := exitCodeFor(tc.err); got != tc.want {
			t.Errorf("exitCodeFor(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func errFromOtherPackage() error {
	return runtime.ErrIterationBudgetExhausted
}

func TestRunIterationsStopsAtFirstFailure(t *testing.T) {
	cfg := config.New(config.WithStrategy(config.StrategyRandom), config.WithSeed(7), config.WithIterations(5))
	calls := 0
	err := runIterations(cfg, func(strategy.Strategy, int64) error {
		calls++
		return &runtime.AssertionError{Message: "always fails"}
	})
	if err == nil {
		t.Fatal("expected an error")
	}
	if calls != 1 {
		t.Fatalf("expected exactly one call before stopping, got %d", calls)
	}
}
