package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/arbiterlabs/arbiter/config"
	"github.com/arbiterlabs/arbiter/scenarios"
)

// newRootCommand builds the arbiter CLI (spec.md §6's "CLI surface").
// Go has no notion of loading an external "assembly"; the test
// subcommand's --method flag instead names a scenario registered in
// scenarios.Registry, resolved in-process. The <assembly> argument is
// accepted but not read.
func newRootCommand() *cli.Command {
	return &cli.Command{
		Name:  "arbiter",
		Usage: "systematic concurrency testing engine",
		Commands: []*cli.Command{
			newTestCommand(),
		},
	}
}

func newTestCommand() *cli.Command {
	return &cli.Command{
		Name:      "test",
		Usage:     "explore a registered scenario for concurrency bugs",
		ArgsUsage: "<assembly>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "method",
				Usage: "scenario name to run (see arbiter test --list)",
			},
			&cli.IntFlag{
				Name:  "iterations",
				Usage: "number of iterations to explore",
				Value: 1,
			},
			&cli.Int64Flag{
				Name:  "seed",
				Usage: "exploration strategy RNG seed",
			},
			&cli.StringFlag{
				Name:  "strategy",
				Usage: "exploration strategy: random|pct|dfs|dpor|fair|replay",
				Value: string(config.StrategyRandom),
			},
			&cli.IntFlag{
				Name:  "max-steps-per-iter",
				Usage: "schedule-point cap, validated into the run config; registered scenarios apply their own caps",
				Value: 10_000,
			},
			&cli.BoolFlag{
				Name:  "fuzzing-fallback",
				Usage: "fuzzing-fallback setting, recorded in the run config; no scenario or runtime reads it",
			},
			&cli.IntFlag{
				Name:  "liveness-temperature",
				Usage: "hot-state patience in schedule rounds, recorded in the run config; registered scenarios use the runtime default",
				Value: 100,
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "emit the tagged event/transition log",
			},
			&cli.StringFlag{
				Name:  "trace-path",
				Usage: "where to write a failing iteration's trace (required for strategy=replay, read from)",
			},
			&cli.BoolFlag{
				Name:  "list",
				Usage: "list every registered scenario and exit",
			},
		},
		Action: runTest,
	}
}

func runTest(_ context.Context, cmd *cli.Command) error {
	if cmd.Bool("list") {
		fmt.Println(strings.Join(scenarios.Names(), "\n"))
		return nil
	}

	cfg := config.New(
		config.WithIterations(cmd.Int("iterations")),
		config.WithSeed(cmd.Int64("seed")),
		config.WithStrategy(config.Strategy(cmd.String("strategy"))),
		config.WithMaxStepsPerIter(cmd.Int("max-steps-per-iter")),
		config.WithFuzzingFallback(cmd.Bool("fuzzing-fallback")),
		config.WithLivenessTemperature(cmd.Int("liveness-temperature")),
		config.WithVerbose(cmd.Bool("verbose")),
		config.WithTracePath(cmd.String("trace-path")),
	)
	if err := cfg.Validate(); err != nil {
		return err
	}

	method := cmd.String("method")
	if method == "" {
		return &config.ValidationError{Message: fmt.Sprintf("config: --method is required (one of: %s)", strings.Join(scenarios.Names(), ", "))}
	}
	fn, err := scenarios.Lookup(method)
	if err != nil {
		return &config.ValidationError{Message: err.Error()}
	}

	return runIterations(cfg, fn)
}
