// Command arbiter is the thin CLI driver around the engine library
// (spec.md §6's "CLI surface ... of the test driver that embeds the
// core; the core's own interface is the library").
package main

import (
	"context"
	"log/slog"
	"os"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cmd := newRootCommand()
	if err := cmd.Run(ctx, os.Args); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(exitCodeFor(err))
	}
}
