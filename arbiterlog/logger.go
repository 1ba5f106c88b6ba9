// Package arbiterlog provides the engine's package-level pluggable
// structured logger.
//
// Design Decision: logging is configured once, package-wide, rather than
// threaded through every constructor, because the runtime, task
// controller, and actor executor all log the same kind of cross-cutting
// scheduling events and a host embedding this engine (e.g. a CLI driver)
// typically wants one sink for all of it — the same rationale
// eventloop/logging.go gives for its package-level global logger.
package arbiterlog

import (
	"sync"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Logger is a type alias over logiface's type-erased logger, so hosts
// can plug in any logiface backend (stumpy, zerolog, logrus, slog — the
// sibling packages this engine's corpus ships) without this package
// depending on any of them beyond the default.
type Logger = logiface.Logger[logiface.Event]

var (
	mu      sync.RWMutex
	current *Logger
)

func init() {
	SetDefault(newStumpyLogger())
}

func newStumpyLogger() *Logger {
	return New(false)
}

// New builds a stumpy-backed logger at Debug level when verbose is true
// (spec.md §6 "verbose: bool"), Informational otherwise.
func New(verbose bool) *Logger {
	level := logiface.LevelInformational
	if verbose {
		level = logiface.LevelDebug
	}
	l := stumpy.L.New(
		stumpy.L.WithStumpy(),
		stumpy.L.WithLevel(level),
	)
	return l.Logger()
}

// SetDefault replaces the package-level logger used by Default. Intended
// to be called once, early, by the process embedding this engine (e.g.
// cmd/arbiter's CLI setup).
func SetDefault(l *Logger) {
	mu.Lock()
	defer mu.Unlock()
	current = l
}

// Default returns the current package-level logger.
func Default() *Logger {
	mu.RLock()
	defer mu.RUnlock()
	return current
}
