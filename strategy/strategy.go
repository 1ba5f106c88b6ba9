// Package strategy implements the engine's pluggable exploration
// policies (spec.md §3.5, §4.4): the decision-makers that resolve every
// scheduling choice and boolean/integer nondeterminism the controlled
// runtime encounters.
package strategy

import "github.com/arbiterlabs/arbiter/op"

// Strategy is the contract every exploration policy implements. It is
// opaque state to callers: a mutable decision tree, priority map, or
// replay cursor, depending on the implementation.
type Strategy interface {
	// Name identifies the strategy, echoed into trace file headers.
	Name() string

	// ChooseNext selects which enabled operation runs next. enabled is
	// never empty (the runtime only calls this once it has computed a
	// non-empty enabled set; an empty set is a deadlock, handled by the
	// runtime itself). kind is the scheduling point kind that triggered
	// this choice (Dequeue, Send, Lock, ...), passed through so Replay
	// can detect a TraceMismatch and DPOR-style strategies can log it;
	// strategies that don't care about it (most of them) simply ignore
	// the argument.
	ChooseNext(kind op.PointKind, enabled []op.ID) (op.ID, error)

	// ChooseBool resolves a boolean nondeterministic choice.
	ChooseBool() (bool, error)

	// ChooseInt resolves an integer nondeterministic choice in [0, upper).
	ChooseInt(upper int) (int, error)

	// PrepareNextIteration resets per-iteration state and reports
	// whether further iterations remain to explore. DFS-style
	// strategies return false once the decision tree is exhausted;
	// random/probabilistic/priority/fair strategies always return true
	// (the iteration budget, not the strategy, bounds them).
	PrepareNextIteration() bool
}

// stableSort orders op IDs for deterministic tie-breaks (spec.md §4.4:
// "when multiple ops have equal weight, order by stable op-id").
func stableSort(ids []op.ID) []op.ID {
	out := append([]op.ID(nil), ids...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j] < out[j-1]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
