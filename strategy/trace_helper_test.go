package strategy_test

import (
	"github.com/arbiterlabs/arbiter/op"
	"github.com/arbiterlabs/arbiter/trace"
)

// recordedTrace builds a small trace: Dequeue chose op 2, then a
// Random-Bool chose true.
func recordedTrace() trace.Trace {
	return trace.Trace{
		Seed:     7,
		Strategy: "replay",
		Points: []trace.Point{
			{Kind: op.PointDequeue, Operation: 2, Value: "2"},
			{Kind: op.PointRandomBool, Operation: 0, Value: "true"},
		},
	}
}
