// Package trace implements the engine's append-only scheduling log
// (spec.md §3.2, §4.5) and its textual serialization (spec.md §6): one
// decision per line, self-describing, stable under reformatting.
package trace

import (
	"fmt"

	"github.com/arbiterlabs/arbiter/op"
)

// Point is a single recorded scheduling decision.
type Point struct {
	Kind      op.PointKind
	Operation op.ID
	Value     string // the chosen value, rendered as its wire text
	WallIndex int
}

func (p Point) String() string {
	return fmt.Sprintf("%s:%s", p.Kind, p.Value)
}

// Trace is the ordered sequence of decisions made in one iteration.
type Trace struct {
	Seed     int64
	Strategy string
	Points   []Point
}

// Recorder appends Points synchronously as the runtime makes scheduling
// decisions (spec.md §4.5: "The recorder writes decisions synchronously
// at each schedule point").
type Recorder struct {
	trace Trace
}

// NewRecorder creates a Recorder tagging the resulting Trace with the
// seed and strategy name used for this iteration (echoed into the file
// header, spec.md §6).
func NewRecorder(seed int64, strategyName string) *Recorder {
	return &Recorder{trace: Trace{Seed: seed, Strategy: strategyName}}
}

// Append records one decision. value is the chosen value rendered to its
// wire text (e.g. "true", "3", an operation id).
func (r *Recorder) Append(kind op.PointKind, operation op.ID, value string) Point {
	p := Point{
		Kind:      kind,
		Operation: operation,
		Value:     value,
		WallIndex: len(r.trace.Points),
	}
	r.trace.Points = append(r.trace.Points, p)
	return p
}

// Len returns the number of points recorded so far.
func (r *Recorder) Len() int { return len(r.trace.Points) }

// Trace returns the (immutable from here on) recorded trace.
func (r *Recorder) Trace() Trace { return r.trace }
