package strategy

import (
	"fmt"
	"strconv"

	"github.com/arbiterlabs/arbiter/op"
	"github.com/arbiterlabs/arbiter/trace"
)

// TraceMismatchError is returned when a replayed trace demands a
// decision kind the program didn't actually present at that point
// (spec.md §7 "TraceMismatch").
type TraceMismatchError struct {
	Index    int
	Expected op.PointKind
	Actual   op.PointKind
}

func (e *TraceMismatchError) Error() string {
	return fmt.Sprintf("trace mismatch at decision %d: expected %s, got %s", e.Index, e.Expected, e.Actual)
}

// Replay deterministically reproduces a previously recorded trace
// (spec.md §4.4, §4.5, I4): every choose_* call returns the recorded
// value, and fails fast if the runtime asks for a different kind of
// decision than was recorded at that position.
type Replay struct {
	points []trace.Point
	cursor int
}

// NewReplay creates a Replay strategy over a previously recorded trace.
func NewReplay(t trace.Trace) *Replay {
	return &Replay{points: t.Points}
}

func (s *Replay) Name() string { return "replay" }

func (s *Replay) next(kind op.PointKind) (trace.Point, error) {
	if s.cursor >= len(s.points) {
		return trace.Point{}, fmt.Errorf("replay: trace exhausted, but runtime requested %s", kind)
	}
	p := s.points[s.cursor]
	if p.Kind != kind {
		return trace.Point{}, &TraceMismatchError{Index: s.cursor, Expected: p.Kind, Actual: kind}
	}
	s.cursor++
	return p, nil
}

func (s *Replay) ChooseNext(kind op.PointKind, enabled []op.ID) (op.ID, error) {
	p, err := s.next(kind)
	if err != nil {
		return 0, err
	}
	opID, err := strconv.ParseUint(p.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("replay: malformed operation value %q: %w", p.Value, err)
	}
	want := op.ID(opID)
	for _, id := range enabled {
		if id == want {
			return want, nil
		}
	}
	return 0, fmt.Errorf("replay: recorded operation %d is not in the enabled set %v", want, enabled)
}

func (s *Replay) ChooseBool() (bool, error) {
	p, err := s.next(op.PointRandomBool)
	if err != nil {
		return false, err
	}
	return p.Value == "true", nil
}

func (s *Replay) ChooseInt(upper int) (int, error) {
	p, err := s.next(op.PointRandomInt)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(p.Value)
	if err != nil {
		return 0, fmt.Errorf("replay: malformed int value %q: %w", p.Value, err)
	}
	return n, nil
}

// PrepareNextIteration always reports false: replay exists to reproduce
// exactly one recorded iteration.
func (s *Replay) PrepareNextIteration() bool { return false }

// Exhausted reports whether every recorded decision has been consumed.
func (s *Replay) Exhausted() bool { return s.cursor >= len(s.points) }
