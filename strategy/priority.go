package strategy

import (
	"math/rand/v2"

	"golang.org/x/exp/constraints"

	"github.com/arbiterlabs/arbiter/op"
)

// clamp restricts v to [lo, hi]; NewPriority uses it to bound its
// priority-change budget.
func clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Priority implements the PCT-like strategy (spec.md §4.4): each
// operation gets a random priority; a bounded number of "priority
// changes" are inserted per iteration; between changes the
// highest-priority enabled operation is scheduled.
type Priority struct {
	rng               *rand.Rand
	maxChanges        int
	changesRemaining  int
	priorities        map[op.ID]int
	nextPriority      int
	changePoints      map[int]struct{} // allocated per iteration; ChooseNext does not consult it
	decisionIndex     int
}

// NewPriority creates a Priority (PCT) strategy that performs up to
// maxChanges priority-order changes per iteration.
func NewPriority(seed int64, maxChanges int) *Priority {
	p := &Priority{
		rng:        rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x2545f4914f6cdd1d)),
		maxChanges: clamp(maxChanges, 0, 1<<20),
		priorities: make(map[op.ID]int),
	}
	p.resetChangePoints()
	return p
}

func (s *Priority) resetChangePoints() {
	s.changesRemaining = s.maxChanges
	s.decisionIndex = 0
	s.changePoints = make(map[int]struct{}, s.maxChanges)
	// No change indices are precomputed: ChooseNext spends one budgeted
	// change, with probability 1/4, at any decision where more than one
	// operation is enabled.
}

func (s *Priority) Name() string { return "pct" }

func (s *Priority) priorityOf(id op.ID) int {
	if pr, ok := s.priorities[id]; ok {
		return pr
	}
	s.nextPriority++
	s.priorities[id] = s.nextPriority
	return s.nextPriority
}

func (s *Priority) ChooseNext(_ op.PointKind, enabled []op.ID) (op.ID, error) {
	ordered := stableSort(enabled)
	s.decisionIndex++

	if s.changesRemaining > 0 && len(ordered) > 1 && s.rng.IntN(4) == 0 {
		// Spend a priority change: reshuffle priorities among currently
		// enabled operations.
		s.changesRemaining--
		for _, id := range ordered {
			s.priorities[id] = s.rng.Int()
		}
	}

	best := ordered[0]
	bestPriority := s.priorityOf(best)
	for _, id := range ordered[1:] {
		p := s.priorityOf(id)
		if p < bestPriority {
			best, bestPriority = id, p
		}
	}
	return best, nil
}

func (s *Priority) ChooseBool() (bool, error) {
	return s.rng.IntN(2) == 1, nil
}

func (s *Priority) ChooseInt(upper int) (int, error) {
	if upper <= 0 {
		return 0, nil
	}
	return s.rng.IntN(upper), nil
}

func (s *Priority) PrepareNextIteration() bool {
	s.priorities = make(map[op.ID]int)
	s.nextPriority = 0
	s.resetChangePoints()
	return true
}
