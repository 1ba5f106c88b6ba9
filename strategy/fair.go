package strategy

import "github.com/arbiterlabs/arbiter/op"

// Fair implements the liveness-fair strategy (spec.md §4.4): weighted to
// eventually schedule every enabled operation infinitely often, which is
// required for liveness-monitor (hot/cold) detection to be sound (I6) —
// a strategy that could starve an enabled operation forever would make
// "no liveness bug reported" meaningless.
//
// Implementation: each operation accrues a starvation counter while
// enabled-but-not-chosen; ChooseNext always picks the most-starved
// enabled operation (ties broken by stable id), which bounds how long
// any single enabled operation can go unscheduled by the size of the
// enabled set.
type Fair struct {
	starvation map[op.ID]int
	// seq counts decisions and drives ChooseBool and ChooseInt; it plays
	// no part in ChooseNext, whose ties always go to the lowest stable id.
	seq uint64
}

// NewFair creates a fresh Fair strategy.
func NewFair() *Fair {
	return &Fair{starvation: make(map[op.ID]int)}
}

func (s *Fair) Name() string { return "fair" }

func (s *Fair) ChooseNext(_ op.PointKind, enabled []op.ID) (op.ID, error) {
	ordered := stableSort(enabled)
	best := ordered[0]
	bestScore := s.starvation[best]
	for _, id := range ordered[1:] {
		if sc := s.starvation[id]; sc > bestScore {
			best, bestScore = id, sc
		}
	}
	for _, id := range ordered {
		if id == best {
			s.starvation[id] = 0
		} else {
			s.starvation[id]++
		}
	}
	s.seq++
	return best, nil
}

func (s *Fair) ChooseBool() (bool, error) {
	s.seq++
	return s.seq%2 == 0, nil
}

func (s *Fair) ChooseInt(upper int) (int, error) {
	if upper <= 0 {
		return 0, nil
	}
	s.seq++
	return int(s.seq % uint64(upper)), nil
}

func (s *Fair) PrepareNextIteration() bool {
	s.starvation = make(map[op.ID]int)
	return true
}
