package strategy

import (
	"math/rand/v2"

	"github.com/arbiterlabs/arbiter/op"
)

// TouchRecorder is implemented by strategies that want to know which
// operation last touched a shared-state schedule point (Interlocked,
// Send). The runtime calls RecordTouch after such points; strategies
// that don't care (most of them) simply don't implement it.
type TouchRecorder interface {
	RecordTouch(id op.ID)
}

// Probabilistic is the "probabilistic race" strategy: random selection
// biased toward operations that touched shared state recently (spec.md
// §4.4).
type Probabilistic struct {
	rng  *rand.Rand
	bias float64 // extra weight (0..1 of total) given to recently-touched ops

	recent map[op.ID]struct{}
}

// NewProbabilistic creates a Probabilistic strategy. bias in [0,1]
// controls how strongly recently-touched operations are favoured; 0
// degrades to uniform random.
func NewProbabilistic(seed int64, bias float64) *Probabilistic {
	if bias < 0 {
		bias = 0
	}
	if bias > 1 {
		bias = 1
	}
	return &Probabilistic{
		rng:    rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0xbf58476d1ce4e5b9)),
		bias:   bias,
		recent: make(map[op.ID]struct{}),
	}
}

func (s *Probabilistic) Name() string { return "pct-race" }

func (s *Probabilistic) RecordTouch(id op.ID) {
	// Keep the recency set small: touching resets it to just the latest
	// toucher, which is enough to bias the *next* choice without
	// accumulating unbounded history across a long iteration.
	for k := range s.recent {
		delete(s.recent, k)
	}
	s.recent[id] = struct{}{}
}

func (s *Probabilistic) ChooseNext(_ op.PointKind, enabled []op.ID) (op.ID, error) {
	ordered := stableSort(enabled)
	if s.bias > 0 {
		var touched []op.ID
		for _, id := range ordered {
			if _, ok := s.recent[id]; ok {
				touched = append(touched, id)
			}
		}
		if len(touched) > 0 && s.rng.Float64() < s.bias {
			return touched[s.rng.IntN(len(touched))], nil
		}
	}
	return ordered[s.rng.IntN(len(ordered))], nil
}

func (s *Probabilistic) ChooseBool() (bool, error) {
	return s.rng.IntN(2) == 1, nil
}

func (s *Probabilistic) ChooseInt(upper int) (int, error) {
	if upper <= 0 {
		return 0, nil
	}
	return s.rng.IntN(upper), nil
}

func (s *Probabilistic) PrepareNextIteration() bool {
	for k := range s.recent {
		delete(s.recent, k)
	}
	return true
}
