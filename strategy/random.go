package strategy

import (
	"math/rand/v2"

	"github.com/arbiterlabs/arbiter/op"
)

// Random chooses uniformly among enabled operations, seeded for
// reproducibility (spec.md §4.4: "Random: uniform over enabled ops;
// seeded").
type Random struct {
	rng *rand.Rand
}

// NewRandom creates a seeded Random strategy.
func NewRandom(seed int64) *Random {
	return &Random{rng: rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))}
}

func (s *Random) Name() string { return "random" }

func (s *Random) ChooseNext(_ op.PointKind, enabled []op.ID) (op.ID, error) {
	ordered := stableSort(enabled)
	return ordered[s.rng.IntN(len(ordered))], nil
}

func (s *Random) ChooseBool() (bool, error) {
	return s.rng.IntN(2) == 1, nil
}

func (s *Random) ChooseInt(upper int) (int, error) {
	if upper <= 0 {
		return 0, nil
	}
	return s.rng.IntN(upper), nil
}

func (s *Random) PrepareNextIteration() bool { return true }
