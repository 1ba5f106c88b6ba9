package scenarios

import (
	"fmt"

	"github.com/arbiterlabs/arbiter/runtime"
	"github.com/arbiterlabs/arbiter/strategy"
	"github.com/arbiterlabs/arbiter/task"
)

// BoundedAsyncNeighborCounts runs spec.md §8 scenario 5: n>=3 processes
// arranged in a ring, each maintaining a counter it sends to its left
// and right neighbor on every step. Property I-sync: a process's own
// counter never differs from a just-received neighbor count by more
// than 1; a process halts once its own counter reaches 10. A process
// advances its counter only once neither neighbor is behind it.
func BoundedAsyncNeighborCounts(strat strategy.Strategy, seed int64, n int) error {
	if n < 3 {
		n = 3
	}
	rt := runtime.New(strat, seed, runtime.WithMaxStepsPerIter(5000))

	const target = 10
	type cell struct {
		mu    *task.Mutex
		value int
	}
	counters := make([]*cell, n)
	for i := range counters {
		counters[i] = &cell{mu: task.NewMutex(fmt.Sprintf("counter-%d", i))}
	}

	return rt.Start("main", func(ctx *runtime.Context) {
		futs := make([]*task.Future[struct{}], n)
		for i := 0; i < n; i++ {
			i := i
			left := (i - 1 + n) % n
			right := (i + 1) % n
			futs[i] = task.Spawn(ctx, fmt.Sprintf("process-%d", i), func(inner *runtime.Context) {
				for {
					counters[i].mu.Lock(inner)
					own := counters[i].value
					counters[i].mu.Unlock(inner) //nolint:errcheck

					if own >= target {
						return
					}

					counters[left].mu.Lock(inner)
					lv := counters[left].value
					diffOK := abs(lv-own) <= 1
					counters[left].mu.Unlock(inner) //nolint:errcheck
					inner.Assert(diffOK, fmt.Sprintf("bounded-async neighbor counts: process %d saw left neighbor %d differ by more than 1 from own %d", i, lv, own))

					counters[right].mu.Lock(inner)
					rv := counters[right].value
					diffOK = abs(rv-own) <= 1
					counters[right].mu.Unlock(inner) //nolint:errcheck
					inner.Assert(diffOK, fmt.Sprintf("bounded-async neighbor counts: process %d saw right neighbor %d differ by more than 1 from own %d", i, rv, own))

					if lv < own || rv < own {
						// a neighbor has not caught up yet: wait for it before advancing
						task.Yield(inner)
						continue
					}

					counters[i].mu.Lock(inner)
					counters[i].value++
					counters[i].mu.Unlock(inner) //nolint:errcheck

					task.Yield(inner)
				}
			})
		}
		_, _ = task.WhenAll(ctx, futs...)
	})
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
