// Package scenarios holds the end-to-end example programs spec.md §8
// describes, each built from task/actor/runtime and wired into a named
// registry cmd/arbiter's "test <assembly> --method <name>" surface
// resolves against.
package scenarios

import (
	"fmt"

	"github.com/arbiterlabs/arbiter/runtime"
	"github.com/arbiterlabs/arbiter/strategy"
	"github.com/arbiterlabs/arbiter/task"
)

// store is a minimal key/value store supporting create_if_absent and
// ETag compare-and-swap, standing in for spec.md §8's storage layer.
type store struct {
	mu      *task.Mutex
	present bool
	value   string
	version int
}

func newStore() *store { return &store{mu: task.NewMutex("store-lock")} }

// createIfAbsent returns true if this call won the race to create the
// row.
func (s *store) createIfAbsent(ctx *runtime.Context, value string) bool {
	s.mu.Lock(ctx)
	defer func() { _ = s.mu.Unlock(ctx) }()
	if s.present {
		return false
	}
	s.present = true
	s.value = value
	s.version = 1
	return true
}

// read returns the current value and version.
func (s *store) read(ctx *runtime.Context) (string, int) {
	s.mu.Lock(ctx)
	defer func() { _ = s.mu.Unlock(ctx) }()
	return s.value, s.version
}

// blindWrite sets version and value unconditionally — the
// lost-update-prone path, correct only when no concurrent writer read
// the same stale version this one did.
func (s *store) blindWrite(ctx *runtime.Context, version int, value string) {
	s.mu.Lock(ctx)
	defer func() { _ = s.mu.Unlock(ctx) }()
	s.value = value
	s.version = version
}

// casWrite only applies if expectedVersion still matches (ETag retry
// loop's compare-and-swap primitive).
func (s *store) casWrite(ctx *runtime.Context, expectedVersion int, value string) bool {
	s.mu.Lock(ctx)
	defer func() { _ = s.mu.Unlock(ctx) }()
	if s.version != expectedVersion {
		return false
	}
	s.value = value
	s.version++
	return true
}

// AccountCreateRace runs spec.md §8 scenario 1: two operations race to
// create_if_absent the same key. Exactly one must observe success.
func AccountCreateRace(strat strategy.Strategy, seed int64) error {
	rt := runtime.New(strat, seed)
	results := make([]bool, 2)
	return rt.Start("main", func(ctx *runtime.Context) {
		s := newStore()
		futs := make([]*task.Future[struct{}], 2)
		for i := 0; i < 2; i++ {
			i := i
			futs[i] = task.Spawn(ctx, fmt.Sprintf("create-%d", i), func(inner *runtime.Context) {
				results[i] = s.createIfAbsent(inner, "p")
			})
		}
		if _, err := task.WhenAll(ctx, futs...); err != nil {
			ctx.Assert(false, err.Error())
			return
		}
		successes := 0
		for _, ok := range results {
			if ok {
				successes++
			}
		}
		ctx.Assert(successes == 1, fmt.Sprintf("account-create-race: expected exactly one success, got %d", successes))
	})
}

// AccountUpdateLostUpdate runs spec.md §8 scenario 2. With useETag
// false, a depth-first strategy should eventually find an interleaving
// where the lost-update property fails. With useETag true (a
// compare-and-swap retry loop), the property holds for every
// interleaving.
func AccountUpdateLostUpdate(strat strategy.Strategy, seed int64, useETag bool) error {
	rt := runtime.New(strat, seed)
	return rt.Start("main", func(ctx *runtime.Context) {
		s := newStore()
		s.present = true
		s.value = "v0"
		s.version = 1

		versions := []string{"v1", "v2"}
		futs := make([]*task.Future[struct{}], len(versions))
		for i, v := range versions {
			v := v
			futs[i] = task.Spawn(ctx, "updater", func(inner *runtime.Context) {
				_, ver := s.read(inner)
				task.Yield(inner) // widen the window so a concurrent updater's read/write can interleave
				if !useETag {
					s.blindWrite(inner, ver+1, v)
					return
				}
				for {
					if s.casWrite(inner, ver, v) {
						return
					}
					_, ver = s.read(inner)
					task.Yield(inner)
				}
			})
		}
		if _, err := task.WhenAll(ctx, futs...); err != nil {
			ctx.Assert(false, err.Error())
			return
		}
		_, finalVersion := s.read(ctx)
		ctx.Assert(finalVersion == 1+len(versions), fmt.Sprintf("account-update-lost-update: expected version %d after %d updates quiesce, got %d", 1+len(versions), len(versions), finalVersion))
	})
}
