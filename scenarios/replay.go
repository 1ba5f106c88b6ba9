package scenarios

import (
	"fmt"

	"github.com/arbiterlabs/arbiter/runtime"
	"github.com/arbiterlabs/arbiter/strategy"
	"github.com/arbiterlabs/arbiter/task"
	"github.com/arbiterlabs/arbiter/trace"
)

// lostUpdateIteration is the scenario 2 program body, factored out so
// ReplayReproduction can drive it directly against a fresh Runtime per
// DFS iteration and again under Replay.
func lostUpdateIteration(strat strategy.Strategy, seed int64) (*runtime.Runtime, error) {
	rt := runtime.New(strat, seed)
	err := rt.Start("main", func(ctx *runtime.Context) {
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
				task.Yield(inner)
				s.blindWrite(inner, ver+1, v)
			})
		}
		if _, err := task.WhenAll(ctx, futs...); err != nil {
			ctx.Assert(false, err.Error())
			return
		}
		_, finalVersion := s.read(ctx)
		ctx.Assert(finalVersion == 1+len(versions), fmt.Sprintf("account-update-lost-update: expected version %d after %d updates quiesce, got %d", 1+len(versions), len(versions), finalVersion))
	})
	return rt, err
}

// ReplayReproduction runs spec.md §8 scenario 6: explore
// AccountUpdateLostUpdate's no-ETag form with DFS until a failing
// interleaving surfaces, record its trace, then rerun it under
// strategy.Replay and assert the identical failure reproduces.
func ReplayReproduction(seed int64) error {
	dfs := strategy.NewDFS()
	var failingTrace trace.Trace
	var firstErr error
	found := false

	for {
		rt, err := lostUpdateIteration(dfs, seed)
		if err != nil {
			firstErr = err
			failingTrace = rt.Trace()
			found = true
			break
		}
		if !dfs.PrepareNextIteration() {
			break
		}
	}

	if !found {
		return fmt.Errorf("replay-reproduction: DFS exhausted the decision tree without finding a lost-update failure")
	}

	replay := strategy.NewReplay(failingTrace)
	rt2, replayedErr := lostUpdateIteration(replay, seed)

	if replayedErr == nil {
		return fmt.Errorf("replay-reproduction: recorded failure %q did not reproduce under replay", firstErr)
	}
	if replayedErr.Error() != firstErr.Error() {
		return fmt.Errorf("replay-reproduction: replay produced a different failure: original %q, replayed %q", firstErr, replayedErr)
	}

	replayedTrace := rt2.Trace()
	if len(replayedTrace.Points) != len(failingTrace.Points) {
		return fmt.Errorf("replay-reproduction: replayed trace has %d points, original had %d", len(replayedTrace.Points), len(failingTrace.Points))
	}
	for i := range failingTrace.Points {
		if failingTrace.Points[i].Operation != replayedTrace.Points[i].Operation || failingTrace.Points[i].Value != replayedTrace.Points[i].Value {
			return fmt.Errorf("replay-reproduction: op-id sequence diverged at decision %d", i)
		}
	}
	return nil
}
