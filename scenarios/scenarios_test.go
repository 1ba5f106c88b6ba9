package scenarios

import (
	"testing"

	"github.com/arbiterlabs/arbiter/strategy"
)

func TestAccountCreateRaceHoldsUnderRandomExploration(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		if err := AccountCreateRace(strategy.NewRandom(seed), seed); err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
	}
}

func TestAccountUpdateLostUpdateFailsUnderDFSWithoutETag(t *testing.T) {
	dfs := strategy.NewDFS()
	foundFailure := false
	for {
		if err := AccountUpdateLostUpdate(dfs, 1, false); err != nil {
			foundFailure = true
			break
		}
		if !dfs.PrepareNextIteration() {
			break
		}
	}
	if !foundFailure {
		t.Fatal("expected DFS to find a lost-update interleaving without ETag")
	}
}

func TestAccountUpdateCASHoldsUnderDFS(t *testing.T) {
	dfs := strategy.NewDFS()
	for {
		if err := AccountUpdateLostUpdate(dfs, 1, true); err != nil {
			t.Fatalf("CAS retry loop should tolerate every interleaving, got: %v", err)
		}
		if !dfs.PrepareNextIteration() {
			break
		}
	}
}

func TestPingPongTerminationHaltsBothActors(t *testing.T) {
	if err := PingPongTermination(strategy.NewRandom(3), 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCacheCoherenceHoldsUnderDFS(t *testing.T) {
	dfs := strategy.NewDFS()
	for i := 0; i < 200; i++ {
		if err := CacheCoherence(dfs, 1); err != nil {
			t.Fatalf("safety property violated: %v", err)
		}
		if !dfs.PrepareNextIteration() {
			break
		}
	}
}

func TestBoundedAsyncNeighborCountsHoldsISyncInvariant(t *testing.T) {
	for seed := int64(1); seed <= 10; seed++ {
		if err := BoundedAsyncNeighborCounts(strategy.NewRandom(seed), seed, 3); err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
	}
}

func TestReplayReproductionReproducesRecordedFailure(t *testing.T) {
	if err := ReplayReproduction(1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRegistryListsEveryScenario(t *testing.T) {
	for _, name := range []string{
		"account-create-race", "account-update-lost-update", "account-update-cas",
		"ping-pong-termination", "cache-coherence", "neighbor-counts", "replay-reproduction",
	} {
		if _, err := Lookup(name); err != nil {
			t.Errorf("expected %q to be registered: %v", name, err)
		}
	}
	if _, err := Lookup("does-not-exist"); err == nil {
		t.Error("expected an error for an unregistered name")
	}
}
