package scenarios

import (
	"fmt"

	"github.com/arbiterlabs/arbiter/strategy"
)

// Method runs one scenario end to end and reports its outcome — the
// controlled-runtime equivalent of spec.md §6's "<tool> test <assembly>
// --method <name>": Go has no assembly-as-unit-of-deployment concept,
// so the CLI driver resolves directly against this in-process registry
// of named test methods rather than loading an external binary.
type Method func(strat strategy.Strategy, seed int64) error

// Registry lists every scenario by name. "account-update-lost-update"
// and "account-update-cas" share AccountUpdateLostUpdate, fixing
// useETag per entry; "replay-reproduction" ignores the strategy
// argument since it drives its own DFS-then-Replay pair internally.
var Registry = map[string]Method{
	"account-create-race": AccountCreateRace,
	"account-update-lost-update": func(strat strategy.Strategy, seed int64) error {
		return AccountUpdateLostUpdate(strat, seed, false)
	},
	"account-update-cas": func(strat strategy.Strategy, seed int64) error {
		return AccountUpdateLostUpdate(strat, seed, true)
	},
	"ping-pong-termination": func(strat strategy.Strategy, seed int64) error {
		return PingPongTermination(strat, seed)
	},
	"cache-coherence": CacheCoherence,
	"neighbor-counts": func(strat strategy.Strategy, seed int64) error {
		return BoundedAsyncNeighborCounts(strat, seed, 3)
	},
	"replay-reproduction": func(_ strategy.Strategy, seed int64) error {
		return ReplayReproduction(seed)
	},
}

// Lookup resolves name against Registry.
func Lookup(name string) (Method, error) {
	m, ok := Registry[name]
	if !ok {
		return nil, fmt.Errorf("scenarios: unknown method %q", name)
	}
	return m, nil
}

// Names lists every registered method name, for --help output and
// configuration-error messages.
func Names() []string {
	names := make([]string, 0, len(Registry))
	for name := range Registry {
		names = append(names, name)
	}
	return names
}
