package strategy

import "github.com/arbiterlabs/arbiter/op"

// ActionInfo describes the pending scheduling-point action of an enabled
// operation, as far as DPOR's independence relation needs to know.
type ActionInfo struct {
	Kind   op.PointKind
	Target string // actor id for Send/Dequeue; resource handle for Lock/Interlocked
}

// DependencyAwareChooser is implemented by strategies (currently only
// DPOR) that prune equivalent interleavings using per-operation action
// metadata. The runtime calls ChooseNextWithActions instead of
// ChooseNext when a strategy implements this.
type DependencyAwareChooser interface {
	ChooseNextWithActions(actions map[op.ID]ActionInfo) (op.ID, error)
}

// dependent implements spec.md §4.4/§9's independence relation: two
// actions are dependent (must be explored in both orders) if they touch
// the same resource handle, or if they are both Sends/Dequeues/Receives
// targeting the same actor. Per spec.md §9's resolved open question,
// same-target sends are always dependent regardless of event kind
// ("accepting some redundant exploration for simplicity").
func dependent(a, b ActionInfo) bool {
	switch {
	case a.Kind == op.PointLock, a.Kind == op.PointInterlocked,
		b.Kind == op.PointLock, b.Kind == op.PointInterlocked:
		return a.Target != "" && a.Target == b.Target
	case a.Kind == op.PointSend && b.Kind == op.PointSend:
		return a.Target == b.Target
	default:
		return a.Target != "" && a.Target == b.Target
	}
}

// dporFrame is one decision point of the DPOR exploration: the enabled
// actions at the time, which was chosen, which alternatives are known to
// be dependent with the choice (and so must still be tried), and which
// have already been tried as the "chosen" operation across iterations.
type dporFrame struct {
	ids       []op.ID
	actions   map[op.ID]ActionInfo
	backtrack map[op.ID]bool
	done      map[op.ID]bool
	chosen    op.ID
}

// DPOR implements dynamic partial-order reduction (spec.md §4.4): it
// computes an independence relation over scheduling points and prunes
// interleavings equivalent to one already explored, aiming to produce
// exactly one representative per equivalence class.
type DPOR struct {
	frames       []dporFrame
	position     int
	currentSleep map[op.ID]bool
}

// NewDPOR creates a fresh DPOR strategy.
func NewDPOR() *DPOR {
	return &DPOR{currentSleep: make(map[op.ID]bool)}
}

func (s *DPOR) Name() string { return "dpor" }

// ChooseNext is the fallback used when the caller has no action
// metadata; it behaves like plain DFS (no pruning is possible without
// knowing what each operation is about to do).
func (s *DPOR) ChooseNext(kind op.PointKind, enabled []op.ID) (op.ID, error) {
	actions := make(map[op.ID]ActionInfo, len(enabled))
	for _, id := range enabled {
		// a shared synthetic target makes every pair dependent, so no
		// alternative is pruned
		actions[id] = ActionInfo{Kind: kind, Target: string(kind)}
	}
	return s.ChooseNextWithActions(actions)
}

func (s *DPOR) ChooseNextWithActions(actions map[op.ID]ActionInfo) (op.ID, error) {
	ids := make([]op.ID, 0, len(actions))
	for id := range actions {
		ids = append(ids, id)
	}
	ids = stableSort(ids)

	if s.position < len(s.frames) {
		f := s.frames[s.position]
		s.position++
		return f.chosen, nil
	}

	avail := make([]op.ID, 0, len(ids))
	for _, id := range ids {
		if !s.currentSleep[id] {
			avail = append(avail, id)
		}
	}
	if len(avail) == 0 {
		avail = ids
	}
	chosen := avail[0]

	f := dporFrame{
		ids:       ids,
		actions:   actions,
		backtrack: make(map[op.ID]bool),
		done:      map[op.ID]bool{chosen: true},
		chosen:    chosen,
	}
	newSleep := make(map[op.ID]bool, len(ids))
	for _, id := range ids {
		if id == chosen {
			continue
		}
		if dependent(actions[chosen], actions[id]) {
			f.backtrack[id] = true
		} else {
			newSleep[id] = true
		}
	}
	s.frames = append(s.frames, f)
	s.position++
	s.currentSleep = newSleep
	return chosen, nil
}

func (s *DPOR) ChooseBool() (bool, error) {
	// Each boolean is its own two-way DFS-style choice point layered onto
	// the same frame stack; the two alternatives share a synthetic target
	// so they are dependent and both values get explored.
	id, err := s.ChooseNextWithActions(map[op.ID]ActionInfo{
		0: {Kind: "Random-Bool", Target: "Random-Bool"},
		1: {Kind: "Random-Bool", Target: "Random-Bool"},
	})
	return id == 1, err
}

func (s *DPOR) ChooseInt(upper int) (int, error) {
	if upper <= 0 {
		return 0, nil
	}
	actions := make(map[op.ID]ActionInfo, upper)
	for i := 0; i < upper; i++ {
		actions[op.ID(i)] = ActionInfo{Kind: "Random-Int"}
	}
	id, err := s.ChooseNextWithActions(actions)
	return int(id), err
}

// PrepareNextIteration backtracks to the deepest frame with an untried,
// dependent alternative and reports whether one was found.
func (s *DPOR) PrepareNextIteration() bool {
	s.position = 0
	s.currentSleep = make(map[op.ID]bool)

	for len(s.frames) > 0 {
		idx := len(s.frames) - 1
		f := s.frames[idx]

		var next op.ID
		found := false
		for _, id := range f.ids {
			if f.backtrack[id] && !f.done[id] {
				next = id
				found = true
				break
			}
		}
		if found {
			f.done[next] = true
			f.chosen = next
			for _, id := range f.ids {
				if id == next || f.done[id] {
					continue
				}
				if dependent(f.actions[next], f.actions[id]) {
					f.backtrack[id] = true
				}
			}
			s.frames[idx] = f
			return true
		}
		s.frames = s.frames[:idx]
	}
	return false
}
