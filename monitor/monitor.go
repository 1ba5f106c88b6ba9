// Package monitor implements spec-monitor observers (spec.md §4.6): a
// small hot/cold-labeled state machine that watches events raised via
// Observe and never drives scheduling. If the iteration ends with any
// monitor in a hot state, or a hot state persists for
// liveness_temperature consecutive schedule points, it is a liveness
// bug.
package monitor

// Label marks whether a state represents an outstanding liveness
// obligation (Hot) or a satisfied one (Cold).
type Label int

const (
	Cold Label = iota
	Hot
)

// Transition maps one observed event kind to the state it moves the
// monitor to.
type Transition func(event any) (next string, ok bool)

type stateEntry struct {
	label       Label
	transitions map[string]Transition
}

// Monitor is one spec monitor instance, keyed by (state, event-kind)
// exactly like actor.Actor's handler table, minus the inbox: events are
// delivered synchronously via Observe rather than queued.
type Monitor struct {
	Name string

	states  map[string]*stateEntry
	current string

	hotSince   int
	lastStepAt int
}

// New creates a monitor starting in state initial.
func New(name, initial string) *Monitor {
	return &Monitor{
		Name:    name,
		states:  map[string]*stateEntry{},
		current: initial,
	}
}

// State registers state with the given label and its keyed
// transitions (event kind -> Transition).
func (m *Monitor) State(name string, label Label, transitions map[string]Transition) {
	m.states[name] = &stateEntry{label: label, transitions: transitions}
}

// Observe delivers an event to the monitor. If the current state has a
// transition registered for kind, the monitor moves to the transition's
// target state.
func (m *Monitor) Observe(kind string, event any) {
	st := m.states[m.current]
	if st == nil {
		return
	}
	t, ok := st.transitions[kind]
	if !ok {
		return
	}
	next, matched := t(event)
	if !matched {
		return
	}
	m.current = next
}

// CurrentState returns the monitor's current state name.
func (m *Monitor) CurrentState() string { return m.current }

// Hot reports whether the monitor is currently in a hot (liveness
// obligation outstanding) state.
func (m *Monitor) Hot() bool {
	st := m.states[m.current]
	return st != nil && st.label == Hot
}

// Tick advances the monitor's hot-state patience counter by one
// schedule point, resetting it whenever the monitor is Cold. It returns
// true once the monitor has been continuously Hot for at least
// temperature consecutive ticks (spec.md §6's liveness_temperature,
// I6's "for >= liveness_temperature consecutive schedule points"
// early-detection clause).
func (m *Monitor) Tick(temperature int) bool {
	if !m.Hot() {
		m.hotSince = 0
		return false
	}
	m.hotSince++
	return temperature > 0 && m.hotSince >= temperature
}
