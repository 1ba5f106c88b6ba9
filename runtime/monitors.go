package runtime

import "github.com/arbiterlabs/arbiter/monitor"

// RegisterMonitor attaches m to the runtime: after every scheduling
// point its hot-state patience is ticked (spec.md §6's
// liveness_temperature), and at a clean iteration end every registered
// monitor is checked for an outstanding hot state (spec.md §4.6).
func (r *Runtime) RegisterMonitor(m *monitor.Monitor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.monitors = append(r.monitors, m)
}

// checkMonitorsLocked ticks every registered monitor and returns a
// LivenessError for the first one whose hot-state patience has been
// exhausted. Must be called with r.mu held.
func (r *Runtime) checkMonitorsLocked() error {
	for _, m := range r.monitors {
		if m.Tick(r.opts.livenessTemperature) {
			return &LivenessError{MonitorName: m.Name, StateName: m.CurrentState()}
		}
	}
	return nil
}

// checkMonitorsAtEndLocked reports the first monitor still in a hot
// state once the iteration has otherwise ended cleanly. Must be called
// with r.mu held.
func (r *Runtime) checkMonitorsAtEndLocked() error {
	for _, m := range r.monitors {
		if m.Hot() {
			return &LivenessError{MonitorName: m.Name, StateName: m.CurrentState()}
		}
	}
	return nil
}
