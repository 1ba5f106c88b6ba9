package op

import (
	"sync"

	"github.com/google/uuid"
)

// ID is a stable integer identity for an Operation, assigned by the
// runtime in creation order (spec: "stable integer id").
type ID uint64

// PointKind is the kind of scheduling point an operation last recorded;
// kept here (rather than only in the trace package) so debug info on the
// Operation itself can be inspected without consulting the trace.
type PointKind string

const (
	PointTaskCreate    PointKind = "TaskCreate"
	PointTaskYield     PointKind = "TaskYield"
	PointContinueAwait PointKind = "ContinueAwait"
	PointSend          PointKind = "Send"
	PointDequeue       PointKind = "Dequeue"
	PointReceive       PointKind = "Receive"
	PointLock          PointKind = "Lock"
	PointUnlock        PointKind = "Unlock"
	PointWait          PointKind = "Wait"
	PointPulse         PointKind = "Pulse"
	PointRandomBool    PointKind = "Random-Bool"
	PointRandomInt     PointKind = "Random-Int"
	PointDelay         PointKind = "Delay"
	PointInterlocked   PointKind = "Interlocked"
	PointCancel        PointKind = "Cancel"
	PointHalt          PointKind = "Halt"
)

// DebugInfo carries the last scheduling point kind and an optional
// source-location hint, purely for diagnostics (spec §3.1).
type DebugInfo struct {
	LastPointKind PointKind
	SourceHint    string
}

// Operation is the runtime's unit of schedulable concurrency: it wraps
// either a controlled task or an actor's current handler.
type Operation struct {
	mu sync.Mutex

	id     ID
	name   string
	owner  string // actor id, or "" for an anonymous task
	group  uuid.UUID
	status Status
	debug  DebugInfo

	// cancelRequested is set by the runtime when this operation's
	// abstract cancel token fires (cooperative cancellation, spec §4.1).
	cancelRequested bool
}

// New creates an Operation in status None. The runtime assigns id and
// transitions it to Enabled once registered.
func New(id ID, name, owner string) *Operation {
	return &Operation{id: id, name: name, owner: owner}
}

func (o *Operation) ID() ID     { return o.id }
func (o *Operation) Name() string { return o.name }
func (o *Operation) Owner() string { return o.owner }

func (o *Operation) Group() uuid.UUID {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.group
}

// SetGroup propagates a causal grouping id from a sender to this
// operation (spec §3.1 "Group"); used by partial-order strategies.
func (o *Operation) SetGroup(g uuid.UUID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.group = g
}

func (o *Operation) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status
}

// SetStatus transitions the operation to a new status. It is the
// runtime's job to ensure this is only called by the currently-scheduled
// operation or by the runtime itself while holding the scheduler baton.
func (o *Operation) SetStatus(s Status) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.status = s
}

func (o *Operation) Debug() DebugInfo {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.debug
}

// RecordPoint updates the operation's debug info to reflect the
// scheduling point it just made.
func (o *Operation) RecordPoint(kind PointKind, sourceHint string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.debug = DebugInfo{LastPointKind: kind, SourceHint: sourceHint}
}

// RequestCancel sets this operation's abstract cancel token. The
// runtime makes a blocked operation schedulable again; the operation's
// own code observes the token, and when it returns its completion is
// recorded as Completed(Cancelled) (spec §4.1, §5).
func (o *Operation) RequestCancel() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cancelRequested = true
}

func (o *Operation) CancelRequested() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.cancelRequested
}

// IsEnabled reports whether this operation currently belongs to the
// runtime's enabled set.
func (o *Operation) IsEnabled() bool {
	return o.Status().Enabled()
}

// IsCompleted reports whether the operation has reached a terminal state.
func (o *Operation) IsCompleted() bool {
	return o.Status().Kind == Completed
}

// IsDelayed reports whether the operation is currently Delayed, and if
// so, how many rounds remain.
func (o *Operation) IsDelayed() (int, bool) {
	s := o.Status()
	if s.Kind != Delayed {
		return 0, false
	}
	return s.RoundsLeft, true
}
