package actor

import (
	"github.com/arbiterlabs/arbiter/arbiterlog"
	"github.com/arbiterlabs/arbiter/op"
	"github.com/arbiterlabs/arbiter/runtime"
)

// UnhandledEventError reports an event whose kind has no handler, no
// defer entry, and no ignore entry in the current state.
type UnhandledEventError struct {
	ActorName string
	State     string
	EventKind string
}

func (e *UnhandledEventError) Error() string {
	return "actor: " + e.ActorName + " in state " + e.State + " has no handler for event " + e.EventKind
}

// Run drives a's dispatch loop until it halts (spec.md §4.3's "runs the
// handler to completion" repeated per dequeue). It is meant to be the
// body of the operation that owns a, i.e. called from inside a
// runtime.Runtime-spawned function.
func Run(ctx *runtime.Context, a *Actor) {
	a.ctx = ctx
	a.logger().Debug().Str("actor", a.Name).Str("state", a.currentState()).Log("actor started")
	a.runOnEntry(a.currentState())
	for !a.halted {
		e, ok := a.dequeue()
		if !ok {
			continue
		}
		a.dispatch(e)
	}
	a.logger().Debug().Str("actor", a.Name).Str("state", a.currentState()).Log("actor halted")
}

// logger reaches the owning runtime's structured logger (spec.md
// §10.1's C5 "actor executor" logging).
func (a *Actor) logger() *arbiterlog.Logger {
	return a.ctx.Runtime().Logger()
}

// dequeue implements spec.md §4.3's defer-aware scan: a raised event
// (if any) pre-empts the inbox outright. Otherwise the inbox is scanned
// head to tail, skipping deferred kinds, consuming (and discarding)
// ignored kinds, and stopping at the first kind with a handler; the
// first event that is neither deferred, ignored nor handled fails the
// iteration and halts the actor. Taking an event is itself a scheduling
// point (op.PointDequeue), recorded right after the event is removed
// from the inbox so the exploration strategy can reorder interleavings
// across iterations.
func (a *Actor) dequeue() (Event, bool) {
	if a.raised != nil {
		e := *a.raised
		a.raised = nil
		a.ctx.Signal(op.PointDequeue, a.handle)
		return e, true
	}

	st := a.states[a.currentState()]
	for el := a.inbox.Front(); el != nil; el = el.Next() {
		ev := el.Value.(Event)
		if _, deferred := st.defer_[ev.Kind]; deferred {
			continue
		}
		if _, ignored := st.ignore[ev.Kind]; ignored {
			a.inbox.Remove(el)
			continue
		}
		if hasHandler(st, ev.Kind) {
			a.inbox.Remove(el)
			a.ctx.Signal(op.PointDequeue, a.handle)
			return ev, true
		}
		err := &UnhandledEventError{ActorName: a.Name, State: a.currentState(), EventKind: ev.Kind}
		a.logger().Err().Err(err).Str("actor", a.Name).Log("unhandled event")
		a.ctx.Assert(false, err.Error())
		a.halted = true
		return Event{}, false
	}

	// nothing runnable: yield so the scheduler can make progress
	// elsewhere, then the caller's loop re-checks.
	a.ctx.Yield()
	return Event{}, false
}

func hasHandler(st *stateTable, kind string) bool {
	_, ok := st.handlers[kind]
	return ok
}

// Receive blocks the actor's dispatch loop until an event of one of
// kinds arrives, bypassing the handler table (spec.md §3.3's
// receive-await). It scans independently of defer/ignore and of
// dequeue's handler-table lookup: the first inbox event whose kind is
// in kinds wins, whatever its position. Used from inside a Handler that
// needs to await a specific follow-up event synchronously.
func Receive(a *Actor, kinds ...string) Event {
	want := toSet(kinds)
	for {
		for el := a.inbox.Front(); el != nil; el = el.Next() {
			ev := el.Value.(Event)
			if _, ok := want[ev.Kind]; ok {
				a.inbox.Remove(el)
				a.ctx.Signal(op.PointReceive, a.handle)
				return ev
			}
		}
		a.ctx.BlockOn(op.PointReceive, a.handle)
	}
}

// dispatch runs the current state's handler for e and applies the
// resulting Continuation.
func (a *Actor) dispatch(e Event) {
	st := a.states[a.currentState()]
	h, ok := st.handlers[e.Kind]
	if !ok {
		err := &UnhandledEventError{ActorName: a.Name, State: a.currentState(), EventKind: e.Kind}
		a.logger().Err().Err(err).Str("actor", a.Name).Log("unhandled event")
		a.ctx.Assert(false, err.Error())
		a.halted = true
		return
	}

	a.logger().Debug().Str("actor", a.Name).Str("state", a.currentState()).Str("event", e.Kind).Log("dispatch")
	cont := a.runHandler(h, e)
	a.apply(cont)
}

// runHandler executes h, applying the actor's FailurePolicy if it
// panics.
func (a *Actor) runHandler(h Handler, e Event) (cont Continuation) {
	defer func() {
		if r := recover(); r != nil {
			switch a.policy {
			case PolicyHalt:
				cont = Halt()
			case PolicyHandledException:
				cont = Continue()
			case PolicyThrowException:
				panic(r)
			}
		}
	}()
	return h(a.ctx, a, e)
}

func (a *Actor) apply(cont Continuation) {
	switch cont.kind {
	case contContinue:
	case contRaise:
		a.raised = &cont.event
	case contGoto:
		a.runOnExit(a.currentState())
		a.stack[len(a.stack)-1] = cont.state
		a.runOnEntry(cont.state)
	case contPush:
		a.stack = append(a.stack, cont.state)
		a.runOnEntry(cont.state)
	case contPop:
		a.runOnExit(a.currentState())
		if len(a.stack) > 1 {
			a.stack = a.stack[:len(a.stack)-1]
		}
	case contHalt:
		a.runOnExit(a.currentState())
		a.halted = true
		a.inbox.Init() // drop everything still queued
	}
}

func (a *Actor) runOnEntry(state string) {
	if st := a.states[state]; st != nil && st.onEntry != nil {
		a.apply(a.runHandler(st.onEntry, Event{Kind: "__enter"}))
	}
}

func (a *Actor) runOnExit(state string) {
	if st := a.states[state]; st != nil && st.onExit != nil {
		a.runHandler(st.onExit, Event{Kind: "__exit"})
	}
}
