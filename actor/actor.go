// Package actor implements the actor/state-machine executor (spec.md
// §3.3/§4.3): each Actor owns an inbox, a per-state handler table with
// defer/ignore sets, a state stack for Push/Pop transitions, and a
// single pending-raise slot. Event dequeue is itself a scheduling
// point, registered with the owning runtime.Runtime.
package actor

import (
	"container/list"
	"fmt"

	"github.com/google/uuid"

	"github.com/arbiterlabs/arbiter/op"
	"github.com/arbiterlabs/arbiter/runtime"
)

// Event is one message delivered to an actor's inbox.
type Event struct {
	Kind  string
	Group uuid.UUID
	Value any
}

// Continuation is the tagged return value a Handler produces in place
// of exception-based control flow (spec.md §9's Continue | Raise |
// Goto | Push | Pop | Halt).
type Continuation struct {
	kind  continuationKind
	event Event
	state string
}

type continuationKind int

const (
	contContinue continuationKind = iota
	contRaise
	contGoto
	contPush
	contPop
	contHalt
)

// Continue leaves the actor in its current state.
func Continue() Continuation { return Continuation{kind: contContinue} }

// Raise queues event to pre-empt the inbox on the actor's next
// dispatch. A Handler returns a single Continuation, so at most one
// event is raised per handler invocation: only the Raise value the
// handler returns takes effect.
func Raise(event Event) Continuation { return Continuation{kind: contRaise, event: event} }

// Goto transitions the actor directly to state, running the current
// state's OnExit and the new state's OnEntry.
func Goto(state string) Continuation { return Continuation{kind: contGoto, state: state} }

// Push enters state as a nested state, preserving the current state on
// the stack.
func Push(state string) Continuation { return Continuation{kind: contPush, state: state} }

// Pop returns to the state beneath the current one on the stack.
func Pop() Continuation { return Continuation{kind: contPop} }

// Halt ends the actor: the current state's OnExit hook runs, then the
// inbox is cleared and silently drops every further event. There is no
// separate halt hook.
func Halt() Continuation { return Continuation{kind: contHalt} }

// Handler processes one event in some state, returning the next
// continuation. ctx gives it access to controlled suspension (it may
// itself await, matching spec.md §4.3's "runs the handler to
// completion, which may itself await").
type Handler func(ctx *runtime.Context, a *Actor, e Event) Continuation

// FailurePolicy governs what happens when a Handler panics (spec.md
// §4.3's per-actor exception policy).
type FailurePolicy int

const (
	// PolicyHalt marks the actor Halted and swallows the panic.
	PolicyHalt FailurePolicy = iota
	// PolicyHandledException swallows the panic and continues in the
	// current state.
	PolicyHandledException
	// PolicyThrowException propagates to the runtime's on_failure and
	// ends the iteration.
	PolicyThrowException
)

// stateTable holds one state's handler set plus its defer/ignore sets
// and lifecycle hooks.
type stateTable struct {
	handlers map[string]Handler
	defer_   map[string]struct{}
	ignore   map[string]struct{}
	onEntry  Handler
	onExit   Handler
}

// Actor is one long-lived state-machine entity (spec.md §3.3).
type Actor struct {
	ID     uuid.UUID
	Name   string
	ctx    *runtime.Context
	policy FailurePolicy

	states map[string]*stateTable
	stack  []string
	halted bool
	raised *Event
	inbox  *list.List // of Event

	handle string
}

// New creates an actor named name, starting in state initial. policy
// governs handler-panic recovery. The actor is not bound to any
// operation until Run is called — constructing it does not require a
// *runtime.Context, so a spawning operation can build every actor it
// needs up front and hand pointers to the goroutines it then spawns for
// each one.
func New(name, initial string, policy FailurePolicy) *Actor {
	a := &Actor{
		ID:     uuid.New(),
		Name:   name,
		policy: policy,
		states: map[string]*stateTable{},
		stack:  []string{initial},
		inbox:  list.New(),
	}
	a.handle = fmt.Sprintf("actor:%s", a.ID)
	return a
}

// State registers a handler table for name. defer_ and ignore name the
// event kinds that state defers and ignores respectively; either may be
// nil.
func (a *Actor) State(name string, handlers map[string]Handler, defer_, ignore []string) {
	st := &stateTable{handlers: handlers, defer_: toSet(defer_), ignore: toSet(ignore)}
	a.states[name] = st
}

// OnEntry/OnExit attach lifecycle hooks to an already-registered state.
func (a *Actor) OnEntry(state string, h Handler) { a.states[state].onEntry = h }
func (a *Actor) OnExit(state string, h Handler)  { a.states[state].onExit = h }

func toSet(ss []string) map[string]struct{} {
	m := make(map[string]struct{}, len(ss))
	for _, s := range ss {
		m[s] = struct{}{}
	}
	return m
}

func (a *Actor) currentState() string { return a.stack[len(a.stack)-1] }

// CurrentState returns the actor's current (innermost) state name.
func (a *Actor) CurrentState() string { return a.currentState() }

// Halted reports whether the actor has halted.
func (a *Actor) Halted() bool { return a.halted }

// Send enqueues event into a's inbox. Once halted, the actor silently
// drops it (spec.md §3.3's "Halted flag... drops further events
// silently").
func Send(ctx *runtime.Context, a *Actor, event Event) {
	if a.halted {
		ctx.Signal(op.PointSend, a.handle)
		return
	}
	a.inbox.PushBack(event)
	if a.ctx != nil && a.ctx.ID() != ctx.ID() {
		// wake a's operation if it is parked in Receive on this inbox
		if st := a.ctx.Status(); st.Kind == op.BlockedOnResource && st.ResourceHandle == a.handle {
			ctx.Unblock(a.ctx.ID())
		}
	}
	ctx.Signal(op.PointSend, a.handle)
}
