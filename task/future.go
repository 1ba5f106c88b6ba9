// Package task implements the controlled task primitives spawned
// operations use to coordinate: spawn, await, delay, yield, the
// when_all/when_any combinators, completion sources, interlocked
// read-modify-write, and the reentrant Mutex/Cond pair. Every one of
// these is a scheduling point registered with runtime.Runtime — none of
// them block a physical goroutine except through the runtime's own
// park/wake baton.
package task

import (
	"errors"

	"github.com/arbiterlabs/arbiter/op"
	"github.com/arbiterlabs/arbiter/runtime"
)

// Cancelled is returned by Await when the underlying operation's
// context was cancelled before it completed.
var Cancelled = errors.New("task: operation was cancelled")

// AlreadyCompleted is returned by SetResult/SetError when the source
// has already settled once (spec.md §3.4, I3).
var AlreadyCompleted = errors.New("task: completion source already settled")

// CompletionSource is the producer side of a Future[T] — the
// controlled-runtime analogue of a resolvable promise
// (eventloop/promise.go's ChainedPromise, specialised to a single
// settle-once value rather than a chain).
type CompletionSource[T any] struct {
	fut *Future[T]
}

// NewCompletionSource creates an unsettled source and its paired
// Future.
func NewCompletionSource[T any]() *CompletionSource[T] {
	f := &Future[T]{done: make(chan struct{})}
	return &CompletionSource[T]{fut: f}
}

// Future returns the read side to hand to other operations.
func (s *CompletionSource[T]) Future() *Future[T] { return s.fut }

// SetResult settles the future with a value, waking every operation
// blocked in Await. Settling an already-settled source returns
// AlreadyCompleted — callers own the single-assignment discipline,
// matching eventloop/promise.go's ChainedPromise.
func (s *CompletionSource[T]) SetResult(ctx *runtime.Context, v T) error {
	return s.settle(ctx, v, nil)
}

// SetError settles the future with an error.
func (s *CompletionSource[T]) SetError(ctx *runtime.Context, err error) error {
	var zero T
	return s.settle(ctx, zero, err)
}

func (s *CompletionSource[T]) settle(ctx *runtime.Context, v T, err error) error {
	f := s.fut
	if f.settled {
		return AlreadyCompleted
	}
	f.value, f.err, f.settled = v, err, true
	for _, waiter := range f.waiters {
		ctx.Unblock(waiter)
	}
	close(f.done)
	f.waiters = nil
	ctx.Signal(op.PointPulse, f.handle())
	return nil
}

// Future is the read side of a CompletionSource (or the handle spawn
// returns for the spawned operation's completion).
type Future[T any] struct {
	done    chan struct{}
	settled bool
	value   T
	err     error
	waiters []op.ID
	id      op.ID // not set or read; handle() is the same constant for every future
}

func (f *Future[T]) handle() string {
	return "future"
}

// Await blocks the calling operation until the future settles,
// recording a ContinueAwait scheduling point (spec.md §4.2). It returns
// the settled value and error, or Cancelled if the calling operation's
// context was cancelled while it waited.
func (f *Future[T]) Await(ctx *runtime.Context) (T, error) {
	if f.settled {
		return f.value, f.err
	}
	f.waiters = append(f.waiters, ctx.ID())
	ctx.BlockOn(op.PointContinueAwait, f.handle())
	if ctx.Cancelled() {
		var zero T
		return zero, Cancelled
	}
	return f.value, f.err
}

// Ready reports whether the future has already settled, without
// blocking.
func (f *Future[T]) Ready() bool { return f.settled }

// Spawn launches fn as a new controlled operation and returns a future
// that settles once fn returns (or panics, in which case the runtime's
// on_failure path fires and the future never settles — the iteration
// is already over by then).
func Spawn(ctx *runtime.Context, name string, fn func(*runtime.Context)) *Future[struct{}] {
	src := NewCompletionSource[struct{}]()
	ctx.Spawn(name, "", func(inner *runtime.Context) {
		fn(inner)
		src.SetResult(inner, struct{}{})
	})
	return src.Future()
}

// Yield records a TaskYield scheduling point without changing status.
func Yield(ctx *runtime.Context) { ctx.Yield() }

// Delay parks the calling operation for up to rounds schedule rounds.
func Delay(ctx *runtime.Context, rounds int) { ctx.Delay(rounds) }
