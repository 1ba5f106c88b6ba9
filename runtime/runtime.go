// Package runtime implements the controlled runtime (spec.md §4.1): the
// central arbiter that holds the operation set, records scheduling
// decisions, asks the configured exploration strategy which operation
// runs next, and wakes exactly that operation while parking every other
// one.
//
// The runtime is single-threaded cooperative: physical goroutines exist
// (one per controlled operation, to carry its stack), but exactly one is
// ever unblocked at a time (spec.md §5).
package runtime

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/arbiterlabs/arbiter/arbiterlog"
	"github.com/arbiterlabs/arbiter/metrics"
	"github.com/arbiterlabs/arbiter/monitor"
	"github.com/arbiterlabs/arbiter/op"
	"github.com/arbiterlabs/arbiter/strategy"
	"github.com/arbiterlabs/arbiter/trace"
)

// opEntry bundles an Operation with the parking primitive the runtime
// signals to wake it.
type opEntry struct {
	operation *op.Operation
	wake      chan struct{}
	action    strategy.ActionInfo // most recent pending action, for DPOR
}

// Runtime is the controlled scheduler for one test iteration. A fresh
// Runtime must be created per iteration: Runtime has no method that
// resets its operation set or trace.
type Runtime struct {
	opts runtimeOptions

	mu      sync.Mutex
	ops     map[op.ID]*opEntry
	order   []op.ID
	nextID  op.ID
	running op.ID

	strategy strategy.Strategy
	recorder *trace.Recorder
	monitors []*monitor.Monitor

	clockRounds int
	stepCount   int

	eg     *errgroup.Group
	egCtx  context.Context //nolint:containedctx // one errgroup context owns the whole iteration's goroutine pool
	cancel context.CancelFunc

	doneCh chan struct{}
	result error
	once   sync.Once
}

// New creates a Runtime for one iteration, driven by strat and recording
// its decisions into seed/strategy-tagged trace.
func New(strat strategy.Strategy, seed int64, opts ...Option) *Runtime {
	cfg := resolveOptions(opts)
	ctx, cancel := context.WithCancel(context.Background())
	eg, egCtx := errgroup.WithContext(ctx)
	r := &Runtime{
		opts:     *cfg,
		ops:      make(map[op.ID]*opEntry),
		strategy: strat,
		recorder: trace.NewRecorder(seed, strat.Name()),
		eg:       eg,
		egCtx:    egCtx,
		cancel:   cancel,
		doneCh:   make(chan struct{}),
	}
	return r
}

// Trace returns the decisions recorded so far (a full trace once the
// iteration has ended).
func (r *Runtime) Trace() trace.Trace { return r.recorder.Trace() }

// Spawn registers a new operation owned by owner (empty for an anonymous
// task) and launches fn on its own goroutine. fn does not begin running
// until the runtime schedules it for the first time. current is the
// operation initiating the spawn (0 for the root/initial operation); a
// TaskCreate scheduling point is recorded against it.
//
// The context handle fn receives is *Context — spec.md §9's replacement
// for the source's ambient "current runtime" global: it is passed
// explicitly into every controlled primitive.
func (r *Runtime) Spawn(current op.ID, name, owner string, fn func(*Context)) op.ID {
	r.mu.Lock()
	id := r.nextID + 1
	r.nextID = id
	o := op.New(id, name, owner)
	o.SetStatus(op.Status{Kind: op.Enabled})
	entry := &opEntry{operation: o, wake: make(chan struct{}, 1)}
	r.ops[id] = entry
	r.order = append(r.order, id)
	r.mu.Unlock()

	r.eg.Go(func() error {
		select {
		case <-entry.wake:
		case <-r.egCtx.Done():
			return nil
		}
		ctx := &Context{rt: r, id: id}
		// a handler panic (e.g. actor.PolicyThrowException re-raising) marks
		// this operation Completed(Faulted) rather than crashing the whole
		// iteration's goroutine pool (spec.md §4.1, §4.3).
		defer func() {
			if rec := recover(); rec != nil {
				cause, ok := rec.(error)
				if !ok {
					cause = fmt.Errorf("%v", rec)
				}
				r.completeOperation(id, op.CompletedFaulted, cause)
			}
		}()
		fn(ctx)
		r.completeOperation(id, op.CompletedNormally, nil)
		return nil
	})

	if current != 0 {
		r.point(current, op.PointTaskCreate, op.Status{Kind: op.Enabled}, strategy.ActionInfo{Kind: op.PointTaskCreate, Target: fmt.Sprintf("op:%d", id)})
	}
	return id
}

// Start registers and schedules the root operation, blocking the
// calling goroutine (the test driver) until the whole iteration
// completes. It returns the first failure encountered (deadlock,
// liveness violation, assertion, unhandled exception, trace mismatch),
// or nil on a clean iteration.
func (r *Runtime) Start(name string, fn func(*Context)) error {
	rootID := r.Spawn(0, name, "", fn)
	r.mu.Lock()
	r.running = 0
	r.mu.Unlock()
	r.wake(rootID)

	go func() {
		_ = r.eg.Wait()
		r.once.Do(func() { close(r.doneCh) })
	}()

	<-r.doneCh
	metrics.SchedulePointsPerIteration.Observe(float64(r.stepCount))
	if r.result == nil {
		metrics.IterationsRun.WithLabelValues("clean").Inc()
	} else {
		metrics.IterationsRun.WithLabelValues("bug").Inc()
		recordBugClass(r.result)
	}
	return r.result
}

func recordBugClass(err error) {
	switch err.(type) {
	case *DeadlockError:
		metrics.DeadlocksDetected.Inc()
		metrics.BugsFound.WithLabelValues("deadlock").Inc()
	case *LivenessError:
		metrics.LivenessViolations.Inc()
		metrics.BugsFound.WithLabelValues("liveness").Inc()
	case *AssertionError:
		metrics.BugsFound.WithLabelValues("assertion").Inc()
	case *UnhandledExceptionError:
		metrics.BugsFound.WithLabelValues("unhandled_exception").Inc()
	case *UncontrolledConcurrencyError:
		metrics.BugsFound.WithLabelValues("uncontrolled_concurrency").Inc()
	default:
		metrics.BugsFound.WithLabelValues("other").Inc()
	}
}

// fail records the iteration's terminal error exactly once and tears
// down every parked operation. Deadlocks, liveness violations, asserts,
// unhandled exceptions, and replay mismatches all funnel through here,
// so this is the one place that logs them, at Error level (spec.md
// §10.1).
func (r *Runtime) fail(err error) {
	r.once.Do(func() {
		r.opts.logger.Err().
			Err(err).
			Str("kind", fmt.Sprintf("%T", err)).
			Log("iteration failed")
		r.result = err
		r.cancel()
		close(r.doneCh)
	})
	if r.opts.onFailure != nil {
		r.opts.onFailure(err)
	}
}

// Logger returns the structured logger this runtime was configured
// with.
func (r *Runtime) Logger() *arbiterlog.Logger { return r.opts.logger }
