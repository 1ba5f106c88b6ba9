package task

import (
	"github.com/arbiterlabs/arbiter/op"
	"github.com/arbiterlabs/arbiter/runtime"
)

// InvalidWaitStateError reports a Wait call from an operation that does
// not currently hold the condition variable's mutex.
type InvalidWaitStateError struct {
	Handle string
}

func (e *InvalidWaitStateError) Error() string {
	return "task: Wait called on " + e.Handle + " without holding its mutex"
}

// Cond is a condition variable paired with a Mutex (spec.md §4.2's
// Wait/Pulse/PulseAll). Grounded in the same single-owner resource
// idiom as Mutex; Wait implements the standard monitor pattern —
// release the mutex, block, then reacquire before returning.
type Cond struct {
	handle string
	mu     *Mutex
	queue  []op.ID
}

// NewCond creates a condition variable guarded by mu.
func NewCond(handle string, mu *Mutex) *Cond {
	return &Cond{handle: handle, mu: mu}
}

// Wait releases the guarding mutex, blocks until Pulse or PulseAll
// wakes this operation, then reacquires the mutex before returning.
func (c *Cond) Wait(ctx *runtime.Context) error {
	if c.mu.owner != ctx.ID() {
		return &InvalidWaitStateError{Handle: c.handle}
	}
	c.queue = append(c.queue, ctx.ID())
	if err := c.mu.Unlock(ctx); err != nil {
		return err
	}
	// a Pulse may already have dequeued this operation during Unlock's
	// scheduling point; block only while it is still queued.
	for _, id := range c.queue {
		if id == ctx.ID() {
			ctx.BlockOn(op.PointWait, c.handle)
			break
		}
	}
	c.mu.Lock(ctx)
	return nil
}

// Pulse wakes one waiting operation, if any. The woken operation still
// has to reacquire the mutex before Wait returns, exactly like the
// source monitor semantics this generalises.
func (c *Cond) Pulse(ctx *runtime.Context) {
	if len(c.queue) == 0 {
		ctx.Signal(op.PointPulse, c.handle)
		return
	}
	next := c.queue[0]
	c.queue = c.queue[1:]
	ctx.Unblock(next)
	ctx.Signal(op.PointPulse, c.handle)
}

// PulseAll wakes every waiting operation.
func (c *Cond) PulseAll(ctx *runtime.Context) {
	waiters := c.queue
	c.queue = nil
	for _, id := range waiters {
		ctx.Unblock(id)
	}
	ctx.Signal(op.PointPulse, c.handle)
}
