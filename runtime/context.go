package runtime

import (
	"github.com/arbiterlabs/arbiter/op"
	"github.com/arbiterlabs/arbiter/strategy"
)

// Context is the handle a controlled operation's function body uses to
// reach the runtime that owns it. It plays the role the source's
// ambient "current execution context" global plays, but passed
// explicitly (spec.md §9's "no hidden ambient state" decision).
type Context struct {
	rt *Runtime
	id op.ID
}

// ID returns the operation id this context belongs to.
func (c *Context) ID() op.ID { return c.id }

// Runtime returns the owning runtime, for packages (task, actor) that
// need lower-level access such as Spawn.
func (c *Context) Runtime() *Runtime { return c.rt }

// Yield records a TaskYield scheduling point: the operation stays
// Enabled but offers the scheduler a chance to run something else.
func (c *Context) Yield() {
	c.rt.point(c.id, op.PointTaskYield, op.Status{Kind: op.Enabled}, strategy.ActionInfo{Kind: op.PointTaskYield})
}

// Delay parks the operation for up to rounds schedule rounds (spec.md
// §4.4's logical delay clock — never a wall-clock sleep).
func (c *Context) Delay(rounds int) {
	if rounds <= 0 {
		c.Yield()
		return
	}
	c.rt.point(c.id, op.PointDelay, op.Status{Kind: op.Delayed, RoundsLeft: rounds}, strategy.ActionInfo{Kind: op.PointDelay})
}

// BlockOn parks the operation awaiting resource (a lock, condition
// variable, future, or inbox) identified by handle, recording a
// scheduling point of the given kind. The operation remains blocked
// until another operation calls Unblock with the same id.
func (c *Context) BlockOn(kind op.PointKind, handle string) {
	c.rt.point(c.id, kind, op.Status{Kind: op.BlockedOnResource, ResourceHandle: handle}, strategy.ActionInfo{Kind: kind, Target: handle})
}

// Unblock transitions a previously blocked operation back to Enabled,
// making it a scheduling candidate again. It does not itself yield a
// scheduling point — the caller is expected to reach one shortly after
// (e.g. via Unlock's own PointUnlock point).
func (c *Context) Unblock(id op.ID) {
	c.rt.mu.Lock()
	entry, ok := c.rt.ops[id]
	c.rt.mu.Unlock()
	if !ok {
		return
	}
	entry.operation.SetStatus(op.Status{Kind: op.Enabled})
}

// Signal records a scheduling point of kind without changing this
// operation's own status — used by resource-release primitives (Unlock,
// Pulse, Send) that hand control back to the scheduler after waking
// someone else via Unblock.
func (c *Context) Signal(kind op.PointKind, target string) {
	c.rt.point(c.id, kind, op.Status{Kind: op.Enabled}, strategy.ActionInfo{Kind: kind, Target: target})
}

// RandomBool asks the configured strategy for a controlled boolean
// choice (spec.md §4.5's ChooseBool primitive), recording a
// Random-Bool trace point exactly like every other scheduling
// decision so a replay strategy can reproduce it.
func (c *Context) RandomBool() (bool, error) {
	return c.rt.chooseBool(c.id)
}

// RandomInt asks the configured strategy for a controlled integer
// choice in [0, upper), recording a Random-Int trace point.
func (c *Context) RandomInt(upper int) (int, error) {
	return c.rt.chooseInt(c.id, upper)
}

// RequestCancel marks target's cooperative cancel token (spec.md §4.1
// "Cancellation & timeouts"). A target currently blocked is made
// schedulable again, since nothing else will ever unblock it; an
// Enabled or Delayed target simply observes the flag itself, via
// Cancelled, the next time it is checked. RequestCancel is itself a
// scheduling point, so the newly-schedulable target is woken through
// the normal strategy choice rather than directly from here.
func (c *Context) RequestCancel(target op.ID) {
	c.rt.requestCancel(target)
	c.rt.point(c.id, op.PointCancel, op.Status{Kind: op.Enabled}, strategy.ActionInfo{Kind: op.PointCancel})
}

// Cancelled reports whether this operation's own cancel token has
// fired. Suspension points that support cancellation (e.g.
// task.Future.Await) check this immediately after being woken, to
// distinguish an ordinary wake from a cancelled one.
func (c *Context) Cancelled() bool {
	return c.rt.cancelRequested(c.id)
}

// Spawn creates a new operation as a child of this one.
func (c *Context) Spawn(name, owner string, fn func(*Context)) op.ID {
	return c.rt.Spawn(c.id, name, owner, fn)
}

// Assert fails the iteration with an AssertionError if cond is false
// (spec.md §4.6's programmer-visible assertions).
func (c *Context) Assert(cond bool, message string) {
	if !cond {
		c.rt.fail(&AssertionError{Message: message})
	}
}

// Status returns this operation's current status snapshot.
func (c *Context) Status() op.Status {
	c.rt.mu.Lock()
	defer c.rt.mu.Unlock()
	return c.rt.ops[c.id].operation.Status()
}
