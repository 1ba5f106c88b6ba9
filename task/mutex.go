package task

import (
	"fmt"

	"github.com/arbiterlabs/arbiter/op"
	"github.com/arbiterlabs/arbiter/runtime"
)

// UnbalancedUnlockError reports an Unlock call from an operation that
// does not hold the mutex.
type UnbalancedUnlockError struct {
	Handle string
}

func (e *UnbalancedUnlockError) Error() string {
	return fmt.Sprintf("task: unlock of %q by an operation that does not hold it", e.Handle)
}

// Mutex is a reentrant lock scoped to controlled operations
// (spec.md §4.2's Mutex primitive). Grounded in eventloop/loop.go's
// single-owner resource pattern, generalised with a reentrancy count so
// a single operation recursing through a Mutex-protected call does not
// deadlock itself.
type Mutex struct {
	handle string
	owner  op.ID
	depth  int
	queue  []op.ID
}

// NewMutex creates an unlocked mutex identified by handle — handle
// becomes the resource name reported in DeadlockError.
func NewMutex(handle string) *Mutex {
	return &Mutex{handle: handle}
}

// Lock acquires the mutex, blocking if another operation holds it. The
// same operation may call Lock again while it already holds it
// (reentrant).
func (m *Mutex) Lock(ctx *runtime.Context) {
	id := ctx.ID()
	for m.owner != 0 && m.owner != id {
		m.queue = append(m.queue, id)
		ctx.BlockOn(op.PointLock, m.handle)
	}
	m.owner = id
	m.depth++
}

// Unlock releases one level of the mutex. Once depth reaches zero, the
// next queued waiter (if any) is made Enabled.
func (m *Mutex) Unlock(ctx *runtime.Context) error {
	if m.owner != ctx.ID() {
		return &UnbalancedUnlockError{Handle: m.handle}
	}
	m.depth--
	if m.depth > 0 {
		return nil
	}
	m.owner = 0
	if len(m.queue) > 0 {
		next := m.queue[0]
		m.queue = m.queue[1:]
		m.owner = next
		m.depth = 1
		ctx.Unblock(next)
	}
	ctx.Signal(op.PointUnlock, m.handle)
	return nil
}

// InterlockedRMW performs fn as a single scheduling-visible but
// internally uninterruptible read-modify-write (spec.md §4.2's
// InterlockedRMW): a PointInterlocked point is recorded so the
// exploration strategy can still reorder this step relative to other
// operations touching addr, but fn itself runs without an intervening
// scheduling decision.
func InterlockedRMW[T any](ctx *runtime.Context, addr *T, fn func(T) T) T {
	ctx.Signal(op.PointInterlocked, fmt.Sprintf("%p", addr))
	*addr = fn(*addr)
	return *addr
}
