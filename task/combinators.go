package task

import (
	"github.com/arbiterlabs/arbiter/op"
	"github.com/arbiterlabs/arbiter/runtime"
)

// WhenAll awaits every future in order, returning the slice of settled
// values or the first error encountered (spec.md §4.2's when_all).
// Grounded in eventloop/promise.go's All combinator, simplified: since
// exactly one operation runs at a time, there is no benefit to a
// fan-out select over a sequential await loop — the scheduler already
// explores every interleaving of the producers across iterations.
func WhenAll[T any](ctx *runtime.Context, futures ...*Future[T]) ([]T, error) {
	results := make([]T, len(futures))
	var firstErr error
	for i, f := range futures {
		v, err := f.Await(ctx)
		results[i] = v
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return results, firstErr
}

// WhenAny awaits whichever future settles first, returning its index
// and value. Because only one operation is ever running, "first" means
// first in schedule order, not wall-clock order — the exploration
// strategy decides which producer runs first, and across iterations
// every producer gets to win (spec.md §4.2's when_any, §5's fairness
// goal applied to racing completions).
func WhenAny[T any](ctx *runtime.Context, futures ...*Future[T]) (int, T, error) {
	for {
		for i, f := range futures {
			if f.settled {
				return i, f.value, f.err
			}
		}
		// none settled yet: block on whichever settles first by
		// registering as a waiter on all of them, then re-poll once
		// woken.
		for _, f := range futures {
			f.waiters = append(f.waiters, ctx.ID())
		}
		ctx.BlockOn(futures[0].pointKindForWait(), "when_any")
	}
}

func (f *Future[T]) pointKindForWait() op.PointKind { return op.PointContinueAwait }
