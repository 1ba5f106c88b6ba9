package task_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbiterlabs/arbiter/runtime"
	"github.com/arbiterlabs/arbiter/strategy"
	"github.com/arbiterlabs/arbiter/task"
)

func TestSpawnAndAwaitOrdersCompletion(t *testing.T) {
	rt := runtime.New(strategy.NewRandom(11), 11)
	var result int
	err := rt.Start("main", func(ctx *runtime.Context) {
		fut := task.Spawn(ctx, "worker", func(inner *runtime.Context) {
			result = 42
		})
		_, _ = fut.Await(ctx)
		assert.Equal(t, 42, result)
	})
	require.NoError(t, err)
}

func TestMutexSerializesCriticalSection(t *testing.T) {
	rt := runtime.New(strategy.NewRandom(12), 12)
	mu := task.NewMutex("counter-lock")
	counter := 0
	err := rt.Start("main", func(ctx *runtime.Context) {
		done := make([]*task.Future[struct{}], 0, 4)
		for i := 0; i < 4; i++ {
			done = append(done, task.Spawn(ctx, "incrementer", func(inner *runtime.Context) {
				mu.Lock(inner)
				counter++
				require.NoError(t, mu.Unlock(inner))
			}))
		}
		_, err := task.WhenAll(ctx, done...)
		require.NoError(t, err)
	})
	require.NoError(t, err)
	assert.Equal(t, 4, counter)
}

func TestCondWaitPulseHandoff(t *testing.T) {
	rt := runtime.New(strategy.NewRandom(13), 13)
	mu := task.NewMutex("state-lock")
	cond := task.NewCond("state-cond", mu)
	ready := false
	var observed bool
	err := rt.Start("main", func(ctx *runtime.Context) {
		waiter := task.Spawn(ctx, "waiter", func(inner *runtime.Context) {
			mu.Lock(inner)
			for !ready {
				require.NoError(t, cond.Wait(inner))
			}
			observed = ready
			require.NoError(t, mu.Unlock(inner))
		})
		setter := task.Spawn(ctx, "setter", func(inner *runtime.Context) {
			mu.Lock(inner)
			ready = true
			cond.Pulse(inner)
			require.NoError(t, mu.Unlock(inner))
		})
		_, err := task.WhenAll(ctx, waiter, setter)
		require.NoError(t, err)
	})
	require.NoError(t, err)
	assert.True(t, observed)
}

func TestInterlockedRMWAccumulates(t *testing.T) {
	rt := runtime.New(strategy.NewRandom(14), 14)
	var total int64
	err := rt.Start("main", func(ctx *runtime.Context) {
		futs := make([]*task.Future[struct{}], 0, 8)
		for i := 0; i < 8; i++ {
			futs = append(futs, task.Spawn(ctx, "adder", func(inner *runtime.Context) {
				task.InterlockedRMW(inner, &total, func(v int64) int64 { return v + 1 })
			}))
		}
		_, err := task.WhenAll(ctx, futs...)
		require.NoError(t, err)
	})
	require.NoError(t, err)
	assert.EqualValues(t, 8, total)
}

func TestCompletionSourceDoubleSettleReturnsAlreadyCompleted(t *testing.T) {
	rt := runtime.New(strategy.NewRandom(15), 15)
	err := rt.Start("main", func(ctx *runtime.Context) {
		src := task.NewCompletionSource[int]()
		require.NoError(t, src.SetResult(ctx, 1))
		assert.ErrorIs(t, src.SetResult(ctx, 2), task.AlreadyCompleted)
		assert.ErrorIs(t, src.SetError(ctx, assert.AnError), task.AlreadyCompleted)
		v, err := src.Future().Await(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, v)
	})
	require.NoError(t, err)
}

func TestFutureAwaitReturnsCancelledAfterRequestCancel(t *testing.T) {
	rt := runtime.New(strategy.NewRandom(16), 16)
	var awaitErr error
	err := rt.Start("main", func(ctx *runtime.Context) {
		src := task.NewCompletionSource[int]()
		waiter := ctx.Spawn("waiter", "", func(inner *runtime.Context) {
			_, awaitErr = src.Future().Await(inner)
		})
		ctx.Yield()
		ctx.RequestCancel(waiter)
	})
	require.NoError(t, err)
	assert.ErrorIs(t, awaitErr, task.Cancelled)
}
