package runtime_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbiterlabs/arbiter/op"
	"github.com/arbiterlabs/arbiter/runtime"
	"github.com/arbiterlabs/arbiter/strategy"
)

func TestTwoOperationsInterleaveUnderRandomStrategy(t *testing.T) {
	counter := 0
	rt := runtime.New(strategy.NewRandom(1), 1)
	err := rt.Start("main", func(ctx *runtime.Context) {
		ctx.Spawn("writer", "", func(inner *runtime.Context) {
			counter++
			inner.Yield()
			counter++
		})
		ctx.Yield()
		counter++
	})
	require.NoError(t, err)
	assert.Equal(t, 3, counter)
}

func TestDeadlockWhenBothOperationsBlockForever(t *testing.T) {
	rt := runtime.New(strategy.NewRandom(2), 2)
	err := rt.Start("main", func(ctx *runtime.Context) {
		ctx.Spawn("blocked", "", func(inner *runtime.Context) {
			inner.BlockOn(op.PointLock, "resource:1")
		})
		ctx.BlockOn(op.PointLock, "resource:1")
	})
	require.Error(t, err)
	var deadlock *runtime.DeadlockError
	assert.ErrorAs(t, err, &deadlock)
	assert.Len(t, deadlock.Waiting, 2)
}

func TestReplayReproducesRecordedSchedule(t *testing.T) {
	rt := runtime.New(strategy.NewRandom(3), 3)
	var order []int
	err := rt.Start("main", func(ctx *runtime.Context) {
		ctx.Spawn("a", "", func(inner *runtime.Context) {
			order = append(order, 1)
			inner.Yield()
			order = append(order, 2)
		})
		ctx.Yield()
		order = append(order, 3)
	})
	require.NoError(t, err)
	recorded := rt.Trace()
	assert.NotEmpty(t, recorded.Points)

	replayed := runtime.New(strategy.NewReplay(recorded), 3)
	var replayOrder []int
	err = replayed.Start("main", func(ctx *runtime.Context) {
		ctx.Spawn("a", "", func(inner *runtime.Context) {
			replayOrder = append(replayOrder, 1)
			inner.Yield()
			replayOrder = append(replayOrder, 2)
		})
		ctx.Yield()
		replayOrder = append(replayOrder, 3)
	})
	require.NoError(t, err)
	assert.Equal(t, order, replayOrder)
}

func TestPanicInOperationFaultsRatherThanCrashes(t *testing.T) {
	rt := runtime.New(strategy.NewRandom(4), 4)
	err := rt.Start("main", func(ctx *runtime.Context) {
		ctx.Spawn("exploder", "", func(inner *runtime.Context) {
			panic("boom")
		})
		ctx.Yield()
	})
	require.Error(t, err)
	var unhandled *runtime.UnhandledExceptionError
	require.ErrorAs(t, err, &unhandled)
	assert.Equal(t, "exploder", unhandled.OperationName)
	assert.EqualError(t, unhandled.Cause, "boom")
}

func TestRandomBoolRecordsTracePoint(t *testing.T) {
	rt := runtime.New(strategy.NewRandom(5), 5)
	err := rt.Start("main", func(ctx *runtime.Context) {
		_, rerr := ctx.RandomBool()
		require.NoError(t, rerr)
	})
	require.NoError(t, err)
	var sawRandomBool bool
	for _, p := range rt.Trace().Points {
		if p.Kind == op.PointRandomBool {
			sawRandomBool = true
		}
	}
	assert.True(t, sawRandomBool, "expected a Random-Bool trace point")
}

func TestRequestCancelCompletesBlockedOperation(t *testing.T) {
	rt := runtime.New(strategy.NewRandom(6), 6)
	var cancelled bool
	err := rt.Start("main", func(ctx *runtime.Context) {
		blockedID := ctx.Spawn("waiter", "", func(inner *runtime.Context) {
			inner.BlockOn(op.PointLock, "resource:never")
			cancelled = inner.Cancelled()
		})
		ctx.Yield()
		ctx.RequestCancel(blockedID)
	})
	require.NoError(t, err)
	assert.True(t, cancelled)
}
