package strategy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arbiterlabs/arbiter/op"
	"github.com/arbiterlabs/arbiter/strategy"
)

func TestRandomChoosesFromEnabled(t *testing.T) {
	s := strategy.NewRandom(1)
	enabled := []op.ID{3, 1, 2}
	for i := 0; i < 20; i++ {
		id, err := s.ChooseNext(op.PointDequeue, enabled)
		require.NoError(t, err)
		assert.Contains(t, enabled, id)
	}
	assert.True(t, s.PrepareNextIteration())
}

func TestDFSExploresEveryBooleanCombination(t *testing.T) {
	s := strategy.NewDFS()
	seen := make(map[[2]bool]bool)
	for {
		a, err := s.ChooseBool()
		require.NoError(t, err)
		b, err := s.ChooseBool()
		require.NoError(t, err)
		seen[[2]bool{a, b}] = true
		if !s.PrepareNextIteration() {
			break
		}
	}
	assert.Len(t, seen, 4)
}

func TestFairNeverStarvesAnEnabledOperation(t *testing.T) {
	s := strategy.NewFair()
	enabled := []op.ID{1, 2, 3}
	lastScheduled := map[op.ID]int{}
	for step := 0; step < 300; step++ {
		id, err := s.ChooseNext(op.PointDequeue, enabled)
		require.NoError(t, err)
		for _, e := range enabled {
			if e != id {
				assert.LessOrEqual(t, step-lastScheduled[e], len(enabled)+1,
					"operation %d starved past the enabled-set bound", e)
			}
		}
		lastScheduled[id] = step
	}
}

func TestReplayReproducesRecordedChoices(t *testing.T) {
	r := strategy.NewReplay(recordedTrace())
	id, err := r.ChooseNext(op.PointDequeue, []op.ID{1, 2})
	require.NoError(t, err)
	assert.Equal(t, op.ID(2), id)

	b, err := r.ChooseBool()
	require.NoError(t, err)
	assert.True(t, b)

	assert.False(t, r.PrepareNextIteration())
	assert.True(t, r.Exhausted())
}

func TestReplayDetectsTraceMismatch(t *testing.T) {
	r := strategy.NewReplay(recordedTrace())
	_, err := r.ChooseInt(5)
	require.Error(t, err)
	var mismatch *strategy.TraceMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, op.PointDequeue, mismatch.Expected)
	assert.Equal(t, op.PointRandomInt, mismatch.Actual)
}

func TestDPORTreatsSameTargetSendsAsDependent(t *testing.T) {
	s := strategy.NewDPOR()
	actions := map[op.ID]strategy.ActionInfo{
		1: {Kind: op.PointSend, Target: "actorA"},
		2: {Kind: op.PointSend, Target: "actorA"},
	}
	orders := make(map[op.ID]bool)
	for {
		id, err := s.ChooseNextWithActions(actions)
		require.NoError(t, err)
		orders[id] = true
		if !s.PrepareNextIteration() {
			break
		}
	}
	assert.Len(t, orders, 2, "same-target sends must both be explored as first choice (dependent)")
}
