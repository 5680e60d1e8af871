package trial

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/lozenge/internal/pattern"
	"github.com/joshuapare/lozenge/merge"
	"github.com/joshuapare/lozenge/mergestep"
)

func randomSpec(t *testing.T) Spec {
	t.Helper()
	layout, ok := pattern.Named("random", 0)
	require.True(t, ok)
	return Spec{
		Size:    200,
		Trials:  40,
		Workers: 4,
		Layout:  layout,
		Nudges:  10,
		Seed:    1,
		Options: merge.DefaultOptions(),
		Verify:  true,
	}
}

func TestRun(t *testing.T) {
	spec := randomSpec(t)
	res, err := Run(context.Background(), spec)
	require.NoError(t, err)

	assert.Equal(t, spec.Trials, res.Trials)
	assert.Equal(t, spec.Trials, res.Stats.Sorts())
	assert.Empty(t, res.Failures)
	assert.Equal(t, mergestep.Levels(spec.Size), res.Stats.Levels())
	assert.Greater(t, res.Stats.Mean(), float64(spec.Size-1))
	assert.Positive(t, res.RecordsPerSecond())
}

func TestRun_Deterministic(t *testing.T) {
	spec := randomSpec(t)
	a, err := Run(context.Background(), spec)
	require.NoError(t, err)
	spec.Workers = 1
	b, err := Run(context.Background(), spec)
	require.NoError(t, err)
	assert.Equal(t, a.Stats.Totals(), b.Stats.Totals())
}

func TestRun_SmallSizeClampsSwitchLevel(t *testing.T) {
	spec := randomSpec(t)
	spec.Size = 5
	_, err := Run(context.Background(), spec)
	require.NoError(t, err)
}

func TestRun_InvalidSpec(t *testing.T) {
	spec := randomSpec(t)
	spec.Workers = 0
	_, err := Run(context.Background(), spec)
	require.Error(t, err)

	spec = randomSpec(t)
	spec.Options = merge.Options{Upper: merge.StrategySwitch, Lower: merge.StrategySwitch, FinalReverse: true}
	_, err = Run(context.Background(), spec)
	assert.True(t, errors.Is(err, merge.ErrInvalidOptions))
}

func TestRun_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := Run(ctx, randomSpec(t))
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, res.Trials)
}

func TestRun_WaitsForEveryTrial(t *testing.T) {
	spec := randomSpec(t)
	spec.Trials = 64
	spec.Workers = 8
	for i := 0; i < 5; i++ {
		res, err := Run(context.Background(), spec)
		require.NoError(t, err)
		require.Equal(t, spec.Trials, res.Trials)
		require.Equal(t, spec.Trials, res.Stats.Sorts())
	}
}

func TestRun_StepHookPanicIsFailure(t *testing.T) {
	spec := randomSpec(t)
	spec.Trials = 3
	spec.Options.StepHook = func(mergestep.Step, merge.Run) { panic(errors.New("hook")) }
	res, err := Run(context.Background(), spec)
	require.ErrorIs(t, err, ErrFailed)
	require.Len(t, res.Failures, 3)
	assert.Equal(t, 0, res.Failures[0].Trial)
	assert.Len(t, res.Failures[0].Keys, spec.Size)
	assert.EqualError(t, res.Failures[0].Err, "hook")
	assert.Zero(t, res.Trials)
}

func TestExhaustive(t *testing.T) {
	for _, k := range merge.Strategies() {
		t.Run(k.String(), func(t *testing.T) {
			count, err := Exhaustive(context.Background(), pattern.Identity(6), merge.Single(k), 3, nil)
			require.NoError(t, err)
			assert.Equal(t, 720, count)
		})
	}
}

func TestExhaustive_Duplicates(t *testing.T) {
	count, err := Exhaustive(context.Background(), []uint32{0, 1, 1, 2}, merge.DefaultOptions(), 2, nil)
	require.NoError(t, err)
	assert.Equal(t, 24, count)
}

func TestExhaustive_HookFailure(t *testing.T) {
	o := merge.Single(merge.StrategyLegacy)
	o.StepHook = func(st mergestep.Step, _ merge.Run) {
		if st.Upper-st.Lower == 4 {
			panic("bad step")
		}
	}
	_, err := Exhaustive(context.Background(), pattern.Identity(4), o, 1, nil)
	require.ErrorIs(t, err, ErrFailed)
	assert.Contains(t, err.Error(), "bad step")
}
