package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/arena/config"
	"github.com/pthm-cable/arena/policy"
)

func TestParamVectorDefaults(t *testing.T) {
	pv := NewParamVector()
	require.Equal(t, pv.Dim(), len(pv.DefaultVector()))
	assert.Equal(t, policy.DefaultGains(), pv.ToGains(pv.DefaultVector()))

	for i, v := range pv.DefaultVector() {
		spec := pv.Specs[i]
		assert.GreaterOrEqual(t, v, spec.Min, spec.Name)
		assert.LessOrEqual(t, v, spec.Max, spec.Name)
	}
}

func TestParamVectorNormalize(t *testing.T) {
	pv := NewParamVector()
	raw := pv.DefaultVector()
	back := pv.Denormalize(pv.Normalize(raw))
	for i := range raw {
		assert.InDelta(t, raw[i], back[i], 1e-12)
	}

	zeros := pv.Denormalize(make([]float64, pv.Dim()))
	for i, spec := range pv.Specs {
		assert.Equal(t, spec.Min, zeros[i])
	}
}

func TestParamVectorClamp(t *testing.T) {
	pv := NewParamVector()
	v := make([]float64, pv.Dim())
	for i := range v {
		v[i] = 100
	}
	v[0] = -5

	g := pv.ToGains(v)
	assert.Equal(t, pv.Specs[0].Min, g.TurnGain)
	assert.Equal(t, pv.Specs[6].Max, g.WallAvoidDistance)
}

func TestFitnessEvaluator(t *testing.T) {
	pv := NewParamVector()
	fe := NewFitnessEvaluator(pv, config.Default(), policy.DefaultGains(), []int64{1, 2}, 60, 0)

	f1, err := fe.Evaluate(context.Background(), pv.DefaultVector())
	require.NoError(t, err)
	f2, err := fe.Evaluate(context.Background(), pv.DefaultVector())
	require.NoError(t, err)
	assert.Equal(t, f1, f2, "same gains and seeds score the same")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = fe.Evaluate(ctx, pv.DefaultVector())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "1m05s", formatDuration(65e9))
	assert.Equal(t, "2h00m01s", formatDuration(7201e9))
}
