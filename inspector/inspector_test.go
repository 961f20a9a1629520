package inspector

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/arena/config"
	"github.com/pthm-cable/arena/game"
	"github.com/pthm-cable/arena/policy"
)

func TestSectorLabels(t *testing.T) {
	cfg := config.Default()
	labels := SectorLabels(cfg.Sensors, cfg.Derived.ScanRays)
	require.Len(t, labels, policy.NumSectors)
	assert.Equal(t, "-121", labels[0])
	assert.Equal(t, "-1", labels[4])
	assert.Equal(t, "119", labels[8])
}

func TestInputLabels(t *testing.T) {
	assert.Len(t, InputLabels, policy.NumInputs)
	assert.Len(t, OutputLabels, policy.NumOutputs)
	assert.Equal(t, "Detect", InputLabels[policy.NumInputs-1])
}

func TestPick(t *testing.T) {
	ins := NewInspector(config.Default())
	robots := []game.RobotFrame{
		{ID: game.Robot0, Position: r2.Vec{X: 1, Y: 1}, Radius: 0.25},
		{ID: game.Robot1, Position: r2.Vec{X: 2, Y: 1}, Radius: 0.25},
	}

	_, ok := ins.Selected()
	assert.False(t, ok)

	assert.True(t, ins.Pick(robots, 1.3, 1))
	id, ok := ins.Selected()
	assert.True(t, ok)
	assert.Equal(t, game.Robot0, id)

	assert.False(t, ins.Pick(robots, 5, 5))
	id, _ = ins.Selected()
	assert.Equal(t, game.Robot0, id, "a miss keeps the selection")

	assert.True(t, ins.Pick(robots, 1.9, 1.1))
	id, _ = ins.Selected()
	assert.Equal(t, game.Robot1, id)

	ins.Deselect()
	_, ok = ins.Selected()
	assert.False(t, ok)
}

func TestPolicyName(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, "none", policyName(nil))
	assert.Equal(t, "idle", policyName(policy.Idle{}))
	assert.Equal(t, "scripted", policyName(policy.NewScripted(cfg.Sensors, policy.DefaultGains())))
}

func TestActivationColor(t *testing.T) {
	assert.Equal(t, ColorNodeInactive, activationColor(0))
	assert.Equal(t, rl.Color{R: 255, G: 30, B: 30, A: 255}, activationColor(1))
	assert.Equal(t, rl.Color{R: 30, G: 30, B: 255, A: 255}, activationColor(-3), "clamped")
}

func TestHistoryRecord(t *testing.T) {
	p := NewHistoryPanel(0, 0, 400, 2, rl.Red, rl.Blue)
	for _, tick := range []int{0, 1, 2, 2, 4} {
		p.Record(tick, 2000, 2000-tick*100, float64(tick))
	}
	assert.Equal(t, 3, p.Count(), "off-cadence and repeated ticks are skipped")
	assert.Equal(t, 1600.0, p.sample(seriesHealth1, 2))

	p.Reset()
	assert.Equal(t, 0, p.Count())
	p.Record(0, 1, 1, 0)
	assert.Equal(t, 1, p.Count(), "tick 0 is recorded again after a reset")
}

func TestHistoryRingBuffer(t *testing.T) {
	p := NewHistoryPanel(0, 0, 400, 1, rl.Red, rl.Blue)
	for tick := 0; tick < historySize+50; tick++ {
		p.Record(tick, tick, 0, 0)
	}
	assert.Equal(t, historySize, p.Count())
	assert.Equal(t, 50.0, p.sample(seriesHealth0, 0), "oldest sample")
	assert.Equal(t, float64(historySize+49), p.sample(seriesHealth0, historySize-1))
}

func TestHistoryRange(t *testing.T) {
	p := NewHistoryPanel(0, 0, 400, 1, rl.Red, rl.Blue)
	p.Record(0, 2000, 2000, 0)
	p.Record(1, 2000, 1000, 0)

	lo, hi := p.seriesRange(seriesHealth0, seriesHealth1)
	assert.InDelta(t, 900, lo, 1e-9)
	assert.InDelta(t, 2100, hi, 1e-9)

	lo, hi = p.seriesRange(seriesScore)
	assert.Equal(t, 0.0, lo, "flat series falls back to the unit range")
	assert.Equal(t, 1.0, hi)

	p.seriesVisible[seriesHealth1] = false
	lo, hi = p.seriesRange(seriesHealth0, seriesHealth1)
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 1.0, hi)
}
