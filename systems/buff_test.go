package systems

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/arena/config"
)

func TestBuffActivatesAfterDwell(t *testing.T) {
	cfg := config.Default()
	space := newTestSpace()
	red := newTestRobot(t, space, Robot0, TeamRed, r2.Vec{X: 6.3, Y: 0.7}, 0, cfg.Robot)
	buffs := NewBuffAreas(cfg.Buff)
	require.Len(t, buffs.Areas, 2)

	// First update enters the zone; the dwell is measured from there.
	activatedAt := 0
	for tick := 1; tick <= 200; tick++ {
		got := buffs.Update([]*Robot{red}, float64(tick)*testDT)
		if len(got) > 0 {
			assert.Equal(t, []RobotID{Robot0}, got)
			activatedAt = tick
			break
		}
	}
	assert.Equal(t, 151, activatedAt)
	assert.Equal(t, cfg.Buff.DurationSec, red.BuffLeft)
	assert.InDelta(t, cfg.Buff.DwellSec, buffs.Areas[0].MaxStayTime, 1e-9)
	assert.Zero(t, buffs.Areas[0].Stay, "dwell restarts after activation")
}

func TestBuffLeavingResetsDwell(t *testing.T) {
	cfg := config.Default()
	space := newTestSpace()
	red := newTestRobot(t, space, Robot0, TeamRed, r2.Vec{X: 6.3, Y: 0.7}, 0, cfg.Robot)
	buffs := NewBuffAreas(cfg.Buff)
	robots := []*Robot{red}

	for tick := 1; tick <= 100; tick++ {
		buffs.Update(robots, float64(tick)*testDT)
	}
	assert.InDelta(t, 99*testDT, buffs.Areas[0].Stay, 1e-9)

	red.SetPose(r2.Vec{X: 4, Y: 1.5}, 0)
	buffs.Update(robots, 101*testDT)
	assert.Zero(t, buffs.Areas[0].Stay)

	red.SetPose(r2.Vec{X: 6.3, Y: 0.7}, 0)
	for tick := 102; tick <= 200; tick++ {
		assert.Empty(t, buffs.Update(robots, float64(tick)*testDT))
	}
	assert.Zero(t, red.BuffLeft)
}

func TestBuffIgnoresOtherTeam(t *testing.T) {
	cfg := config.Default()
	space := newTestSpace()
	blue := newTestRobot(t, space, Robot1, TeamBlue, r2.Vec{X: 6.3, Y: 0.7}, 0, cfg.Robot)
	buffs := NewBuffAreas(cfg.Buff)

	for tick := 1; tick <= 400; tick++ {
		assert.Empty(t, buffs.Update([]*Robot{blue}, float64(tick)*testDT))
	}
	assert.Zero(t, blue.BuffLeft)
	assert.Zero(t, buffs.Areas[0].MaxStayTime)
}
