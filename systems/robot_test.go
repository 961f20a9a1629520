package systems

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/arena/config"
)

func TestRobotLoseHealthClampsAtZero(t *testing.T) {
	cfg := config.Default()
	r := newTestRobot(t, newTestSpace(), Robot0, TeamRed, r2.Vec{X: 1, Y: 1}, 0, cfg.Robot)

	tests := []struct {
		damage   int
		wantLost int
		wantLeft int
	}{
		{50, 50, 1950},
		{0, 0, 1950},
		{-10, 0, 1950},
		{1900, 1900, 50},
		{100, 50, 0},
		{10, 0, 0},
	}
	for _, tc := range tests {
		before := r.Health
		assert.Equal(t, tc.wantLost, r.LoseHealth(tc.damage))
		assert.Equal(t, tc.wantLeft, r.Health)
		assert.LessOrEqual(t, r.Health, before)
	}
	assert.True(t, r.Dead())
}

func TestRobotAmmoAndSupply(t *testing.T) {
	cfg := config.Default().Robot
	cfg.InitialAmmo = 1
	cfg.ReloadOpportunities = 1
	cfg.SupplyAmount = 5
	r := newTestRobot(t, newTestSpace(), Robot0, TeamRed, r2.Vec{X: 1, Y: 1}, 0, cfg)

	assert.True(t, r.ConsumeAmmo())
	assert.False(t, r.ConsumeAmmo())
	assert.Zero(t, r.Ammo)

	assert.True(t, r.Supply())
	assert.Equal(t, 5, r.Ammo)
	assert.False(t, r.Supply(), "no opportunity left")

	r.RefreshReloadOpportunity()
	assert.Equal(t, 1, r.ReloadOpportunities)
}

func TestRobotStepControls(t *testing.T) {
	cfg := config.Default().Robot
	cfg.MaxSpeed = 2
	cfg.MaxLateralSpeed = 1.5
	cfg.MaxAngularSpeed = 3
	cfg.MaxAccel = 6

	t.Run("forward accelerates under limit", func(t *testing.T) {
		r := newTestRobot(t, newTestSpace(), Robot0, TeamRed, r2.Vec{X: 1, Y: 1}, 0, cfg)
		r.MoveAheadBack(1)
		r.Step(testDT)
		assert.InDelta(t, 0.2, r.Velocity().X, 1e-9)
		for i := 0; i < 20; i++ {
			r.Step(testDT)
		}
		assert.InDelta(t, 2.0, r.Velocity().X, 1e-9)
		assert.InDelta(t, 0, r.Velocity().Y, 1e-9)
	})

	t.Run("lateral is body frame right", func(t *testing.T) {
		r := newTestRobot(t, newTestSpace(), Robot0, TeamRed, r2.Vec{X: 1, Y: 1}, math.Pi/2, cfg)
		r.MoveTransverse(1)
		for i := 0; i < 20; i++ {
			r.Step(testDT)
		}
		// Facing +Y, the right-hand side is +X.
		assert.InDelta(t, 1.5, r.Velocity().X, 1e-9)
		assert.InDelta(t, 0, r.Velocity().Y, 1e-9)
	})

	t.Run("angular is direct and unclamped", func(t *testing.T) {
		r := newTestRobot(t, newTestSpace(), Robot0, TeamRed, r2.Vec{X: 1, Y: 1}, 0, cfg)
		r.TurnLeftRight(0.5)
		r.Step(testDT)
		assert.InDelta(t, 1.5, r.AngularVelocity(), 1e-9)

		r.TurnLeftRight(2)
		r.Step(testDT)
		assert.InDelta(t, 6.0, r.AngularVelocity(), 1e-9)
		_, _, w := r.Controls()
		assert.Equal(t, 2.0, w)
	})

	t.Run("axes accelerate independently", func(t *testing.T) {
		r := newTestRobot(t, newTestSpace(), Robot0, TeamRed, r2.Vec{X: 1, Y: 1}, 0, cfg)
		r.MoveAheadBack(1)
		r.MoveTransverse(1)
		r.Step(testDT)
		// Facing +X, right is -Y; each axis gains the full MaxAccel*dt.
		assert.InDelta(t, 0.2, r.Velocity().X, 1e-9)
		assert.InDelta(t, -0.2, r.Velocity().Y, 1e-9)
	})
}

func TestRobotTurret(t *testing.T) {
	cfg := config.Default().Robot

	t.Run("snaps without a rate", func(t *testing.T) {
		cfg.TurretRate = 0
		r := newTestRobot(t, newTestSpace(), Robot0, TeamRed, r2.Vec{X: 1, Y: 1}, 0, cfg)
		r.AimTurret(1.2)
		assert.Equal(t, 1.2, r.TurretAngle())

		angle, muzzle := r.GunAnglePos()
		assert.Equal(t, 1.2, angle)
		assert.InDelta(t, cfg.MuzzleOffset, r2.Norm(r2.Sub(muzzle, r2.Vec{X: 1, Y: 1})), 1e-9)
	})

	t.Run("slews with a rate", func(t *testing.T) {
		cfg.TurretRate = 3
		r := newTestRobot(t, newTestSpace(), Robot0, TeamRed, r2.Vec{X: 1, Y: 1}, 0, cfg)
		r.AimTurret(1.0)
		assert.Zero(t, r.TurretAngle())
		r.Step(testDT)
		assert.InDelta(t, 0.1, r.TurretAngle(), 1e-9)
		for i := 0; i < 20; i++ {
			r.Step(testDT)
		}
		assert.Equal(t, 1.0, r.TurretAngle())
	})

	t.Run("turret is independent of chassis", func(t *testing.T) {
		cfg.TurretRate = 0
		space := newTestSpace()
		r := newTestRobot(t, space, Robot0, TeamRed, r2.Vec{X: 1, Y: 1}, 0, cfg)
		r.AimTurret(0.5)
		r.TurnLeftRight(1)
		for i := 0; i < 10; i++ {
			r.Step(testDT)
			space.Step(testDT, 180, 60)
		}
		assert.Greater(t, r.Angle(), 0.5)
		assert.Equal(t, 0.5, r.TurretAngle())
	})
}

func TestRobotBuffCountsDown(t *testing.T) {
	r := newTestRobot(t, newTestSpace(), Robot0, TeamRed, r2.Vec{X: 1, Y: 1}, 0, config.Default().Robot)
	r.BuffLeft = 0.05
	r.Step(testDT)
	assert.InDelta(t, 0.05-testDT, r.BuffLeft, 1e-12)
	r.Step(testDT)
	assert.Zero(t, r.BuffLeft)
}

func TestRobotDestroy(t *testing.T) {
	space := newTestSpace()
	r := newTestRobot(t, space, Robot0, TeamRed, r2.Vec{X: 1, Y: 1}, 0, config.Default().Robot)
	assert.Equal(t, 1, space.BodyCount())
	r.Destroy()
	assert.Zero(t, space.BodyCount())
	r.Destroy()
}
