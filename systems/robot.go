package systems

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/arena/components"
	"github.com/pthm-cable/arena/config"
	"github.com/pthm-cable/arena/physics"
)

// RobotID is the stable name of a robot, used as the key of every per-robot map.
type RobotID string

const (
	Robot0 RobotID = "robot_0"
	Robot1 RobotID = "robot_1"
)

// Team is the side a robot plays for. Zone i belongs to team i.
type Team int

const (
	TeamRed Team = iota
	TeamBlue
)

// String returns the team name.
func (t Team) String() string {
	switch t {
	case TeamRed:
		return "red"
	case TeamBlue:
		return "blue"
	}
	return fmt.Sprintf("team%d", int(t))
}

// Color returns the team colour.
func (t Team) Color() color.RGBA {
	switch t {
	case TeamRed:
		return color.RGBA{R: 204, A: 255}
	case TeamBlue:
		return color.RGBA{B: 204, A: 255}
	}
	return color.RGBA{R: 128, G: 128, B: 128, A: 255}
}

// Robot wraps a physics body with the game-rule state of one robot.
type Robot struct {
	ID    RobotID
	Team  Team
	Color color.RGBA

	Health              int
	Ammo                int
	ReloadOpportunities int
	BuffLeft            float64 // seconds of damage reduction remaining

	world physics.World
	body  physics.Body
	cfg   config.RobotConfig

	turret       float64 // world-frame aim angle
	turretTarget float64

	// Control channels, each in [-1, 1].
	forward float64
	lateral float64 // positive is to the robot's right
	angular float64 // positive is counter-clockwise
}

// NewRobot creates a robot body at pos facing angle.
func NewRobot(w physics.World, id RobotID, team Team, pos r2.Vec, angle float64, cfg config.RobotConfig) (*Robot, error) {
	body, err := w.CreateBody(physics.BodyDef{
		Type:          physics.DynamicBody,
		Shape:         physics.Circle(cfg.Radius),
		Position:      pos,
		Angle:         angle,
		LinearDamping: cfg.LinearDamping,
		UserData:      physics.UserData{Kind: components.KindRobot, Name: string(id)},
	})
	if err != nil {
		return nil, fmt.Errorf("creating robot %s: %w", id, err)
	}

	return &Robot{
		ID:                  id,
		Team:                team,
		Color:               team.Color(),
		Health:              cfg.MaxHealth,
		Ammo:                cfg.InitialAmmo,
		ReloadOpportunities: cfg.ReloadOpportunities,
		world:               w,
		body:                body,
		cfg:                 cfg,
		turret:              angle,
		turretTarget:        angle,
	}, nil
}

// MoveAheadBack sets the forward/backward channel.
func (r *Robot) MoveAheadBack(v float64) {
	r.forward = v
}

// TurnLeftRight sets the rotation channel.
func (r *Robot) TurnLeftRight(v float64) {
	r.angular = v
}

// MoveTransverse sets the sideways channel.
func (r *Robot) MoveTransverse(v float64) {
	r.lateral = v
}

// Controls returns the current channel values.
func (r *Robot) Controls() (forward, lateral, angular float64) {
	return r.forward, r.lateral, r.angular
}

// Step drives the chassis toward the commanded velocities, moves the turret
// toward its target and counts down the buff.
func (r *Robot) Step(dt float64) {
	heading := r.world.Angle(r.body)
	ahead := direction(heading)
	right := r2.Vec{X: ahead.Y, Y: -ahead.X}

	// Each body-frame axis accelerates on its own.
	v := r.world.LinearVelocity(r.body)
	vf, vl := r2.Dot(v, ahead), r2.Dot(v, right)
	tf, tl := r.forward*r.cfg.MaxSpeed, r.lateral*r.cfg.MaxLateralSpeed
	if r.cfg.MaxAccel > 0 {
		limit := r.cfg.MaxAccel * dt
		vf = approach(vf, tf, limit)
		vl = approach(vl, tl, limit)
	} else {
		vf, vl = tf, tl
	}
	r.world.SetLinearVelocity(r.body, r2.Add(r2.Scale(vf, ahead), r2.Scale(vl, right)))
	r.world.SetAngularVelocity(r.body, r.angular*r.cfg.MaxAngularSpeed)

	if r.cfg.TurretRate > 0 {
		r.turret = approachAngle(r.turret, r.turretTarget, r.cfg.TurretRate*dt)
	} else {
		r.turret = r.turretTarget
	}

	r.BuffLeft = math.Max(0, r.BuffLeft-dt)
}

// AimTurret points the turret at a world-frame angle. With no turret rate
// configured the turret snaps immediately; otherwise Step slews toward it.
func (r *Robot) AimTurret(angle float64) {
	r.turretTarget = angle
	if r.cfg.TurretRate <= 0 {
		r.turret = angle
	}
}

// TurretAngle returns the world-frame turret angle.
func (r *Robot) TurretAngle() float64 {
	return r.turret
}

// LoseHealth deducts damage, clamping at zero, and returns the amount lost.
func (r *Robot) LoseHealth(n int) int {
	if n <= 0 {
		return 0
	}
	if n > r.Health {
		n = r.Health
	}
	r.Health -= n
	return n
}

// Dead reports whether health is exhausted.
func (r *Robot) Dead() bool {
	return r.Health <= 0
}

// RefreshReloadOpportunity restores the reload-opportunity counter.
func (r *Robot) RefreshReloadOpportunity() {
	r.ReloadOpportunities = r.cfg.ReloadOpportunities
}

// Supply consumes one reload opportunity for a batch of ammo.
func (r *Robot) Supply() bool {
	if r.ReloadOpportunities <= 0 {
		return false
	}
	r.ReloadOpportunities--
	r.Ammo += r.cfg.SupplyAmount
	return true
}

// ConsumeAmmo takes one round if any is left.
func (r *Robot) ConsumeAmmo() bool {
	if r.Ammo <= 0 {
		return false
	}
	r.Ammo--
	return true
}

// GunAnglePos returns the turret angle and the muzzle position.
func (r *Robot) GunAnglePos() (float64, r2.Vec) {
	pos := r.world.Position(r.body)
	return r.turret, r2.Add(pos, r2.Scale(r.cfg.MuzzleOffset, direction(r.turret)))
}

// AnglePos returns the chassis heading and centre.
func (r *Robot) AnglePos() (float64, r2.Vec) {
	return r.world.Angle(r.body), r.world.Position(r.body)
}

// Position returns the chassis centre.
func (r *Robot) Position() r2.Vec {
	return r.world.Position(r.body)
}

// Angle returns the chassis heading.
func (r *Robot) Angle() float64 {
	return r.world.Angle(r.body)
}

// Velocity returns the chassis linear velocity.
func (r *Robot) Velocity() r2.Vec {
	return r.world.LinearVelocity(r.body)
}

// AngularVelocity returns the chassis angular velocity.
func (r *Robot) AngularVelocity() float64 {
	return r.world.AngularVelocity(r.body)
}

// Radius returns the chassis radius.
func (r *Robot) Radius() float64 {
	return r.cfg.Radius
}

// SetPose teleports the robot and stops it.
func (r *Robot) SetPose(pos r2.Vec, angle float64) {
	r.world.SetTransform(r.body, pos, angle)
	r.world.SetLinearVelocity(r.body, r2.Vec{})
	r.world.SetAngularVelocity(r.body, 0)
}

// Destroy removes the robot's body from the world.
func (r *Robot) Destroy() {
	r.world.DestroyBody(r.body)
	r.body = physics.Body{}
}
