package game

import (
	"image/color"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/arena/config"
	"github.com/pthm-cable/arena/systems"
)

// RobotFrame is the drawable state of one robot.
type RobotFrame struct {
	ID       RobotID
	Team     systems.Team
	Color    color.RGBA
	Position r2.Vec
	Heading  float64
	Turret   float64
	Radius   float64

	Health              int
	MaxHealth           int
	Ammo                int
	ReloadOpportunities int
	BuffLeft            float64
	Detected            bool
	Rays                []ScanRay // last scan, clipped to each hit
}

// ScanRay is one sensor ray in world space.
type ScanRay struct {
	From, To r2.Vec
	Class    int
}

// ProjectileFrame is the drawable state of one bullet.
type ProjectileFrame struct {
	ID       uint64
	Position r2.Vec
	Velocity r2.Vec
}

// ZoneFrame is a buff or supply zone with its timers.
type ZoneFrame struct {
	Team        systems.Team
	Rect        config.Rect
	Stay        float64 // buff zones only
	MaxStayTime float64 // buff zones only
}

// Frame is a read-only copy of everything the viewer draws. It shares no
// memory with the Env.
type Frame struct {
	Tick  int
	Time  float64
	Score float64
	Done  bool

	Width, Height float64
	Walls         []config.Rect
	Obstacles     []config.Rect

	Robots      []RobotFrame
	Projectiles []ProjectileFrame
	BuffZones   []ZoneFrame
	SupplyZones []ZoneFrame
}

// Frame snapshots the current episode. Before Reset only the arena size is set.
func (e *Env) Frame() Frame {
	f := Frame{
		Tick:   e.tick,
		Time:   e.clock,
		Score:  e.score,
		Done:   e.done,
		Width:  e.cfg.Arena.Width,
		Height: e.cfg.Arena.Height,
	}
	if e.world == nil {
		return f
	}

	f.Walls = append([]config.Rect(nil), e.arena.Walls...)
	f.Obstacles = append([]config.Rect(nil), e.arena.Obstacles...)

	for i, r := range e.robots {
		heading, pos := r.AnglePos()
		rf := RobotFrame{
			ID:                  r.ID,
			Team:                r.Team,
			Color:               r.Color,
			Position:            pos,
			Heading:             heading,
			Turret:              r.TurretAngle(),
			Radius:              r.Radius(),
			Health:              r.Health,
			MaxHealth:           e.cfg.Robot.MaxHealth,
			Ammo:                r.Ammo,
			ReloadOpportunities: r.ReloadOpportunities,
			BuffLeft:            r.BuffLeft,
		}
		if e.obs != nil {
			rf.Detected = e.obs[i].Detected
			rf.Rays = e.scanRays(e.obs[i])
		}
		f.Robots = append(f.Robots, rf)
	}

	e.projectiles.Each(func(id uint64, pos, vel r2.Vec) {
		f.Projectiles = append(f.Projectiles, ProjectileFrame{ID: id, Position: pos, Velocity: vel})
	})

	for _, a := range e.buffs.Areas {
		f.BuffZones = append(f.BuffZones, ZoneFrame{
			Team:        a.Team,
			Rect:        a.Rect,
			Stay:        a.Stay,
			MaxStayTime: a.MaxStayTime,
		})
	}
	for _, a := range e.supply.Areas {
		f.SupplyZones = append(f.SupplyZones, ZoneFrame{Team: a.Team, Rect: a.Rect})
	}
	return f
}

// scanRays rebuilds the ray segments of an observation's scan from the pose
// it was taken at.
func (e *Env) scanRays(o RobotObservation) []ScanRay {
	s := e.cfg.Sensors
	rays := make([]ScanRay, len(o.Scan))
	for k, p := range o.Scan {
		angle := o.Heading + float64(s.RayStartDeg+k*s.RayStepDeg)*math.Pi/180
		dir := r2.Vec{X: math.Cos(angle), Y: math.Sin(angle)}
		from := r2.Add(o.Position, r2.Scale(s.RayOffset, dir))
		to := r2.Add(o.Position, r2.Scale(s.Range, dir))
		rays[k] = ScanRay{
			From:  from,
			To:    r2.Add(from, r2.Scale(p.Fraction, r2.Sub(to, from))),
			Class: p.Class,
		}
	}
	return rays
}
