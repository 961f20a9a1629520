package game

import (
	"log/slog"

	"github.com/pthm-cable/arena/config"
	"github.com/pthm-cable/arena/physics"
	"github.com/pthm-cable/arena/telemetry"
)

// WorldFactory builds the physics world for one episode.
type WorldFactory func(cfg *config.Config) (physics.World, error)

// Option configures an Env.
type Option func(*Env)

// WithLogger sets the logger for episode events.
func WithLogger(l *slog.Logger) Option {
	return func(e *Env) {
		if l != nil {
			e.log = l
		}
	}
}

// WithWorldFactory replaces the default physics.Space factory.
func WithWorldFactory(f WorldFactory) Option {
	return func(e *Env) {
		if f != nil {
			e.newWorld = f
		}
	}
}

// WithSpawnPolicy replaces the adjacency spawn policy.
func WithSpawnPolicy(p SpawnPolicy) Option {
	return func(e *Env) {
		if p != nil {
			e.spawn = p
		}
	}
}

// WithPerf shares a perf collector, e.g. with the viewer.
func WithPerf(p *telemetry.PerfCollector) Option {
	return func(e *Env) {
		if p != nil {
			e.perf = p
		}
	}
}

// NewSpaceWorld is the default WorldFactory: a physics.Space covering the
// arena and its border walls.
func NewSpaceWorld(cfg *config.Config) (physics.World, error) {
	margin := cfg.Arena.WallThickness + 1
	return physics.NewSpace(physics.Settings{
		MinX:       -margin,
		MinY:       -margin,
		Width:      cfg.Arena.Width + 2*margin,
		Height:     cfg.Arena.Height + 2*margin,
		CellSize:   cfg.Physics.GridCellSize,
		LinearSlop: cfg.Physics.LinearSlop,
	}), nil
}
