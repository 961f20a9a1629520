// Package policy provides controllers that turn a robot's observation into
// an action: an idle robot, a scripted chase-and-shoot bot with tunable
// gains, and a small feed-forward network.
package policy

import (
	"fmt"
	"math/rand"

	"github.com/pthm-cable/arena/config"
	"github.com/pthm-cable/arena/game"
)

// Policy decides a robot's action from its latest observation.
type Policy interface {
	Act(obs game.RobotObservation) game.Action
}

// Func adapts a plain function to Policy.
type Func func(obs game.RobotObservation) game.Action

// Act calls f.
func (f Func) Act(obs game.RobotObservation) game.Action {
	return f(obs)
}

// Idle never moves or fires.
type Idle struct{}

// Act returns the zero action.
func (Idle) Act(game.RobotObservation) game.Action {
	return game.Action{}
}

// Kinds accepted by New.
const (
	KindIdle     = "idle"
	KindScripted = "scripted"
	KindNetwork  = "network"
)

// Options configures New.
type Options struct {
	Gains   Gains  // scripted
	Weights string // network weights file; empty = random weights from Seed
	Seed    int64
}

// New builds a policy by kind name.
func New(kind string, cfg *config.Config, opts Options) (Policy, error) {
	switch kind {
	case KindIdle:
		return Idle{}, nil
	case KindScripted:
		return NewScripted(cfg.Sensors, opts.Gains), nil
	case KindNetwork:
		var brain *FFNN
		if opts.Weights != "" {
			var err error
			if brain, err = LoadFFNN(opts.Weights); err != nil {
				return nil, fmt.Errorf("loading network: %w", err)
			}
		} else {
			brain = NewFFNN(rand.New(rand.NewSource(opts.Seed)))
		}
		return NewNetwork(brain, cfg.Robot), nil
	}
	return nil, fmt.Errorf("unknown policy %q", kind)
}

func clampUnit(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}
