package game

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/arena/systems"
)

// RobotID names a robot. Robot0 is driven by the action passed to Step.
type RobotID = systems.RobotID

const (
	Robot0 = systems.Robot0
	Robot1 = systems.Robot1
)

// Action is one tick's command for a robot. The three motion channels are
// effort fractions in [-1, 1]; Shoot is a level, held while true.
type Action struct {
	ForwardBack float64 // +1 full ahead
	Angular     float64 // +1 full counter-clockwise
	Lateral     float64 // +1 full to the robot's right
	Shoot       bool
}

// RobotObservation is a robot's state captured at the start of a tick,
// before that tick's action is applied.
type RobotObservation struct {
	Position        r2.Vec
	Heading         float64
	Velocity        r2.Vec
	AngularVelocity float64
	Health          int
	Detected        bool
	Scan            []systems.ScanPoint // increasing cast angle
}

// StepResult is the outcome of one Step.
type StepResult struct {
	Observations map[RobotID]RobotObservation
	Reward       float64
	Done         bool
	Info         map[string]any // always empty
}
