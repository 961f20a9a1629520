package policy

import (
	"context"
	"fmt"

	"github.com/pthm-cable/arena/game"
	"github.com/pthm-cable/arena/telemetry"
)

// Match plays both robots of an Env with policies. Players are indexed in
// the Env's robot order.
type Match struct {
	Env     *game.Env
	Players [2]Policy

	obs map[game.RobotID]game.RobotObservation
}

// NewMatch pairs an Env with a policy per robot.
func NewMatch(env *game.Env, p0, p1 Policy) *Match {
	return &Match{Env: env, Players: [2]Policy{p0, p1}}
}

// Reset starts a new episode.
func (m *Match) Reset() error {
	m.obs = nil
	if _, err := m.Env.Reset(); err != nil {
		return err
	}
	return nil
}

// Step advances one tick. The first tick of an episode runs without
// actions since no robot has observed anything yet; afterwards each
// policy acts on its robot's observation from the previous tick.
func (m *Match) Step() (game.StepResult, error) {
	ids := m.Env.RobotIDs()
	var a0 *game.Action
	if m.obs != nil {
		act := m.Players[0].Act(m.obs[ids[0]])
		a0 = &act
		a1 := m.Players[1].Act(m.obs[ids[1]])
		if err := m.Env.SetRobotAction(ids[1], &a1); err != nil {
			return game.StepResult{}, fmt.Errorf("setting opponent action: %w", err)
		}
	}
	res := m.Env.Step(a0)
	m.obs = res.Observations
	return res, nil
}

// Observation returns the last observation of the robot at index i.
func (m *Match) Observation(i int) (game.RobotObservation, bool) {
	o, ok := m.obs[m.Env.RobotIDs()[i]]
	return o, ok
}

// Run resets and plays one episode until a robot is destroyed, maxTicks
// ticks have run (0 = no cap) or ctx is cancelled.
func (m *Match) Run(ctx context.Context, maxTicks int) (telemetry.EpisodeRecord, error) {
	if err := m.Reset(); err != nil {
		return telemetry.EpisodeRecord{}, err
	}
	for !m.Env.Done() && (maxTicks <= 0 || m.Env.Tick() < maxTicks) {
		if err := ctx.Err(); err != nil {
			return m.Env.Episode(), err
		}
		if _, err := m.Step(); err != nil {
			return m.Env.Episode(), err
		}
	}
	return m.Env.Episode(), nil
}
