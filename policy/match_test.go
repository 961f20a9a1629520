package policy

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/arena/config"
	"github.com/pthm-cable/arena/game"
	"github.com/pthm-cable/arena/telemetry"
)

// Spawns 0 and 1 put robot_1 1.5 m straight above robot_0.
func newFacingEnv(t *testing.T) *game.Env {
	t.Helper()
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	env, err := game.NewEnv(config.Default(),
		game.WithLogger(quiet),
		game.WithSpawnPolicy(game.FixedSpawn{Anchor: 0, Pair: 1}),
	)
	require.NoError(t, err)
	env.Seed(nil)
	return env
}

// recorder captures every observation a policy is shown.
type recorder struct {
	seen []game.RobotObservation
}

func (r *recorder) Act(obs game.RobotObservation) game.Action {
	r.seen = append(r.seen, obs)
	return game.Action{}
}

func TestMatchFirstTickHasNoActions(t *testing.T) {
	env := newFacingEnv(t)
	p0, p1 := &recorder{}, &recorder{}
	m := NewMatch(env, p0, p1)
	require.NoError(t, m.Reset())

	res, err := m.Step()
	require.NoError(t, err)
	assert.Empty(t, p0.seen)
	assert.Empty(t, p1.seen)
	assert.Zero(t, res.Reward)

	_, err = m.Step()
	require.NoError(t, err)
	require.Len(t, p0.seen, 1)
	require.Len(t, p1.seen, 1)

	// Each policy sees its own robot.
	assert.Equal(t, res.Observations[game.Robot0].Position, p0.seen[0].Position)
	assert.Equal(t, res.Observations[game.Robot1].Position, p1.seen[0].Position)

	o, ok := m.Observation(1)
	require.True(t, ok)
	assert.Equal(t, 2, env.Tick())
	assert.Len(t, o.Scan, env.Config().Derived.ScanRays)
}

func TestMatchRunCapsTicks(t *testing.T) {
	env := newFacingEnv(t)
	m := NewMatch(env, Idle{}, Idle{})

	rec, err := m.Run(context.Background(), 45)
	require.NoError(t, err)
	assert.Equal(t, 45, rec.Ticks)
	assert.False(t, rec.Done)
	assert.Equal(t, "draw", rec.Winner)
	assert.Zero(t, rec.Shots0)
	assert.Positive(t, rec.Detections0, "robot_1 is inside robot_0's fan")

	// No reward on tick 1 (no action) or tick 2 (first action); afterwards
	// only the detection bonus accrues.
	assert.InDelta(t, 43*env.Config().Reward.DetectBonus, rec.TotalReward, 1e-9)
}

func TestMatchScriptedEngages(t *testing.T) {
	env := newFacingEnv(t)
	cfg := env.Config()
	m := NewMatch(env, NewScripted(cfg.Sensors, DefaultGains()), Idle{})

	rec, err := m.Run(context.Background(), 120)
	require.NoError(t, err)
	assert.Positive(t, rec.Shots0)
	assert.Positive(t, rec.Detections0)
	assert.Less(t, rec.Health1, cfg.Robot.MaxHealth)
	assert.Equal(t, cfg.Robot.MaxHealth, rec.Health0)
	assert.Equal(t, "robot_0", rec.Winner)

	var shots, hits int
	for _, ev := range env.Events() {
		assert.Equal(t, rec.EpisodeID, ev.EpisodeID)
		switch ev.Type {
		case telemetry.EventShot:
			shots++
		case telemetry.EventBulletHit:
			hits++
			assert.Equal(t, 1, ev.Robot)
		}
	}
	assert.Equal(t, rec.Shots0, shots)
	assert.Equal(t, rec.HitsTaken1, hits)
}

func TestMatchRunCancelled(t *testing.T) {
	env := newFacingEnv(t)
	m := NewMatch(env, Idle{}, Idle{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec, err := m.Run(ctx, 0)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, rec.Ticks)
}
