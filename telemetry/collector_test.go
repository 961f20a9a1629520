package telemetry

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorFinish(t *testing.T) {
	c := NewCollector(42, 1.0/30)
	_, err := uuid.Parse(c.EpisodeID())
	require.NoError(t, err)

	c.RecordShot(0)
	c.RecordShot(0)
	c.RecordBulletHit(1, 50)
	c.RecordBulletHit(1, 25)
	c.RecordCollision(0, 10)
	c.RecordCollision(1, 10)
	c.RecordDetection(0)
	c.RecordBuff(1)
	c.RecordSupply(0, 50)
	c.RecordReward(0.25)
	c.RecordReward(-0.05)

	rec := c.Finish(EpisodeEnd{
		Ticks:  90,
		Done:   true,
		Winner: "robot_0",
		Health: [2]int{1990, 0},
		Ammo:   [2]int{38, 40},
		Digest: "00000000deadbeef",
	})

	assert.Equal(t, c.EpisodeID(), rec.EpisodeID)
	assert.Equal(t, int64(42), rec.Seed)
	assert.InDelta(t, 3.0, rec.SimTimeSec, 1e-12)
	assert.InDelta(t, 0.2, rec.TotalReward, 1e-12)
	assert.Equal(t, 2, rec.Shots0)
	assert.Equal(t, 2, rec.HitsTaken1)
	assert.Equal(t, 85, rec.DamageTaken1)
	assert.Equal(t, 10, rec.DamageTaken0)
	assert.Equal(t, 1, rec.Collisions0)
	assert.Equal(t, 1, rec.Detections0)
	assert.Equal(t, 1, rec.BuffActivations1)
	assert.Equal(t, 1, rec.Supplies0)
	assert.Equal(t, 0, rec.Health1)
	assert.Equal(t, 38, rec.Ammo0)
	assert.Equal(t, RobotCounters{Shots: 2, DamageTaken: 10, Collisions: 1, Detections: 1, Supplies: 1}, c.Robot(0))
}

func TestCollectorIDsAreUnique(t *testing.T) {
	a, b := NewCollector(1, 0.1), NewCollector(1, 0.1)
	assert.NotEqual(t, a.EpisodeID(), b.EpisodeID())
}

func TestCollectorEvents(t *testing.T) {
	c := NewCollector(7, 0.1)
	c.SetTick(3)
	c.RecordShot(0)
	c.RecordDetection(0)
	c.RecordReward(1)
	c.SetTick(5)
	c.RecordBulletHit(1, 50)
	c.RecordSupply(0, 50)

	id := c.EpisodeID()
	assert.Equal(t, []Event{
		{EpisodeID: id, Tick: 3, Type: EventShot, Robot: 0},
		{EpisodeID: id, Tick: 5, Type: EventBulletHit, Robot: 1, Amount: 50},
		{EpisodeID: id, Tick: 5, Type: EventSupply, Robot: 0, Amount: 50},
	}, c.Events(), "detections and rewards are counted, not logged")

	events := c.Events()
	events[0].Tick = 99
	assert.Equal(t, 3, c.Events()[0].Tick, "Events returns a copy")
}
