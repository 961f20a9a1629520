// Package telemetry provides episode statistics, per-phase timing,
// observation digests and CSV output.
package telemetry

import (
	"log/slog"

	"github.com/google/uuid"
)

// RobotCounters accumulates one robot's events over an episode.
type RobotCounters struct {
	Shots           int
	HitsTaken       int
	DamageTaken     int
	Collisions      int
	Detections      int
	BuffActivations int
	Supplies        int
}

// Collector accumulates events within an episode and produces an EpisodeRecord.
// Robots are addressed by their index in the environment's fixed order.
type Collector struct {
	episodeID string
	seed      int64
	dt        float64

	robots      [2]RobotCounters
	totalReward float64

	tick   int
	events []Event
}

// NewCollector starts a fresh episode record.
func NewCollector(seed int64, dt float64) *Collector {
	return &Collector{
		episodeID: uuid.NewString(),
		seed:      seed,
		dt:        dt,
	}
}

// EpisodeID returns the id assigned at construction.
func (c *Collector) EpisodeID() string {
	return c.episodeID
}

// RecordShot records a projectile fired by robot i.
func (c *Collector) RecordShot(i int) {
	c.robots[i].Shots++
	c.event(EventShot, i, 0)
}

// RecordBulletHit records a bullet landing on robot i.
func (c *Collector) RecordBulletHit(i, damage int) {
	c.robots[i].HitsTaken++
	c.robots[i].DamageTaken += damage
	c.event(EventBulletHit, i, damage)
}

// RecordCollision records robot i's side of a robot-robot collision.
func (c *Collector) RecordCollision(i, damage int) {
	c.robots[i].Collisions++
	c.robots[i].DamageTaken += damage
	c.event(EventCollision, i, damage)
}

// RecordDetection records a tick on which robot i saw its opponent.
func (c *Collector) RecordDetection(i int) {
	c.robots[i].Detections++
}

// RecordBuff records a buff activation for robot i.
func (c *Collector) RecordBuff(i int) {
	c.robots[i].BuffActivations++
	c.event(EventBuff, i, 0)
}

// RecordSupply records a resupply of ammo rounds for robot i.
func (c *Collector) RecordSupply(i, ammo int) {
	c.robots[i].Supplies++
	c.event(EventSupply, i, ammo)
}

// RecordReward adds a step reward to the running total.
func (c *Collector) RecordReward(r float64) {
	c.totalReward += r
}

// Robot returns the counters of robot i.
func (c *Collector) Robot(i int) RobotCounters {
	return c.robots[i]
}

// EpisodeRecord is one row of episodes.csv.
type EpisodeRecord struct {
	EpisodeID   string  `csv:"episode_id"`
	Seed        int64   `csv:"seed"`
	Ticks       int     `csv:"ticks"`
	SimTimeSec  float64 `csv:"sim_time"`
	Done        bool    `csv:"done"`
	Winner      string  `csv:"winner"`
	TotalReward float64 `csv:"total_reward"`
	Digest      string  `csv:"digest"`

	Health0          int `csv:"health_0"`
	Ammo0            int `csv:"ammo_0"`
	Shots0           int `csv:"shots_0"`
	HitsTaken0       int `csv:"hits_taken_0"`
	DamageTaken0     int `csv:"damage_taken_0"`
	Collisions0      int `csv:"collisions_0"`
	Detections0      int `csv:"detections_0"`
	BuffActivations0 int `csv:"buffs_0"`
	Supplies0        int `csv:"supplies_0"`

	Health1          int `csv:"health_1"`
	Ammo1            int `csv:"ammo_1"`
	Shots1           int `csv:"shots_1"`
	HitsTaken1       int `csv:"hits_taken_1"`
	DamageTaken1     int `csv:"damage_taken_1"`
	Collisions1      int `csv:"collisions_1"`
	Detections1      int `csv:"detections_1"`
	BuffActivations1 int `csv:"buffs_1"`
	Supplies1        int `csv:"supplies_1"`
}

// EpisodeEnd carries the final state the collector does not track itself.
type EpisodeEnd struct {
	Ticks  int
	Done   bool
	Winner string
	Health [2]int
	Ammo   [2]int
	Digest string
}

// Finish produces the episode record. The collector can keep recording
// afterwards; Finish may be called again for an updated record.
func (c *Collector) Finish(end EpisodeEnd) EpisodeRecord {
	r0, r1 := c.robots[0], c.robots[1]
	return EpisodeRecord{
		EpisodeID:   c.episodeID,
		Seed:        c.seed,
		Ticks:       end.Ticks,
		SimTimeSec:  float64(end.Ticks) * c.dt,
		Done:        end.Done,
		Winner:      end.Winner,
		TotalReward: c.totalReward,
		Digest:      end.Digest,

		Health0:          end.Health[0],
		Ammo0:            end.Ammo[0],
		Shots0:           r0.Shots,
		HitsTaken0:       r0.HitsTaken,
		DamageTaken0:     r0.DamageTaken,
		Collisions0:      r0.Collisions,
		Detections0:      r0.Detections,
		BuffActivations0: r0.BuffActivations,
		Supplies0:        r0.Supplies,

		Health1:          end.Health[1],
		Ammo1:            end.Ammo[1],
		Shots1:           r1.Shots,
		HitsTaken1:       r1.HitsTaken,
		DamageTaken1:     r1.DamageTaken,
		Collisions1:      r1.Collisions,
		Detections1:      r1.Detections,
		BuffActivations1: r1.BuffActivations,
		Supplies1:        r1.Supplies,
	}
}

// LogValue implements slog.LogValuer.
func (r EpisodeRecord) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("episode_id", r.EpisodeID),
		slog.Int64("seed", r.Seed),
		slog.Int("ticks", r.Ticks),
		slog.Float64("sim_time", r.SimTimeSec),
		slog.Bool("done", r.Done),
		slog.String("winner", r.Winner),
		slog.Float64("total_reward", r.TotalReward),
		slog.Int("health_0", r.Health0),
		slog.Int("health_1", r.Health1),
		slog.Int("shots_0", r.Shots0),
		slog.Int("shots_1", r.Shots1),
		slog.String("digest", r.Digest),
	)
}
