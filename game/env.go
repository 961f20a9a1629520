// Package game implements the two-robot combat environment: episode
// lifecycle, the fixed-timestep tick pipeline, reward and termination.
package game

import (
	"fmt"
	"log/slog"
	"math/rand"
	"slices"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/arena/config"
	"github.com/pthm-cable/arena/physics"
	"github.com/pthm-cable/arena/systems"
	"github.com/pthm-cable/arena/telemetry"
)

// robotOrder is the fixed iteration order. The first robot receives the
// action passed to Step.
var robotOrder = []RobotID{Robot0, Robot1}

// robotTeams pairs each robot with its side.
var robotTeams = []systems.Team{systems.TeamRed, systems.TeamBlue}

// Env is a single-threaded simulation of one arena. Callers must serialize
// calls; an Env is not safe for concurrent use.
type Env struct {
	cfg      *config.Config
	log      *slog.Logger
	newWorld WorldFactory
	spawn    SpawnPolicy
	perf     *telemetry.PerfCollector
	scanner  *systems.Scanner

	seed int64
	rng  *rand.Rand

	// Episode state, rebuilt by Reset.
	world       physics.World
	arena       *systems.Arena
	robots      []*systems.Robot // robotOrder
	pending     []*Action        // robotOrder
	obs         []RobotObservation
	projectiles *systems.ProjectileManager
	ledger      *systems.ContactLedger
	buffs       *systems.BuffAreas
	supply      *systems.SupplyAreas
	collector   *telemetry.Collector
	digest      *telemetry.Digest

	anchor, pair int
	tick         int
	clock        float64
	score        float64
	prevScore    float64
	committed    bool
	done         bool
}

// NewEnv creates an environment. The configuration is cloned; later changes
// to cfg do not affect the Env.
func NewEnv(cfg *config.Config, opts ...Option) (*Env, error) {
	if cfg == nil {
		return nil, fmt.Errorf("creating env: nil config")
	}
	cfg = cfg.Clone()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("creating env: %w", err)
	}

	e := &Env{
		cfg:      cfg,
		log:      slog.Default(),
		newWorld: NewSpaceWorld,
		spawn:    AdjacencySpawn{},
		scanner:  systems.NewScanner(cfg.Sensors),
		digest:   telemetry.NewDigest(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.perf == nil {
		e.perf = telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow)
	}
	return e, nil
}

// Seed seeds the spawn rng and returns the seed in use. A nil seed derives
// one from the clock. The rng is consumed only by Reset.
func (e *Env) Seed(seed *int64) int64 {
	s := time.Now().UnixNano()
	if seed != nil {
		s = *seed
	}
	e.seed = s
	e.rng = rand.New(rand.NewSource(s))
	return s
}

// Config returns the configuration the Env runs with.
func (e *Env) Config() *config.Config {
	return e.cfg
}

// Reset tears down the previous episode and starts a new one. It returns
// robot_1's spawn position; the first observation comes from the first Step.
func (e *Env) Reset() (r2.Vec, error) {
	e.destroy()
	if e.rng == nil {
		e.Seed(nil)
	}

	world, err := e.newWorld(e.cfg)
	if err != nil {
		return r2.Vec{}, fmt.Errorf("creating physics world: %w", err)
	}
	if world == nil {
		return r2.Vec{}, fmt.Errorf("creating physics world: factory returned nil")
	}
	e.world = world

	e.ledger = systems.NewContactLedger()
	world.SetContactListener(e.ledger)

	if e.arena, err = systems.BuildArena(world, e.cfg.Arena); err != nil {
		e.destroy()
		return r2.Vec{}, fmt.Errorf("building arena: %w", err)
	}

	anchor, pair := e.spawn.Pick(e.rng, e.cfg.Spawn)
	positions := e.cfg.Spawn.Positions
	if anchor < 0 || anchor >= len(positions) || pair < 0 || pair >= len(positions) {
		e.destroy()
		return r2.Vec{}, fmt.Errorf("spawn indices (%d, %d) outside catalog of %d", anchor, pair, len(positions))
	}
	e.anchor, e.pair = anchor, pair
	spawns := []r2.Vec{
		{X: positions[anchor][0], Y: positions[anchor][1]},
		{X: positions[pair][0], Y: positions[pair][1]},
	}

	for i, id := range robotOrder {
		r, err := systems.NewRobot(world, id, robotTeams[i], spawns[i], 0, e.cfg.Robot)
		if err != nil {
			e.destroy()
			return r2.Vec{}, fmt.Errorf("spawning %s: %w", id, err)
		}
		e.robots = append(e.robots, r)
	}
	e.pending = make([]*Action, len(e.robots))
	e.obs = make([]RobotObservation, len(e.robots))

	e.projectiles = systems.NewProjectileManager(world, e.cfg.Projectile)
	e.buffs = systems.NewBuffAreas(e.cfg.Buff)
	e.supply = systems.NewSupplyAreas(e.cfg.Supply)
	e.collector = telemetry.NewCollector(e.seed, e.cfg.Derived.DT)
	e.digest.Reset()

	e.tick = 0
	e.clock = 0
	e.score = 0
	e.prevScore = 0
	e.committed = false
	e.done = false

	e.log.Info("episode_reset",
		"episode_id", e.collector.EpisodeID(),
		"seed", e.seed,
		"anchor", anchor,
		"pair", pair,
	)
	return spawns[1], nil
}

// destroy removes every body of the current episode and drops the world.
func (e *Env) destroy() {
	if e.projectiles != nil {
		e.projectiles.DestroyAll()
	}
	for _, r := range e.robots {
		r.Destroy()
	}
	if e.arena != nil {
		e.arena.Destroy()
	}
	if e.world != nil {
		e.world.SetContactListener(nil)
	}
	e.world = nil
	e.arena = nil
	e.robots = nil
	e.pending = nil
	e.obs = nil
	e.projectiles = nil
	e.ledger = nil
	e.buffs = nil
	e.supply = nil
}

// Close releases the current episode. Step is a no-op afterwards until the
// next Reset.
func (e *Env) Close() {
	e.destroy()
}

// SetRobotAction sets the pending action of a robot. It persists across
// ticks until replaced; nil clears it. robot_0's pending action is
// overwritten by every Step.
func (e *Env) SetRobotAction(id RobotID, a *Action) error {
	i, err := e.index(id)
	if err != nil {
		return err
	}
	if e.pending == nil {
		return fmt.Errorf("setting action for %s: %w", id, ErrNotReset)
	}
	e.pending[i] = cloneAction(a)
	return nil
}

// Observation returns the observation written for a robot by the last Step.
func (e *Env) Observation(id RobotID) (RobotObservation, error) {
	i, err := e.index(id)
	if err != nil {
		return RobotObservation{}, err
	}
	if e.obs == nil {
		return RobotObservation{}, fmt.Errorf("observing %s: %w", id, ErrNotReset)
	}
	o := e.obs[i]
	o.Scan = slices.Clone(o.Scan)
	return o, nil
}

// Robot exposes a live robot for scripted scenarios and tests.
func (e *Env) Robot(id RobotID) (*systems.Robot, error) {
	i, err := e.index(id)
	if err != nil {
		return nil, err
	}
	if e.robots == nil {
		return nil, fmt.Errorf("robot %s: %w", id, ErrNotReset)
	}
	return e.robots[i], nil
}

// RobotIDs returns the robot ids in iteration order.
func (e *Env) RobotIDs() []RobotID {
	return slices.Clone(robotOrder)
}

// Tick returns the number of completed ticks in this episode.
func (e *Env) Tick() int {
	return e.tick
}

// Time returns the episode clock in seconds.
func (e *Env) Time() float64 {
	return e.clock
}

// Score returns the cumulative score from robot_0's perspective.
func (e *Env) Score() float64 {
	return e.score
}

// Done reports whether the episode has reached a terminal health condition.
func (e *Env) Done() bool {
	return e.done
}

// Digest returns the hash of every observation produced this episode.
func (e *Env) Digest() uint64 {
	return e.digest.Sum64()
}

// Stats returns the rolling per-phase timing.
func (e *Env) Stats() telemetry.PerfStats {
	return e.perf.Stats()
}

// Episode returns the telemetry record of the current episode.
func (e *Env) Episode() telemetry.EpisodeRecord {
	if e.collector == nil {
		return telemetry.EpisodeRecord{}
	}
	end := telemetry.EpisodeEnd{
		Ticks:  e.tick,
		Done:   e.done,
		Winner: e.winner(),
		Digest: e.digest.Hex(),
	}
	for i, r := range e.robots {
		end.Health[i] = r.Health
		end.Ammo[i] = r.Ammo
	}
	return e.collector.Finish(end)
}

// winner names the robot with more health, or "draw".
func (e *Env) winner() string {
	if len(e.robots) < 2 {
		return "draw"
	}
	h0, h1 := e.robots[0].Health, e.robots[1].Health
	switch {
	case h0 > h1:
		return string(e.robots[0].ID)
	case h1 > h0:
		return string(e.robots[1].ID)
	}
	return "draw"
}

func (e *Env) index(id RobotID) (int, error) {
	i := slices.Index(robotOrder, id)
	if i < 0 {
		return 0, fmt.Errorf("%w: %q", ErrUnknownRobot, id)
	}
	return i, nil
}

func cloneAction(a *Action) *Action {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}

// Events returns the shots, hits, collisions, buffs and supplies of the
// current episode.
func (e *Env) Events() []telemetry.Event {
	if e.collector == nil {
		return nil
	}
	return e.collector.Events()
}
