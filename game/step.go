package game

import (
	"github.com/pthm-cable/arena/systems"
	"github.com/pthm-cable/arena/telemetry"
)

// Step advances the episode by one tick. a becomes robot_0's pending
// action; robot_1 keeps whatever SetRobotAction last gave it.
//
// Order within a tick: scan and observe every robot, apply pending actions
// and robot dynamics, step physics, resolve contacts, update zones, then
// compute reward and termination. Before Reset, Step does nothing.
func (e *Env) Step(a *Action) StepResult {
	if e.world == nil {
		return StepResult{
			Observations: map[RobotID]RobotObservation{},
			Info:         map[string]any{},
		}
	}

	e.perf.StartTick()
	e.collector.SetTick(e.tick)

	e.perf.StartPhase(telemetry.PhaseScan)
	observations := make(map[RobotID]RobotObservation, len(e.robots))
	for i, r := range e.robots {
		e.obs[i] = e.observe(i, r)
		observations[r.ID] = e.obs[i]
	}

	e.perf.StartPhase(telemetry.PhaseAction)
	e.pending[0] = cloneAction(a)
	for i, r := range e.robots {
		if act := e.pending[i]; act != nil {
			e.applyAction(i, r, act)
		}
		r.Step(e.cfg.Derived.DT)
	}

	e.perf.StartPhase(telemetry.PhasePhysics)
	e.world.Step(e.cfg.Derived.DT, e.cfg.Physics.VelocityIterations, e.cfg.Physics.PositionIterations)
	e.clock += e.cfg.Derived.DT
	e.tick++

	e.perf.StartPhase(telemetry.PhaseContacts)
	e.resolveContacts()

	e.perf.StartPhase(telemetry.PhaseAreas)
	e.updateAreas()

	e.perf.StartPhase(telemetry.PhaseReward)
	reward, done := e.evaluate(a != nil)

	e.perf.EndTick()

	return StepResult{
		Observations: observations,
		Reward:       reward,
		Done:         done,
		Info:         map[string]any{},
	}
}

// observe scans around a robot, aims its turret at the opponent when seen
// and snapshots its pre-action state.
func (e *Env) observe(i int, r *systems.Robot) RobotObservation {
	heading, pos := r.AnglePos()
	scan := e.scanner.Scan(e.world, r.ID, pos, heading)
	if scan.Detected {
		r.AimTurret(scan.AimAngle)
		e.collector.RecordDetection(i)
	}

	o := RobotObservation{
		Position:        pos,
		Heading:         heading,
		Velocity:        r.Velocity(),
		AngularVelocity: r.AngularVelocity(),
		Health:          r.Health,
		Detected:        scan.Detected,
		Scan:            scan.Points,
	}
	if e.cfg.Telemetry.Digest {
		e.hashObservation(r.ID, o)
	}
	return o
}

func (e *Env) hashObservation(id RobotID, o RobotObservation) {
	d := e.digest
	d.Text(string(id))
	d.Float64(o.Position.X)
	d.Float64(o.Position.Y)
	d.Float64(o.Heading)
	d.Float64(o.Velocity.X)
	d.Float64(o.Velocity.Y)
	d.Float64(o.AngularVelocity)
	d.Int(o.Health)
	d.Bool(o.Detected)
	for _, p := range o.Scan {
		d.Float64(p.Fraction)
		d.Int(p.Class)
	}
}

// applyAction feeds the motion channels, refreshes reload opportunities on
// the reload cadence and fires inside the duty-cycle window.
func (e *Env) applyAction(i int, r *systems.Robot, a *Action) {
	r.MoveAheadBack(a.ForwardBack)
	r.TurnLeftRight(a.Angular)
	r.MoveTransverse(a.Lateral)

	if e.tick%e.cfg.Derived.ReloadInterval == 0 {
		r.RefreshReloadOpportunity()
	}

	if !a.Shoot || !e.fireWindow() || r.Ammo <= 0 {
		return
	}
	angle, muzzle := r.GunAnglePos()
	id, err := e.projectiles.Shoot(angle, muzzle)
	if err != nil {
		e.log.Error("failed to fire", "robot", r.ID, "tick", e.tick, "error", err)
		return
	}
	r.ConsumeAmmo()
	e.collector.RecordShot(i)
	e.log.Debug("robot_fired", "robot", r.ID, "tick", e.tick, "projectile", id, "ammo", r.Ammo)
}

// fireWindow reports whether the current tick is inside the fire gate.
func (e *Env) fireWindow() bool {
	interval := e.cfg.Derived.FireInterval
	return e.tick%interval == e.cfg.Fire.GatePhase%interval
}

// resolveContacts drains the ledger and applies the consequences in a fixed
// category order. Every event applies, so two hits in one tick deal double.
func (e *Env) resolveContacts() {
	c := e.ledger.Drain()
	dmg := e.cfg.Damage

	for _, hit := range c.BulletRobot {
		e.projectiles.DestroyByID(hit.Bullet)
		i, err := e.index(hit.Robot)
		if err != nil {
			e.log.Warn("bullet hit unknown robot", "robot", hit.Robot, "projectile", hit.Bullet)
			continue
		}
		r := e.robots[i]
		damage := dmg.Bullet
		if r.BuffLeft > 0 {
			damage = dmg.BulletBuffed
		}
		lost := r.LoseHealth(damage)
		e.collector.RecordBulletHit(i, lost)
		e.log.Debug("bullet_hit", "robot", r.ID, "tick", e.tick, "projectile", hit.Bullet, "damage", lost, "health", r.Health)
	}

	for _, id := range c.BulletWall {
		e.projectiles.DestroyByID(id)
	}

	// Robot-wall contacts are drained with the rest but carry no consequence.

	for _, id := range c.RobotRobot {
		i, err := e.index(id)
		if err != nil {
			e.log.Warn("collision with unknown robot", "robot", id)
			continue
		}
		r := e.robots[i]
		lost := r.LoseHealth(dmg.Collision)
		e.collector.RecordCollision(i, lost)
		e.log.Debug("robot_collision", "robot", r.ID, "tick", e.tick, "damage", lost, "health", r.Health)
	}
}

// updateAreas runs the buff and supply zones against the new clock.
func (e *Env) updateAreas() {
	for _, id := range e.buffs.Update(e.robots, e.clock) {
		i, err := e.index(id)
		if err != nil {
			e.log.Warn("buff for unknown robot", "robot", id)
			continue
		}
		e.collector.RecordBuff(i)
		e.log.Debug("buff_activated", "robot", id, "tick", e.tick, "duration", e.cfg.Buff.DurationSec)
	}
	for _, id := range e.supply.Update(e.robots) {
		i, err := e.index(id)
		if err != nil {
			e.log.Warn("supply for unknown robot", "robot", id)
			continue
		}
		e.collector.RecordSupply(i, e.cfg.Robot.SupplyAmount)
		e.log.Debug("supply_reload", "robot", id, "tick", e.tick, "ammo", e.robots[i].Ammo)
	}
}

// evaluate computes the step reward and termination. Reward stays zero
// until robot_0 has had an action committed on an earlier step.
func (e *Env) evaluate(committedNow bool) (float64, bool) {
	h0, h1 := e.robots[0].Health, e.robots[1].Health
	e.score = float64(h0-h1) / e.cfg.Reward.HealthScale

	var reward float64
	if e.committed {
		reward = e.score - e.prevScore
		if e.obs[0].Detected {
			reward += e.cfg.Reward.DetectBonus
		}
	}
	e.prevScore = e.score
	if committedNow {
		e.committed = true
	}
	e.collector.RecordReward(reward)

	done := h0 <= 0 || h1 <= 0
	if done && !e.done {
		e.log.Info("episode_done",
			"episode_id", e.collector.EpisodeID(),
			"tick", e.tick,
			"health_0", h0,
			"health_1", h1,
			"winner", e.winner(),
		)
	}
	e.done = done
	return reward, done
}
