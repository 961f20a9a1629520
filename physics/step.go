package physics

import (
	"math"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/arena/components"
)

// Solver tuning, as in Box2D.
const (
	baumgarte     = 0.2
	maxCorrection = 0.2
)

// contact is a candidate pair for the solver.
type contact struct {
	a, b    ecs.Entity
	ia, ib  float64 // inverse masses
	normal  r2.Vec
	impulse float64 // accumulated normal impulse
}

// Step advances the space by dt: damping, velocity constraints, integration,
// position correction, bullet sweeps, then begin-contact detection.
// Contact events are delivered to the listener after the state is settled.
func (s *Space) Step(dt float64, velocityIterations, positionIterations int) {
	if dt <= 0 {
		return
	}

	s.applyDamping(dt)

	s.rebuildProxies()
	contacts := s.findContacts(s.settings.LinearSlop)
	s.solveVelocities(contacts, velocityIterations)

	s.integrate(dt)
	s.rebuildProxies()
	s.solvePositions(positionIterations)
	s.dirty = true

	now := make(map[pairKey]struct{}, len(s.touching))
	s.sweepBullets(dt, now)
	s.collectTouching(now)
	s.touching = now

	s.deliverEvents()
}

// applyDamping scales dynamic velocities by 1/(1+dt*c).
func (s *Space) applyDamping(dt float64) {
	query := s.bodyFilter.Query()
	for query.Next() {
		_, vel, rot, body, _ := query.Get()
		if !body.Dynamic {
			continue
		}
		if body.LinearDamping > 0 {
			k := 1 / (1 + dt*body.LinearDamping)
			vel.X *= k
			vel.Y *= k
		}
		if body.AngularDamping > 0 {
			rot.AngVel *= 1 / (1 + dt*body.AngularDamping)
		}
	}
}

// integrate moves every dynamic non-bullet body by its velocity.
func (s *Space) integrate(dt float64) {
	query := s.bodyFilter.Query()
	for query.Next() {
		pos, vel, rot, body, _ := query.Get()
		if !body.Dynamic || body.Bullet {
			continue
		}
		pos.X += vel.X * dt
		pos.Y += vel.Y * dt
		rot.Heading += rot.AngVel * dt
	}
	s.dirty = true
}

// findContacts returns solver pairs whose separation is at most maxSep.
// Pairs are ordered by proxy index, so the result is deterministic.
func (s *Space) findContacts(maxSep float64) []contact {
	var out []contact
	s.eachCandidatePair(func(pa, pb *proxy, ba, bb *components.Body) {
		m, ok := collide(s.posMap.Get(pa.e).Vec(), ba, s.posMap.Get(pb.e).Vec(), bb)
		if !ok || m.separation > maxSep {
			return
		}
		out = append(out, contact{
			a: pa.e, b: pb.e,
			ia: ba.InvMass, ib: bb.InvMass,
			normal: m.normal,
		})
	})
	return out
}

// eachCandidatePair visits broad-phase pairs of non-bullet bodies where at
// least one side is dynamic. Each pair is visited once.
func (s *Space) eachCandidatePair(fn func(pa, pb *proxy, ba, bb *components.Body)) {
	for i := range s.proxies {
		pa := &s.proxies[i]
		ba := s.bodyMap.Get(pa.e)
		if ba.Bullet {
			continue
		}
		s.scratch = s.grid.QueryInto(s.scratch[:0], pa.box.Grow(s.settings.LinearSlop))
		candidates := append([]int32(nil), s.scratch...)
		for _, j := range candidates {
			pb := &s.proxies[j]
			if pb.serial <= pa.serial {
				continue
			}
			bb := s.bodyMap.Get(pb.e)
			if bb.Bullet || (!ba.Dynamic && !bb.Dynamic) {
				continue
			}
			if !pa.box.Grow(s.settings.LinearSlop).Overlaps(pb.box) {
				continue
			}
			fn(pa, pb, ba, bb)
		}
	}
}

// solveVelocities removes approaching normal velocity at touching contacts.
// Restitution is zero and accumulated impulses never pull bodies together.
func (s *Space) solveVelocities(cs []contact, iterations int) {
	for it := 0; it < iterations; it++ {
		for k := range cs {
			c := &cs[k]
			sum := c.ia + c.ib
			if sum == 0 {
				continue
			}
			va := s.velMap.Get(c.a)
			vb := s.velMap.Get(c.b)
			rel := r2.Sub(vb.Vec(), va.Vec())
			vn := r2.Dot(rel, c.normal)

			lambda := -vn / sum
			next := math.Max(c.impulse+lambda, 0)
			lambda = next - c.impulse
			c.impulse = next

			va.Set(r2.Sub(va.Vec(), r2.Scale(lambda*c.ia, c.normal)))
			vb.Set(r2.Add(vb.Vec(), r2.Scale(lambda*c.ib, c.normal)))
		}
	}
}

// solvePositions pushes overlapping shapes apart, leaving up to LinearSlop of
// overlap so resting contacts keep touching.
func (s *Space) solvePositions(iterations int) {
	if iterations <= 0 {
		return
	}
	cs := s.findContacts(s.settings.LinearSlop)
	slop := s.settings.LinearSlop

	for it := 0; it < iterations; it++ {
		minSep := 0.0
		for k := range cs {
			c := &cs[k]
			sum := c.ia + c.ib
			if sum == 0 {
				continue
			}
			pa := s.posMap.Get(c.a)
			pb := s.posMap.Get(c.b)
			m, ok := collide(pa.Vec(), s.bodyMap.Get(c.a), pb.Vec(), s.bodyMap.Get(c.b))
			if !ok {
				continue
			}
			minSep = math.Min(minSep, m.separation)

			C := math.Max(-maxCorrection, math.Min(baumgarte*(m.separation+slop), 0))
			impulse := -C / sum
			pa.Set(r2.Sub(pa.Vec(), r2.Scale(impulse*c.ia, m.normal)))
			pb.Set(r2.Add(pb.Vec(), r2.Scale(impulse*c.ib, m.normal)))
		}
		if minSep >= -3*slop {
			break
		}
	}
}

// sweepBullets moves each bullet along its path, stopping at the first
// non-bullet shape it meets, and records the pair as touching.
func (s *Space) sweepBullets(dt float64, now map[pairKey]struct{}) {
	s.rebuildProxies()
	for i := range s.proxies {
		p := &s.proxies[i]
		body := s.bodyMap.Get(p.e)
		if !body.Bullet || !body.Dynamic {
			continue
		}
		pos := s.posMap.Get(p.e)
		vel := s.velMap.Get(p.e)
		rot := s.rotMap.Get(p.e)
		rot.Heading += rot.AngVel * dt

		start := pos.Vec()
		delta := r2.Scale(dt, vel.Vec())
		end := r2.Add(start, delta)
		swept := AABB{
			MinX: math.Min(start.X, end.X), MinY: math.Min(start.Y, end.Y),
			MaxX: math.Max(start.X, end.X), MaxY: math.Max(start.Y, end.Y),
		}.Grow(body.Radius)

		best := 1.0
		var hit *proxy
		s.scratch = s.grid.QueryInto(s.scratch[:0], swept)
		for _, j := range s.scratch {
			other := &s.proxies[j]
			if other.e == p.e {
				continue
			}
			ob := s.bodyMap.Get(other.e)
			if ob.Bullet {
				continue
			}
			toi, ok := sweepCircle(start, delta, body.Radius, s.posMap.Get(other.e).Vec(), ob, s.settings.LinearSlop)
			if ok && (hit == nil || toi < best) {
				best = toi
				hit = other
			}
		}

		pos.Set(r2.Add(start, r2.Scale(best, delta)))
		if hit != nil {
			s.touch(now, p, hit)
		}
	}
	s.dirty = true
}

// collectTouching records every non-bullet pair within LinearSlop.
func (s *Space) collectTouching(now map[pairKey]struct{}) {
	s.rebuildProxies()
	s.eachCandidatePair(func(pa, pb *proxy, ba, bb *components.Body) {
		m, ok := collide(s.posMap.Get(pa.e).Vec(), ba, s.posMap.Get(pb.e).Vec(), bb)
		if ok && m.separation <= s.settings.LinearSlop {
			s.touch(now, pa, pb)
		}
	})
}

// touch marks a pair as touching this step and queues a begin-contact if it
// was not touching after the previous step.
func (s *Space) touch(now map[pairKey]struct{}, a, b *proxy) {
	key := makePairKey(a.serial, b.serial)
	if _, seen := now[key]; seen {
		return
	}
	now[key] = struct{}{}
	if _, was := s.touching[key]; was {
		return
	}
	s.events = append(s.events, contactEvent{a: *s.tagMap.Get(a.e), b: *s.tagMap.Get(b.e)})
}

// deliverEvents hands queued begin-contacts to the listener in order.
func (s *Space) deliverEvents() {
	events := s.events
	s.events = s.events[:0]
	if s.listener == nil {
		return
	}
	for _, ev := range events {
		s.listener.BeginContact(ev.a, ev.b)
	}
}

// RayCast reports every shape crossed by the segment p1→p2 to fn, clipping
// the segment by fn's return value. Shapes containing p1 are not reported.
func (s *Space) RayCast(p1, p2 r2.Vec, fn RayCastFunc) {
	s.rebuildProxies()

	box := AABB{
		MinX: math.Min(p1.X, p2.X), MinY: math.Min(p1.Y, p2.Y),
		MaxX: math.Max(p1.X, p2.X), MaxY: math.Max(p1.Y, p2.Y),
	}
	candidates := s.grid.QueryInto(nil, box)

	d := r2.Sub(p2, p1)
	maxFraction := 1.0
	for _, idx := range candidates {
		p := &s.proxies[idx]
		end := r2.Add(p1, r2.Scale(maxFraction, d))
		f, ok := rayShape(p1, end, s.posMap.Get(p.e).Vec(), s.bodyMap.Get(p.e))
		if !ok {
			continue
		}
		f *= maxFraction
		point := r2.Add(p1, r2.Scale(f, d))

		value := fn(f, point, *s.tagMap.Get(p.e))
		switch {
		case value < 0:
			continue
		case value == 0:
			return
		case value < maxFraction:
			maxFraction = value
		}
	}
}
