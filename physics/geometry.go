package physics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/arena/components"
)

const epsilon = 1e-12

// manifold describes the closest features of two shapes.
type manifold struct {
	normal     r2.Vec  // unit, from A towards B
	separation float64 // negative when overlapping
}

// boundsOf returns the bounding box of a body centred at p.
func boundsOf(p r2.Vec, b *components.Body) AABB {
	hw, hh := b.Extents()
	return AABB{p.X - hw, p.Y - hh, p.X + hw, p.Y + hh}
}

// collide computes the manifold between two shapes. Box–box pairs report false.
func collide(pa r2.Vec, a *components.Body, pb r2.Vec, b *components.Body) (manifold, bool) {
	switch {
	case a.Shape == components.ShapeCircle && b.Shape == components.ShapeCircle:
		return collideCircles(pa, a.Radius, pb, b.Radius), true
	case a.Shape == components.ShapeCircle && b.Shape == components.ShapeBox:
		m := collideCircleBox(pa, a.Radius, boundsOf(pb, b))
		return m, true
	case a.Shape == components.ShapeBox && b.Shape == components.ShapeCircle:
		m := collideCircleBox(pb, b.Radius, boundsOf(pa, a))
		m.normal = r2.Scale(-1, m.normal)
		return m, true
	}
	return manifold{}, false
}

func collideCircles(pa r2.Vec, ra float64, pb r2.Vec, rb float64) manifold {
	d := r2.Sub(pb, pa)
	dist := r2.Norm(d)
	n := r2.Vec{X: 1}
	if dist > epsilon {
		n = r2.Scale(1/dist, d)
	}
	return manifold{normal: n, separation: dist - ra - rb}
}

// collideCircleBox returns the manifold from the circle to the box.
func collideCircleBox(c r2.Vec, r float64, box AABB) manifold {
	q := r2.Vec{
		X: math.Max(box.MinX, math.Min(c.X, box.MaxX)),
		Y: math.Max(box.MinY, math.Min(c.Y, box.MaxY)),
	}
	d := r2.Sub(q, c)
	dist := r2.Norm(d)
	if dist > epsilon {
		return manifold{normal: r2.Scale(1/dist, d), separation: dist - r}
	}

	// Centre inside the box: push out through the nearest face.
	faces := [4]struct {
		depth float64
		n     r2.Vec
	}{
		{c.X - box.MinX, r2.Vec{X: 1}},
		{box.MaxX - c.X, r2.Vec{X: -1}},
		{c.Y - box.MinY, r2.Vec{Y: 1}},
		{box.MaxY - c.Y, r2.Vec{Y: -1}},
	}
	best := faces[0]
	for _, f := range faces[1:] {
		if f.depth < best.depth {
			best = f
		}
	}
	return manifold{normal: best.n, separation: -(best.depth + r)}
}

// rayCircle intersects segment p1→p2 with a circle. Rays starting inside the
// circle do not hit it.
func rayCircle(p1, p2, c r2.Vec, r float64) (float64, bool) {
	s := r2.Sub(p1, c)
	b := r2.Dot(s, s) - r*r

	d := r2.Sub(p2, p1)
	cc := r2.Dot(s, d)
	rr := r2.Dot(d, d)
	sigma := cc*cc - rr*b
	if sigma < 0 || rr < epsilon {
		return 0, false
	}

	a := -(cc + math.Sqrt(sigma))
	if a >= 0 && a <= rr {
		return a / rr, true
	}
	return 0, false
}

// rayBox intersects segment p1→p2 with a box using the slab method.
// Rays starting inside the box do not hit it.
func rayBox(p1, p2 r2.Vec, box AABB) (float64, bool) {
	d := r2.Sub(p2, p1)
	lower, upper := 0.0, 1.0
	entered := false

	slab := func(p, dir, lo, hi float64) bool {
		if math.Abs(dir) < epsilon {
			return p >= lo && p <= hi
		}
		t1 := (lo - p) / dir
		t2 := (hi - p) / dir
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > lower {
			lower = t1
			entered = true
		}
		upper = math.Min(upper, t2)
		return lower <= upper
	}

	if !slab(p1.X, d.X, box.MinX, box.MaxX) || !slab(p1.Y, d.Y, box.MinY, box.MaxY) {
		return 0, false
	}
	return lower, entered
}

// rayShape intersects a segment with a body's shape centred at p.
func rayShape(p1, p2, p r2.Vec, b *components.Body) (float64, bool) {
	if b.Shape == components.ShapeBox {
		return rayBox(p1, p2, boundsOf(p, b))
	}
	return rayCircle(p1, p2, p, b.Radius)
}

// sweepCircle returns the time of impact in [0, 1] of a circle of radius r
// moving from start by delta against a body. Starting within slop of the
// body is an immediate impact.
func sweepCircle(start, delta r2.Vec, r float64, p r2.Vec, b *components.Body, slop float64) (float64, bool) {
	probe := components.Body{Shape: components.ShapeCircle, Radius: r}
	if m, ok := collide(start, &probe, p, b); ok && m.separation <= slop {
		return 0, true
	}

	end := r2.Add(start, delta)
	if b.Shape == components.ShapeBox {
		return rayBox(start, end, boundsOf(p, b).Grow(r))
	}
	return rayCircle(start, end, p, b.Radius+r)
}
