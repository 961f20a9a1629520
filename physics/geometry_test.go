package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/arena/components"
)

func TestRayCircle(t *testing.T) {
	tests := []struct {
		name     string
		p1, p2   r2.Vec
		centre   r2.Vec
		radius   float64
		wantHit  bool
		wantFrac float64
	}{
		{
			name: "head on", p1: r2.Vec{X: 0}, p2: r2.Vec{X: 4},
			centre: r2.Vec{X: 2}, radius: 0.5,
			wantHit: true, wantFrac: 0.375,
		},
		{
			name: "miss above", p1: r2.Vec{X: 0, Y: 1}, p2: r2.Vec{X: 4, Y: 1},
			centre: r2.Vec{X: 2}, radius: 0.5,
		},
		{
			name: "too short", p1: r2.Vec{X: 0}, p2: r2.Vec{X: 1},
			centre: r2.Vec{X: 2}, radius: 0.5,
		},
		{
			name: "origin inside", p1: r2.Vec{X: 2}, p2: r2.Vec{X: 4},
			centre: r2.Vec{X: 2}, radius: 0.5,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f, ok := rayCircle(tc.p1, tc.p2, tc.centre, tc.radius)
			assert.Equal(t, tc.wantHit, ok)
			if tc.wantHit {
				assert.InDelta(t, tc.wantFrac, f, 1e-9)
			}
		})
	}
}

func TestRayBox(t *testing.T) {
	box := AABB{MinX: 1, MinY: -1, MaxX: 2, MaxY: 1}
	tests := []struct {
		name     string
		p1, p2   r2.Vec
		wantHit  bool
		wantFrac float64
	}{
		{name: "enter left face", p1: r2.Vec{X: 0}, p2: r2.Vec{X: 4}, wantHit: true, wantFrac: 0.25},
		{name: "enter bottom face", p1: r2.Vec{X: 1.5, Y: -3}, p2: r2.Vec{X: 1.5, Y: 1}, wantHit: true, wantFrac: 0.5},
		{name: "parallel outside", p1: r2.Vec{X: 0, Y: 2}, p2: r2.Vec{X: 4, Y: 2}},
		{name: "stops short", p1: r2.Vec{X: 0}, p2: r2.Vec{X: 0.9}},
		{name: "origin inside", p1: r2.Vec{X: 1.5}, p2: r2.Vec{X: 4}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f, ok := rayBox(tc.p1, tc.p2, box)
			assert.Equal(t, tc.wantHit, ok)
			if tc.wantHit {
				assert.InDelta(t, tc.wantFrac, f, 1e-9)
			}
		})
	}
}

func TestCollideCircleBox(t *testing.T) {
	circle := &components.Body{Shape: components.ShapeCircle, Radius: 0.25}
	wall := &components.Body{Shape: components.ShapeBox, HalfW: 0.1, HalfH: 1}

	t.Run("separated", func(t *testing.T) {
		m, ok := collide(r2.Vec{X: 0}, circle, r2.Vec{X: 1}, wall)
		assert.True(t, ok)
		assert.InDelta(t, 0.65, m.separation, 1e-9)
		assert.InDelta(t, 1.0, m.normal.X, 1e-9)
	})

	t.Run("box first flips normal", func(t *testing.T) {
		m, ok := collide(r2.Vec{X: 1}, wall, r2.Vec{X: 0}, circle)
		assert.True(t, ok)
		assert.InDelta(t, -1.0, m.normal.X, 1e-9)
	})

	t.Run("centre inside", func(t *testing.T) {
		m, ok := collide(r2.Vec{X: 0.95}, circle, r2.Vec{X: 1}, wall)
		assert.True(t, ok)
		assert.InDelta(t, -(0.05 + 0.25), m.separation, 1e-9)
	})

	t.Run("box pair ignored", func(t *testing.T) {
		_, ok := collide(r2.Vec{}, wall, r2.Vec{}, wall)
		assert.False(t, ok)
	})
}

func TestSweepCircle(t *testing.T) {
	thin := &components.Body{Shape: components.ShapeBox, HalfW: 0.01, HalfH: 1}

	toi, ok := sweepCircle(r2.Vec{X: 0}, r2.Vec{X: 2}, 0.02, r2.Vec{X: 1}, thin, 0.005)
	assert.True(t, ok)
	assert.InDelta(t, (1-0.01-0.02)/2, toi, 1e-9)

	toi, ok = sweepCircle(r2.Vec{X: 1}, r2.Vec{X: 2}, 0.02, r2.Vec{X: 1}, thin, 0.005)
	assert.True(t, ok, "overlap at start is an impact")
	assert.Zero(t, toi)
}

func TestSpatialGridQueryDedupes(t *testing.T) {
	g := NewSpatialGrid(0, 0, 8, 5, 1)
	g.Insert(0, AABB{MinX: 0, MinY: 0, MaxX: 8, MaxY: 0.1}) // spans a whole row
	g.Insert(1, AABB{MinX: 3.4, MinY: 3.4, MaxX: 3.6, MaxY: 3.6})

	got := g.QueryInto(nil, AABB{MinX: 0, MinY: 0, MaxX: 8, MaxY: 5})
	assert.ElementsMatch(t, []int32{0, 1}, got)

	got = g.QueryInto(got[:0], AABB{MinX: 3, MinY: 3, MaxX: 3.9, MaxY: 3.9})
	assert.Equal(t, []int32{1}, got)

	g.Clear()
	assert.Empty(t, g.QueryInto(nil, AABB{MinX: 0, MinY: 0, MaxX: 8, MaxY: 5}))
}
