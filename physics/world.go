// Package physics provides the rigid-body world the arena runs on.
//
// World is the contract the game engine depends on. Space is the in-repo
// implementation: a small deterministic 2D solver storing bodies in an ark
// ECS world, with a uniform grid broad phase.
package physics

import (
	"errors"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/arena/components"
)

// UserData is attached to every body and reported back in contacts and raycasts.
type UserData = components.Tag

// ErrInvalidShape is returned by CreateBody for degenerate geometry.
var ErrInvalidShape = errors.New("invalid shape")

// BodyType selects whether a body is moved by the solver.
type BodyType uint8

const (
	StaticBody BodyType = iota
	DynamicBody
)

// Shape describes body geometry.
type Shape struct {
	Kind   components.ShapeKind
	Radius float64
	HalfW  float64
	HalfH  float64
}

// Circle returns a circle shape of radius r.
func Circle(r float64) Shape {
	return Shape{Kind: components.ShapeCircle, Radius: r}
}

// Box returns an axis-aligned box of the given full width and height.
func Box(w, h float64) Shape {
	return Shape{Kind: components.ShapeBox, HalfW: w / 2, HalfH: h / 2}
}

// BodyDef configures a new body.
type BodyDef struct {
	Type           BodyType
	Shape          Shape
	Position       r2.Vec // centre
	Angle          float64
	Density        float64 // kg/m^2, 0 = 1
	Bullet         bool
	LinearDamping  float64
	AngularDamping float64
	UserData       UserData
}

// Body is an opaque handle to a body in a World.
type Body struct {
	e ecs.Entity
}

// IsZero reports whether b is the zero handle.
func (b Body) IsZero() bool {
	return b == Body{}
}

// RayCastFunc receives each candidate hit of a raycast.
// Return -1 to ignore the candidate, 0 to terminate, fraction to clip the ray
// to this hit, or 1 to continue unclipped.
type RayCastFunc func(fraction float64, point r2.Vec, data UserData) float64

// ContactListener is notified when two bodies start touching.
type ContactListener interface {
	BeginContact(a, b UserData)
}

// World is the rigid-body world contract.
type World interface {
	CreateBody(def BodyDef) (Body, error)
	DestroyBody(b Body)
	Alive(b Body) bool

	Step(dt float64, velocityIterations, positionIterations int)
	RayCast(p1, p2 r2.Vec, fn RayCastFunc)
	SetContactListener(l ContactListener)

	Position(b Body) r2.Vec
	Angle(b Body) float64
	LinearVelocity(b Body) r2.Vec
	AngularVelocity(b Body) float64
	SetLinearVelocity(b Body, v r2.Vec)
	SetAngularVelocity(b Body, w float64)
	SetTransform(b Body, pos r2.Vec, angle float64)
}

// RayHit is the closest hit of a single raycast.
type RayHit struct {
	Hit      bool
	Fraction float64 // 1 when nothing was hit
	Point    r2.Vec
	UserData UserData
}

// ClosestHit casts from p1 to p2 and returns the nearest hit.
// Each call returns a fresh value; a miss never carries data from an earlier cast.
func ClosestHit(w World, p1, p2 r2.Vec) RayHit {
	hit := RayHit{Fraction: 1, Point: p2}
	w.RayCast(p1, p2, func(fraction float64, point r2.Vec, data UserData) float64 {
		hit = RayHit{Hit: true, Fraction: fraction, Point: point, UserData: data}
		return fraction
	})
	return hit
}
