package components

// ShapeKind selects the collision geometry of a body.
type ShapeKind uint8

const (
	ShapeCircle ShapeKind = iota
	ShapeBox              // axis-aligned, static bodies only
)

// Body holds the physical properties of a rigid body.
type Body struct {
	Shape  ShapeKind
	Radius float64 // circle radius
	HalfW  float64 // box half-extent along X
	HalfH  float64 // box half-extent along Y

	Dynamic bool
	Bullet  bool // swept against non-bullet shapes, never resolved
	InvMass float64

	LinearDamping  float64
	AngularDamping float64

	// Serial is a creation counter that is never reused, so pair keys stay
	// valid after bodies are destroyed.
	Serial uint64
}

// Extents returns the half-size of the body's bounding box.
func (b *Body) Extents() (hw, hh float64) {
	if b.Shape == ShapeBox {
		return b.HalfW, b.HalfH
	}
	return b.Radius, b.Radius
}
