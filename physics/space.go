package physics

import (
	"fmt"
	"math"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/arena/components"
)

// Settings configures a Space.
type Settings struct {
	// Region covered by the broad-phase grid. Bodies may leave it; they
	// are then bucketed into the border cells.
	MinX, MinY    float64
	Width, Height float64
	CellSize      float64

	// LinearSlop is the separation below which two shapes count as touching.
	LinearSlop float64
}

// proxy is a broad-phase entry rebuilt from the ECS world.
type proxy struct {
	e      ecs.Entity
	serial uint64
	box    AABB
}

// pairKey identifies a touching pair by body serials, low serial first.
type pairKey struct {
	lo, hi uint64
}

func makePairKey(a, b uint64) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{lo: a, hi: b}
}

// contactEvent is a begin-contact waiting for delivery at the end of Step.
type contactEvent struct {
	a, b UserData
}

// Space is a deterministic 2D rigid-body world backed by an ark ECS world.
// All bodies carry Position, Velocity, Rotation, Body and Tag; static bodies
// keep zero velocity and are never integrated.
type Space struct {
	world *ecs.World

	bodyMapper *ecs.Map5[
		components.Position,
		components.Velocity,
		components.Rotation,
		components.Body,
		components.Tag,
	]
	bodyFilter *ecs.Filter5[
		components.Position,
		components.Velocity,
		components.Rotation,
		components.Body,
		components.Tag,
	]

	posMap  *ecs.Map1[components.Position]
	velMap  *ecs.Map1[components.Velocity]
	rotMap  *ecs.Map1[components.Rotation]
	bodyMap *ecs.Map1[components.Body]
	tagMap  *ecs.Map1[components.Tag]

	settings Settings
	grid     *SpatialGrid
	proxies  []proxy
	dirty    bool
	scratch  []int32

	nextSerial uint64
	touching   map[pairKey]struct{}
	events     []contactEvent
	listener   ContactListener
}

var _ World = (*Space)(nil)

// NewSpace creates an empty space.
func NewSpace(s Settings) *Space {
	world := ecs.NewWorld()
	if s.LinearSlop <= 0 {
		s.LinearSlop = 0.005
	}

	return &Space{
		world: world,
		bodyMapper: ecs.NewMap5[
			components.Position,
			components.Velocity,
			components.Rotation,
			components.Body,
			components.Tag,
		](world),
		bodyFilter: ecs.NewFilter5[
			components.Position,
			components.Velocity,
			components.Rotation,
			components.Body,
			components.Tag,
		](world),
		posMap:   ecs.NewMap1[components.Position](world),
		velMap:   ecs.NewMap1[components.Velocity](world),
		rotMap:   ecs.NewMap1[components.Rotation](world),
		bodyMap:  ecs.NewMap1[components.Body](world),
		tagMap:   ecs.NewMap1[components.Tag](world),
		settings: s,
		grid:     NewSpatialGrid(s.MinX, s.MinY, s.Width, s.Height, s.CellSize),
		dirty:    true,
		touching: make(map[pairKey]struct{}),
	}
}

// CreateBody adds a body to the space.
func (s *Space) CreateBody(def BodyDef) (Body, error) {
	body := components.Body{
		Shape:          def.Shape.Kind,
		Radius:         def.Shape.Radius,
		HalfW:          def.Shape.HalfW,
		HalfH:          def.Shape.HalfH,
		Bullet:         def.Bullet,
		LinearDamping:  def.LinearDamping,
		AngularDamping: def.AngularDamping,
	}

	var area float64
	switch def.Shape.Kind {
	case components.ShapeCircle:
		if !(def.Shape.Radius > 0) {
			return Body{}, fmt.Errorf("circle radius %v: %w", def.Shape.Radius, ErrInvalidShape)
		}
		area = math.Pi * def.Shape.Radius * def.Shape.Radius
	case components.ShapeBox:
		if !(def.Shape.HalfW > 0) || !(def.Shape.HalfH > 0) {
			return Body{}, fmt.Errorf("box %vx%v: %w", 2*def.Shape.HalfW, 2*def.Shape.HalfH, ErrInvalidShape)
		}
		if def.Type == DynamicBody {
			return Body{}, fmt.Errorf("dynamic box: %w", ErrInvalidShape)
		}
		area = 4 * def.Shape.HalfW * def.Shape.HalfH
	default:
		return Body{}, fmt.Errorf("shape kind %d: %w", def.Shape.Kind, ErrInvalidShape)
	}

	if def.Type == DynamicBody {
		density := def.Density
		if density <= 0 {
			density = 1
		}
		body.Dynamic = true
		body.InvMass = 1 / (density * area)
	}

	s.nextSerial++
	body.Serial = s.nextSerial

	pos := components.Position{X: def.Position.X, Y: def.Position.Y}
	vel := components.Velocity{}
	rot := components.Rotation{Heading: def.Angle}
	tag := def.UserData
	e := s.bodyMapper.NewEntity(&pos, &vel, &rot, &body, &tag)
	s.dirty = true

	return Body{e: e}, nil
}

// DestroyBody removes a body. Destroying a dead or zero handle is a no-op.
func (s *Space) DestroyBody(b Body) {
	if !s.Alive(b) {
		return
	}
	s.world.RemoveEntity(b.e)
	s.dirty = true
}

// Alive reports whether b refers to a live body.
func (s *Space) Alive(b Body) bool {
	if b.IsZero() {
		return false
	}
	return s.world.Alive(b.e)
}

// BodyCount returns the number of live bodies.
func (s *Space) BodyCount() int {
	n := 0
	query := s.bodyFilter.Query()
	for query.Next() {
		n++
	}
	return n
}

// SetContactListener installs the begin-contact listener.
func (s *Space) SetContactListener(l ContactListener) {
	s.listener = l
}

// Position returns the centre of b.
func (s *Space) Position(b Body) r2.Vec {
	if !s.Alive(b) {
		return r2.Vec{}
	}
	return s.posMap.Get(b.e).Vec()
}

// Angle returns the heading of b in radians.
func (s *Space) Angle(b Body) float64 {
	if !s.Alive(b) {
		return 0
	}
	return s.rotMap.Get(b.e).Heading
}

// LinearVelocity returns the velocity of b.
func (s *Space) LinearVelocity(b Body) r2.Vec {
	if !s.Alive(b) {
		return r2.Vec{}
	}
	return s.velMap.Get(b.e).Vec()
}

// AngularVelocity returns the angular velocity of b.
func (s *Space) AngularVelocity(b Body) float64 {
	if !s.Alive(b) {
		return 0
	}
	return s.rotMap.Get(b.e).AngVel
}

// SetLinearVelocity sets the velocity of a dynamic body.
func (s *Space) SetLinearVelocity(b Body, v r2.Vec) {
	if !s.Alive(b) || !s.bodyMap.Get(b.e).Dynamic {
		return
	}
	s.velMap.Get(b.e).Set(v)
}

// SetAngularVelocity sets the angular velocity of a dynamic body.
func (s *Space) SetAngularVelocity(b Body, w float64) {
	if !s.Alive(b) || !s.bodyMap.Get(b.e).Dynamic {
		return
	}
	s.rotMap.Get(b.e).AngVel = w
}

// SetTransform teleports a body.
func (s *Space) SetTransform(b Body, pos r2.Vec, angle float64) {
	if !s.Alive(b) {
		return
	}
	s.posMap.Get(b.e).Set(pos)
	s.rotMap.Get(b.e).Heading = angle
	s.dirty = true
}

// UserData returns the tag of b.
func (s *Space) UserData(b Body) UserData {
	if !s.Alive(b) {
		return UserData{}
	}
	return *s.tagMap.Get(b.e)
}

// rebuildProxies refreshes the broad phase from the ECS world if anything moved.
func (s *Space) rebuildProxies() {
	if !s.dirty {
		return
	}
	s.proxies = s.proxies[:0]
	s.grid.Clear()

	query := s.bodyFilter.Query()
	for query.Next() {
		pos, _, _, body, _ := query.Get()
		p := proxy{
			e:      query.Entity(),
			serial: body.Serial,
			box:    boundsOf(pos.Vec(), body),
		}
		s.grid.Insert(int32(len(s.proxies)), p.box.Grow(s.settings.LinearSlop))
		s.proxies = append(s.proxies, p)
	}
	s.dirty = false
}
