package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/arena/components"
)

const testDT = 1.0 / 30.0

type recordingListener struct {
	pairs [][2]UserData
}

func (l *recordingListener) BeginContact(a, b UserData) {
	l.pairs = append(l.pairs, [2]UserData{a, b})
}

func newTestSpace() (*Space, *recordingListener) {
	s := NewSpace(Settings{Width: 8, Height: 5, CellSize: 1, LinearSlop: 0.005})
	l := &recordingListener{}
	s.SetContactListener(l)
	return s, l
}

func wallTag() UserData { return UserData{Kind: components.KindWall} }

func robotTag(name string) UserData { return UserData{Kind: components.KindRobot, Name: name} }

func bulletTag(id uint64) UserData { return UserData{Kind: components.KindBullet, ID: id} }

func TestCreateBodyRejectsDegenerateShapes(t *testing.T) {
	s, _ := newTestSpace()

	tests := []struct {
		name string
		def  BodyDef
	}{
		{"zero radius", BodyDef{Type: DynamicBody, Shape: Circle(0)}},
		{"flat box", BodyDef{Type: StaticBody, Shape: Box(1, 0)}},
		{"dynamic box", BodyDef{Type: DynamicBody, Shape: Box(1, 1)}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.CreateBody(tc.def)
			require.ErrorIs(t, err, ErrInvalidShape)
		})
	}
}

func TestDestroyBody(t *testing.T) {
	s, _ := newTestSpace()
	b, err := s.CreateBody(BodyDef{Type: DynamicBody, Shape: Circle(0.25), Position: r2.Vec{X: 1, Y: 1}})
	require.NoError(t, err)
	assert.True(t, s.Alive(b))
	assert.Equal(t, 1, s.BodyCount())

	s.DestroyBody(b)
	assert.False(t, s.Alive(b))
	assert.Zero(t, s.BodyCount())

	s.DestroyBody(b) // idempotent
	s.DestroyBody(Body{})
	assert.Equal(t, r2.Vec{}, s.Position(b))
}

func TestCircleComesToRestAgainstWall(t *testing.T) {
	s, l := newTestSpace()
	_, err := s.CreateBody(BodyDef{Type: StaticBody, Shape: Box(0.2, 2), Position: r2.Vec{X: 2, Y: 1}, UserData: wallTag()})
	require.NoError(t, err)
	robot, err := s.CreateBody(BodyDef{Type: DynamicBody, Shape: Circle(0.25), Position: r2.Vec{X: 1, Y: 1}, UserData: robotTag("robot_0")})
	require.NoError(t, err)
	s.SetLinearVelocity(robot, r2.Vec{X: 2})

	for i := 0; i < 60; i++ {
		s.Step(testDT, 180, 60)
	}

	require.Len(t, l.pairs, 1, "resting contact begins once")
	assert.ElementsMatch(t, []UserData{wallTag(), robotTag("robot_0")}, l.pairs[0][:])

	x := s.Position(robot).X
	assert.LessOrEqual(t, x, 2-0.1-0.25+0.02)
	assert.Greater(t, x, 1.5)
	assert.InDelta(t, 0, s.LinearVelocity(robot).X, 1e-9)
}

func TestRobotsCollideOncePerTouch(t *testing.T) {
	s, l := newTestSpace()
	a, err := s.CreateBody(BodyDef{Type: DynamicBody, Shape: Circle(0.25), Position: r2.Vec{X: 1, Y: 2}, UserData: robotTag("robot_0")})
	require.NoError(t, err)
	b, err := s.CreateBody(BodyDef{Type: DynamicBody, Shape: Circle(0.25), Position: r2.Vec{X: 2, Y: 2}, UserData: robotTag("robot_1")})
	require.NoError(t, err)
	s.SetLinearVelocity(a, r2.Vec{X: 1})
	s.SetLinearVelocity(b, r2.Vec{X: -1})

	for i := 0; i < 30; i++ {
		s.Step(testDT, 180, 60)
	}

	require.Len(t, l.pairs, 1)
	assert.ElementsMatch(t, []UserData{robotTag("robot_0"), robotTag("robot_1")}, l.pairs[0][:])
	gap := r2.Norm(r2.Sub(s.Position(b), s.Position(a))) - 0.5
	assert.InDelta(t, 0, gap, 0.02)
}

func TestBulletDoesNotTunnelThroughThinWall(t *testing.T) {
	s, l := newTestSpace()
	_, err := s.CreateBody(BodyDef{Type: StaticBody, Shape: Box(0.02, 2), Position: r2.Vec{X: 1, Y: 1}, UserData: wallTag()})
	require.NoError(t, err)
	bullet, err := s.CreateBody(BodyDef{Type: DynamicBody, Bullet: true, Shape: Circle(0.02), Position: r2.Vec{X: 0.5, Y: 1}, UserData: bulletTag(7)})
	require.NoError(t, err)
	s.SetLinearVelocity(bullet, r2.Vec{X: 25})

	s.Step(testDT, 180, 60)

	require.Len(t, l.pairs, 1)
	assert.ElementsMatch(t, []UserData{bulletTag(7), wallTag()}, l.pairs[0][:])
	assert.Less(t, s.Position(bullet).X, 1.0)

	// Still touching on the next step: no second begin-contact.
	s.Step(testDT, 180, 60)
	assert.Len(t, l.pairs, 1)
}

func TestBulletsIgnoreEachOther(t *testing.T) {
	s, l := newTestSpace()
	a, err := s.CreateBody(BodyDef{Type: DynamicBody, Bullet: true, Shape: Circle(0.02), Position: r2.Vec{X: 1, Y: 1}, UserData: bulletTag(1)})
	require.NoError(t, err)
	b, err := s.CreateBody(BodyDef{Type: DynamicBody, Bullet: true, Shape: Circle(0.02), Position: r2.Vec{X: 2, Y: 1}, UserData: bulletTag(2)})
	require.NoError(t, err)
	s.SetLinearVelocity(a, r2.Vec{X: 25})
	s.SetLinearVelocity(b, r2.Vec{X: -25})

	for i := 0; i < 3; i++ {
		s.Step(testDT, 180, 60)
	}
	assert.Empty(t, l.pairs)
	assert.Greater(t, s.Position(a).X, s.Position(b).X, "bullets passed through each other")
}

func TestBulletHitsRobotWithoutPushingIt(t *testing.T) {
	s, l := newTestSpace()
	robot, err := s.CreateBody(BodyDef{Type: DynamicBody, Shape: Circle(0.25), Position: r2.Vec{X: 3, Y: 2}, UserData: robotTag("robot_1")})
	require.NoError(t, err)
	bullet, err := s.CreateBody(BodyDef{Type: DynamicBody, Bullet: true, Shape: Circle(0.02), Position: r2.Vec{X: 2, Y: 2}, UserData: bulletTag(3)})
	require.NoError(t, err)
	s.SetLinearVelocity(bullet, r2.Vec{X: 25})

	s.Step(testDT, 180, 60)
	s.Step(testDT, 180, 60)

	require.Len(t, l.pairs, 1)
	assert.ElementsMatch(t, []UserData{bulletTag(3), robotTag("robot_1")}, l.pairs[0][:])
	assert.Equal(t, r2.Vec{X: 3, Y: 2}, s.Position(robot))
}

func TestRayCastClosestAndOriginInside(t *testing.T) {
	s, _ := newTestSpace()
	_, err := s.CreateBody(BodyDef{Type: DynamicBody, Shape: Circle(0.25), Position: r2.Vec{X: 1, Y: 1}, UserData: robotTag("robot_0")})
	require.NoError(t, err)
	_, err = s.CreateBody(BodyDef{Type: StaticBody, Shape: Box(0.2, 2), Position: r2.Vec{X: 4, Y: 1}, UserData: wallTag()})
	require.NoError(t, err)
	_, err = s.CreateBody(BodyDef{Type: DynamicBody, Shape: Circle(0.25), Position: r2.Vec{X: 3, Y: 1}, UserData: robotTag("robot_1")})
	require.NoError(t, err)

	// Starting inside robot_0: it is skipped, robot_1 is closer than the wall.
	hit := ClosestHit(s, r2.Vec{X: 1, Y: 1}, r2.Vec{X: 6, Y: 1})
	require.True(t, hit.Hit)
	assert.Equal(t, robotTag("robot_1"), hit.UserData)
	assert.InDelta(t, (2.75-1)/5, hit.Fraction, 1e-9)
	assert.InDelta(t, 2.75, hit.Point.X, 1e-9)

	// A miss right after a hit carries no stale data.
	miss := ClosestHit(s, r2.Vec{X: 1, Y: 3}, r2.Vec{X: 2, Y: 4})
	assert.False(t, miss.Hit)
	assert.Equal(t, 1.0, miss.Fraction)
	assert.Equal(t, UserData{}, miss.UserData)
}

func TestRayCastCallbackControl(t *testing.T) {
	s, _ := newTestSpace()
	for _, x := range []float64{2, 3, 4} {
		_, err := s.CreateBody(BodyDef{Type: StaticBody, Shape: Box(0.2, 1), Position: r2.Vec{X: x, Y: 1}, UserData: wallTag()})
		require.NoError(t, err)
	}

	t.Run("continue reports all", func(t *testing.T) {
		n := 0
		s.RayCast(r2.Vec{X: 0, Y: 1}, r2.Vec{X: 5, Y: 1}, func(float64, r2.Vec, UserData) float64 {
			n++
			return 1
		})
		assert.Equal(t, 3, n)
	})

	t.Run("terminate stops", func(t *testing.T) {
		n := 0
		s.RayCast(r2.Vec{X: 0, Y: 1}, r2.Vec{X: 5, Y: 1}, func(float64, r2.Vec, UserData) float64 {
			n++
			return 0
		})
		assert.Equal(t, 1, n)
	})
}

func TestStepIsDeterministic(t *testing.T) {
	build := func() (*Space, []Body) {
		s, _ := newTestSpace()
		var bodies []Body
		for i, p := range []r2.Vec{{X: 1, Y: 1}, {X: 1.4, Y: 1.1}, {X: 2, Y: 2}} {
			b, err := s.CreateBody(BodyDef{Type: DynamicBody, Shape: Circle(0.25), Position: p, UserData: robotTag(string(rune('a' + i)))})
			require.NoError(t, err)
			s.SetLinearVelocity(b, r2.Vec{X: float64(i) - 1, Y: 0.5})
			bodies = append(bodies, b)
		}
		return s, bodies
	}

	s1, b1 := build()
	s2, b2 := build()
	for i := 0; i < 90; i++ {
		s1.Step(testDT, 180, 60)
		s2.Step(testDT, 180, 60)
	}
	for i := range b1 {
		assert.Equal(t, s1.Position(b1[i]), s2.Position(b2[i]))
		assert.Equal(t, s1.LinearVelocity(b1[i]), s2.LinearVelocity(b2[i]))
	}
}

func TestDamping(t *testing.T) {
	s, _ := newTestSpace()
	b, err := s.CreateBody(BodyDef{Type: DynamicBody, Shape: Circle(0.25), Position: r2.Vec{X: 4, Y: 2.5}, LinearDamping: 3, AngularDamping: 3})
	require.NoError(t, err)
	s.SetLinearVelocity(b, r2.Vec{X: 1})
	s.SetAngularVelocity(b, 2)

	s.Step(testDT, 1, 1)

	k := 1 / (1 + testDT*3)
	assert.InDelta(t, k, s.LinearVelocity(b).X, 1e-12)
	assert.InDelta(t, 2*k, s.AngularVelocity(b), 1e-12)
	assert.InDelta(t, 2*k*testDT, s.Angle(b), 1e-12)
}
