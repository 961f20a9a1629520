package systems

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/arena/components"
	"github.com/pthm-cable/arena/config"
	"github.com/pthm-cable/arena/physics"
)

// Projectile is a bullet in flight.
type Projectile struct {
	ID   uint64
	body physics.Body
}

// ProjectileManager owns the pool of in-flight bullets.
// Ids increase monotonically and are never reused within a manager.
type ProjectileManager struct {
	world  physics.World
	cfg    config.ProjectileConfig
	nextID uint64
	live   []Projectile // spawn order
}

// NewProjectileManager creates an empty pool.
func NewProjectileManager(w physics.World, cfg config.ProjectileConfig) *ProjectileManager {
	return &ProjectileManager{world: w, cfg: cfg}
}

// Shoot spawns a bullet at pos travelling along angle and returns its id.
func (m *ProjectileManager) Shoot(angle float64, pos r2.Vec) (uint64, error) {
	m.nextID++
	id := m.nextID

	body, err := m.world.CreateBody(physics.BodyDef{
		Type:     physics.DynamicBody,
		Bullet:   true,
		Shape:    physics.Circle(m.cfg.Radius),
		Position: pos,
		Angle:    angle,
		UserData: physics.UserData{Kind: components.KindBullet, ID: id},
	})
	if err != nil {
		return 0, fmt.Errorf("spawning projectile %d: %w", id, err)
	}
	m.world.SetLinearVelocity(body, r2.Scale(m.cfg.Speed, direction(angle)))

	m.live = append(m.live, Projectile{ID: id, body: body})
	return id, nil
}

// DestroyByID removes a bullet. Unknown or already destroyed ids are ignored.
func (m *ProjectileManager) DestroyByID(id uint64) bool {
	i := slices.IndexFunc(m.live, func(p Projectile) bool { return p.ID == id })
	if i < 0 {
		return false
	}
	m.world.DestroyBody(m.live[i].body)
	m.live = slices.Delete(m.live, i, i+1)
	return true
}

// DestroyAll removes every bullet.
func (m *ProjectileManager) DestroyAll() {
	for _, p := range m.live {
		m.world.DestroyBody(p.body)
	}
	m.live = m.live[:0]
}

// Len returns the number of bullets in flight.
func (m *ProjectileManager) Len() int {
	return len(m.live)
}

// Each visits bullets in spawn order.
func (m *ProjectileManager) Each(fn func(id uint64, pos, vel r2.Vec)) {
	for _, p := range m.live {
		fn(p.ID, m.world.Position(p.body), m.world.LinearVelocity(p.body))
	}
}
