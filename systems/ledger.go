package systems

import (
	"github.com/pthm-cable/arena/components"
	"github.com/pthm-cable/arena/physics"
)

// BulletHit is a bullet striking a robot.
type BulletHit struct {
	Bullet uint64
	Robot  RobotID
}

// Contacts holds the collision events of one tick, grouped by category.
type Contacts struct {
	BulletRobot []BulletHit
	BulletWall  []uint64
	RobotWall   []RobotID
	RobotRobot  []RobotID // one entry per participant
}

// Len returns the total number of events.
func (c Contacts) Len() int {
	return len(c.BulletRobot) + len(c.BulletWall) + len(c.RobotWall) + len(c.RobotRobot)
}

// ContactLedger collects begin-contact events from the physics world until
// the engine drains it.
type ContactLedger struct {
	pending Contacts
}

var _ physics.ContactListener = (*ContactLedger)(nil)

// NewContactLedger creates an empty ledger.
func NewContactLedger() *ContactLedger {
	return &ContactLedger{}
}

// BeginContact classifies a new contact. Pairs that carry no rule meaning
// (bullet against bullet, anything untagged) are dropped.
func (l *ContactLedger) BeginContact(a, b physics.UserData) {
	if a.Kind > b.Kind {
		a, b = b, a
	}
	// a.Kind <= b.Kind: wall < robot < bullet
	switch {
	case a.Kind == components.KindRobot && b.Kind == components.KindBullet:
		l.pending.BulletRobot = append(l.pending.BulletRobot, BulletHit{Bullet: b.ID, Robot: RobotID(a.Name)})
	case a.Kind == components.KindWall && b.Kind == components.KindBullet:
		l.pending.BulletWall = append(l.pending.BulletWall, b.ID)
	case a.Kind == components.KindWall && b.Kind == components.KindRobot:
		l.pending.RobotWall = append(l.pending.RobotWall, RobotID(b.Name))
	case a.Kind == components.KindRobot && b.Kind == components.KindRobot:
		l.pending.RobotRobot = append(l.pending.RobotRobot, RobotID(a.Name), RobotID(b.Name))
	}
}

// Len returns the number of pending events.
func (l *ContactLedger) Len() int {
	return l.pending.Len()
}

// Drain returns the pending events and clears the ledger.
func (l *ContactLedger) Drain() Contacts {
	out := l.pending
	l.pending = Contacts{}
	return out
}
