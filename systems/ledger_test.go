package systems

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pthm-cable/arena/components"
	"github.com/pthm-cable/arena/physics"
)

func TestContactLedgerClassifies(t *testing.T) {
	wall := physics.UserData{Kind: components.KindWall}
	r0 := physics.UserData{Kind: components.KindRobot, Name: "robot_0"}
	r1 := physics.UserData{Kind: components.KindRobot, Name: "robot_1"}
	b5 := physics.UserData{Kind: components.KindBullet, ID: 5}
	b6 := physics.UserData{Kind: components.KindBullet, ID: 6}

	tests := []struct {
		name string
		a, b physics.UserData
		want Contacts
	}{
		{"bullet robot", b5, r1, Contacts{BulletRobot: []BulletHit{{Bullet: 5, Robot: Robot1}}}},
		{"robot bullet", r0, b6, Contacts{BulletRobot: []BulletHit{{Bullet: 6, Robot: Robot0}}}},
		{"bullet wall", wall, b5, Contacts{BulletWall: []uint64{5}}},
		{"robot wall", r1, wall, Contacts{RobotWall: []RobotID{Robot1}}},
		{"robot robot", r0, r1, Contacts{RobotRobot: []RobotID{Robot0, Robot1}}},
		{"bullet bullet", b5, b6, Contacts{}},
		{"untagged", physics.UserData{}, r0, Contacts{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l := NewContactLedger()
			l.BeginContact(tc.a, tc.b)
			assert.Equal(t, tc.want.Len(), l.Len())
			assert.Equal(t, tc.want, l.Drain())
			assert.Zero(t, l.Len())
			assert.Equal(t, Contacts{}, l.Drain())
		})
	}
}

func TestContactLedgerKeepsOrder(t *testing.T) {
	l := NewContactLedger()
	r1 := physics.UserData{Kind: components.KindRobot, Name: "robot_1"}
	for id := uint64(1); id <= 3; id++ {
		l.BeginContact(physics.UserData{Kind: components.KindBullet, ID: id}, r1)
	}

	got := l.Drain()
	assert.Equal(t, []BulletHit{{1, Robot1}, {2, Robot1}, {3, Robot1}}, got.BulletRobot)
}
