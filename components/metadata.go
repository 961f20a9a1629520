package components

import "fmt"

// Kind classifies a body for contact and sensor rules.
type Kind uint8

const (
	KindNone Kind = iota
	KindWall
	KindRobot
	KindBullet
)

// String returns the display name for a Kind.
func (k Kind) String() string {
	names := KindNames()
	if int(k) < len(names) {
		return names[k]
	}
	return "unknown"
}

// KindNames returns the display names for all kinds.
// The order matches the Kind constants.
func KindNames() []string {
	return []string{"none", "wall", "robot", "bullet"}
}

// Tag identifies what a body represents in the game.
// Robots are keyed by Name, bullets by ID.
type Tag struct {
	Kind Kind
	Name string
	ID   uint64
}

// String formats the tag for logs.
func (t Tag) String() string {
	switch t.Kind {
	case KindRobot:
		return t.Name
	case KindBullet:
		return fmt.Sprintf("bullet#%d", t.ID)
	default:
		return t.Kind.String()
	}
}
