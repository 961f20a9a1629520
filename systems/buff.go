package systems

import (
	"math"

	"github.com/pthm-cable/arena/config"
)

// dwellTolerance absorbs float drift of the accumulated episode clock.
const dwellTolerance = 1e-9

// BuffArea is a team zone that grants damage reduction after a continuous dwell.
type BuffArea struct {
	Team Team
	Rect config.Rect

	inside    bool
	enteredAt float64
	Stay      float64 // current continuous dwell, seconds
	// MaxStayTime is the longest dwell reached so far. Display only.
	MaxStayTime float64
}

// BuffAreas holds one zone per team.
type BuffAreas struct {
	Areas    []*BuffArea
	dwell    float64
	duration float64
}

// NewBuffAreas creates the zones from configuration.
func NewBuffAreas(cfg config.BuffConfig) *BuffAreas {
	b := &BuffAreas{dwell: cfg.DwellSec, duration: cfg.DurationSec}
	for _, z := range cfg.Zones {
		b.Areas = append(b.Areas, &BuffArea{Team: Team(z.Team), Rect: z.Rect()})
	}
	return b
}

// Update measures each zone's robot against the episode clock and returns
// the robots whose buff was activated this call.
func (b *BuffAreas) Update(robots []*Robot, clock float64) []RobotID {
	var activated []RobotID
	for _, area := range b.Areas {
		for _, r := range robots {
			if r.Team != area.Team {
				continue
			}
			pos := r.Position()
			if !area.Rect.Contains(pos.X, pos.Y) {
				area.inside = false
				area.Stay = 0
				continue
			}
			if !area.inside {
				area.inside = true
				area.enteredAt = clock
			}
			area.Stay = clock - area.enteredAt
			area.MaxStayTime = math.Max(area.MaxStayTime, area.Stay)
			if area.Stay+dwellTolerance >= b.dwell {
				r.BuffLeft = b.duration
				area.enteredAt = clock
				area.Stay = 0
				activated = append(activated, r.ID)
			}
		}
	}
	return activated
}
