package systems

import "github.com/pthm-cable/arena/config"

// SupplyArea is a team zone where a robot can trade a reload opportunity
// for ammo.
type SupplyArea struct {
	Team     Team
	Rect     config.Rect
	occupied bool
}

// SupplyAreas holds the resupply zones.
type SupplyAreas struct {
	Areas   []*SupplyArea
	enabled bool
}

// NewSupplyAreas creates the zones from configuration.
func NewSupplyAreas(cfg config.SupplyConfig) *SupplyAreas {
	s := &SupplyAreas{enabled: cfg.Enabled}
	for _, z := range cfg.Zones {
		s.Areas = append(s.Areas, &SupplyArea{Team: Team(z.Team), Rect: z.Rect()})
	}
	return s
}

// Update resupplies each robot once per entry into its own team's zone and
// returns the robots that received ammo.
func (s *SupplyAreas) Update(robots []*Robot) []RobotID {
	if !s.enabled {
		return nil
	}
	var supplied []RobotID
	for _, area := range s.Areas {
		for _, r := range robots {
			if r.Team != area.Team {
				continue
			}
			pos := r.Position()
			if !area.Rect.Contains(pos.X, pos.Y) {
				area.occupied = false
				continue
			}
			if area.occupied {
				continue
			}
			area.occupied = true
			if r.Supply() {
				supplied = append(supplied, r.ID)
			}
		}
	}
	return supplied
}
