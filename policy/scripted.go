package policy

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/arena/config"
	"github.com/pthm-cable/arena/game"
	"github.com/pthm-cable/arena/systems"
)

// Gains parameterizes the scripted bot.
type Gains struct {
	TurnGain          float64 `yaml:"turn_gain" csv:"turn_gain"`                     // angular effort per radian of bearing
	ApproachDistance  float64 `yaml:"approach_distance" csv:"approach_distance"`     // preferred range to the opponent, m
	ApproachGain      float64 `yaml:"approach_gain" csv:"approach_gain"`             // forward effort per metre of range error
	StrafeGain        float64 `yaml:"strafe_gain" csv:"strafe_gain"`                 // lateral effort while engaged
	SearchSpin        float64 `yaml:"search_spin" csv:"search_spin"`                 // angular effort while searching
	CruiseSpeed       float64 `yaml:"cruise_speed" csv:"cruise_speed"`               // forward effort while searching
	WallAvoidDistance float64 `yaml:"wall_avoid_distance" csv:"wall_avoid_distance"` // clearance that triggers a back-off, m
}

// DefaultGains returns hand-tuned gains.
func DefaultGains() Gains {
	return Gains{
		TurnGain:          2.0,
		ApproachDistance:  1.5,
		ApproachGain:      0.8,
		StrafeGain:        0.0,
		SearchSpin:        0.6,
		CruiseSpeed:       0.5,
		WallAvoidDistance: 0.8,
	}
}

// LoadGains reads gains from a YAML file over the defaults.
func LoadGains(path string) (Gains, error) {
	g := DefaultGains()
	data, err := os.ReadFile(path)
	if err != nil {
		return g, fmt.Errorf("reading gains: %w", err)
	}
	if err := yaml.Unmarshal(data, &g); err != nil {
		return g, fmt.Errorf("parsing gains: %w", err)
	}
	return g, nil
}

// WriteYAML saves the gains to a file.
func (g Gains) WriteYAML(path string) error {
	data, err := yaml.Marshal(g)
	if err != nil {
		return fmt.Errorf("marshaling gains: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// frontArc is the half-width of the cone checked for wall clearance.
const frontArc = 20 * math.Pi / 180

// Scripted turns toward the last ray that saw the opponent, holds a
// preferred range and keeps the trigger down while engaged. Without a
// contact it cruises and spins, backing away from close obstacles ahead.
type Scripted struct {
	Gains  Gains
	fan    config.SensorsConfig
	strafe float64 // alternates sign each time a contact is acquired
	seen   bool
}

// NewScripted creates a scripted bot for the given ray fan.
func NewScripted(fan config.SensorsConfig, g Gains) *Scripted {
	return &Scripted{Gains: g, fan: fan, strafe: 1}
}

// Act implements Policy.
func (s *Scripted) Act(obs game.RobotObservation) game.Action {
	bearing, dist, ok := s.target(obs.Scan)
	if ok {
		if !s.seen {
			s.strafe = -s.strafe
		}
		s.seen = true
		return game.Action{
			ForwardBack: clampUnit((dist - s.Gains.ApproachDistance) * s.Gains.ApproachGain),
			Angular:     clampUnit(bearing * s.Gains.TurnGain),
			Lateral:     clampUnit(s.strafe * s.Gains.StrafeGain),
			Shoot:       true,
		}
	}
	s.seen = false

	a := game.Action{
		ForwardBack: clampUnit(s.Gains.CruiseSpeed),
		Angular:     clampUnit(s.Gains.SearchSpin),
	}
	if s.clearance(obs.Scan) < s.Gains.WallAvoidDistance {
		a.ForwardBack = -a.ForwardBack
	}
	return a
}

// target returns the bearing and range of the last ray classed as the
// opponent.
func (s *Scripted) target(scan []systems.ScanPoint) (bearing, dist float64, ok bool) {
	for k := len(scan) - 1; k >= 0; k-- {
		if scan[k].Class == systems.ClassRobot {
			return s.offset(k), s.distance(scan[k].Fraction), true
		}
	}
	return 0, 0, false
}

// clearance is the nearest hit inside the front arc.
func (s *Scripted) clearance(scan []systems.ScanPoint) float64 {
	nearest := s.fan.Range
	for k, p := range scan {
		if math.Abs(s.offset(k)) > frontArc {
			continue
		}
		nearest = math.Min(nearest, s.distance(p.Fraction))
	}
	return nearest
}

// offset is ray k's angle from the heading, radians.
func (s *Scripted) offset(k int) float64 {
	return float64(s.fan.RayStartDeg+k*s.fan.RayStepDeg) * math.Pi / 180
}

// distance converts a ray fraction to metres from the robot centre.
func (s *Scripted) distance(fraction float64) float64 {
	return s.fan.RayOffset + fraction*(s.fan.Range-s.fan.RayOffset)
}
