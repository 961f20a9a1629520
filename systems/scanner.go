package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/arena/components"
	"github.com/pthm-cable/arena/config"
	"github.com/pthm-cable/arena/physics"
)

// Hit classes reported by the scanner.
const (
	ClassNone  = 0 // nothing, a wall or a bullet
	ClassRobot = 1 // the opponent
)

// ScanPoint is one ray of a scan.
type ScanPoint struct {
	Fraction float64 // 0..1 of sensor range, 1 = nothing within range
	Class    int
}

// ScanResult is the output of one scan. It is not kept across ticks.
type ScanResult struct {
	Points   []ScanPoint // increasing cast angle
	Detected bool
	AimAngle float64 // world angle of the last ray that saw the opponent
}

// Scanner casts a fan of rays around a robot's heading.
type Scanner struct {
	offsets []float64 // radians relative to heading
	start   float64   // ray origin distance from the robot centre
	reach   float64
}

// NewScanner builds the ray fan from configuration.
func NewScanner(cfg config.SensorsConfig) *Scanner {
	var offsets []float64
	for deg := cfg.RayStartDeg; deg < cfg.RayEndDeg; deg += cfg.RayStepDeg {
		offsets = append(offsets, float64(deg)*math.Pi/180)
	}
	return &Scanner{
		offsets: offsets,
		start:   cfg.RayOffset,
		reach:   cfg.Range,
	}
}

// Rays returns the number of rays per scan.
func (s *Scanner) Rays() int {
	return len(s.offsets)
}

// Scan casts every ray from a robot at pos facing heading. A ray whose
// closest hit is a robot other than self is classed as the opponent.
func (s *Scanner) Scan(w physics.World, self RobotID, pos r2.Vec, heading float64) ScanResult {
	res := ScanResult{Points: make([]ScanPoint, len(s.offsets))}
	for i, off := range s.offsets {
		angle := heading + off
		dir := direction(angle)
		p1 := r2.Add(pos, r2.Scale(s.start, dir))
		p2 := r2.Add(pos, r2.Scale(s.reach, dir))

		hit := physics.ClosestHit(w, p1, p2)
		pt := ScanPoint{Fraction: hit.Fraction, Class: ClassNone}
		if hit.Hit && hit.UserData.Kind == components.KindRobot && hit.UserData.Name != string(self) {
			pt.Class = ClassRobot
			res.Detected = true
			res.AimAngle = NormalizeAngle(angle)
		}
		res.Points[i] = pt
	}
	return res
}
