// Package systems provides the per-tick rule systems of the arena: robots,
// projectiles, sensors, contact resolution and zones.
package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// approach moves current toward target by at most maxDelta.
func approach(current, target, maxDelta float64) float64 {
	if math.Abs(target-current) <= maxDelta {
		return target
	}
	return current + math.Copysign(maxDelta, target-current)
}

// Angle normalization functions

// NormalizeAngle wraps an angle to [-Pi, Pi].
func NormalizeAngle(angle float64) float64 {
	angle = math.Mod(angle, 2*math.Pi)
	if angle > math.Pi {
		angle -= 2 * math.Pi
	} else if angle < -math.Pi {
		angle += 2 * math.Pi
	}
	return angle
}

// approachAngle moves current toward target by at most maxDelta along the
// shorter arc.
func approachAngle(current, target, maxDelta float64) float64 {
	diff := NormalizeAngle(target - current)
	if math.Abs(diff) <= maxDelta {
		return target
	}
	return current + math.Copysign(maxDelta, diff)
}

// direction returns the unit vector at angle a.
func direction(a float64) r2.Vec {
	return r2.Vec{X: math.Cos(a), Y: math.Sin(a)}
}
