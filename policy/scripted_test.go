package policy

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/arena/config"
	"github.com/pthm-cable/arena/game"
	"github.com/pthm-cable/arena/systems"
)

func TestScriptedEngages(t *testing.T) {
	cfg := config.Default()
	s := NewScripted(cfg.Sensors, DefaultGains())

	// Ray 90 sits at +45 degrees; fraction 0.5 is 0.3 + 0.5*4.7 = 2.65 m.
	scan := emptyScan(cfg)
	scan[90] = systems.ScanPoint{Fraction: 0.5, Class: systems.ClassRobot}

	a := s.Act(game.RobotObservation{Scan: scan, Detected: true})
	assert.True(t, a.Shoot)
	assert.Equal(t, 1.0, a.Angular, "clamped turn toward +45 degrees")
	assert.InDelta(t, (2.65-1.5)*0.8, a.ForwardBack, 1e-9)
	assert.Zero(t, a.Lateral)
}

func TestScriptedUsesLastContact(t *testing.T) {
	cfg := config.Default()
	s := NewScripted(cfg.Sensors, DefaultGains())

	// Rays 67 and 68 are at -1 and +1 degrees.
	scan := emptyScan(cfg)
	scan[67] = systems.ScanPoint{Fraction: 0.25, Class: systems.ClassRobot}
	scan[68] = systems.ScanPoint{Fraction: 0.25, Class: systems.ClassRobot}

	a := s.Act(game.RobotObservation{Scan: scan, Detected: true})
	assert.InDelta(t, 2*math.Pi/180, a.Angular, 1e-9)
}

func TestScriptedSearch(t *testing.T) {
	cfg := config.Default()
	g := DefaultGains()

	tests := []struct {
		name        string
		frontHit    float64 // fraction on the ray straight ahead, 1 = clear
		wantForward float64
	}{
		{"clear ahead", 1, g.CruiseSpeed},
		{"far wall", 0.5, g.CruiseSpeed},
		{"close wall", 0.05, -g.CruiseSpeed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScripted(cfg.Sensors, g)
			scan := emptyScan(cfg)
			scan[67].Fraction = tt.frontHit

			a := s.Act(game.RobotObservation{Scan: scan})
			assert.False(t, a.Shoot)
			assert.Equal(t, g.SearchSpin, a.Angular)
			assert.Equal(t, tt.wantForward, a.ForwardBack)
		})
	}
}

func TestScriptedStrafeAlternates(t *testing.T) {
	cfg := config.Default()
	g := DefaultGains()
	g.StrafeGain = 0.5
	s := NewScripted(cfg.Sensors, g)

	seen := emptyScan(cfg)
	seen[67] = systems.ScanPoint{Fraction: 0.5, Class: systems.ClassRobot}
	lost := emptyScan(cfg)

	var laterals []float64
	for _, scan := range [][]systems.ScanPoint{seen, seen, lost, seen} {
		a := s.Act(game.RobotObservation{Scan: scan})
		laterals = append(laterals, a.Lateral)
	}
	assert.Equal(t, []float64{-0.5, -0.5, 0, 0.5}, laterals)
}

func TestGainsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gains.yaml")

	g := DefaultGains()
	g.TurnGain = 3.25
	require.NoError(t, g.WriteYAML(path))

	got, err := LoadGains(path)
	require.NoError(t, err)
	assert.Equal(t, g, got)

	partial := filepath.Join(dir, "partial.yaml")
	require.NoError(t, os.WriteFile(partial, []byte("search_spin: -0.4\n"), 0644))
	got, err = LoadGains(partial)
	require.NoError(t, err)
	assert.Equal(t, -0.4, got.SearchSpin)
	assert.Equal(t, DefaultGains().TurnGain, got.TurnGain, "unset fields keep defaults")

	_, err = LoadGains(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
