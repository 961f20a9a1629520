package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseScan)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(PhasePhysics)
		time.Sleep(200 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()
	assert.Positive(t, stats.AvgTickDuration)
	assert.Contains(t, stats.PhaseAvg, PhaseScan)
	assert.Contains(t, stats.PhaseAvg, PhasePhysics)
	assert.NotContains(t, stats.PhaseAvg, PhaseReward)
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(5)

	for i := 0; i < 10; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseContacts)
		time.Sleep(10 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()
	assert.Positive(t, stats.AvgTickDuration)
	assert.Positive(t, stats.TicksPerSecond)
	assert.LessOrEqual(t, stats.MinTickDuration, stats.MaxTickDuration)
}

func TestPerfCollector_PhasePercentages(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase("fast")
		time.Sleep(10 * time.Microsecond)
		pc.StartPhase("slow")
		time.Sleep(2 * time.Millisecond)
		pc.EndTick()
	}

	stats := pc.Stats()
	assert.Greater(t, stats.PhasePct["slow"], stats.PhasePct["fast"])
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	stats := NewPerfCollector(10).Stats()

	assert.Zero(t, stats.AvgTickDuration)
	assert.NotNil(t, stats.PhaseAvg)
	assert.NotNil(t, stats.PhasePct)
}

func TestPerfCollector_FrameTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	pc.RecordFrame()
	time.Sleep(16 * time.Millisecond)
	pc.RecordFrame()

	stats := pc.Stats()
	assert.GreaterOrEqual(t, stats.FrameDuration, 15*time.Millisecond)
	assert.Positive(t, stats.FPS)
	assert.Less(t, stats.FPS, 70.0)
}

func TestPerfStats_ToCSV(t *testing.T) {
	s := PerfStats{
		AvgTickDuration: 1500 * time.Microsecond,
		PhasePct:        map[string]float64{PhasePhysics: 60, PhaseScan: 30},
	}
	row := s.ToCSV(7)

	assert.Equal(t, 7, row.Episode)
	assert.Equal(t, int64(1500), row.AvgTickUS)
	assert.Equal(t, 60.0, row.PhysicsPct)
	assert.Equal(t, 30.0, row.ScanPct)
	assert.Zero(t, row.RewardPct)
}
