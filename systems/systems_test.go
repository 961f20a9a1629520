package systems

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/arena/config"
	"github.com/pthm-cable/arena/physics"
)

const testDT = 1.0 / 30.0

func newTestSpace() *physics.Space {
	return physics.NewSpace(physics.Settings{Width: 8, Height: 5, CellSize: 1, LinearSlop: 0.005})
}

func newTestRobot(t *testing.T, w physics.World, id RobotID, team Team, pos r2.Vec, angle float64, cfg config.RobotConfig) *Robot {
	t.Helper()
	r, err := NewRobot(w, id, team, pos, angle, cfg)
	require.NoError(t, err)
	return r
}
