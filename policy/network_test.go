package policy

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/arena/config"
	"github.com/pthm-cable/arena/game"
	"github.com/pthm-cable/arena/systems"
)

func newRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func TestForwardRanges(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		nn := NewFFNN(newRand(seed))
		inputs := make([]float32, NumInputs)
		for i := range inputs {
			inputs[i] = float32(i%3) - 1
		}
		out := nn.Forward(inputs)
		for i := 0; i < 3; i++ {
			assert.GreaterOrEqual(t, out[i], float32(-1))
			assert.LessOrEqual(t, out[i], float32(1))
		}
		assert.GreaterOrEqual(t, out[3], float32(0))
		assert.LessOrEqual(t, out[3], float32(1))
	}
}

func TestNewFFNNSeeded(t *testing.T) {
	assert.Equal(t, NewFFNN(newRand(7)), NewFFNN(newRand(7)))
	assert.NotEqual(t, NewFFNN(newRand(7)), NewFFNN(newRand(8)))
}

func TestWeightsRoundTrip(t *testing.T) {
	nn := NewFFNN(newRand(5))
	w := nn.Weights()
	assert.Len(t, w.W1, NumHidden*NumInputs)
	assert.Len(t, w.W2, NumOutputs*NumHidden)

	restored := &FFNN{}
	require.NoError(t, restored.SetWeights(w))
	assert.Equal(t, nn, restored)

	w.B2 = w.B2[:2]
	assert.Error(t, restored.SetWeights(w))
}

func TestEncodeInputs(t *testing.T) {
	cfg := config.Default()
	scan := emptyScan(cfg)
	// 135 rays make 15 per sector; ray 20 is in sector 1.
	scan[20] = systems.ScanPoint{Fraction: 0.4, Class: systems.ClassRobot}
	scan[130] = systems.ScanPoint{Fraction: 0.1}

	obs := game.RobotObservation{
		Health:          1000,
		Velocity:        r2.Vec{X: 1.2, Y: 1.6},
		AngularVelocity: -1.5,
		Detected:        true,
		Scan:            scan,
	}
	in := make([]float32, NumInputs)
	EncodeInputs(obs, cfg.Robot, in)

	assert.Equal(t, float32(1), in[0])
	assert.Equal(t, float32(0), in[1])
	assert.Equal(t, float32(0.4), in[2])
	assert.Equal(t, float32(1), in[3])
	assert.Equal(t, float32(0.1), in[16], "last sector")
	assert.Equal(t, float32(0), in[17])

	self := in[2*NumSectors:]
	assert.InDelta(t, 0.5, self[0], 1e-6)
	assert.InDelta(t, 1.0, self[1], 1e-6)
	assert.InDelta(t, -0.5, self[2], 1e-6)
	assert.Equal(t, float32(1), self[3])
}

func TestNetworkAct(t *testing.T) {
	cfg := config.Default()
	n := NewNetwork(NewFFNN(newRand(11)), cfg.Robot)
	obs := game.RobotObservation{Health: cfg.Robot.MaxHealth, Scan: emptyScan(cfg)}

	a := n.Act(obs)
	assert.Equal(t, a, n.Act(obs), "stateless")
	assert.LessOrEqual(t, a.ForwardBack, 1.0)
	assert.GreaterOrEqual(t, a.ForwardBack, -1.0)

	// A saturated shoot bias fires regardless of the hidden layer.
	n.Brain.B2[3] = 100
	assert.True(t, n.Act(obs).Shoot)
	n.Brain.B2[3] = -100
	assert.False(t, n.Act(obs).Shoot)
}

func TestNetworkActivations(t *testing.T) {
	cfg := config.Default()
	n := NewNetwork(NewFFNN(newRand(3)), cfg.Robot)
	obs := game.RobotObservation{Health: cfg.Robot.MaxHealth, Scan: emptyScan(cfg)}

	n.Act(obs)
	act := n.Activations()
	assert.Equal(t, float32(1), act.Inputs[2*NumSectors], "full health")
	assert.Equal(t, n.Brain.Forward(act.Inputs[:]), act.Outputs)
	for _, h := range act.Hidden {
		assert.LessOrEqual(t, h, float32(1))
		assert.GreaterOrEqual(t, h, float32(-1))
	}
}
