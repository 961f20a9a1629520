package policy

import (
	"fmt"
	"math"
	"math/rand"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/arena/config"
	"github.com/pthm-cable/arena/game"
	"github.com/pthm-cable/arena/systems"
)

// Network dimensions.
// - NumInputs = NumSectors * 2 + 4 self-state
// - NumOutputs = forward, angular, lateral, shoot
const (
	NumSectors = 9
	NumInputs  = NumSectors*2 + 4
	NumHidden  = 16
	NumOutputs = 4
)

// FFNN is a two-layer feedforward network.
type FFNN struct {
	W1 [NumHidden][NumInputs]float32  // input -> hidden weights
	B1 [NumHidden]float32             // hidden biases
	W2 [NumOutputs][NumHidden]float32 // hidden -> output weights
	B2 [NumOutputs]float32            // output biases
}

// NewFFNN creates a randomly initialized network.
func NewFFNN(rng *rand.Rand) *FFNN {
	nn := &FFNN{}
	// Xavier initialization
	scale1 := float32(math.Sqrt(2.0 / float64(NumInputs)))
	scale2 := float32(math.Sqrt(2.0 / float64(NumHidden)))

	for i := range nn.W1 {
		for j := range nn.W1[i] {
			nn.W1[i][j] = float32(rng.NormFloat64()) * scale1
		}
	}
	for i := range nn.W2 {
		for j := range nn.W2[i] {
			nn.W2[i][j] = float32(rng.NormFloat64()) * scale2
		}
	}

	// Shoot starts mostly off; ammo is finite.
	nn.B2[3] = -1.0
	return nn
}

// Activations captures every layer of one forward pass.
type Activations struct {
	Inputs  [NumInputs]float32
	Hidden  [NumHidden]float32
	Outputs [NumOutputs]float32
}

// Forward computes the network output: motion channels in [-1, 1] and a
// shoot level in [0, 1].
func (nn *FFNN) Forward(inputs []float32) [NumOutputs]float32 {
	var act Activations
	nn.ForwardActivations(inputs, &act)
	return act.Outputs
}

// ForwardActivations is Forward that also records the inputs and hidden
// layer in act.
func (nn *FFNN) ForwardActivations(inputs []float32, act *Activations) {
	copy(act.Inputs[:], inputs)
	hidden := &act.Hidden
	for i := 0; i < NumHidden; i++ {
		sum := nn.B1[i]
		for j := 0; j < NumInputs; j++ {
			sum += nn.W1[i][j] * inputs[j]
		}
		hidden[i] = tanh(sum)
	}

	out := &act.Outputs
	for i := 0; i < NumOutputs; i++ {
		sum := nn.B2[i]
		for j := 0; j < NumHidden; j++ {
			sum += nn.W2[i][j] * hidden[j]
		}
		out[i] = sum
	}

	out[0] = tanh(out[0])
	out[1] = tanh(out[1])
	out[2] = tanh(out[2])
	out[3] = saturate01(out[3]*0.5 + 0.5)
}

// saturate01 clamps x to [0, 1].
func saturate01(x float32) float32 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}
	return x
}

// tanh uses a fast rational approximation avoiding float64 conversion.
func tanh(x float32) float32 {
	if x > 4 {
		return 1
	}
	if x < -4 {
		return -1
	}
	x2 := x * x
	return x * (27 + x2) / (27 + 9*x2)
}

// Weights holds flattened network weights for serialization.
type Weights struct {
	W1 []float32 `yaml:"w1"` // [NumHidden * NumInputs]
	B1 []float32 `yaml:"b1"`
	W2 []float32 `yaml:"w2"` // [NumOutputs * NumHidden]
	B2 []float32 `yaml:"b2"`
}

// Weights flattens the network.
func (nn *FFNN) Weights() Weights {
	w := Weights{
		W1: make([]float32, 0, NumHidden*NumInputs),
		B1: append([]float32(nil), nn.B1[:]...),
		W2: make([]float32, 0, NumOutputs*NumHidden),
		B2: append([]float32(nil), nn.B2[:]...),
	}
	for i := range nn.W1 {
		w.W1 = append(w.W1, nn.W1[i][:]...)
	}
	for i := range nn.W2 {
		w.W2 = append(w.W2, nn.W2[i][:]...)
	}
	return w
}

// SetWeights restores a flattened network. Every slice must have the
// exact layer size.
func (nn *FFNN) SetWeights(w Weights) error {
	if len(w.W1) != NumHidden*NumInputs || len(w.B1) != NumHidden ||
		len(w.W2) != NumOutputs*NumHidden || len(w.B2) != NumOutputs {
		return fmt.Errorf("weights do not match a %d-%d-%d network", NumInputs, NumHidden, NumOutputs)
	}
	for i := range nn.W1 {
		copy(nn.W1[i][:], w.W1[i*NumInputs:])
	}
	copy(nn.B1[:], w.B1)
	for i := range nn.W2 {
		copy(nn.W2[i][:], w.W2[i*NumHidden:])
	}
	copy(nn.B2[:], w.B2)
	return nil
}

// WriteYAML saves the weights to a file.
func (nn *FFNN) WriteYAML(path string) error {
	data, err := yaml.Marshal(nn.Weights())
	if err != nil {
		return fmt.Errorf("marshaling weights: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// LoadFFNN reads a network saved with WriteYAML.
func LoadFFNN(path string) (*FFNN, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading weights: %w", err)
	}
	var w Weights
	if err := yaml.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("parsing weights: %w", err)
	}
	nn := &FFNN{}
	if err := nn.SetWeights(w); err != nil {
		return nil, err
	}
	return nn, nil
}

// Network drives a robot with an FFNN.
type Network struct {
	Brain *FFNN
	robot config.RobotConfig
	last  Activations
}

// NewNetwork wraps a brain; robot limits normalize the self-state inputs.
func NewNetwork(brain *FFNN, robot config.RobotConfig) *Network {
	return &Network{Brain: brain, robot: robot}
}

// Act implements Policy.
func (n *Network) Act(obs game.RobotObservation) game.Action {
	var inputs [NumInputs]float32
	EncodeInputs(obs, n.robot, inputs[:])
	n.Brain.ForwardActivations(inputs[:], &n.last)
	out := n.last.Outputs
	return game.Action{
		ForwardBack: float64(out[0]),
		Angular:     float64(out[1]),
		Lateral:     float64(out[2]),
		Shoot:       out[3] > 0.5,
	}
}

// Activations returns the layers of the most recent Act.
func (n *Network) Activations() Activations {
	return n.last
}

// EncodeInputs fills dst with the network inputs: per sector the nearest
// hit fraction and whether the opponent was seen, then health, speed, spin
// and the detection flag.
func EncodeInputs(obs game.RobotObservation, robot config.RobotConfig, dst []float32) {
	per := (len(obs.Scan) + NumSectors - 1) / NumSectors
	for s := 0; s < NumSectors; s++ {
		nearest, seen := float32(1), float32(0)
		for k := s * per; k < (s+1)*per && k < len(obs.Scan); k++ {
			p := obs.Scan[k]
			nearest = min(nearest, float32(p.Fraction))
			if p.Class == systems.ClassRobot {
				seen = 1
			}
		}
		dst[2*s] = nearest
		dst[2*s+1] = seen
	}

	self := dst[2*NumSectors:]
	self[0] = ratio(float64(obs.Health), float64(robot.MaxHealth))
	self[1] = ratio(math.Hypot(obs.Velocity.X, obs.Velocity.Y), robot.MaxSpeed)
	self[2] = ratio(obs.AngularVelocity, robot.MaxAngularSpeed)
	self[3] = 0
	if obs.Detected {
		self[3] = 1
	}
}

func ratio(v, limit float64) float32 {
	if limit == 0 {
		return 0
	}
	return float32(v / limit)
}
