package inspector

import (
	"fmt"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/arena/policy"
)

// InputLabels names the network inputs: a near/seen pair per scan sector
// from the rightmost ray to the leftmost, then self state.
var InputLabels = inputLabels()

// OutputLabels names the network outputs.
var OutputLabels = []string{"Fwd", "Turn", "Strafe", "Fire"}

func inputLabels() []string {
	labels := make([]string, 0, policy.NumInputs)
	for s := 0; s < policy.NumSectors; s++ {
		labels = append(labels, fmt.Sprintf("Near %d", s+1), fmt.Sprintf("Seen %d", s+1))
	}
	return append(labels, "Health", "Speed", "Spin", "Detect")
}

// NetworkColors for activation visualization.
var (
	ColorNodeInactive = rl.Color{R: 60, G: 60, B: 60, A: 255}
	ColorEdgePositive = rl.Color{R: 200, G: 80, B: 80, A: 100}
	ColorEdgeNegative = rl.Color{R: 80, G: 80, B: 200, A: 100}
	ColorLabelDim     = rl.Color{R: 120, G: 120, B: 120, A: 255}
)

// DrawNetworkDiagram renders the network with the activations of its last
// forward pass.
func DrawNetworkDiagram(x, y, width, height int32, nn *policy.FFNN, act *policy.Activations) {
	if nn == nil || act == nil {
		rl.DrawText("No network data", x+10, y+10, 14, ColorLabelDim)
		return
	}

	colWidth := width / 3
	nodeRadius := float32(4)
	span := float32(height - 20)

	column := func(n int, cx float32) []rl.Vector2 {
		spacing := span / float32(n)
		nodes := make([]rl.Vector2, n)
		for i := range nodes {
			nodes[i] = rl.Vector2{X: cx, Y: float32(y) + 10 + (float32(i)+0.5)*spacing}
		}
		return nodes
	}
	inputNodes := column(policy.NumInputs, float32(x)+float32(colWidth)/2)
	hiddenNodes := column(policy.NumHidden, float32(x)+float32(colWidth)*1.5)
	outputNodes := column(policy.NumOutputs, float32(x)+float32(colWidth)*2.5)

	for h := 0; h < policy.NumHidden; h++ {
		for i := 0; i < policy.NumInputs; i++ {
			if w := nn.W1[h][i]; absFloat(w) >= 0.1 {
				drawEdge(inputNodes[i], hiddenNodes[h], w)
			}
		}
	}
	for o := 0; o < policy.NumOutputs; o++ {
		for h := 0; h < policy.NumHidden; h++ {
			if w := nn.W2[o][h]; absFloat(w) >= 0.1 {
				drawEdge(hiddenNodes[h], outputNodes[o], w)
			}
		}
	}

	for i, n := range inputNodes {
		drawNode(n, nodeRadius, act.Inputs[i])
		labelWidth := rl.MeasureText(InputLabels[i], 8)
		rl.DrawText(InputLabels[i], int32(n.X-nodeRadius)-labelWidth-3, int32(n.Y)-4, 8, ColorLabelDim)
	}
	for i, n := range hiddenNodes {
		drawNode(n, nodeRadius, act.Hidden[i])
	}
	for i, n := range outputNodes {
		drawNode(n, nodeRadius+2, act.Outputs[i])
		rl.DrawText(OutputLabels[i], int32(n.X+nodeRadius+6), int32(n.Y)-5, 10, ColorLabelDim)
	}
}

// drawNode renders a single neuron node.
func drawNode(pos rl.Vector2, radius, activation float32) {
	rl.DrawCircleV(pos, radius, activationColor(activation))
	rl.DrawCircleLines(int32(pos.X), int32(pos.Y), radius, rl.Color{R: 100, G: 100, B: 100, A: 255})
}

// drawEdge renders a connection between nodes.
func drawEdge(from, to rl.Vector2, weight float32) {
	thickness := min(max(absFloat(weight)*1.5, 0.5), 3)

	color := ColorEdgePositive
	if weight < 0 {
		color = ColorEdgeNegative
	}
	color.A = uint8(min(40+int(absFloat(weight)*40), 150))

	rl.DrawLineEx(from, to, thickness, color)
}

// activationColor returns a color based on activation value.
// Negative = blue, Zero = gray, Positive = red.
func activationColor(activation float32) rl.Color {
	if activation == 0 {
		return ColorNodeInactive
	}
	t := min(absFloat(activation), 1)
	hot := uint8(60 + t*195)
	cold := uint8(60 - t*30)
	if activation > 0 {
		return rl.Color{R: hot, G: cold, B: cold, A: 255}
	}
	return rl.Color{R: cold, G: cold, B: hot, A: 255}
}

func absFloat(x float32) float32 {
	return float32(math.Abs(float64(x)))
}
