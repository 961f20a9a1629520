package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/arena/game"
)

// Keyboard drives a robot from held keys: W/S forward and back, Q/E
// rotate left and right, A/D strafe left and right, Space fires.
type Keyboard struct {
	isDown func(key int32) bool
}

// NewKeyboard reads the raylib keyboard state.
func NewKeyboard() *Keyboard {
	return &Keyboard{isDown: rl.IsKeyDown}
}

// Act implements policy.Policy. The observation is ignored.
func (k *Keyboard) Act(game.RobotObservation) game.Action {
	return KeyAction(k.isDown)
}

// KeyAction maps held keys to an action. Opposing keys cancel.
func KeyAction(isDown func(key int32) bool) game.Action {
	axis := func(pos, neg int32) float64 {
		var v float64
		if isDown(pos) {
			v++
		}
		if isDown(neg) {
			v--
		}
		return v
	}
	return game.Action{
		ForwardBack: axis(rl.KeyW, rl.KeyS),
		Angular:     axis(rl.KeyQ, rl.KeyE),
		Lateral:     axis(rl.KeyD, rl.KeyA),
		Shoot:       isDown(rl.KeySpace),
	}
}
