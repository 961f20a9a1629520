package renderer

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/assert"

	"github.com/pthm-cable/arena/camera"
	"github.com/pthm-cable/arena/config"
	"github.com/pthm-cable/arena/game"
)

func held(keys ...int32) func(int32) bool {
	set := map[int32]bool{}
	for _, k := range keys {
		set[k] = true
	}
	return func(k int32) bool { return set[k] }
}

func TestKeyAction(t *testing.T) {
	tests := []struct {
		name string
		keys []int32
		want game.Action
	}{
		{"nothing", nil, game.Action{}},
		{"forward", []int32{rl.KeyW}, game.Action{ForwardBack: 1}},
		{"back", []int32{rl.KeyS}, game.Action{ForwardBack: -1}},
		{"opposing cancel", []int32{rl.KeyW, rl.KeyS}, game.Action{}},
		{"rotate left", []int32{rl.KeyQ}, game.Action{Angular: 1}},
		{"rotate right", []int32{rl.KeyE}, game.Action{Angular: -1}},
		{"strafe right", []int32{rl.KeyD}, game.Action{Lateral: 1}},
		{"strafe left", []int32{rl.KeyA}, game.Action{Lateral: -1}},
		{"fire while driving", []int32{rl.KeySpace, rl.KeyW, rl.KeyA}, game.Action{ForwardBack: 1, Lateral: -1, Shoot: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KeyAction(held(tt.keys...)))
		})
	}
}

func TestKeyboardPolicy(t *testing.T) {
	k := &Keyboard{isDown: held(rl.KeySpace)}
	assert.True(t, k.Act(game.RobotObservation{}).Shoot)
}

func TestScreenRect(t *testing.T) {
	// 100 px per metre with the arena's lower-left corner at (50, 550).
	cam := camera.New(900, 600, 8, 5, 0.5)
	assert.InDelta(t, 100, cam.Scale(), 1e-4)

	got := screenRect(cam, config.Rect{X: 1, Y: 1, W: 2, H: 0.5})
	assert.InDelta(t, 150, got.X, 1e-3)
	assert.InDelta(t, 400, got.Y, 1e-3, "top edge at y=1.5 m")
	assert.InDelta(t, 200, got.Width, 1e-3)
	assert.InDelta(t, 50, got.Height, 1e-3)
}
