package systems

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/arena/components"
	"github.com/pthm-cable/arena/config"
	"github.com/pthm-cable/arena/physics"
)

// Arena is the static geometry: border walls and obstacles.
type Arena struct {
	Width, Height float64
	Walls         []config.Rect // border walls, outside the playing field
	Obstacles     []config.Rect

	world  physics.World
	bodies []physics.Body
}

// BuildArena creates static wall bodies for the border and every obstacle.
func BuildArena(w physics.World, cfg config.ArenaConfig) (*Arena, error) {
	t := cfg.WallThickness
	if t <= 0 {
		t = 0.1
	}
	a := &Arena{
		Width:  cfg.Width,
		Height: cfg.Height,
		// bottom, top, left, right
		Walls: []config.Rect{
			{X: -t, Y: -t, W: cfg.Width + 2*t, H: t},
			{X: -t, Y: cfg.Height, W: cfg.Width + 2*t, H: t},
			{X: -t, Y: 0, W: t, H: cfg.Height},
			{X: cfg.Width, Y: 0, W: t, H: cfg.Height},
		},
		Obstacles: append([]config.Rect(nil), cfg.Obstacles...),
		world:     w,
	}

	for _, rect := range append(append([]config.Rect(nil), a.Walls...), a.Obstacles...) {
		body, err := w.CreateBody(physics.BodyDef{
			Type:     physics.StaticBody,
			Shape:    physics.Box(rect.W, rect.H),
			Position: r2.Vec{X: rect.X + rect.W/2, Y: rect.Y + rect.H/2},
			UserData: physics.UserData{Kind: components.KindWall},
		})
		if err != nil {
			a.Destroy()
			return nil, fmt.Errorf("creating wall at (%.2f, %.2f): %w", rect.X, rect.Y, err)
		}
		a.bodies = append(a.bodies, body)
	}
	return a, nil
}

// Destroy removes every wall body.
func (a *Arena) Destroy() {
	for _, b := range a.bodies {
		a.world.DestroyBody(b)
	}
	a.bodies = nil
}
