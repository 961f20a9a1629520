// Package renderer draws engine frames with raylib and maps the keyboard to
// robot actions. It only reads game.Frame snapshots.
package renderer

import (
	"image/color"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/arena/camera"
	"github.com/pthm-cable/arena/config"
	"github.com/pthm-cable/arena/game"
	"github.com/pthm-cable/arena/systems"
	"github.com/pthm-cable/arena/ui"
)

// Palette for the arena.
var (
	floorColor    = rl.Color{R: 30, G: 34, B: 40, A: 255}
	gridColor     = rl.Color{R: 45, G: 50, B: 58, A: 255}
	wallColor     = rl.Color{R: 120, G: 120, B: 128, A: 255}
	obstacleColor = rl.Color{R: 90, G: 92, B: 100, A: 255}
	bulletColor   = rl.Color{R: 255, G: 230, B: 90, A: 255}
	rayColor      = rl.Color{R: 200, G: 200, B: 200, A: 40}
	rayHitColor   = rl.Color{R: 255, G: 120, B: 60, A: 220}
	buffFlash     = rl.Color{R: 255, G: 215, B: 0, A: 255}
)

// ArenaRenderer draws the floor, zones, robots, bullets and sensor overlays.
type ArenaRenderer struct {
	cam *camera.Camera
}

// NewArenaRenderer creates an arena renderer for a camera.
func NewArenaRenderer(cam *camera.Camera) *ArenaRenderer {
	return &ArenaRenderer{cam: cam}
}

// Draw renders one frame in world space. Call between BeginDrawing and
// EndDrawing.
func (a *ArenaRenderer) Draw(f game.Frame, overlays *ui.OverlayRegistry) {
	a.drawFloor(f.Width, f.Height)

	for _, z := range f.SupplyZones {
		rl.DrawRectangleLinesEx(a.rect(z.Rect), 2, teamColor(z.Team, 200))
	}
	for _, z := range f.BuffZones {
		a.drawBuffZone(z, overlays.IsEnabled(ui.OverlayZoneTimers))
	}

	for _, o := range f.Obstacles {
		rl.DrawRectangleRec(a.rect(o), obstacleColor)
	}
	for _, w := range f.Walls {
		rl.DrawRectangleRec(a.rect(w), wallColor)
	}

	for _, r := range f.Robots {
		switch {
		case overlays.IsEnabled(ui.OverlayScanRays):
			a.drawRays(r, true)
		case overlays.IsEnabled(ui.OverlayScanHits):
			a.drawRays(r, false)
		}
	}

	for _, p := range f.Projectiles {
		// Skip bullets outside the zoomed view.
		if !a.cam.IsVisible(float32(p.Position.X), float32(p.Position.Y), 0.05) {
			continue
		}
		rl.DrawCircleV(a.point(p.Position.X, p.Position.Y), max(a.cam.Length(0.03), 2), bulletColor)
	}

	for _, r := range f.Robots {
		a.drawRobot(r, overlays)
	}
}

func (a *ArenaRenderer) drawFloor(w, h float64) {
	rl.DrawRectangleRec(a.rect(config.Rect{W: w, H: h}), floorColor)
	for x := 1.0; x < w; x++ {
		rl.DrawLineV(a.point(x, 0), a.point(x, h), gridColor)
	}
	for y := 1.0; y < h; y++ {
		rl.DrawLineV(a.point(0, y), a.point(w, y), gridColor)
	}
}

func (a *ArenaRenderer) drawBuffZone(z game.ZoneFrame, timers bool) {
	rec := a.rect(z.Rect)
	rl.DrawRectangleRec(rec, teamColor(z.Team, 50))
	rl.DrawRectangleLinesEx(rec, 1, teamColor(z.Team, 160))
	if !timers || z.MaxStayTime <= 0 || z.Stay <= 0 {
		return
	}
	progress := min(float32(z.Stay/z.MaxStayTime), 1)
	fill := rec
	fill.Height = rec.Height * progress
	fill.Y = rec.Y + rec.Height - fill.Height
	rl.DrawRectangleRec(fill, teamColor(z.Team, 110))
}

func (a *ArenaRenderer) drawRays(r game.RobotFrame, full bool) {
	for _, ray := range r.Rays {
		to := a.point(ray.To.X, ray.To.Y)
		if full {
			rl.DrawLineV(a.point(ray.From.X, ray.From.Y), to, rayColor)
		}
		if ray.Class == systems.ClassRobot {
			rl.DrawCircleV(to, 3, rayHitColor)
		} else if !full {
			rl.DrawCircleV(to, 1.5, rayColor)
		}
	}
}

func (a *ArenaRenderer) drawRobot(r game.RobotFrame, overlays *ui.OverlayRegistry) {
	center := a.point(r.Position.X, r.Position.Y)
	radius := a.cam.Length(float32(r.Radius))
	body := rl.Color(r.Color)

	if r.BuffLeft > 0 {
		rl.DrawCircleV(center, radius+3, buffFlash)
	}
	rl.DrawCircleV(center, radius, body)
	rl.DrawCircleLines(int32(center.X), int32(center.Y), radius, rl.RayWhite)

	rl.DrawLineEx(center, a.polar(r, r.Heading, r.Radius), 2, rl.RayWhite)

	if overlays.IsEnabled(ui.OverlayTurret) {
		rl.DrawLineEx(center, a.polar(r, r.Turret, r.Radius*1.6), 3, rl.DarkGray)
	}

	if overlays.IsEnabled(ui.OverlayLabels) {
		a.drawHealthBar(center, radius, r)
		label := string(r.ID)
		w := rl.MeasureText(label, 12)
		rl.DrawText(label, int32(center.X)-w/2, int32(center.Y+radius+4), 12, rl.LightGray)
	}
}

func (a *ArenaRenderer) drawHealthBar(center rl.Vector2, radius float32, r game.RobotFrame) {
	if r.MaxHealth <= 0 {
		return
	}
	ratio := float32(r.Health) / float32(r.MaxHealth)
	w := radius * 2
	bg := rl.Rectangle{X: center.X - radius, Y: center.Y - radius - 10, Width: w, Height: 5}
	rl.DrawRectangleRec(bg, rl.Color{R: 40, G: 40, B: 40, A: 220})
	bg.Width = w * ratio
	rl.DrawRectangleRec(bg, ui.DefaultTheme().MeterColor(ratio))
}

// rect maps a world rectangle to screen space.
func (a *ArenaRenderer) rect(r config.Rect) rl.Rectangle {
	return screenRect(a.cam, r)
}

func (a *ArenaRenderer) point(x, y float64) rl.Vector2 {
	sx, sy := a.cam.WorldToScreen(float32(x), float32(y))
	return rl.Vector2{X: sx, Y: sy}
}

// polar returns the screen point at distance d from a robot along angle.
func (a *ArenaRenderer) polar(r game.RobotFrame, angle, d float64) rl.Vector2 {
	return a.point(r.Position.X+d*math.Cos(angle), r.Position.Y+d*math.Sin(angle))
}

// screenRect maps a lower-left anchored world rectangle to a top-left
// anchored screen rectangle.
func screenRect(cam *camera.Camera, r config.Rect) rl.Rectangle {
	sx, sy := cam.WorldToScreen(float32(r.X), float32(r.Y+r.H))
	return rl.Rectangle{X: sx, Y: sy, Width: cam.Length(float32(r.W)), Height: cam.Length(float32(r.H))}
}

// teamColor returns the team colour with the given alpha.
func teamColor(t systems.Team, alpha uint8) rl.Color {
	c := t.Color()
	return rl.Color(color.RGBA{R: c.R, G: c.G, B: c.B, A: alpha})
}
