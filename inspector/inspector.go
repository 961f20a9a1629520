// Package inspector shows the state of a clicked robot: pose, health and
// ammo, a sector profile of its last scan, and the activations of its
// network when it is driven by one. It also graphs the episode history.
package inspector

import (
	"fmt"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/arena/camera"
	"github.com/pthm-cable/arena/config"
	"github.com/pthm-cable/arena/game"
	"github.com/pthm-cable/arena/policy"
)

// Panel dimensions
const (
	PanelWidth    = 320
	PanelPadding  = 10
	HeaderHeight  = 30
	networkHeight = 260
)

// Panel colors
var (
	ColorPanelBg     = rl.Color{R: 30, G: 30, B: 35, A: 240}
	ColorPanelHeader = rl.Color{R: 45, G: 45, B: 55, A: 255}
	ColorPanelBorder = rl.Color{R: 70, G: 70, B: 80, A: 255}
	ColorHeaderText  = rl.Color{R: 255, G: 255, B: 255, A: 255}
	ColorCloseBtn    = rl.Color{R: 180, G: 80, B: 80, A: 255}
	ColorSection     = rl.Color{R: 50, G: 50, B: 60, A: 255}
	ColorSectionText = rl.Color{R: 200, G: 200, B: 220, A: 255}
	colorSelection   = rl.Color{R: 255, G: 230, B: 90, A: 255}
	colorFan         = rl.Color{R: 200, G: 200, B: 200, A: 60}
)

// Target is everything the panel shows about the selected robot.
type Target struct {
	Robot  game.RobotFrame
	Obs    game.RobotObservation
	HasObs bool // false until the robot's first scan of the episode
	Policy policy.Policy
}

// Inspector manages robot selection and panel rendering.
type Inspector struct {
	selected    game.RobotID
	hasSelected bool
	panelX      int32
	panelY      int32

	robot        config.RobotConfig
	fan          config.SensorsConfig
	sectorLabels []string
}

// NewInspector creates an inspector for robots built from cfg.
func NewInspector(cfg *config.Config) *Inspector {
	return &Inspector{
		panelX:       10,
		panelY:       40,
		robot:        cfg.Robot,
		fan:          cfg.Sensors,
		sectorLabels: SectorLabels(cfg.Sensors, cfg.Derived.ScanRays),
	}
}

// SectorLabels returns the centre bearing, in degrees, of each network
// input sector.
func SectorLabels(fan config.SensorsConfig, rays int) []string {
	per := (rays + policy.NumSectors - 1) / policy.NumSectors
	labels := make([]string, policy.NumSectors)
	for s := range labels {
		first := s * per
		last := min((s+1)*per, rays) - 1
		centre := float64(fan.RayStartDeg) + float64(first+last)/2*float64(fan.RayStepDeg)
		labels[s] = fmt.Sprintf("%.0f", centre)
	}
	return labels
}

// SetPosition moves the panel.
func (ins *Inspector) SetPosition(x, y int32) {
	ins.panelX, ins.panelY = x, y
}

// HandleInput selects the robot under a left click and clears the selection
// on right click, Escape or the close button.
func (ins *Inspector) HandleInput(mouseX, mouseY float32, cam *camera.Camera, robots []game.RobotFrame) {
	if rl.IsMouseButtonPressed(rl.MouseButtonRight) || rl.IsKeyPressed(rl.KeyEscape) {
		ins.Deselect()
		return
	}
	if !rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		return
	}

	if ins.hasSelected {
		closeX := ins.panelX + PanelWidth - 25
		closeY := ins.panelY + 5
		if int32(mouseX) >= closeX && int32(mouseX) <= closeX+20 &&
			int32(mouseY) >= closeY && int32(mouseY) <= closeY+20 {
			ins.Deselect()
			return
		}
		if ins.contains(int32(mouseX), int32(mouseY)) {
			return
		}
	}

	wx, wy := cam.ScreenToWorld(mouseX, mouseY)
	ins.Pick(robots, float64(wx), float64(wy))
}

// Pick selects the robot closest to the world point (x, y) if the point is
// within 1.5 radii of it. It reports whether a robot was picked; a miss
// keeps the current selection.
func (ins *Inspector) Pick(robots []game.RobotFrame, x, y float64) bool {
	best := math.Inf(1)
	found := false
	for _, r := range robots {
		d := math.Hypot(r.Position.X-x, r.Position.Y-y)
		if d <= r.Radius*1.5 && d < best {
			best = d
			ins.selected = r.ID
			found = true
		}
	}
	if found {
		ins.hasSelected = true
	}
	return found
}

// Deselect clears the current selection.
func (ins *Inspector) Deselect() {
	ins.hasSelected = false
}

// Selected returns the currently selected robot.
func (ins *Inspector) Selected() (game.RobotID, bool) {
	return ins.selected, ins.hasSelected
}

func (ins *Inspector) contains(mx, my int32) bool {
	return mx >= ins.panelX && mx <= ins.panelX+PanelWidth &&
		my >= ins.panelY && my <= ins.panelY+ins.panelHeight()
}

// Draw renders the panel for the selected robot.
func (ins *Inspector) Draw(t Target) {
	if !ins.hasSelected {
		return
	}

	panelHeight := ins.panelHeight()
	rl.DrawRectangle(ins.panelX, ins.panelY, PanelWidth, panelHeight, ColorPanelBg)
	rl.DrawRectangleLinesEx(
		rl.Rectangle{X: float32(ins.panelX), Y: float32(ins.panelY), Width: PanelWidth, Height: float32(panelHeight)},
		1,
		ColorPanelBorder,
	)

	rl.DrawRectangle(ins.panelX, ins.panelY, PanelWidth, HeaderHeight, ColorPanelHeader)
	rl.DrawText("INSPECTOR", ins.panelX+PanelPadding, ins.panelY+7, 16, ColorHeaderText)

	closeX := ins.panelX + PanelWidth - 25
	closeY := ins.panelY + 5
	rl.DrawRectangle(closeX, closeY, 20, 20, ColorCloseBtn)
	rl.DrawText("X", closeX+6, closeY+3, 14, rl.White)

	y := ins.panelY + HeaderHeight + PanelPadding
	x := ins.panelX + PanelPadding
	r := t.Robot

	rl.DrawText(fmt.Sprintf("%s  Team: %s", r.ID, r.Team), x, y, 14, ColorHeaderText)
	y += 22
	y += ins.separator(x, y)

	y += DrawLabel(x, y, "Position", fmt.Sprintf("(%.2f, %.2f)", r.Position.X, r.Position.Y))
	if t.HasObs {
		y += DrawLabel(x, y, "Velocity", fmt.Sprintf("(%.2f, %.2f)", t.Obs.Velocity.X, t.Obs.Velocity.Y))
	} else {
		y += DrawLabel(x, y, "Velocity", "-")
	}
	y += DrawAngle(x, y, "Heading", r.Heading)
	y += DrawAngle(x, y, "Turret", r.Turret)
	y += DrawBar(x, y, "Health", float32(r.Health), float32(r.MaxHealth))
	y += DrawLabel(x, y, "Ammo", fmt.Sprintf("%d  reloads %d", r.Ammo, r.ReloadOpportunities))
	y += DrawLabel(x, y, "Buff", fmt.Sprintf("%.1fs", r.BuffLeft))
	y += DrawBool(x, y, "Detected", r.Detected)
	y += ins.separator(x, y)

	y += ins.drawSectionHeader(x, y, "SCAN")
	if t.HasObs {
		var in [policy.NumInputs]float32
		policy.EncodeInputs(t.Obs, ins.robot, in[:])
		nearest := make([]float32, policy.NumSectors)
		seen := make([]float32, policy.NumSectors)
		for s := range nearest {
			nearest[s], seen[s] = in[2*s], in[2*s+1]
		}
		y += DrawSectorBars(x, y, "Near", nearest, seen, ins.sectorLabels)
	} else {
		rl.DrawText("(no scan yet)", x, y, 12, ColorLabelDim)
		y += 44
	}
	y += ins.separator(x, y)

	n, ok := t.Policy.(*policy.Network)
	if !ok {
		ins.drawSectionHeader(x, y, "POLICY")
		rl.DrawText(policyName(t.Policy), x, y+20, 14, ColorText)
		return
	}
	y += ins.drawSectionHeader(x, y, "NETWORK")
	act := n.Activations()
	// Leave room on the left of the diagram for input labels.
	DrawNetworkDiagram(x+30, y, PanelWidth-2*PanelPadding-30, networkHeight, n.Brain, &act)
}

func (ins *Inspector) separator(x, y int32) int32 {
	y += 4
	rl.DrawLine(x, y, ins.panelX+PanelWidth-PanelPadding, y, ColorPanelBorder)
	return 12
}

// drawSectionHeader renders a section title.
func (ins *Inspector) drawSectionHeader(x, y int32, title string) int32 {
	rl.DrawRectangle(x-2, y-2, PanelWidth-2*PanelPadding+4, 18, ColorSection)
	rl.DrawText(title, x+2, y, 14, ColorSectionText)
	return 20
}

// panelHeight computes the panel height.
func (ins *Inspector) panelHeight() int32 {
	height := HeaderHeight + PanelPadding
	height += 22      // id line
	height += 12      // separator
	height += 20 * 2  // position, velocity
	height += 44 * 2  // heading, turret
	height += 18      // health
	height += 20 * 2  // ammo, buff
	height += 18      // detected
	height += 12      // separator
	height += 20 + 44 // scan header and bars
	height += 12      // separator
	height += 20 + networkHeight
	height += PanelPadding
	return int32(height)
}

func policyName(p policy.Policy) string {
	switch p.(type) {
	case nil:
		return "none"
	case policy.Idle:
		return "idle"
	case *policy.Scripted:
		return "scripted"
	}
	return fmt.Sprintf("%T", p)
}

// DrawSelectionHighlight rings the selected robot and outlines its ray fan.
func (ins *Inspector) DrawSelectionHighlight(cam *camera.Camera, robots []game.RobotFrame) {
	if !ins.hasSelected {
		return
	}
	for _, r := range robots {
		if r.ID != ins.selected {
			continue
		}
		cx, cy := cam.WorldToScreen(float32(r.Position.X), float32(r.Position.Y))
		center := rl.Vector2{X: cx, Y: cy}
		rl.DrawCircleLines(int32(cx), int32(cy), cam.Length(float32(r.Radius*1.8)), colorSelection)

		start := r.Heading + float64(ins.fan.RayStartDeg)*math.Pi/180
		end := r.Heading + float64(ins.fan.RayEndDeg)*math.Pi/180
		edge := func(a float64) rl.Vector2 {
			x, y := cam.WorldToScreen(
				float32(r.Position.X+ins.fan.Range*math.Cos(a)),
				float32(r.Position.Y+ins.fan.Range*math.Sin(a)),
			)
			return rl.Vector2{X: x, Y: y}
		}
		rl.DrawLineV(center, edge(start), colorFan)
		rl.DrawLineV(center, edge(end), colorFan)

		const segments = 24
		prev := edge(start)
		for i := 1; i <= segments; i++ {
			next := edge(start + (end-start)*float64(i)/segments)
			rl.DrawLineV(prev, next, colorFan)
			prev = next
		}
		return
	}
	// The selected robot is gone after a reset with other ids.
	ins.Deselect()
}
