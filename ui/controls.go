package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// MaxSpeed is the most ticks the viewer runs per frame.
const MaxSpeed = 10

// ControlsState is what the controls panel edits.
type ControlsState struct {
	Paused bool
	Speed  int // ticks per frame
}

// ControlsResult reports button presses from one Draw.
type ControlsResult struct {
	Reset bool
	Step  bool // advance a single tick while paused
}

// ControlsPanel renders the raygui playback controls and overlay toggles.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		visible:  true,
	}
}

// SetPosition updates the panel position.
func (c *ControlsPanel) SetPosition(x, y int32) {
	c.x = x
	c.y = y
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Draw renders the panel, applies edits to state and returns button presses.
func (c *ControlsPanel) Draw(state *ControlsState, overlays *OverlayRegistry) ControlsResult {
	var res ControlsResult
	if !c.visible {
		return res
	}

	r := c.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight

	items := 0
	for _, cat := range overlays.Categories() {
		items += len(overlays.ByCategory(cat)) + 1
	}
	panelHeight := 30 + 40 + int32(items)*(lineHeight+4) + padding*3
	r.DrawPanel(c.x, c.y, c.width, panelHeight)

	x := float32(c.x + padding)
	y := float32(c.y + padding)
	inner := float32(c.width - padding*2)
	third := (inner - 10) / 3

	if gui.Button(rl.Rectangle{X: x, Y: y, Width: third, Height: 24}, toggleText(state.Paused, "Resume", "Pause")) {
		state.Paused = !state.Paused
	}
	if gui.Button(rl.Rectangle{X: x + third + 5, Y: y, Width: third, Height: 24}, "Step") {
		res.Step = true
	}
	if gui.Button(rl.Rectangle{X: x + 2*(third+5), Y: y, Width: third, Height: 24}, "Reset") {
		res.Reset = true
	}
	y += 30

	rl.DrawText(fmt.Sprintf("Speed: %dx", state.Speed), int32(x), int32(y), r.Theme.FontSize, r.Theme.LabelColor)
	y += float32(lineHeight)
	speed := gui.SliderBar(rl.Rectangle{X: x + 10, Y: y, Width: inner - 40, Height: 16}, "1", fmt.Sprint(MaxSpeed),
		float32(state.Speed), 1, MaxSpeed)
	state.Speed = clampSpeed(int(speed + 0.5))
	y += 24

	for _, cat := range overlays.Categories() {
		rl.DrawText(categoryLabel(cat), int32(x), int32(y), r.Theme.HeaderFontSize, r.Theme.SectionHeader)
		y += float32(lineHeight + 4)
		for _, desc := range overlays.ByCategory(cat) {
			label := fmt.Sprintf("%s [%s]", desc.Name, desc.KeyLabel)
			enabled := gui.CheckBox(rl.Rectangle{X: x, Y: y, Width: 12, Height: 12}, label, overlays.IsEnabled(desc.ID))
			if enabled != overlays.IsEnabled(desc.ID) {
				overlays.SetEnabled(desc.ID, enabled)
			}
			y += float32(lineHeight + 4)
		}
	}
	return res
}

// clampSpeed keeps a ticks-per-frame value in [1, MaxSpeed].
func clampSpeed(s int) int {
	if s < 1 {
		return 1
	}
	if s > MaxSpeed {
		return MaxSpeed
	}
	return s
}

func toggleText(on bool, onText, offText string) string {
	if on {
		return onText
	}
	return offText
}

// categoryLabel returns a display label for a category.
func categoryLabel(cat string) string {
	switch cat {
	case "visual":
		return "Visual"
	case "perception":
		return "Perception"
	case "debug":
		return "Debug"
	default:
		return cat
	}
}
