package ui

import (
	"fmt"
	"math"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/arena/game"
	"github.com/pthm-cable/arena/systems"
	"github.com/pthm-cable/arena/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title        string
	Tick         int
	Time         float64
	Score        float64
	Speed        int
	FPS          int32
	Paused       bool
	Done         bool
	Winner       string
	ScreenWidth  int32
	ScreenHeight int32
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{renderer: NewRenderer()}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Time: %6.1fs | Tick: %d | Score: %+.4f", data.Time, data.Tick, data.Score),
		10, 35, 16, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("Speed: %dx | FPS: %d", data.Speed, data.FPS),
		10, 55, 16, rl.LightGray,
	)

	status := "Running"
	if data.Paused {
		status = "PAUSED"
	}
	rl.DrawText(status, 10, 75, 16, rl.Yellow)

	if data.Done {
		banner := "Draw"
		if data.Winner != "draw" {
			banner = data.Winner + " wins"
		}
		banner += "  [R] restart"
		w := rl.MeasureText(banner, 28)
		rl.DrawText(banner, (data.ScreenWidth-w)/2, data.ScreenHeight/2-14, 28, rl.Gold)
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// robotSection lays out a robot's panel from its frame.
var robotSection = SectionDescriptor{
	ID: "robot",
	Fields: []FieldDescriptor{
		{ID: "team", Label: "Team", Widget: WidgetColorSwatch, ColorGetter: func(d any) rl.Color {
			return rl.Color(d.(game.RobotFrame).Color)
		}},
		{ID: "health", Label: "Health", Widget: WidgetMeter, MeterGetter: func(d any) (float32, float32) {
			r := d.(game.RobotFrame)
			return float32(r.Health), float32(r.MaxHealth)
		}},
		{ID: "ammo", Label: "Ammo", Widget: WidgetText, TextGetter: func(d any) string {
			r := d.(game.RobotFrame)
			return fmt.Sprintf("%d (+%d reloads)", r.Ammo, r.ReloadOpportunities)
		}},
		{ID: "turret", Label: "Turret", Widget: WidgetCenteredBar, Range: CenteredRange(), Getter: func(d any) float32 {
			r := d.(game.RobotFrame)
			return float32(systems.NormalizeAngle(r.Turret-r.Heading) / math.Pi)
		}},
		{ID: "buff", Label: "Buff", Widget: WidgetText, Format: "%.1fs", Getter: func(d any) float32 {
			return float32(d.(game.RobotFrame).BuffLeft)
		}, Visible: func(d any) bool {
			return d.(game.RobotFrame).BuffLeft > 0
		}},
		{ID: "detected", Label: "Target", Widget: WidgetText, TextGetter: func(d any) string {
			if d.(game.RobotFrame).Detected {
				return "locked"
			}
			return "searching"
		}},
	},
}

// RobotPanel renders one robot's status.
type RobotPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewRobotPanel creates a new robot panel.
func NewRobotPanel(x, y, width int32) *RobotPanel {
	return &RobotPanel{renderer: NewRenderer(), x: x, y: y, width: width}
}

// SetPosition updates the panel position.
func (p *RobotPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the panel and returns the Y below it.
func (p *RobotPanel) Draw(robot game.RobotFrame) int32 {
	r := p.renderer
	padding := r.Theme.Padding
	height := r.Theme.LineHeight + r.SectionHeight(robotSection, robot) + padding*2

	r.DrawPanel(p.x, p.y, p.width, height)
	y := p.y + padding
	rl.DrawText(string(robot.ID), p.x+padding, y, 14, rl.White)
	y += r.Theme.LineHeight
	r.DrawSection(p.x+padding, y, robotSection, robot, p.width-padding*2)
	return p.y + height
}

// ZonePanel lists buff zone timers.
type ZonePanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewZonePanel creates a new zone panel.
func NewZonePanel(x, y, width int32) *ZonePanel {
	return &ZonePanel{renderer: NewRenderer(), x: x, y: y, width: width}
}

// SetPosition updates the panel position.
func (p *ZonePanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the panel and returns the Y below it.
func (p *ZonePanel) Draw(zones []game.ZoneFrame) int32 {
	r := p.renderer
	padding := r.Theme.Padding
	height := r.Theme.LineHeight + int32(len(zones))*(r.Theme.LineHeight+2) + padding*2

	r.DrawPanel(p.x, p.y, p.width, height)
	y := r.DrawSectionHeader(p.x+padding, p.y+padding, "Buff Zones")
	for _, z := range zones {
		var progress float32
		if z.MaxStayTime > 0 {
			progress = float32(z.Stay / z.MaxStayTime)
		}
		y = r.DrawBar(p.x+padding, y, z.Team.String(), progress, p.width-padding*2)
	}
	return p.y + height
}

// PerfPanel renders the per-phase tick timing.
type PerfPanel struct {
	x, y int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{x: x, y: y}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	x, y := p.x, p.y

	rl.DrawText("Tick Performance", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Avg: %s  (%.0f ticks/s)", stats.AvgTickDuration.Round(time.Microsecond), stats.TicksPerSecond), x, y, 14, rl.Yellow)
	y += 16

	for _, phase := range telemetry.Phases {
		pct := stats.PhasePct[phase]
		color := rl.LightGray
		if pct > 40 {
			color = rl.Red
		} else if pct > 20 {
			color = rl.Orange
		}
		rl.DrawText(
			fmt.Sprintf("%-10s %8s %5.1f%%", phase, stats.PhaseAvg[phase].Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}
