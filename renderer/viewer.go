package renderer

import (
	"fmt"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/arena/camera"
	"github.com/pthm-cable/arena/game"
	"github.com/pthm-cable/arena/inspector"
	"github.com/pthm-cable/arena/policy"
	"github.com/pthm-cable/arena/systems"
	"github.com/pthm-cable/arena/telemetry"
	"github.com/pthm-cable/arena/ui"
)

const (
	panelWidth  = 260
	arenaMargin = 0.4 // metres of border kept in view
	controlHelp = "W/S drive  Q/E rotate  A/D strafe  Space fire | P pause  R reset  ,/. speed  Tab panel  click inspect  arrows/wheel camera"
)

// Options configures a Viewer.
type Options struct {
	Title    string
	MaxTicks int // end an episode after this many ticks, 0 = no cap
	Logger   *slog.Logger
	Perf     *telemetry.PerfCollector // the Env's collector; frame timing is added to it

	// OnEpisodeEnd receives each finished or truncated episode.
	OnEpisodeEnd func(telemetry.EpisodeRecord)
}

// Viewer runs a match in a raylib window.
type Viewer struct {
	match *policy.Match
	opts  Options
	log   *slog.Logger

	cam         *camera.Camera
	arena       *ArenaRenderer
	hud         *ui.HUD
	robotPanels []*ui.RobotPanel
	zonePanel   *ui.ZonePanel
	perfPanel   *ui.PerfPanel
	controls    *ui.ControlsPanel
	overlays    *ui.OverlayRegistry
	inspector   *inspector.Inspector
	history     *inspector.HistoryPanel
	frame       game.Frame

	state            ui.ControlsState
	screenW, screenH float32
	ended            bool
}

// NewViewer creates a viewer for a match. The window opens in Run.
func NewViewer(match *policy.Match, opts Options) *Viewer {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Title == "" {
		opts.Title = "Arena"
	}
	cfg := match.Env.Config()
	w, h := float32(cfg.Screen.Width), float32(cfg.Screen.Height)
	cam := camera.New(w-panelWidth, h, float32(cfg.Arena.Width), float32(cfg.Arena.Height), arenaMargin)

	v := &Viewer{
		match:     match,
		opts:      opts,
		log:       opts.Logger,
		cam:       cam,
		arena:     NewArenaRenderer(cam),
		hud:       ui.NewHUD(),
		zonePanel: ui.NewZonePanel(0, 0, panelWidth-20),
		perfPanel: ui.NewPerfPanel(0, 0),
		controls:  ui.NewControlsPanel(0, 0, panelWidth-20),
		overlays:  ui.NewOverlayRegistry(),
		inspector: inspector.NewInspector(cfg),
		state:     ui.ControlsState{Speed: 1},
		screenW:   w,
		screenH:   h,
	}
	v.history = inspector.NewHistoryPanel(10, 0, 500, cfg.Physics.FPS/2,
		rl.Color(systems.TeamRed.Color()), rl.Color(systems.TeamBlue.Color()))
	for range match.Env.RobotIDs() {
		v.robotPanels = append(v.robotPanels, ui.NewRobotPanel(0, 0, panelWidth-20))
	}
	return v
}

// Run opens the window and plays until it is closed.
func (v *Viewer) Run() error {
	cfg := v.match.Env.Config()
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(v.screenW), int32(v.screenH), v.opts.Title)
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))
	// Escape clears the inspector selection instead of closing the window.
	rl.SetExitKey(rl.KeyNull)

	if err := v.reset(); err != nil {
		return err
	}
	for !rl.WindowShouldClose() {
		if err := v.handleInput(); err != nil {
			return err
		}
		if err := v.update(); err != nil {
			return err
		}
		v.draw()
	}
	v.finish()
	return nil
}

func (v *Viewer) reset() error {
	v.finish()
	if err := v.match.Reset(); err != nil {
		return fmt.Errorf("resetting episode: %w", err)
	}
	v.ended = false
	v.history.Reset()
	return nil
}

// finish reports the current episode once.
func (v *Viewer) finish() {
	if v.ended || v.match.Env.Tick() == 0 {
		return
	}
	v.ended = true
	rec := v.match.Env.Episode()
	v.log.Info("episode_finished", "record", rec)
	if v.opts.OnEpisodeEnd != nil {
		v.opts.OnEpisodeEnd(rec)
	}
}

func (v *Viewer) over() bool {
	env := v.match.Env
	return env.Done() || (v.opts.MaxTicks > 0 && env.Tick() >= v.opts.MaxTicks)
}

// update advances the match by the current speed.
func (v *Viewer) update() error {
	if v.state.Paused {
		return nil
	}
	for i := 0; i < v.state.Speed && !v.over(); i++ {
		if _, err := v.match.Step(); err != nil {
			return err
		}
	}
	if v.over() {
		v.finish()
	}
	return nil
}

func (v *Viewer) handleInput() error {
	v.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}
	if rl.IsKeyPressed(rl.KeyP) {
		v.state.Paused = !v.state.Paused
	}
	if rl.IsKeyPressed(rl.KeyComma) && v.state.Speed > 1 {
		v.state.Speed--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && v.state.Speed < ui.MaxSpeed {
		v.state.Speed++
	}
	if rl.IsKeyPressed(rl.KeyTab) {
		v.controls.Toggle()
	}
	for _, key := range v.overlays.Keys() {
		if rl.IsKeyPressed(key) {
			v.overlays.HandleKeyPress(key)
		}
	}
	v.handleCameraInput()
	v.handleMouse()

	if rl.IsKeyPressed(rl.KeyR) {
		return v.reset()
	}
	return nil
}

// handleResize checks for window resize and propagates new dimensions.
func (v *Viewer) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w, h := float32(rl.GetScreenWidth()), float32(rl.GetScreenHeight())
	if w == v.screenW && h == v.screenH {
		return
	}
	v.screenW, v.screenH = w, h
	v.cam.Resize(w-panelWidth, h)
}

// handleMouse routes clicks in the arena area to the inspector and the
// history legend.
func (v *Viewer) handleMouse() {
	mouse := rl.GetMousePosition()
	if mouse.X >= v.screenW-panelWidth {
		return
	}
	if v.overlays.IsEnabled(ui.OverlayHistory) {
		v.history.HandleInput()
	}
	v.inspector.HandleInput(mouse.X, mouse.Y, v.cam, v.frame.Robots)
}

// handleCameraInput processes camera pan/zoom controls.
func (v *Viewer) handleCameraInput() {
	panSpeed := float32(8.0)

	if rl.IsKeyDown(rl.KeyRight) {
		v.cam.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		v.cam.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		v.cam.Pan(0, panSpeed)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		v.cam.Pan(0, -panSpeed)
	}
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		v.cam.ZoomBy(1 + wheel*0.1)
	}
	if rl.IsKeyPressed(rl.KeyHome) {
		v.cam.Reset()
	}
}

func (v *Viewer) draw() {
	env := v.match.Env
	frame := env.Frame()
	v.frame = frame
	if len(frame.Robots) == 2 {
		v.history.Record(frame.Tick, frame.Robots[0].Health, frame.Robots[1].Health, frame.Score)
	}

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	v.arena.Draw(frame, v.overlays)
	v.inspector.DrawSelectionHighlight(v.cam, frame.Robots)

	over := v.over()
	var winner string
	if over {
		winner = env.Episode().Winner
	}
	v.hud.Draw(ui.HUDData{
		Title:        v.opts.Title,
		Tick:         frame.Tick,
		Time:         frame.Time,
		Score:        frame.Score,
		Speed:        v.state.Speed,
		FPS:          rl.GetFPS(),
		Paused:       v.state.Paused,
		Done:         over,
		Winner:       winner,
		ScreenWidth:  int32(v.screenW) - panelWidth,
		ScreenHeight: int32(v.screenH),
	})
	v.hud.DrawControls(int32(v.screenH), controlHelp)
	v.drawInspector(frame.Robots)
	if v.overlays.IsEnabled(ui.OverlayHistory) {
		width := min(int32(v.screenW)-panelWidth-20, 600)
		v.history.SetPosition(10, int32(v.screenH)-v.history.Height()-30, width)
		v.history.Draw()
	}

	v.drawSidebar(frame.Robots, frame.BuffZones)

	rl.EndDrawing()
	if v.opts.Perf != nil {
		v.opts.Perf.RecordFrame()
	}
}

// drawInspector shows the selected robot with its policy and last
// observation.
func (v *Viewer) drawInspector(robots []game.RobotFrame) {
	id, ok := v.inspector.Selected()
	if !ok {
		return
	}
	for i, r := range robots {
		if r.ID != id {
			continue
		}
		obs, hasObs := v.match.Observation(i)
		v.inspector.Draw(inspector.Target{Robot: r, Obs: obs, HasObs: hasObs, Policy: v.match.Players[i]})
		return
	}
}

// drawSidebar stacks the panels down the right edge.
func (v *Viewer) drawSidebar(robots []game.RobotFrame, zones []game.ZoneFrame) {
	x := int32(v.screenW) - panelWidth + 10
	y := int32(10)

	v.controls.SetPosition(x, y)
	res := v.controls.Draw(&v.state, v.overlays)
	if res.Reset {
		if err := v.reset(); err != nil {
			v.log.Error("reset failed", "error", err)
		}
	}
	if res.Step && v.state.Paused && !v.over() {
		if _, err := v.match.Step(); err != nil {
			v.log.Error("step failed", "error", err)
		}
	}
	y += 300

	for i, r := range robots {
		if i >= len(v.robotPanels) {
			break
		}
		v.robotPanels[i].SetPosition(x, y)
		y = v.robotPanels[i].Draw(r) + 8
	}
	if len(zones) > 0 {
		v.zonePanel.SetPosition(x, y)
		y = v.zonePanel.Draw(zones) + 8
	}
	if v.overlays.IsEnabled(ui.OverlayPerf) && v.opts.Perf != nil {
		v.perfPanel.SetPosition(x, y)
		v.perfPanel.Draw(v.opts.Perf.Stats())
	}
}
