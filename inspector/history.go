package inspector

import (
	"fmt"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	// History buffer size (number of samples to keep)
	historySize = 300

	seriesHealth0 = 0
	seriesHealth1 = 1
	seriesScore   = 2
	numSeries     = 3
)

// HistoryPanel graphs both robots' health and the cumulative reward over
// the current episode.
type HistoryPanel struct {
	panelWidth  int32
	panelHeight int32
	panelX      int32
	panelY      int32

	// Ring buffers
	history      [numSeries][]float64
	historyIndex int
	historyCount int
	lastTick     int
	every        int // ticks between samples

	seriesVisible [numSeries]bool
	seriesNames   [numSeries]string
	seriesColors  [numSeries]rl.Color
}

// History panel colors
var (
	colorHistoryTitle   = rl.Color{R: 200, G: 200, B: 220, A: 255}
	colorHistoryPanelBg = rl.Color{R: 20, G: 20, B: 30, A: 230}
	colorGraphBg        = rl.Color{R: 15, G: 15, B: 25, A: 255}
	colorGraphGrid      = rl.Color{R: 40, G: 40, B: 50, A: 255}
	colorGraphBorder    = rl.Color{R: 60, G: 60, B: 70, A: 255}
	colorSeriesScore    = rl.Color{R: 255, G: 255, B: 100, A: 255}
)

// NewHistoryPanel creates a panel sampling every `every` ticks. The robot
// colors are used for the health lines.
func NewHistoryPanel(x, y, width int32, every int, c0, c1 rl.Color) *HistoryPanel {
	p := &HistoryPanel{
		panelWidth:    width,
		panelHeight:   150,
		panelX:        x,
		panelY:        y,
		every:         max(every, 1),
		lastTick:      -1,
		seriesVisible: [numSeries]bool{true, true, true},
		seriesNames:   [numSeries]string{"robot_0", "robot_1", "Score"},
		seriesColors:  [numSeries]rl.Color{c0, c1, colorSeriesScore},
	}
	for i := range p.history {
		p.history[i] = make([]float64, historySize)
	}
	return p
}

// SetPosition moves the panel.
func (p *HistoryPanel) SetPosition(x, y, width int32) {
	p.panelX, p.panelY, p.panelWidth = x, y, width
}

// Height returns the panel height.
func (p *HistoryPanel) Height() int32 {
	return p.panelHeight
}

// Reset clears the history for a new episode.
func (p *HistoryPanel) Reset() {
	p.historyIndex = 0
	p.historyCount = 0
	p.lastTick = -1
}

// Record samples a tick. Repeated or off-cadence ticks are ignored, so it
// is safe to call once per drawn frame.
func (p *HistoryPanel) Record(tick int, health0, health1 int, score float64) {
	if tick == p.lastTick || tick%p.every != 0 {
		return
	}
	p.lastTick = tick

	idx := p.historyIndex
	p.history[seriesHealth0][idx] = float64(health0)
	p.history[seriesHealth1][idx] = float64(health1)
	p.history[seriesScore][idx] = score

	p.historyIndex = (p.historyIndex + 1) % historySize
	if p.historyCount < historySize {
		p.historyCount++
	}
}

// Count returns the number of stored samples.
func (p *HistoryPanel) Count() int {
	return p.historyCount
}

// sample returns the i-th oldest stored value of a series.
func (p *HistoryPanel) sample(series, i int) float64 {
	idx := (p.historyIndex - p.historyCount + i + historySize) % historySize
	return p.history[series][idx]
}

// HandleInput toggles series by clicking the legend.
func (p *HistoryPanel) HandleInput() {
	if !rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		return
	}
	mx, my := rl.GetMouseX(), rl.GetMouseY()
	legendY := p.panelY + p.panelHeight - 20
	for i := 0; i < numSeries; i++ {
		itemX := p.panelX + 10 + int32(i)*80
		if mx >= itemX && mx < itemX+75 && my >= legendY && my < legendY+16 {
			p.seriesVisible[i] = !p.seriesVisible[i]
			return
		}
	}
}

// Draw renders the panel.
func (p *HistoryPanel) Draw() {
	rl.DrawRectangle(p.panelX, p.panelY, p.panelWidth, p.panelHeight, colorHistoryPanelBg)
	rl.DrawRectangleLines(p.panelX, p.panelY, p.panelWidth, p.panelHeight, colorGraphBorder)
	rl.DrawText("EPISODE", p.panelX+10, p.panelY+6, 14, colorHistoryTitle)

	if p.historyCount == 0 {
		rl.DrawText("Waiting for data...", p.panelX+100, p.panelY+60, 14, ColorTextDim)
		return
	}

	gx, gy := p.panelX+10, p.panelY+24
	gw, gh := p.panelWidth-20, p.panelHeight-50
	p.drawGraph(gx, gy, gw, gh)
	p.drawLegend(p.panelX+10, p.panelY+p.panelHeight-20)
}

func (p *HistoryPanel) drawGraph(x, y, w, h int32) {
	rl.DrawRectangle(x, y, w, h, colorGraphBg)
	rl.DrawRectangleLines(x, y, w, h, colorGraphBorder)
	for i := int32(1); i < 4; i++ {
		gridY := y + (h * i / 4)
		rl.DrawLine(x, gridY, x+w, gridY, colorGraphGrid)
	}

	if p.historyCount < 2 {
		return
	}

	// Health and score use separate scales.
	healthMin, healthMax := p.seriesRange(seriesHealth0, seriesHealth1)
	scoreMin, scoreMax := p.seriesRange(seriesScore)
	for _, s := range []int{seriesHealth0, seriesHealth1} {
		if p.seriesVisible[s] {
			p.drawSeriesLine(x, y, w, h, s, healthMin, healthMax)
		}
	}
	if p.seriesVisible[seriesScore] {
		p.drawSeriesLine(x, y, w, h, seriesScore, scoreMin, scoreMax)
		maxLabel := fmt.Sprintf("%.3f", scoreMax)
		rl.DrawText(maxLabel, x+w-rl.MeasureText(maxLabel, 9)-2, y+2, 9, ColorTextDim)
	}
	rl.DrawText(fmt.Sprintf("%.0f", healthMax), x+2, y+2, 9, ColorTextDim)
	rl.DrawText(fmt.Sprintf("%.0f", healthMin), x+2, y+h-10, 9, ColorTextDim)
}

// seriesRange finds min/max across the visible series, padded by 10%.
func (p *HistoryPanel) seriesRange(series ...int) (lo, hi float64) {
	lo, hi = math.MaxFloat64, -math.MaxFloat64
	visible := false
	for _, s := range series {
		if !p.seriesVisible[s] {
			continue
		}
		visible = true
		for i := 0; i < p.historyCount; i++ {
			v := p.sample(s, i)
			lo = min(lo, v)
			hi = max(hi, v)
		}
	}
	if !visible || lo >= hi {
		return 0, 1
	}
	pad := max((hi-lo)*0.1, 0.001)
	return lo - pad, hi + pad
}

func (p *HistoryPanel) drawSeriesLine(x, y, w, h int32, series int, lo, hi float64) {
	color := p.seriesColors[series]
	span := hi - lo
	if span <= 0 {
		span = 1
	}

	var prevX, prevY int32
	for i := 0; i < p.historyCount; i++ {
		v := p.sample(series, i)
		px := x + int32(float64(i)*float64(w)/float64(p.historyCount-1))
		py := y + h - int32((v-lo)/span*float64(h))
		py = min(max(py, y), y+h)
		if i > 0 {
			rl.DrawLine(prevX, prevY, px, py, color)
		}
		prevX, prevY = px, py
	}
}

func (p *HistoryPanel) drawLegend(x, y int32) {
	for i := 0; i < numSeries; i++ {
		itemX := x + int32(i)*80
		color := p.seriesColors[i]
		textColor := ColorText
		if !p.seriesVisible[i] {
			color.A = 80
			textColor = ColorTextDim
		}
		rl.DrawRectangle(itemX, y+2, 10, 10, color)
		rl.DrawText(p.seriesNames[i], itemX+14, y, 11, textColor)
	}
}
