package inspector

import (
	"fmt"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Widget colors
var (
	ColorBarBg       = rl.Color{R: 40, G: 40, B: 40, A: 255}
	ColorBarFill     = rl.Color{R: 100, G: 180, B: 100, A: 255}
	ColorBarLow      = rl.Color{R: 180, G: 80, B: 80, A: 255}
	ColorBarSeen     = rl.Color{R: 255, G: 150, B: 60, A: 255}
	ColorText        = rl.Color{R: 220, G: 220, B: 220, A: 255}
	ColorTextDim     = rl.Color{R: 150, G: 150, B: 150, A: 255}
	ColorAngleBg     = rl.Color{R: 50, G: 50, B: 60, A: 255}
	ColorAngleNeedle = rl.Color{R: 255, G: 200, B: 100, A: 255}
	ColorBoolOn      = rl.Color{R: 100, G: 200, B: 100, A: 255}
	ColorBoolOff     = rl.Color{R: 80, G: 80, B: 80, A: 255}
)

// DrawLabel renders "name: value".
func DrawLabel(x, y int32, name, value string) int32 {
	rl.DrawText(fmt.Sprintf("%s: %s", name, value), x, y, 16, ColorText)
	return 20
}

// DrawBar renders a horizontal progress bar for value in [0, maxVal].
func DrawBar(x, y int32, name string, value, maxVal float32) int32 {
	ratio := clamp01(value / maxVal)

	barWidth := int32(120)
	barHeight := int32(14)

	// Label
	rl.DrawText(name, x, y, 14, ColorTextDim)

	// Bar background
	barX := x + 80
	rl.DrawRectangle(barX, y, barWidth, barHeight, ColorBarBg)

	// Bar fill
	fillColor := ColorBarFill
	if ratio < 0.3 {
		fillColor = ColorBarLow
	}
	rl.DrawRectangle(barX, y, int32(float32(barWidth)*ratio), barHeight, fillColor)

	// Value text
	rl.DrawText(fmt.Sprintf("%.0f", value), barX+barWidth+5, y, 14, ColorTextDim)
	return 18
}

// DrawSectorBars renders one mini-bar per sector, filled by closeness
// (1 - nearest fraction). Sectors where the opponent was seen are
// highlighted. Labels are optional and drawn under the bars.
func DrawSectorBars(x, y int32, name string, nearest, seen []float32, labels []string) int32 {
	barWidth := int32(20)
	barHeight := int32(30)
	gap := int32(2)
	labelHeight := int32(0)
	if len(labels) == len(nearest) {
		labelHeight = 10
	}

	// Label
	rl.DrawText(name, x, y, 14, ColorTextDim)

	// Bars
	barX := x + 60
	for i, f := range nearest {
		bx := barX + int32(i)*(barWidth+gap)
		// Background
		rl.DrawRectangle(bx, y, barWidth, barHeight, ColorBarBg)

		// Fill from bottom
		ratio := clamp01(1 - f)
		fillHeight := int32(float32(barHeight) * ratio)
		fill := lerpColor(ColorBarFill, ColorBarLow, ratio)
		if i < len(seen) && seen[i] > 0 {
			fill = ColorBarSeen
		}
		rl.DrawRectangle(bx, y+barHeight-fillHeight, barWidth, fillHeight, fill)
	}

	if labelHeight > 0 {
		labelY := y + barHeight + 2
		for i, label := range labels {
			lx := barX + int32(i)*(barWidth+gap) + barWidth/2
			textW := rl.MeasureText(label, 8)
			rl.DrawText(label, lx-textW/2, labelY, 8, ColorTextDim)
		}
	}
	return barHeight + labelHeight + 4
}

// DrawAngle renders a compass-style angle indicator. World angles are
// counter-clockwise so the needle is mirrored into screen space.
func DrawAngle(x, y int32, name string, radians float64) int32 {
	size := int32(40)
	centerX := x + 60 + size/2
	centerY := y + size/2

	// Label
	rl.DrawText(name, x, y+size/2-7, 14, ColorTextDim)

	// Circle background
	rl.DrawCircle(centerX, centerY, float32(size/2), ColorAngleBg)
	rl.DrawCircleLines(centerX, centerY, float32(size/2), ColorTextDim)

	// Needle
	needleLen := float64(size/2 - 4)
	endX := float32(centerX) + float32(needleLen*math.Cos(radians))
	endY := float32(centerY) - float32(needleLen*math.Sin(radians))
	rl.DrawLineEx(
		rl.Vector2{X: float32(centerX), Y: float32(centerY)},
		rl.Vector2{X: endX, Y: endY},
		2,
		ColorAngleNeedle,
	)

	// Degree text
	rl.DrawText(fmt.Sprintf("%.0f deg", radians*180/math.Pi), x+60+size+5, y+size/2-7, 14, ColorTextDim)
	return size + 4
}

// DrawBool renders an on/off indicator.
func DrawBool(x, y int32, name string, value bool) int32 {
	// Label
	rl.DrawText(name, x, y, 14, ColorTextDim)

	// Indicator
	indicatorX := x + 80
	indicatorSize := int32(14)

	color := ColorBoolOff
	text := "OFF"
	if value {
		color = ColorBoolOn
		text = "ON"
	}

	rl.DrawRectangle(indicatorX, y, indicatorSize, indicatorSize, color)
	rl.DrawText(text, indicatorX+indicatorSize+5, y, 14, color)
	return 18
}

// lerpColor interpolates between two colors.
func lerpColor(a, b rl.Color, t float32) rl.Color {
	return rl.Color{
		R: uint8(float32(a.R) + (float32(b.R)-float32(a.R))*t),
		G: uint8(float32(a.G) + (float32(b.G)-float32(a.G))*t),
		B: uint8(float32(a.B) + (float32(b.B)-float32(a.B))*t),
		A: 255,
	}
}

func clamp01(v float32) float32 {
	return min(max(v, 0), 1)
}
