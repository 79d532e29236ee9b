package gui

import (
	"fmt"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/san-kum/plife/internal/viz"
)

func (a *App) drawParticles() {
	for _, p := range a.Engine.Set().Particles() {
		x := int32(float32(p.Pos.X) * a.Scale)
		y := int32(float32(p.Pos.Y) * a.Scale)
		rl.DrawRectangle(x, y, particleSize, particleSize, a.Colors[p.Color])
	}
}

func (a *App) DrawTelemetry() {
	if len(a.Telemetry) < 2 {
		return
	}

	rectX, rectY := 10, int(rl.GetScreenHeight())-90
	width, height := 240, 50

	minVal, maxVal := a.Telemetry[0], a.Telemetry[0]
	for _, v := range a.Telemetry {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	points := make([]rl.Vector2, len(a.Telemetry))
	for i, val := range a.Telemetry {
		px := float32(rectX) + (float32(i)/float32(len(a.Telemetry)))*float32(width)
		norm := (val - minVal) / (maxVal - minVal)
		py := float32(rectY+height) - float32(norm)*float32(height)
		points[i] = rl.NewVector2(px, py)
	}

	rl.DrawLineStrip(points, ColAccent)
	rl.DrawText(fmt.Sprintf("KE: %.3e", a.Telemetry[len(a.Telemetry)-1]), int32(rectX+width+10), int32(rectY+height-10), 12, ColText)
}

func colors(k int) []rl.Color {
	pal := viz.Palette(k)
	out := make([]rl.Color, k)
	for i, c := range pal {
		out[i] = rl.NewColor(c.R, c.G, c.B, c.A)
	}
	return out
}

// fitScale is the largest scale not above 1 that fits w x h into maxW x maxH.
func fitScale(w, h float64, maxW, maxH int) float32 {
	s := math.Min(float64(maxW)/w, float64(maxH)/h)
	return float32(math.Min(s, 1))
}

func frameDt(frameSeconds float32, fixed, timeScale float64) float64 {
	if fixed > 0 {
		return fixed
	}
	return math.Min(float64(frameSeconds)*timeScale, maxFrameDt)
}
