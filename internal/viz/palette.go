package viz

import (
	"fmt"
	"image/color"
	"math"

	"github.com/charmbracelet/lipgloss"
)

// Palette spreads k colour classes evenly around the hue circle.
func Palette(k int) []color.RGBA {
	out := make([]color.RGBA, k)
	for i := range out {
		h := float64(i) / float64(k) * 360
		r, g, b := hsvToRGB(h, 0.85, 1)
		out[i] = color.RGBA{uint8(r * 255), uint8(g * 255), uint8(b * 255), 255}
	}
	return out
}

// Hex formats c as #rrggbb.
func Hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ColorStyles returns one foreground style per colour class.
func ColorStyles(k int) []lipgloss.Style {
	pal := Palette(k)
	styles := make([]lipgloss.Style, k)
	for i, c := range pal {
		styles[i] = lipgloss.NewStyle().Foreground(lipgloss.Color(Hex(c)))
	}
	return styles
}

func hsvToRGB(h, s, v float64) (float64, float64, float64) {
	h = math.Mod(h, 360)
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c
	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return r + m, g + m, b + m
}
