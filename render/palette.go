package render

import (
	"math"

	"github.com/gdamore/tcell/v2"
)

// RGB is a 24-bit color
type RGB struct {
	R, G, B uint8
}

// Base palette, cycled over time
var basePalette = [...]RGB{
	{180, 200, 255},
	{200, 180, 255},
	{255, 200, 220},
	{220, 255, 200},
	{200, 255, 255},
	{255, 220, 200},
}

// clamp converts float to uint8
func clamp(v float64) uint8 {
	if v >= 255.0 {
		return 255
	}
	if v <= 0.0 {
		return 0
	}
	return uint8(v)
}

// Lerp blends c toward o by t in [0,1]
func (c RGB) Lerp(o RGB, t float64) RGB {
	return RGB{
		R: clamp(float64(c.R) + (float64(o.R)-float64(c.R))*t),
		G: clamp(float64(c.G) + (float64(o.G)-float64(c.G))*t),
		B: clamp(float64(c.B) + (float64(o.B)-float64(c.B))*t),
	}
}

// Scale multiplies every channel by f
func (c RGB) Scale(f float64) RGB {
	return RGB{
		R: clamp(float64(c.R) * f),
		G: clamp(float64(c.G) * f),
		B: clamp(float64(c.B) * f),
	}
}

// Color converts to a tcell truecolor
func (c RGB) Color() tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

// PaletteColor returns the cycling base color at time t
// Speed rises with chaos; a strong kick pulses brightness
func PaletteColor(t, kick, chaos float64) RGB {
	speed := 0.12 + chaos*0.08
	pos := t * speed
	idx := int(math.Floor(pos)) % len(basePalette)
	if idx < 0 {
		idx += len(basePalette)
	}
	next := (idx + 1) % len(basePalette)
	blend := pos - math.Floor(pos)

	c := basePalette[idx].Lerp(basePalette[next], blend)

	wave := (math.Sin(t*1.2)*0.4 + 0.6) * (math.Sin(t*1.8+chaos*2)*0.3 + 0.7) * (math.Sin(t*0.5)*0.2 + 0.8)
	if kick > 0.4 {
		wave *= math.Sin(t*6+chaos)*0.2 + 0.8
	}
	c = c.Scale(wave)

	// Floor keeps glyphs readable on dark terminals
	return RGB{
		R: max(c.R, 80),
		G: max(c.G, 80),
		B: max(c.B, 100),
	}
}
