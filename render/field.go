package render

import (
	"math"

	"github.com/lixenwraith/driftgrid/parameter"
)

var glyphs = []rune(parameter.GlyphRamp)

// Bands are normalized spectrum levels
type Bands struct {
	Bass float64
	Kick float64
	Mid  float64
	High float64
}

// BandsOf reads band levels from analyser bins; missing bins read as silence
func BandsOf(bins []uint8) Bands {
	at := func(i int) float64 {
		if i < len(bins) {
			return float64(bins[i]) / 255
		}
		return 0
	}
	return Bands{
		Bass: at(parameter.BandBass),
		Kick: (at(parameter.BandBass) + at(parameter.BandKick) + at(parameter.BandKick2)) / 3,
		Mid:  at(parameter.BandMid),
		High: at(parameter.BandHigh),
	}
}

// Intensity is the field value in [0,1] at grid cell (col,row) of a w x h grid at time t
// A ripple from the center carries the low end; scan lines open up with chaos; highs add sparkle
func Intensity(col, row, w, h int, t float64, b Bands, chaos float64) float64 {
	if w <= 0 || h <= 0 {
		return 0
	}
	nx := float64(col)/float64(w) - 0.5
	ny := (float64(row)/float64(h) - 0.5) * parameter.GridRowStretch
	r := math.Hypot(nx, ny)

	wave := math.Sin(r*24-t*(1+b.Bass*3))*0.5 + 0.5
	level := 0.15 + b.Kick*0.5 + b.Bass*0.3 + b.Mid*0.2
	v := wave * level

	if math.Sin(float64(row)*0.5+t) > 0.95-chaos*0.8 {
		v += 0.3 * chaos
	}

	sparkle := math.Sin(float64(col*7+row*13)+t*11)*0.5 + 0.5
	v += b.High * 0.2 * sparkle

	return math.Max(0, math.Min(1, v))
}

// Glyph maps an intensity to the density ramp
func Glyph(v float64) rune {
	idx := int(v * float64(len(glyphs)-1))
	idx = max(0, min(len(glyphs)-1, idx))
	return glyphs[idx]
}
