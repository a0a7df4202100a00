package audio

import (
	"math"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// WaveType defines oscillator wave shapes
type WaveType int

const (
	WaveSine WaveType = iota
	WaveSquare
	WaveSaw
	WaveTriangle
)

// oscillator is a phase accumulator with a selectable wave shape
// Frequency is supplied per sample so sweeps and FM share one path
type oscillator struct {
	phase float64
	wave  WaveType
	rate  float64
}

func newOscillator(wave WaveType, rate float64) *oscillator {
	return &oscillator{wave: wave, rate: rate}
}

// next returns the current sample then advances by freq
func (o *oscillator) next(freq float64) float64 {
	var val float64
	switch o.wave {
	case WaveSine:
		val = math.Sin(2 * math.Pi * o.phase)
	case WaveSquare:
		if o.phase < 0.5 {
			val = 1.0
		} else {
			val = -1.0
		}
	case WaveSaw:
		val = 2.0 * (o.phase - 0.5)
	case WaveTriangle:
		val = 1 - 4*math.Abs(o.phase-0.5)
	}

	o.phase += freq / o.rate
	o.phase -= math.Floor(o.phase) // Keep in [0, 1)
	return val
}

// oneShot adapts a mono per-sample generator into a finite beep.Streamer
// gen receives seconds since the voice start
type oneShot struct {
	gen    func(t float64) float64
	rate   float64
	pos    int
	length int
}

func newOneShot(rate, seconds float64, gen func(t float64) float64) *oneShot {
	return &oneShot{gen: gen, rate: rate, length: int(seconds * rate)}
}

func (o *oneShot) Stream(samples [][2]float64) (n int, ok bool) {
	if o.pos >= o.length {
		return 0, false
	}
	for i := range samples {
		if o.pos >= o.length {
			return i, true
		}
		v := o.gen(float64(o.pos) / o.rate)
		samples[i][0] = v
		samples[i][1] = v
		o.pos++
	}
	return len(samples), true
}

func (o *oneShot) Err() error { return nil }

// panned wraps s with a stereo balance in [-1, 1]
func panned(s beep.Streamer, pan float64) beep.Streamer {
	if pan == 0 {
		return s
	}
	return &effects.Pan{Streamer: s, Pan: math.Max(-1, math.Min(1, pan))}
}

// newVolume wraps a streamer with linear volume scaling
func newVolume(s beep.Streamer, volume float64) beep.Streamer {
	if volume == 1 {
		return s
	}
	if volume <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{
		Streamer: s,
		Base:     2,
		Volume:   math.Log2(volume),
	}
}
