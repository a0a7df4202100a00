package audio

import (
	"math"
	"math/cmplx"
	"sync"

	"github.com/maddyblue/go-dsp/fft"
	"github.com/maddyblue/go-dsp/window"

	"github.com/lixenwraith/driftgrid/parameter"
)

// Analyser taps the master output and exposes smoothed byte-scaled magnitude bins
// Push runs on the audio goroutine; Bins may be polled from any goroutine
type Analyser struct {
	mu     sync.Mutex
	ring   []float64
	pos    int
	win    []float64
	smooth []float64
	frame  []float64
	bins   []uint8
}

// NewAnalyser creates a tap with parameter.AnalyserSize frames of history
func NewAnalyser() *Analyser {
	n := parameter.AnalyserSize
	return &Analyser{
		ring:   make([]float64, n),
		win:    window.Hann(n),
		smooth: make([]float64, n/2),
		frame:  make([]float64, n),
		bins:   make([]uint8, n/2),
	}
}

// Push appends mono samples to the history ring
func (a *Analyser) Push(samples []float64) {
	a.mu.Lock()
	for _, s := range samples {
		a.ring[a.pos] = s
		a.pos++
		if a.pos == len(a.ring) {
			a.pos = 0
		}
	}
	a.mu.Unlock()
}

// Bins computes the current spectrum and returns a copy of parameter.AnalyserBins bytes
// Each call folds the new magnitudes into the running average with parameter.AnalyserSmoothing
func (a *Analyser) Bins() []uint8 {
	a.mu.Lock()
	defer a.mu.Unlock()

	n := len(a.ring)
	for i := 0; i < n; i++ {
		a.frame[i] = a.ring[(a.pos+i)%n] * a.win[i]
	}
	spectrum := fft.FFTReal(a.frame)

	const tc = parameter.AnalyserSmoothing
	span := parameter.AnalyserMaxDB - parameter.AnalyserMinDB
	for k := range a.smooth {
		mag := cmplx.Abs(spectrum[k]) / float64(n)
		a.smooth[k] = tc*a.smooth[k] + (1-tc)*mag

		db := parameter.AnalyserMinDB
		if a.smooth[k] > 0 {
			db = 20 * math.Log10(a.smooth[k])
		}
		v := 255 * (db - parameter.AnalyserMinDB) / span
		a.bins[k] = uint8(math.Max(0, math.Min(255, v)))
	}

	out := make([]uint8, len(a.bins))
	copy(out, a.bins)
	return out
}
