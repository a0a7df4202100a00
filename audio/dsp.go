package audio

import (
	"math"
)

// FilterType selects the biquad response
type FilterType int

const (
	LowPass FilterType = iota
	HighPass
	BandPass
)

// Biquad is an RBJ cookbook second order section in transposed direct form II
// Low and high pass interpret Q as resonance in dB; band pass takes Q as bandwidth ratio
type Biquad struct {
	kind FilterType
	rate float64

	freq, q float64

	b0, b1, b2, a1, a2 float64
	z1, z2             float64
}

// NewBiquad creates a filter with the given response at freq/q
func NewBiquad(kind FilterType, rate, freq, q float64) *Biquad {
	b := &Biquad{kind: kind, rate: rate}
	b.Set(freq, q)
	return b
}

// Set recomputes coefficients; state is kept so sweeps stay click-free
func (b *Biquad) Set(freq, q float64) {
	if freq == b.freq && q == b.q && b.b0 != 0 {
		return
	}
	b.freq, b.q = freq, q

	nyquist := b.rate / 2
	freq = math.Max(10, math.Min(freq, nyquist*0.99))

	w0 := 2 * math.Pi * freq / b.rate
	cosw, sinw := math.Cos(w0), math.Sin(w0)

	var alpha float64
	switch b.kind {
	case BandPass:
		alpha = sinw / (2 * math.Max(q, 1e-4))
	default:
		alpha = sinw / (2 * math.Pow(10, q/20))
	}

	var b0, b1, b2 float64
	switch b.kind {
	case LowPass:
		b0 = (1 - cosw) / 2
		b1 = 1 - cosw
		b2 = b0
	case HighPass:
		b0 = (1 + cosw) / 2
		b1 = -(1 + cosw)
		b2 = b0
	case BandPass:
		b0 = alpha
		b1 = 0
		b2 = -alpha
	}
	a0 := 1 + alpha
	b.b0 = b0 / a0
	b.b1 = b1 / a0
	b.b2 = b2 / a0
	b.a1 = -2 * cosw / a0
	b.a2 = (1 - alpha) / a0
}

// Process filters one sample
func (b *Biquad) Process(x float64) float64 {
	y := b.b0*x + b.z1
	b.z1 = b.b1*x - b.a1*y + b.z2
	b.z2 = b.b2*x - b.a2*y
	return y
}

// Smoother moves a value toward a target exponentially, one sample at a time
// Matches the behaviour of an audio param driven by setTargetAtTime
type Smoother struct {
	rate   float64
	value  float64
	target float64
	coef   float64
}

// NewSmoother creates a smoother resting at initial
func NewSmoother(rate, initial float64) *Smoother {
	return &Smoother{rate: rate, value: initial, target: initial, coef: 1}
}

// SetTarget starts an approach to target with time constant tau seconds
// tau <= 0 jumps immediately
func (s *Smoother) SetTarget(target, tau float64) {
	s.target = target
	if tau <= 0 {
		s.value = target
		s.coef = 1
		return
	}
	s.coef = 1 - math.Exp(-1/(tau*s.rate))
}

// SetImmediate jumps to v and holds it
func (s *Smoother) SetImmediate(v float64) {
	s.value = v
	s.target = v
	s.coef = 1
}

// Next advances one sample and returns the new value
func (s *Smoother) Next() float64 {
	s.value += (s.target - s.value) * s.coef
	return s.value
}

// Value returns the current value without advancing
func (s *Smoother) Value() float64 {
	return s.value
}

// Target returns the value being approached
func (s *Smoother) Target() float64 {
	return s.target
}

// DelayLine is a circular buffer read at a fractional delay
type DelayLine struct {
	buf  []float64
	pos  int
	rate float64
}

// NewDelayLine allocates maxSeconds of history
func NewDelayLine(rate, maxSeconds float64) *DelayLine {
	n := max(2, int(rate*maxSeconds)+1)
	return &DelayLine{buf: make([]float64, n), rate: rate}
}

// Read returns the signal delayed by seconds, linearly interpolated
// Delays shorter than one sample read one sample back
func (d *DelayLine) Read(seconds float64) float64 {
	n := len(d.buf)
	ds := math.Max(1, math.Min(seconds*d.rate, float64(n-1)))
	i0 := int(ds)
	frac := ds - float64(i0)

	s0 := d.buf[(d.pos-i0+n)%n]
	s1 := d.buf[(d.pos-i0-1+2*n)%n]
	return s0 + (s1-s0)*frac
}

// Write pushes one sample
func (d *DelayLine) Write(x float64) {
	d.buf[d.pos] = x
	d.pos++
	if d.pos == len(d.buf) {
		d.pos = 0
	}
}

// expRamp is the exponential approach from v0 to v1 over dur, held at v1 afterwards
func expRamp(v0, v1, dur, t float64) float64 {
	if v0 <= 0 || v1 <= 0 {
		return linRamp(v0, v1, dur, t)
	}
	if t <= 0 {
		return v0
	}
	if t >= dur {
		return v1
	}
	return v0 * math.Pow(v1/v0, t/dur)
}

// linRamp is the straight line from v0 to v1 over dur, held at v1 afterwards
func linRamp(v0, v1, dur, t float64) float64 {
	if t <= 0 {
		return v0
	}
	if t >= dur {
		return v1
	}
	return v0 + (v1-v0)*t/dur
}
