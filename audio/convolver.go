package audio

import (
	"github.com/maddyblue/go-dsp/fft"
)

// Convolver is a uniform partitioned overlap-save FFT convolver
// Latency is one block; cost per sample is independent of impulse length beyond the spectral multiply
type Convolver struct {
	block int
	parts [][]complex128 // spectrum of each zero padded impulse partition
	fdl   [][]complex128 // input spectra, newest at head
	head  int

	window []float64 // previous block followed by current block
	fill   int
	out    []float64
	acc    []complex128
}

// NewConvolver partitions impulse into blocks of size block
func NewConvolver(impulse []float64, block int) *Convolver {
	if block < 1 {
		block = 1
	}
	nParts := max(1, (len(impulse)+block-1)/block)
	size := 2 * block

	c := &Convolver{
		block:  block,
		parts:  make([][]complex128, nParts),
		fdl:    make([][]complex128, nParts),
		window: make([]float64, size),
		out:    make([]float64, block),
		acc:    make([]complex128, size),
	}

	seg := make([]float64, size)
	for p := 0; p < nParts; p++ {
		clear(seg)
		start := p * block
		end := min(start+block, len(impulse))
		if start < end {
			copy(seg, impulse[start:end])
		}
		c.parts[p] = fft.FFTReal(seg)
		c.fdl[p] = make([]complex128, size)
	}
	return c
}

// Process pushes one input sample and returns one output sample
func (c *Convolver) Process(x float64) float64 {
	y := c.out[c.fill]
	c.window[c.block+c.fill] = x
	c.fill++
	if c.fill == c.block {
		c.flush()
		c.fill = 0
	}
	return y
}

// flush transforms the current window, accumulates the partition products and keeps the valid half
func (c *Convolver) flush() {
	n := len(c.parts)
	c.head = (c.head - 1 + n) % n
	c.fdl[c.head] = fft.FFTReal(c.window)

	clear(c.acc)
	for p := 0; p < n; p++ {
		x := c.fdl[(c.head+p)%n]
		h := c.parts[p]
		for k := range c.acc {
			c.acc[k] += x[k] * h[k]
		}
	}

	y := fft.IFFT(c.acc)
	for i := 0; i < c.block; i++ {
		c.out[i] = real(y[c.block+i])
	}

	copy(c.window[:c.block], c.window[c.block:])
}

// Latency returns the delay in samples introduced by blocking
func (c *Convolver) Latency() int {
	return c.block
}
