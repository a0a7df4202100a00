package audio

import (
	"sync"
	"sync/atomic"
)

// Clock is the audio timeline in seconds
// Scheduling decisions read it; voices are placed on it
type Clock interface {
	Now() float64
}

// SampleClock counts frames rendered by the graph
// Safe to read from any goroutine
type SampleClock struct {
	frames atomic.Int64
	rate   float64
}

// NewSampleClock creates a clock at frame zero
func NewSampleClock(rate int) *SampleClock {
	return &SampleClock{rate: float64(rate)}
}

// Now returns seconds rendered so far
func (c *SampleClock) Now() float64 {
	return float64(c.frames.Load()) / c.rate
}

// Frames returns frames rendered so far
func (c *SampleClock) Frames() int64 {
	return c.frames.Load()
}

func (c *SampleClock) advance(n int) {
	c.frames.Add(int64(n))
}

// ManualClock provides a controllable time source for testing and offline drivers
type ManualClock struct {
	mu  sync.RWMutex
	now float64
}

// NewManualClock creates a clock at start seconds
func NewManualClock(start float64) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the current manual time
func (m *ManualClock) Now() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.now
}

// Set jumps to t
func (m *ManualClock) Set(t float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = t
}

// Advance moves forward by d seconds
func (m *ManualClock) Advance(d float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now += d
}
