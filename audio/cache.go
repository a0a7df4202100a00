package audio

import (
	"math"
	"sync"
)

// curveCache memoises distortion curves by amount
// Kick shaping varies with chaos, so amounts are rounded to whole units to keep the set small
type curveCache struct {
	mu    sync.RWMutex
	store map[int][]float64
}

func newCurveCache() *curveCache {
	return &curveCache{store: make(map[int][]float64)}
}

// get returns cached curve or generates on demand
func (c *curveCache) get(amount float64) []float64 {
	key := int(math.Round(amount))

	c.mu.RLock()
	if curve, ok := c.store[key]; ok {
		c.mu.RUnlock()
		return curve
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check after acquiring write lock
	if curve, ok := c.store[key]; ok {
		return curve
	}

	curve := DistortionCurve(float64(key))
	c.store[key] = curve
	return curve
}

// preload generates the curves every session needs
func (c *curveCache) preload(amounts ...float64) {
	for _, a := range amounts {
		c.get(a)
	}
}

func (c *curveCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}
