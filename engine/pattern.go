package engine

import (
	"math/rand/v2"

	"github.com/lixenwraith/driftgrid/core"
	"github.com/lixenwraith/driftgrid/parameter"
)

// Pattern is one 16-step bar of rhythm and timing feel
// It is regenerated wholesale; no history is kept
type Pattern struct {
	Kick        [parameter.StepsPerBar]bool
	Snare       [parameter.StepsPerBar]bool
	Probability [parameter.StepsPerBar]float64 // embellishment gate per step, [0,1)
	MicroTiming [parameter.StepsPerBar]float64 // seconds added after the step, ±parameter.MicroTimingRange
}

// NewPattern returns a freshly generated pattern for mode
func NewPattern(rng *rand.Rand, mode core.BlendMode) *Pattern {
	p := &Pattern{}
	p.Regenerate(rng, mode)
	return p
}

// Regenerate redraws every array
// Kicks: 2-6 hits, snares: 1-5 hits leaning on the backbeat; drive adds two of each and lets kicks sit under snares
func (p *Pattern) Regenerate(rng *rand.Rand, mode core.BlendMode) {
	*p = Pattern{}

	drive := mode == core.ModeDrive
	density := 0
	if drive {
		density = 2
	}

	for i := range p.Probability {
		p.Probability[i] = rng.Float64()
		p.MicroTiming[i] = (rng.Float64()*2 - 1) * parameter.MicroTimingRange
	}

	kicks := 2 + rng.IntN(5) + density
	for i := 0; i < kicks; i++ {
		p.Kick[rng.IntN(parameter.StepsPerBar)] = true
	}

	snares := 1 + rng.IntN(5) + density
	for i := 0; i < snares; i++ {
		idx := 4
		if rng.IntN(2) == 1 {
			idx = 12
		}
		if rng.Float64() < 0.7 {
			idx = rng.IntN(parameter.StepsPerBar)
		}
		p.Snare[idx] = true
	}

	if !drive {
		for i := range p.Snare {
			if p.Snare[i] {
				p.Kick[i] = false
			}
		}
	}
}

// Hits returns the number of kick and snare steps
func (p *Pattern) Hits() (kicks, snares int) {
	for i := range p.Kick {
		if p.Kick[i] {
			kicks++
		}
		if p.Snare[i] {
			snares++
		}
	}
	return kicks, snares
}
