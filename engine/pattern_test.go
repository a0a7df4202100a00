package engine

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lixenwraith/driftgrid/core"
	"github.com/lixenwraith/driftgrid/parameter"
)

func testRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed+1))
}

// TestPatternRegenerateInvariants checks hit counts and masks across many draws in every mode
func TestPatternRegenerateInvariants(t *testing.T) {
	rng := testRand(1)
	p := &Pattern{}

	for i := 0; i < 600; i++ {
		mode := core.BlendMode(i % int(core.BlendModeCount))
		p.Regenerate(rng, mode)
		kicks, snares := p.Hits()

		maxKicks, maxSnares := 6, 5
		if mode == core.ModeDrive {
			maxKicks, maxSnares = 8, 7
			assert.GreaterOrEqual(t, kicks, 1)
		}
		assert.LessOrEqual(t, kicks, maxKicks)
		assert.GreaterOrEqual(t, snares, 1)
		assert.LessOrEqual(t, snares, maxSnares)

		for s := 0; s < parameter.StepsPerBar; s++ {
			assert.GreaterOrEqual(t, p.Probability[s], 0.0)
			assert.Less(t, p.Probability[s], 1.0)
			assert.LessOrEqual(t, p.MicroTiming[s], parameter.MicroTimingRange)
			assert.GreaterOrEqual(t, p.MicroTiming[s], -parameter.MicroTimingRange)
			if mode != core.ModeDrive {
				assert.False(t, p.Kick[s] && p.Snare[s], "kick under snare at step %d", s)
			}
		}
	}
}

// TestPatternSnareLeansOnBackbeat verifies steps 4 and 12 carry snares more often than offbeats
func TestPatternSnareLeansOnBackbeat(t *testing.T) {
	rng := testRand(2)
	p := &Pattern{}
	var counts [parameter.StepsPerBar]int

	for i := 0; i < 2000; i++ {
		p.Regenerate(rng, core.ModeDeep)
		for s, hit := range p.Snare {
			if hit {
				counts[s]++
			}
		}
	}

	assert.Greater(t, counts[4], counts[7])
	assert.Greater(t, counts[12], counts[7])
}

func TestPatternRegenerateResets(t *testing.T) {
	rng := testRand(3)
	p := NewPattern(rng, core.ModeDrive)
	before := p.Probability

	p.Regenerate(rng, core.ModeDeep)
	assert.NotEqual(t, before, p.Probability)
}
