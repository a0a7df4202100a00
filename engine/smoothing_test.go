package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lixenwraith/driftgrid/core"
	"github.com/lixenwraith/driftgrid/parameter"
)

// recordingBus keeps the last values written per parameter
type recordingBus struct {
	freq, q         float64
	delay, feedback float64
	master, tau     float64
	writes          int
}

func (b *recordingBus) SetFilter(freq, q float64) {
	b.freq, b.q = freq, q
	b.writes++
}

func (b *recordingBus) SetDelay(seconds, feedback float64) {
	b.delay, b.feedback = seconds, feedback
}

func (b *recordingBus) SetMasterTarget(v, tau float64) {
	b.master, b.tau = v, tau
}

// TestSmoothVolumeConverges checks the envelope error shrinks every frame and volume stays in range
func TestSmoothVolumeConverges(t *testing.T) {
	rng := testRand(30)
	st := playingState(core.ModeDeep)
	st.GlobalVolume = 0
	st.SetPresence(true)

	prevErr := math.Abs(st.TargetVolume - st.GlobalVolume)
	for i := 0; i < 200; i++ {
		Smooth(rng, st, nil, 1)
		err := math.Abs(st.TargetVolume - st.GlobalVolume)
		assert.Less(t, err, prevErr)
		assert.GreaterOrEqual(t, st.GlobalVolume, 0.0)
		assert.LessOrEqual(t, st.GlobalVolume, 1.0)
		prevErr = err
	}
	assert.Less(t, prevErr, 0.01)

	st.SetPresence(false)
	for i := 0; i < 200; i++ {
		Smooth(rng, st, nil, 1)
		assert.GreaterOrEqual(t, st.GlobalVolume, 0.0)
	}
	assert.Less(t, st.GlobalVolume, 0.01)
}

func TestSmoothTempoRelaxes(t *testing.T) {
	rng := testRand(31)
	st := playingState(core.ModeDeep)
	st.Tempo = 190

	for i := 0; i < 200; i++ {
		Smooth(rng, st, nil, 1)
	}
	assert.InDelta(t, parameter.DefaultBPM, st.Tempo, 1.0)

	// Inside the settle band tempo is left alone
	st.Tempo = parameter.DefaultBPM + 0.5
	Smooth(rng, st, nil, 1)
	assert.Equal(t, parameter.DefaultBPM+0.5, st.Tempo)
}

func TestSmoothBusParameters(t *testing.T) {
	rng := testRand(32)
	st := playingState(core.ModeDeep)
	st.GlobalVolume = 0.5
	st.TargetVolume = 0.5
	st.ModY = 1
	bus := &recordingBus{}

	Smooth(rng, st, bus, 0.8)
	assert.InDelta(t, 8400, bus.freq, 1e-9)
	assert.InDelta(t, 1, bus.q, 1e-9)
	assert.InDelta(t, 3.0/16.0*60/parameter.DefaultBPM, bus.delay, 1e-12)
	assert.InDelta(t, 0.5, bus.feedback, 1e-12)
	assert.InDelta(t, 0.4, bus.master, 1e-12)
	assert.Equal(t, parameter.MasterTimeConstant, bus.tau)

	st.Chaos = 1
	st.ModX = 1
	Smooth(rng, st, bus, 1)
	assert.GreaterOrEqual(t, bus.freq, 8400.0)
	assert.LessOrEqual(t, bus.freq, 8900.0)
	assert.InDelta(t, 26, bus.q, 1e-9)
	assert.InDelta(t, 0.9, bus.feedback, 1e-12)
	base := 3.0 / 16.0 * 60 / st.Tempo
	assert.GreaterOrEqual(t, bus.delay, base)
	assert.LessOrEqual(t, bus.delay, base+0.05)
}
