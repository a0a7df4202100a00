package engine

import (
	"math"
	"math/rand/v2"

	"github.com/lixenwraith/driftgrid/parameter"
)

// BusControl is the parameter surface of the effects bus touched once per frame
type BusControl interface {
	SetFilter(freq, q float64)
	SetDelay(seconds, feedback float64)
	SetMasterTarget(v, tau float64)
}

// Smooth advances the presence envelope and tempo relaxation by one frame and
// re-derives bus parameters from modulation and chaos
// masterVolume scales the envelope before it reaches the bus; bus may be nil
func Smooth(rng *rand.Rand, st *State, bus BusControl, masterVolume float64) {
	st.GlobalVolume = clamp01(st.GlobalVolume + (st.TargetVolume-st.GlobalVolume)*parameter.VolumeFollow)

	if math.Abs(st.Tempo-st.BaseTempo) > parameter.TempoSettle {
		st.Tempo += (st.BaseTempo - st.Tempo) * parameter.TempoRelax
	}

	if bus == nil {
		return
	}

	bus.SetMasterTarget(st.GlobalVolume*masterVolume, parameter.MasterTimeConstant)

	freq := 400 + st.ModY*st.ModY*8000 + rng.Float64()*500*st.Chaos
	q := 1 + st.ModX*10 + st.Chaos*15
	bus.SetFilter(freq, q)

	delay := 3.0 / 16.0 * 60 / st.Tempo
	if st.ModX > 0.5 || st.Chaos > 0.5 {
		delay += rng.Float64() * 0.05
	}
	bus.SetDelay(delay, 0.5+st.Chaos*0.4)
}
