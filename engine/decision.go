package engine

import (
	"math"
	"math/rand/v2"

	"github.com/lixenwraith/driftgrid/audio"
	"github.com/lixenwraith/driftgrid/core"
	"github.com/lixenwraith/driftgrid/parameter"
)

// scale holds the pitch set in Hz
var scale = audio.ScaleFreqs(parameter.Scale[:])

// KickShape is the kick waveshaper amount for the current mode and chaos
func KickShape(mode core.BlendMode, chaos float64) float64 {
	base := parameter.KickSoft
	if mode == core.ModeDrive {
		base = parameter.KickDrive
	}
	return base + chaos*parameter.KickChaosDrive
}

// GateThreshold is the probability-mask level below which embellishments are skipped
func GateThreshold(chaos float64, measure int) float64 {
	return parameter.GateBase - chaos*parameter.GateChaos + math.Sin(float64(measure)*0.5)*parameter.GateSwell
}

// Decide emits the triggers for one step at time at
// Pattern hits and pads always sound; bass, hats and glitches are skipped on gated steps in deep mode
func Decide(rng *rand.Rand, st *State, pat *Pattern, step int, at float64, emit func(audio.Trigger)) {
	if st.GlobalVolume < parameter.VolumeFloor {
		return
	}

	step16 := step % parameter.StepsPerBar
	gated := st.Mode == core.ModeDeep && pat.Probability[step16] < GateThreshold(st.Chaos, st.MeasureCount)

	if pat.Kick[step16] {
		emit(audio.Trigger{Kind: core.VoiceKick, At: at, Shape: KickShape(st.Mode, st.Chaos)})
	}

	if pat.Snare[step16] {
		jitter := (rng.Float64()*2 - 1) * parameter.SnareJitter
		emit(audio.Trigger{Kind: core.VoiceSnare, At: at + jitter, Volume: parameter.SnareVolume})
	}

	if !gated {
		embellish(rng, st, step, step16, at, emit)
	}

	pads(rng, step, step16, at, emit)
}

// embellish covers bass, hats and glitches
func embellish(rng *rand.Rand, st *State, step, step16 int, at float64, emit func(audio.Trigger)) {
	// Never true while bars are 16 steps long; kept so longer bars pick it up
	if (step16 == 0 || step16 == 8) && step%4 != 0 {
		emit(audio.Trigger{
			Kind:      core.VoiceBass,
			At:        at,
			Freq:      scale[rng.IntN(4)],
			Intensity: (st.ModY+st.Chaos)*0.5 + 0.3,
		})
	}

	if step16%8 == 0 && rng.Float64() < parameter.EchoBassChance {
		emit(audio.Trigger{
			Kind:      core.VoiceBass,
			At:        at + parameter.EchoBassDelay,
			Freq:      scale[rng.IntN(5)+2] * 1.2,
			Intensity: (st.ModY+st.Chaos)*0.4 + 0.2,
		})
	}

	if rng.Float64() < parameter.BurstChance+st.ModX*parameter.BurstSpread {
		divs := [...]int{3, 5, 7}[rng.IntN(3)]
		dur := st.StepDuration()
		for i := 0; i < divs; i++ {
			fi := float64(i)
			emit(audio.Trigger{
				Kind:     core.VoiceHat,
				At:       at + fi*dur/float64(divs),
				Volume:   (math.Sin(fi) + 1) * 0.2,
				Pan:      math.Cos(fi*2+at) * 0.5,
				PitchMod: rng.Float64() * parameter.HatPitchSpread,
			})
		}
	} else if step16%4 == 0 && rng.Float64() < parameter.SoftHatChance {
		emit(audio.Trigger{Kind: core.VoiceHat, At: at, Volume: parameter.HatSoftVolume})
	}

	if rng.Float64() < parameter.GlitchChance || (st.Mode == core.ModeGlitch && rng.Float64() < parameter.GlitchModeChance) {
		emit(audio.Trigger{Kind: core.VoiceGlitch, At: at + rng.Float64()*parameter.GlitchSpread})
	}
}

// pads keep harmonic continuity regardless of the gate
func pads(rng *rand.Rand, step, step16 int, at float64, emit func(audio.Trigger)) {
	if step%16 == 0 && rng.Float64() < parameter.PadBarChance {
		emit(audio.Trigger{Kind: core.VoicePad, At: at, Freq: scale[rng.IntN(len(scale))]})
	}
	if step%8 == 0 && rng.Float64() < parameter.PadHalfChance {
		emit(audio.Trigger{Kind: core.VoicePad, At: at, Freq: scale[rng.IntN(6)+2] * 0.75})
	}
	if step16%4 == 0 && rng.Float64() < parameter.PadBeatChance {
		emit(audio.Trigger{Kind: core.VoicePad, At: at, Freq: scale[rng.IntN(4)+4] * 1.5})
	}
}
