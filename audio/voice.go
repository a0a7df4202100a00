package audio

import (
	"math"
	"math/rand/v2"

	"github.com/gopxl/beep"

	"github.com/lixenwraith/driftgrid/core"
	"github.com/lixenwraith/driftgrid/parameter"
)

// send selects which bus inputs a voice feeds
type send uint8

const (
	sendBus send = 1 << iota
	sendReverb
	sendDelay
)

// voiceFactory builds one-shot voice streamers
// All randomness is drawn at build time so streams never touch the rng from the audio goroutine
type voiceFactory struct {
	rate   float64
	rng    *rand.Rand
	curves *curveCache
}

func newVoiceFactory(rate float64, rng *rand.Rand, curves *curveCache) *voiceFactory {
	return &voiceFactory{rate: rate, rng: rng, curves: curves}
}

// build returns the voice for tr and its routing, or nil for unknown kinds
func (f *voiceFactory) build(tr Trigger) (beep.Streamer, send) {
	switch tr.Kind {
	case core.VoiceKick:
		return f.kick(tr.Shape), sendBus
	case core.VoiceSnare:
		return f.snare(tr.Volume), sendBus | sendReverb
	case core.VoiceHat:
		return f.hat(tr.Volume, tr.Pan, tr.PitchMod), sendBus
	case core.VoiceBass:
		return f.bass(tr.Freq, tr.Intensity), sendBus
	case core.VoicePad:
		return f.pad(tr.Freq), sendBus | sendReverb
	case core.VoiceGlitch:
		return f.glitch(), sendBus | sendDelay
	default:
		return nil, 0
	}
}

// kick is a sine swept 120->40Hz, exponential decay, then waveshaped
func (f *voiceFactory) kick(shape float64) beep.Streamer {
	curve := f.curves.get(shape)
	osc := newOscillator(WaveSine, f.rate)

	return newOneShot(f.rate, parameter.KickLength, func(t float64) float64 {
		freq := expRamp(parameter.KickStartFreq, parameter.KickEndFreq, parameter.KickSweep, t)
		gain := expRamp(parameter.KickGain, parameter.KickGainEnd, parameter.KickDecay, t)
		return Shape(curve, osc.next(freq)*gain)
	})
}

// snare mixes highpassed noise with a falling triangle
func (f *voiceFactory) snare(vol float64) beep.Streamer {
	noise := make([]float64, int(parameter.SnareNoiseLen*f.rate))
	for i := range noise {
		noise[i] = f.rng.Float64()*2 - 1
	}
	hp := NewBiquad(HighPass, f.rate, parameter.SnareHighpass, 1)
	tri := newOscillator(WaveTriangle, f.rate)

	s := newOneShot(f.rate, parameter.SnareToneStop, func(t float64) float64 {
		var x float64
		if t < parameter.SnareNoiseStop {
			var n float64
			if i := int(t * f.rate); i < len(noise) {
				n = noise[i]
			}
			x += hp.Process(n) * parameter.SnareNoiseLevel
		}
		freq := linRamp(parameter.SnareToneStart, parameter.SnareToneEnd, parameter.SnareToneSweep, t)
		x += tri.next(freq) * parameter.SnareToneLevel
		return x * expRamp(1, parameter.SnareGainEnd, parameter.SnareDecay, t)
	})
	return newVolume(s, vol)
}

// hat is a bandpassed square with a very short decay
func (f *voiceFactory) hat(vol, pan, pitchMod float64) beep.Streamer {
	freq := parameter.HatBaseFreq + pitchMod + f.rng.Float64()*parameter.HatRandFreq
	osc := newOscillator(WaveSquare, f.rate)
	bp := NewBiquad(BandPass, f.rate, parameter.HatBandFreq, parameter.HatBandQ)
	s := newOneShot(f.rate, parameter.HatLength, func(t float64) float64 {
		return bp.Process(osc.next(freq)) * expRamp(parameter.HatLevel, parameter.HatGainEnd, parameter.HatDecay, t)
	})
	return panned(newVolume(s, vol), pan)
}

// bass is two-operator FM; modulation index and level both fall exponentially
func (f *voiceFactory) bass(freq, intensity float64) beep.Streamer {
	carrier := newOscillator(WaveSine, f.rate)
	mod := newOscillator(WaveSine, f.rate)
	curve := f.curves.get(parameter.BassShapeBase + intensity*parameter.BassShapeScale)
	index := parameter.BassIndexBase + intensity*parameter.BassIndexScale

	return newOneShot(f.rate, parameter.BassLength, func(t float64) float64 {
		depth := expRamp(index, parameter.BassIndexEnd, parameter.BassIndexDecay, t)
		m := mod.next(freq * parameter.BassModRatio)
		c := carrier.next(freq + m*depth)
		return Shape(curve, c*expRamp(parameter.BassGain, parameter.BassGainEnd, parameter.BassDecay, t))
	})
}

// pad is a slow saw swell through an opening lowpass with a wobbling cutoff
func (f *voiceFactory) pad(freq float64) beep.Streamer {
	osc := newOscillator(WaveSaw, f.rate)
	lp := NewBiquad(LowPass, f.rate, parameter.PadFilterStart, parameter.PadFilterQ)
	pan := (f.rng.Float64()*2 - 1) * parameter.PadPanSpread
	var n int

	s := newOneShot(f.rate, parameter.PadLength, func(t float64) float64 {
		if n%parameter.FilterUpdateEvery == 0 {
			cutoff := expRamp(parameter.PadFilterStart, parameter.PadFilterEnd, parameter.PadFilterSweep, t) +
				parameter.PadLFODepth*math.Sin(2*math.Pi*parameter.PadLFORate*t)
			lp.Set(cutoff, parameter.PadFilterQ)
		}
		n++

		var gain float64
		if t < parameter.PadAttack {
			gain = linRamp(0, parameter.PadPeak, parameter.PadAttack, t)
		} else {
			gain = linRamp(parameter.PadPeak, 0, parameter.PadLength-parameter.PadAttack, t-parameter.PadAttack)
		}
		return lp.Process(osc.next(freq)) * gain
	})
	return panned(s, pan)
}

// glitch replays a short burst of binary noise at a random rate
func (f *voiceFactory) glitch() beep.Streamer {
	buf := make([]float64, int(parameter.GlitchBufferLen*f.rate))
	for i := range buf {
		if f.rng.Float64() > 0.5 {
			buf[i] = parameter.GlitchAmplitude
		} else {
			buf[i] = -parameter.GlitchAmplitude
		}
	}
	speed := parameter.GlitchRateMin + f.rng.Float64()*parameter.GlitchRateSpan
	pan := f.rng.Float64()*2 - 1

	s := newOneShot(f.rate, parameter.GlitchLength, func(t float64) float64 {
		i := int(t * f.rate * speed)
		if i >= len(buf) {
			return 0
		}
		return buf[i] * expRamp(parameter.GlitchGain, parameter.GlitchGainEnd, parameter.GlitchDecay, t)
	})
	return panned(s, pan)
}
