package audio

import (
	"math"
	"math/rand/v2"

	"github.com/lixenwraith/driftgrid/parameter"
)

// DistortionCurve builds a soft-clipping transfer table
// curve[i] = (3+k)·x·20°/(π + k·|x|) with x spanning [-1, 1)
func DistortionCurve(amount float64) []float64 {
	n := parameter.CurveSamples
	curve := make([]float64, n)
	deg := math.Pi / 180
	for i := range curve {
		x := float64(i)*2/float64(n) - 1
		curve[i] = (3 + amount) * x * 20 * deg / (math.Pi + amount*math.Abs(x))
	}
	return curve
}

// Shape maps x through a transfer curve with linear interpolation
// Inputs outside [-1, 1] saturate at the curve ends
func Shape(curve []float64, x float64) float64 {
	n := len(curve)
	if n == 0 {
		return x
	}
	if x <= -1 {
		return curve[0]
	}
	if x >= 1 {
		return curve[n-1]
	}
	pos := (x + 1) * 0.5 * float64(n-1)
	i := int(pos)
	if i >= n-1 {
		return curve[n-1]
	}
	frac := pos - float64(i)
	return curve[i] + (curve[i+1]-curve[i])*frac
}

// ImpulseResponse synthesizes a stereo reverb tail of decaying noise
// Noise is step-held across at most parameter.ImpulseSegments segments; both channels carry the same samples
func ImpulseResponse(rng *rand.Rand, sampleRate int, duration, decay float64) [2][]float64 {
	length := int(float64(sampleRate) * duration)
	left := make([]float64, length)
	right := make([]float64, length)

	step := max(1, length/parameter.ImpulseSegments)
	for i := 0; i < length; i += step {
		n := float64(i) / float64(length)
		noise := (rng.Float64()*2 - 1) * math.Pow(1-n, decay)
		for j := 0; j < step && i+j < length; j++ {
			left[i+j] = noise
			right[i+j] = noise
		}
	}
	return [2][]float64{left, right}
}

// NormalizeImpulse scales an impulse to a calibrated RMS so tail length does not change loudness
// Uses the same calibration browsers apply to convolution reverbs: -58dB at 44.1kHz
func NormalizeImpulse(ir [2][]float64, sampleRate int) float64 {
	const (
		gainCalibration = 0.00125
		calibrationRate = 44100.0
		minPower        = 0.000125
	)

	var sum float64
	var count int
	for _, ch := range ir {
		for _, v := range ch {
			sum += v * v
		}
		count += len(ch)
	}
	if count == 0 {
		return 1
	}

	power := math.Max(math.Sqrt(sum/float64(count)), minPower)
	scale := gainCalibration / power * calibrationRate / float64(sampleRate)
	for _, ch := range ir {
		for i := range ch {
			ch[i] *= scale
		}
	}
	return scale
}
