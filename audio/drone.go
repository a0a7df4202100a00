package audio

import (
	"math"

	"github.com/lixenwraith/driftgrid/parameter"
)

// drone is the continuous low saw under everything
// Streams until stop is called, then fades out and ends
type drone struct {
	osc   *oscillator
	bp    *Biquad
	rate  float64
	level float64
	pos   int

	fadeLen  int
	fadeLeft int // -1 while sounding
}

func newDrone(rate, level float64) *drone {
	return &drone{
		osc:      newOscillator(WaveSaw, rate),
		bp:       NewBiquad(BandPass, rate, parameter.DroneFilterFreq, parameter.DroneFilterQ),
		rate:     rate,
		level:    level,
		fadeLen:  max(1, int(parameter.DroneFade*rate)),
		fadeLeft: -1,
	}
}

// stop starts the fade; repeated calls keep the first fade
func (d *drone) stop() {
	if d.fadeLeft < 0 {
		d.fadeLeft = d.fadeLen
	}
}

func (d *drone) Stream(samples [][2]float64) (n int, ok bool) {
	if d.fadeLeft == 0 {
		return 0, false
	}
	for i := range samples {
		if d.fadeLeft == 0 {
			return i, true
		}
		if d.pos%parameter.FilterUpdateEvery == 0 {
			t := float64(d.pos) / d.rate
			center := parameter.DroneFilterFreq + parameter.DroneLFODepth*math.Sin(2*math.Pi*parameter.DroneLFORate*t)
			d.bp.Set(center, parameter.DroneFilterQ)
		}
		d.pos++

		v := d.bp.Process(d.osc.next(parameter.DroneFreq)) * d.level
		if d.fadeLeft > 0 {
			v *= float64(d.fadeLeft) / float64(d.fadeLen)
			d.fadeLeft--
		}
		samples[i][0] = v
		samples[i][1] = v
	}
	return len(samples), true
}

func (d *drone) Err() error { return nil }
