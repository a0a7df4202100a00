package audio

import (
	"log"
	"math"
	"math/rand/v2"
	"sync"
	"sync/atomic"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/ftag"
	"github.com/gopxl/beep"

	"github.com/lixenwraith/driftgrid/core"
	"github.com/lixenwraith/driftgrid/parameter"
)

// Graph is the effects bus: voices mix into the bus, which runs through
// lowpass -> waveshaper and splits to dry, reverb and feedback delay before the master gain
// Topology is fixed at construction; only parameters move afterwards
// Graph implements beep.Streamer and Clock: frames it renders advance its clock
type Graph struct {
	mu     sync.Mutex
	rate   float64
	clock  *SampleClock
	closed bool

	bus      *beep.Mixer
	reverbIn *beep.Mixer
	delayIn  *beep.Mixer
	busBuf   [][2]float64
	revBuf   [][2]float64
	dlyBuf   [][2]float64
	mono     []float64

	filter     [2]*Biquad
	filterFreq *Smoother
	filterQ    *Smoother
	shaper     []float64

	reverb      *Convolver
	reverbLevel float64

	delay      [2]*DelayLine
	delayTime  *Smoother
	feedback   float64
	delayLevel float64

	master   *Smoother
	analyser *Analyser

	drone      *beep.Ctrl
	droneSrc   *drone
	droneLevel float64

	voices *voiceFactory
	curves *curveCache

	triggered atomic.Int64
	late      atomic.Int64
	dropped   atomic.Int64
}

// NewGraph builds the bus at cfg's sample rate
// rng seeds the reverb impulse and all per-voice randomness
func NewGraph(cfg *Config, rng *rand.Rand) *Graph {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	rate := float64(cfg.SampleRate)
	block := parameter.RenderBlock

	ir := ImpulseResponse(rng, cfg.SampleRate, parameter.ReverbDuration, parameter.ReverbDecay)
	NormalizeImpulse(ir, cfg.SampleRate)

	curves := newCurveCache()
	curves.preload(parameter.BusDistortion, parameter.KickSoft, parameter.KickDrive)

	g := &Graph{
		rate:     rate,
		clock:    NewSampleClock(cfg.SampleRate),
		bus:      &beep.Mixer{},
		reverbIn: &beep.Mixer{},
		delayIn:  &beep.Mixer{},
		busBuf:   make([][2]float64, block),
		revBuf:   make([][2]float64, block),
		dlyBuf:   make([][2]float64, block),
		mono:     make([]float64, block),

		filter: [2]*Biquad{
			NewBiquad(LowPass, rate, parameter.FilterInitFreq, parameter.FilterInitQ),
			NewBiquad(LowPass, rate, parameter.FilterInitFreq, parameter.FilterInitQ),
		},
		filterFreq: NewSmoother(rate, parameter.FilterInitFreq),
		filterQ:    NewSmoother(rate, parameter.FilterInitQ),
		shaper:     curves.get(parameter.BusDistortion),

		reverb:      NewConvolver(ir[0], parameter.ReverbPartition),
		reverbLevel: cfg.ReverbLevel,

		delay: [2]*DelayLine{
			NewDelayLine(rate, parameter.DelayMaxSeconds),
			NewDelayLine(rate, parameter.DelayMaxSeconds),
		},
		delayTime:  NewSmoother(rate, parameter.DelayInitTime),
		feedback:   parameter.DelayInitFeedback,
		delayLevel: cfg.DelayLevel,

		master:     NewSmoother(rate, 0),
		analyser:   NewAnalyser(),
		droneLevel: cfg.DroneLevel,

		voices: newVoiceFactory(rate, rng, curves),
		curves: curves,
	}
	return g
}

// Now returns the graph's audio clock in seconds
func (g *Graph) Now() float64 {
	return g.clock.Now()
}

// Clock exposes the frame counter
func (g *Graph) Clock() *SampleClock {
	return g.clock
}

// SampleRate returns the rendering rate
func (g *Graph) SampleRate() beep.SampleRate {
	return beep.SampleRate(int(g.rate))
}

// Analyser returns the master tap
func (g *Graph) Analyser() *Analyser {
	return g.analyser
}

// Trigger places a voice at tr.At on the graph timeline
// Triggers already in the past start at the next rendered frame
func (g *Graph) Trigger(tr Trigger) core.Result {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		err := fault.Wrap(ErrGraphClosed, ftag.With(core.KindUnavailable))
		// First drop only; the scheduler may keep ticking into a closed graph
		if g.dropped.Add(1) == 1 {
			log.Printf("[audio] %s dropped: %v", tr.Kind, err)
		}
		return core.ResultOf(err)
	}

	s, sends := g.voices.build(tr)
	if s == nil {
		return core.ResultIgnored
	}

	offset := int(math.Round(tr.At*g.rate)) - int(g.clock.Frames())
	if offset < 0 {
		g.late.Add(1)
		offset = 0
	}
	if offset > 0 {
		s = beep.Seq(beep.Silence(offset), s)
	}

	g.route(s, sends)
	g.triggered.Add(1)
	return core.ResultOK
}

// route adds s to each selected input, duplicating the stream when it feeds more than one
func (g *Graph) route(s beep.Streamer, sends send) {
	var targets []*beep.Mixer
	if sends&sendBus != 0 {
		targets = append(targets, g.bus)
	}
	if sends&sendReverb != 0 {
		targets = append(targets, g.reverbIn)
	}
	if sends&sendDelay != 0 {
		targets = append(targets, g.delayIn)
	}

	for i, m := range targets {
		if i == len(targets)-1 {
			m.Add(s)
			break
		}
		var tap beep.Streamer
		tap, s = beep.Dup(s)
		m.Add(tap)
	}
}

// SetFilter moves the bus lowpass; cutoff glides, Q jumps
func (g *Graph) SetFilter(freq, q float64) {
	g.mu.Lock()
	g.filterFreq.SetTarget(freq, parameter.FilterTimeConstant)
	g.filterQ.SetImmediate(q)
	g.mu.Unlock()
}

// SetDelay glides the delay time and sets feedback
func (g *Graph) SetDelay(seconds, feedback float64) {
	g.mu.Lock()
	g.delayTime.SetTarget(math.Min(seconds, parameter.DelayMaxSeconds), parameter.FilterTimeConstant)
	g.feedback = math.Max(0, math.Min(0.99, feedback))
	g.mu.Unlock()
}

// SetMasterTarget glides the master gain toward v with time constant tau
func (g *Graph) SetMasterTarget(v, tau float64) {
	g.mu.Lock()
	g.master.SetTarget(v, tau)
	g.mu.Unlock()
}

// SetMasterImmediate jumps the master gain
func (g *Graph) SetMasterImmediate(v float64) {
	g.mu.Lock()
	g.master.SetImmediate(v)
	g.mu.Unlock()
}

// MasterGain returns the current master gain
func (g *Graph) MasterGain() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.master.Value()
}

// StartDrone creates the drone if none is sounding, returns false if one already is
func (g *Graph) StartDrone() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed || g.drone != nil {
		return false
	}

	g.droneSrc = newDrone(g.rate, g.droneLevel)
	g.drone = &beep.Ctrl{Streamer: g.droneSrc}
	g.route(g.drone, sendBus|sendReverb)
	log.Printf("[audio] drone started")
	return true
}

// SetDronePaused holds the drone silent without tearing it down
func (g *Graph) SetDronePaused(paused bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.drone != nil {
		g.drone.Paused = paused
	}
}

// StopDrone fades the drone out; safe to call when none is sounding
func (g *Graph) StopDrone() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.drone == nil {
		return
	}
	g.drone.Paused = false
	g.droneSrc.stop()
	g.drone = nil
	g.droneSrc = nil
	log.Printf("[audio] drone stopping")
}

// DroneActive reports whether a drone is sounding or held
func (g *Graph) DroneActive() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.drone != nil
}

// DronePaused reports whether the drone is held silent
func (g *Graph) DronePaused() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.drone != nil && g.drone.Paused
}

// Voices returns the number of streams mixed into the bus
func (g *Graph) Voices() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.bus.Len()
}

// Stats returns triggered, late and dropped counts
func (g *Graph) Stats() (triggered, late, dropped int64) {
	return g.triggered.Load(), g.late.Load(), g.dropped.Load()
}

// Close tears the graph down; later triggers report ResultUnavailable
func (g *Graph) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return
	}
	g.closed = true
	g.bus.Clear()
	g.reverbIn.Clear()
	g.delayIn.Clear()
	g.drone = nil
	g.droneSrc = nil
}

// Closed reports whether Close has run
func (g *Graph) Closed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.closed
}

// Stream renders the bus into samples in blocks of parameter.RenderBlock frames
func (g *Graph) Stream(samples [][2]float64) (n int, ok bool) {
	for len(samples) > 0 {
		chunk := min(len(samples), parameter.RenderBlock)
		if !g.render(samples[:chunk]) {
			return n, n > 0
		}
		samples = samples[chunk:]
		n += chunk
	}
	return n, true
}

func (g *Graph) Err() error {
	return nil
}

// render produces one block under the graph lock, returns false once closed
func (g *Graph) render(out [][2]float64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return false
	}

	n := len(out)
	bus, rev, dly := g.busBuf[:n], g.revBuf[:n], g.dlyBuf[:n]
	clear(bus)
	clear(rev)
	clear(dly)
	// Mixers may report drained inputs; unfilled frames stay silent
	g.bus.Stream(bus)
	g.reverbIn.Stream(rev)
	g.delayIn.Stream(dly)

	frame := g.clock.Frames()
	for i := 0; i < n; i++ {
		freq := g.filterFreq.Next()
		q := g.filterQ.Next()
		if (frame+int64(i))%parameter.FilterUpdateEvery == 0 {
			g.filter[0].Set(freq, q)
			g.filter[1].Set(freq, q)
		}

		l := Shape(g.shaper, g.filter[0].Process(bus[i][0]))
		r := Shape(g.shaper, g.filter[1].Process(bus[i][1]))

		wet := g.reverb.Process((l+r+rev[i][0]+rev[i][1])*0.5) * g.reverbLevel

		dt := g.delayTime.Next()
		dl := g.delay[0].Read(dt)
		dr := g.delay[1].Read(dt)
		g.delay[0].Write(l + dly[i][0] + dl*g.feedback)
		g.delay[1].Write(r + dly[i][1] + dr*g.feedback)

		m := g.master.Next()
		outL := (l + wet + dl*g.delayLevel) * m
		outR := (r + wet + dr*g.delayLevel) * m
		out[i][0] = outL
		out[i][1] = outR
		g.mono[i] = (outL + outR) * 0.5
	}

	g.analyser.Push(g.mono[:n])
	g.clock.advance(n)
	return true
}
