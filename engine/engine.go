package engine

import (
	"log"
	"math"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/driftgrid/audio"
	"github.com/lixenwraith/driftgrid/core"
	"github.com/lixenwraith/driftgrid/parameter"
	"github.com/lixenwraith/driftgrid/status"
)

// Engine owns the state, scheduler, effects graph and output
// All mutation is serialised through one mutex so scheduler ticks, frame ticks
// and external writers share a single timeline
type Engine struct {
	mu   sync.Mutex
	life sync.Mutex // orders Init, Stop and Close so driver state follows Playing

	cfg   *audio.Config
	st    *State
	pat   *Pattern
	rng   *rand.Rand
	sched *Scheduler

	graph *audio.Graph
	out   audio.Output
	clock audio.Clock // overrides the graph clock when set

	driver       *Driver
	autoDrive    bool
	dronePending bool

	hook func(audio.Trigger, core.Result)
	reg  *status.Registry
	bins atomic.Pointer[[]uint8]

	// Cached metric pointers
	statChaos    *status.AtomicFloat
	statTempo    *status.AtomicFloat
	statModX     *status.AtomicFloat
	statModY     *status.AtomicFloat
	statVolume   *status.AtomicFloat
	statPlaying  *atomic.Bool
	statSetup    *atomic.Bool
	statMode     *status.AtomicString
	statStep     *atomic.Int64
	statMeasure  *atomic.Int64
	statSteps    *atomic.Int64
	statTriggers *atomic.Int64
	statResyncs  *atomic.Int64
	statBackend  *status.AtomicString
}

// Option configures an Engine at construction
type Option func(*Engine)

// WithConfig replaces the default audio configuration
func WithConfig(cfg *audio.Config) Option {
	return func(e *Engine) {
		if cfg != nil {
			e.cfg = cfg
		}
	}
}

// WithOutput supplies the output instead of selecting one from config
func WithOutput(out audio.Output) Option {
	return func(e *Engine) { e.out = out }
}

// WithClock schedules against clock instead of the graph's rendered frames
func WithClock(clock audio.Clock) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithRand injects the random source
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

// WithAutoDrive controls whether Init starts the internal driver
// When off, the caller drives Tick and FrameTick
func WithAutoDrive(on bool) Option {
	return func(e *Engine) { e.autoDrive = on }
}

// WithTriggerHook observes every scheduled trigger and its outcome
func WithTriggerHook(fn func(audio.Trigger, core.Result)) Option {
	return func(e *Engine) { e.hook = fn }
}

// WithRegistry publishes metrics into reg
func WithRegistry(reg *status.Registry) Option {
	return func(e *Engine) { e.reg = reg }
}

// New creates a stopped engine; nothing touches the platform until Init
func New(opts ...Option) *Engine {
	e := &Engine{
		cfg:       audio.DefaultConfig(),
		autoDrive: true,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.rng == nil {
		seed := uint64(time.Now().UnixNano())
		e.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
	if e.reg == nil {
		e.reg = status.NewRegistry()
	}

	e.st = NewState(e.cfg.BaseTempo)
	e.pat = NewPattern(e.rng, e.st.Mode)
	e.sched = NewScheduler(e.st, e.pat, e.clock, nil, e.rng)
	e.sched.onTrigger = e.hook
	e.driver = NewDriver(func() { e.Tick() }, e.FrameTick, parameter.LookaheadInterval, parameter.FrameInterval)

	e.statChaos = e.reg.Floats.Get("engine.chaos")
	e.statTempo = e.reg.Floats.Get("engine.tempo")
	e.statModX = e.reg.Floats.Get("engine.mod_x")
	e.statModY = e.reg.Floats.Get("engine.mod_y")
	e.statVolume = e.reg.Floats.Get("engine.volume")
	e.statPlaying = e.reg.Bools.Get("engine.playing")
	e.statSetup = e.reg.Bools.Get("engine.setup")
	e.statMode = e.reg.Strings.Get("engine.mode")
	e.statStep = e.reg.Ints.Get("sched.step")
	e.statMeasure = e.reg.Ints.Get("sched.measure")
	e.statSteps = e.reg.Ints.Get("sched.steps")
	e.statTriggers = e.reg.Ints.Get("sched.triggers")
	e.statResyncs = e.reg.Ints.Get("sched.resyncs")
	e.statBackend = e.reg.Strings.Get("audio.backend")
	e.statBackend.Store("none")
	e.publish()

	return e
}

// Init sets up on first call and resumes on later ones
// Returns ResultUnavailable if no output could start; the engine stays stopped and Init may be retried
// A suspended output does not fail Init: the drone waits until the output reports ready
func (e *Engine) Init() core.Result {
	e.life.Lock()
	defer e.life.Unlock()

	e.mu.Lock()
	res := e.initLocked()
	start := res.OK() && e.autoDrive
	e.mu.Unlock()

	if start {
		e.driver.Start()
	}
	return res
}

func (e *Engine) initLocked() core.Result {
	if !e.st.Setup {
		graph := audio.NewGraph(e.cfg, rand.New(rand.NewPCG(e.rng.Uint64(), e.rng.Uint64())))
		out := e.out
		if out == nil {
			out = audio.NewOutput(e.cfg)
		}
		if err := out.Start(graph); err != nil {
			graph.Close()
			log.Printf("[engine] init failed: %v", err)
			return core.ResultOf(err)
		}

		e.graph = graph
		e.out = out
		if e.clock == nil {
			e.sched.SetClock(graph)
		}
		e.sched.SetSink(graph)
		e.st.Setup = true
		e.statBackend.Store(out.Name())
		log.Printf("[engine] setup complete, output %s", out.Name())
	} else if err := e.out.Resume(); err != nil {
		log.Printf("[engine] resume: %v", err)
	}

	if e.graph.StartDrone() && !e.outputReady() {
		e.graph.SetDronePaused(true)
		e.dronePending = true
		log.Printf("[engine] output not ready, drone deferred")
	}

	e.st.Playing = true
	e.st.GlobalVolume = parameter.InitVolume
	e.st.TargetVolume = parameter.InitVolume
	e.graph.SetMasterImmediate(parameter.InitVolume * e.cfg.MasterVolume)

	e.st.NextNoteTime = math.Max(e.st.NextNoteTime, e.now())
	e.publish()
	return core.ResultOK
}

// Stop silences the engine and halts the driver; safe to call repeatedly
// The graph and output stay allocated so a later Init resumes
func (e *Engine) Stop() {
	e.life.Lock()
	defer e.life.Unlock()
	e.stop()
}

func (e *Engine) stop() {
	e.mu.Lock()
	if e.st.Playing {
		e.st.Playing = false
		e.st.TargetVolume = 0
		e.st.GlobalVolume = 0
		if e.graph != nil {
			e.graph.SetMasterTarget(0, parameter.StopFadeConstant)
			e.graph.StopDrone()
		}
		e.dronePending = false
		e.publish()
		log.Printf("[engine] stopped")
	}
	e.mu.Unlock()

	// Driver callbacks take e.mu
	e.driver.Stop()
}

// Close stops and releases the output and graph
func (e *Engine) Close() {
	e.life.Lock()
	defer e.life.Unlock()
	e.stop()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.out != nil {
		e.out.Stop()
	}
	if e.graph != nil {
		e.graph.Close()
		e.graph = nil
	}
	e.st.Setup = false
	e.publish()
}

// Tick runs one scheduler pass, returns the number of steps scheduled
func (e *Engine) Tick() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.st.Playing || e.graph == nil {
		return 0
	}
	n := e.sched.Tick()
	e.publish()
	return n
}

// FrameTick runs one smoothing frame
func (e *Engine) FrameTick() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.st.Playing {
		return
	}

	var bus BusControl
	if e.graph != nil {
		bus = e.graph
	}
	Smooth(e.rng, e.st, bus, e.cfg.MasterVolume)

	if e.dronePending && e.outputReady() {
		e.graph.SetDronePaused(false)
		e.dronePending = false
		log.Printf("[engine] output ready, drone released")
	}

	if e.graph != nil {
		bins := e.graph.Analyser().Bins()
		e.bins.Store(&bins)
	}
	e.publish()
}

// SetPresence moves the volume target; applies before Init too
func (e *Engine) SetPresence(present bool) {
	e.mu.Lock()
	e.st.SetPresence(present)
	e.mu.Unlock()
}

// SetChaos folds level into the smoothed chaos value
func (e *Engine) SetChaos(level float64) {
	e.mu.Lock()
	e.st.SetChaos(level)
	e.statChaos.Set(e.st.Chaos)
	e.mu.Unlock()
}

// UpdateSpatialParams maps pointer or hand positions to modulation
func (e *Engine) UpdateSpatialParams(leftY, rightY, balance float64) {
	e.mu.Lock()
	e.st.UpdateSpatial(leftY, rightY, balance)
	e.statModX.Set(e.st.ModX)
	e.statModY.Set(e.st.ModY)
	e.mu.Unlock()
}

// TriggerInteraction fires an alternating-pan burst of hats and glitches at shrinking intervals
// and detunes tempo by a quarter either way; the smoothing frame relaxes it back
func (e *Engine) TriggerInteraction() core.Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.graph == nil {
		return core.ResultUnavailable
	}

	t := e.now()
	reps := parameter.BurstMinReps + e.rng.IntN(parameter.BurstRepSpan)
	interval := parameter.BurstMinInterval + e.rng.Float64()*parameter.BurstIntervalSpan
	panStart := e.rng.Float64()*2 - 1

	for i := 0; i < reps; i++ {
		pan := panStart
		if i%2 == 1 {
			pan = -panStart
		}
		if e.rng.Float64() < parameter.BurstGlitchChance {
			e.sched.emit(audio.Trigger{Kind: core.VoiceGlitch, At: t})
		} else {
			e.sched.emit(audio.Trigger{
				Kind:     core.VoiceHat,
				At:       t,
				Volume:   0.5,
				Pan:      pan,
				PitchMod: float64(reps-i) * parameter.BurstPitchStep,
			})
		}
		t += interval
		interval *= parameter.BurstShrink
	}

	if e.rng.IntN(2) == 0 {
		e.st.Tempo = e.st.BaseTempo * 0.75
	} else {
		e.st.Tempo = e.st.BaseTempo * 1.25
	}
	e.publish()
	return core.ResultOK
}

// TriggerModeSwitch cycles deep -> glitch -> drive and cues the change audibly
func (e *Engine) TriggerModeSwitch() core.Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.graph == nil {
		return core.ResultUnavailable
	}
	e.sched.SwitchMode(e.now())
	e.publish()
	return core.ResultOK
}

// Snapshot is the renderer read set
type Snapshot struct {
	Chaos   float64
	Tempo   float64
	ModX    float64
	ModY    float64
	Volume  float64
	Playing bool
	Setup   bool
	Mode    core.BlendMode
	Step    int
	Measure int
	Bins    []uint8 // analyser magnitudes, nil before the first frame
}

// Snapshot reads published values without taking the engine lock
func (e *Engine) Snapshot() Snapshot {
	s := Snapshot{
		Chaos:   e.statChaos.Get(),
		Tempo:   e.statTempo.Get(),
		ModX:    e.statModX.Get(),
		ModY:    e.statModY.Get(),
		Volume:  e.statVolume.Get(),
		Playing: e.statPlaying.Load(),
		Setup:   e.statSetup.Load(),
		Mode:    core.ParseBlendMode(e.statMode.Load()),
		Step:    int(e.statStep.Load()),
		Measure: int(e.statMeasure.Load()),
	}
	if bins := e.bins.Load(); bins != nil {
		s.Bins = *bins
	}
	return s
}

// Registry returns the metric registry the engine publishes into
func (e *Engine) Registry() *status.Registry {
	return e.reg
}

// Playing reports whether the engine is scheduling
func (e *Engine) Playing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.st.Playing
}

// Graph returns the effects graph, nil before Init
func (e *Engine) Graph() *audio.Graph {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.graph
}

// DriverRunning reports whether the internal driver loop is active
func (e *Engine) DriverRunning() bool {
	return e.driver.Running()
}

// State returns a copy of the engine state
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return *e.st
}

// SetTempo overrides the current tempo; the smoothing frame relaxes it toward base
func (e *Engine) SetTempo(bpm float64) {
	e.mu.Lock()
	e.st.Tempo = bpm
	e.statTempo.Set(bpm)
	e.mu.Unlock()
}

func (e *Engine) now() float64 {
	if e.clock != nil {
		return e.clock.Now()
	}
	if e.graph != nil {
		return e.graph.Now()
	}
	return 0
}

func (e *Engine) outputReady() bool {
	if e.out == nil {
		return false
	}
	select {
	case <-e.out.Ready():
		return true
	default:
		return false
	}
}

// publish mirrors state into the registry, caller holds e.mu
func (e *Engine) publish() {
	e.statChaos.Set(e.st.Chaos)
	e.statTempo.Set(e.st.Tempo)
	e.statModX.Set(e.st.ModX)
	e.statModY.Set(e.st.ModY)
	e.statVolume.Set(e.st.GlobalVolume)
	e.statPlaying.Store(e.st.Playing)
	e.statSetup.Store(e.st.Setup)
	e.statMode.Store(e.st.Mode.String())
	e.statStep.Store(int64(e.st.Step))
	e.statMeasure.Store(int64(e.st.MeasureCount))

	steps, triggers, resyncs := e.sched.Counters()
	e.statSteps.Store(steps)
	e.statTriggers.Store(triggers)
	e.statResyncs.Store(resyncs)
}
