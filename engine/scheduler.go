package engine

import (
	"log"
	"math/rand/v2"

	"github.com/lixenwraith/driftgrid/audio"
	"github.com/lixenwraith/driftgrid/core"
	"github.com/lixenwraith/driftgrid/parameter"
)

// TriggerSink receives scheduled voice triggers
type TriggerSink interface {
	Trigger(tr audio.Trigger) core.Result
}

// Scheduler walks the step grid ahead of the clock, emitting triggers for
// every step that falls inside the lookahead window
// Not safe for concurrent use; the owning Engine serialises calls
type Scheduler struct {
	st    *State
	pat   *Pattern
	clock audio.Clock
	sink  TriggerSink
	rng   *rand.Rand

	// onTrigger observes every emitted trigger after the sink accepts or rejects it
	onTrigger func(audio.Trigger, core.Result)
	// onMode fires after a scheduled mode switch
	onMode func(core.BlendMode)

	steps    int64
	triggers int64
	resyncs  int64
}

// NewScheduler binds state, pattern, time source and sink
func NewScheduler(st *State, pat *Pattern, clock audio.Clock, sink TriggerSink, rng *rand.Rand) *Scheduler {
	return &Scheduler{
		st:    st,
		pat:   pat,
		clock: clock,
		sink:  sink,
		rng:   rng,
	}
}

// SetSink swaps the trigger destination
func (s *Scheduler) SetSink(sink TriggerSink) {
	s.sink = sink
}

// SetClock swaps the time source
func (s *Scheduler) SetClock(clock audio.Clock) {
	s.clock = clock
}

// Tick schedules every step starting before now + lookahead and returns how many were scheduled
func (s *Scheduler) Tick() int {
	now := s.clock.Now()

	if s.st.NextNoteTime < now-parameter.ResyncSlack {
		log.Printf("[sched] resync: next note %.3fs behind clock %.3fs", now-s.st.NextNoteTime, now)
		s.st.NextNoteTime = now
		s.resyncs++
	}

	n := 0
	for s.st.NextNoteTime < now+parameter.ScheduleAheadTime {
		Decide(s.rng, s.st, s.pat, s.st.Step, s.st.NextNoteTime, s.emit)
		s.advance()
		n++
	}
	s.steps += int64(n)
	return n
}

// emit forwards to the sink; sink failures are counted and dropped
func (s *Scheduler) emit(tr audio.Trigger) {
	res := core.ResultUnavailable
	if s.sink != nil {
		res = s.sink.Trigger(tr)
	}
	if res.OK() {
		s.triggers++
	}
	if s.onTrigger != nil {
		s.onTrigger(tr, res)
	}
}

// advance moves NextNoteTime past the current step and handles bar wrap
func (s *Scheduler) advance() {
	step16 := s.st.Step % parameter.StepsPerBar

	dt := s.st.StepDuration()
	if step16%2 == 1 {
		dt += parameter.SwingOffset
	}
	dt += s.pat.MicroTiming[step16]
	dt += (s.rng.Float64()*2 - 1) * s.st.Chaos * parameter.ChaosDriftScale
	if dt < 0 {
		dt = 0
	}
	s.st.NextNoteTime += dt

	s.st.Step++
	if s.st.Step >= parameter.MaxPatternLen {
		s.wrap()
	}
}

// wrap closes a pattern cycle
func (s *Scheduler) wrap() {
	s.st.Step = 0
	s.st.MeasureCount++

	if s.st.MeasureCount%2 == 0 {
		s.pat.Regenerate(s.rng, s.st.Mode)
	}

	if s.st.Chaos > parameter.ModeSwitchChaos && s.rng.Float64() < parameter.ModeSwitchChance {
		s.SwitchMode(s.st.NextNoteTime)
	}

	if s.rng.Float64() < parameter.TempoShuffleChance {
		spread := 1 + (s.rng.Float64()*2-1)*parameter.TempoShuffleSpread
		s.st.Tempo = parameter.ClampBPM(s.st.BaseTempo * spread)
	}
}

// SwitchMode cycles the blend mode, regenerates the pattern and marks the change with a glitch and a low bass at at
func (s *Scheduler) SwitchMode(at float64) core.BlendMode {
	s.st.Mode = s.st.Mode.Next()
	s.pat.Regenerate(s.rng, s.st.Mode)
	log.Printf("[sched] mode -> %s", s.st.Mode)

	s.emit(audio.Trigger{Kind: core.VoiceGlitch, At: at})
	s.emit(audio.Trigger{Kind: core.VoiceBass, At: at, Freq: parameter.ModeSwitchBass, Intensity: 1.0})

	if s.onMode != nil {
		s.onMode(s.st.Mode)
	}
	return s.st.Mode
}

// Counters returns steps scheduled, triggers accepted and resyncs since creation
func (s *Scheduler) Counters() (steps, triggers, resyncs int64) {
	return s.steps, s.triggers, s.resyncs
}
