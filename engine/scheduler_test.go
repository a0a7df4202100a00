package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/driftgrid/audio"
	"github.com/lixenwraith/driftgrid/core"
	"github.com/lixenwraith/driftgrid/parameter"
)

// recordingSink keeps every trigger it is handed
type recordingSink struct {
	triggers []audio.Trigger
	result   core.Result
}

func (r *recordingSink) Trigger(tr audio.Trigger) core.Result {
	r.triggers = append(r.triggers, tr)
	return r.result
}

func newTestScheduler(seed uint64) (*Scheduler, *State, *audio.ManualClock, *recordingSink) {
	rng := testRand(seed)
	st := playingState(core.ModeDeep)
	pat := NewPattern(rng, st.Mode)
	clock := audio.NewManualClock(0)
	sink := &recordingSink{result: core.ResultOK}
	return NewScheduler(st, pat, clock, sink, rng), st, clock, sink
}

// TestSchedulerFillsLookahead verifies one tick covers the window and a second tick at the same time adds nothing
func TestSchedulerFillsLookahead(t *testing.T) {
	s, st, _, _ := newTestScheduler(10)

	n := s.Tick()
	assert.Positive(t, n)
	assert.GreaterOrEqual(t, st.NextNoteTime, parameter.ScheduleAheadTime)
	assert.Equal(t, 0, s.Tick())

	steps, _, _ := s.Counters()
	assert.Equal(t, int64(n), steps)
}

// TestSchedulerMonotonic drives many ticks at full chaos and checks time never runs backwards
func TestSchedulerMonotonic(t *testing.T) {
	s, st, clock, _ := newTestScheduler(11)
	st.Chaos = 1

	prev := st.NextNoteTime
	for i := 0; i < 4000; i++ {
		clock.Advance(parameter.LookaheadInterval.Seconds())
		s.Tick()
		require.GreaterOrEqual(t, st.NextNoteTime, prev)
		require.GreaterOrEqual(t, st.NextNoteTime, clock.Now()+parameter.ScheduleAheadTime)
		require.GreaterOrEqual(t, st.Step, 0)
		require.Less(t, st.Step, parameter.MaxPatternLen)
		prev = st.NextNoteTime
	}

	_, _, resyncs := s.Counters()
	assert.Zero(t, resyncs)
}

// TestSchedulerStepGap bounds the advance between consecutive steps
func TestSchedulerStepGap(t *testing.T) {
	s, st, _, _ := newTestScheduler(12)
	st.Chaos = 1
	maxGap := parameter.StepDuration(parameter.MinBPM) + parameter.SwingOffset +
		parameter.MicroTimingRange + parameter.ChaosDriftScale

	for i := 0; i < 5000; i++ {
		before := st.NextNoteTime
		s.advance()
		gap := st.NextNoteTime - before
		require.GreaterOrEqual(t, gap, 0.0)
		require.LessOrEqual(t, gap, maxGap)
	}
}

func TestSchedulerWrapsAtSixtyFour(t *testing.T) {
	s, st, _, _ := newTestScheduler(13)
	st.Step = 60

	for i := 0; i < 4; i++ {
		s.advance()
	}
	assert.Equal(t, 0, st.Step)
	assert.Equal(t, 1, st.MeasureCount)

	for i := 0; i < 4; i++ {
		s.advance()
	}
	assert.Equal(t, 4, st.Step)
	assert.Equal(t, 1, st.MeasureCount)
}

func TestSchedulerRegeneratesOnEvenMeasure(t *testing.T) {
	s, st, _, _ := newTestScheduler(14)
	st.Step = parameter.MaxPatternLen - 1
	st.MeasureCount = 1
	before := s.pat.Probability

	s.advance()
	assert.Equal(t, 2, st.MeasureCount)
	assert.NotEqual(t, before, s.pat.Probability)

	// Odd measure keeps the pattern
	st.Step = parameter.MaxPatternLen - 1
	kept := s.pat.Probability
	s.advance()
	assert.Equal(t, 3, st.MeasureCount)
	assert.Equal(t, kept, s.pat.Probability)
}

// TestSchedulerTempoShuffleBounded checks re-randomised tempo stays near base
func TestSchedulerTempoShuffleBounded(t *testing.T) {
	s, st, _, _ := newTestScheduler(15)

	changed := false
	for i := 0; i < 64*40; i++ {
		s.advance()
		assert.GreaterOrEqual(t, st.Tempo, st.BaseTempo*(1-parameter.TempoShuffleSpread)-1e-9)
		assert.LessOrEqual(t, st.Tempo, st.BaseTempo*(1+parameter.TempoShuffleSpread)+1e-9)
		if st.Tempo != st.BaseTempo {
			changed = true
		}
	}
	assert.True(t, changed)
}

func TestSchedulerResyncAfterStall(t *testing.T) {
	s, st, clock, sink := newTestScheduler(16)
	st.Chaos = 0
	clock.Set(10)

	n := s.Tick()
	assert.Positive(t, n)
	_, _, resyncs := s.Counters()
	assert.Equal(t, int64(1), resyncs)
	assert.GreaterOrEqual(t, st.NextNoteTime, 10+parameter.ScheduleAheadTime)

	for _, tr := range sink.triggers {
		assert.GreaterOrEqual(t, tr.At, 10-parameter.SnareJitter)
	}
}

func TestSchedulerModeSwitchAtHighChaos(t *testing.T) {
	s, st, _, _ := newTestScheduler(17)
	st.Chaos = 1

	var modes []core.BlendMode
	s.onMode = func(m core.BlendMode) { modes = append(modes, m) }

	for i := 0; i < 64*30; i++ {
		s.advance()
	}
	require.NotEmpty(t, modes)
	assert.Equal(t, core.ModeGlitch, modes[0])
}

func TestSchedulerNoModeSwitchAtLowChaos(t *testing.T) {
	s, st, _, _ := newTestScheduler(18)
	st.Chaos = 0.5

	for i := 0; i < 64*30; i++ {
		s.advance()
	}
	assert.Equal(t, core.ModeDeep, st.Mode)
}

func TestSwitchModeCues(t *testing.T) {
	s, st, _, sink := newTestScheduler(19)

	assert.Equal(t, core.ModeGlitch, s.SwitchMode(1.5))
	assert.Equal(t, core.ModeGlitch, st.Mode)
	require.Len(t, sink.triggers, 2)
	assert.Equal(t, core.VoiceGlitch, sink.triggers[0].Kind)
	assert.Equal(t, core.VoiceBass, sink.triggers[1].Kind)
	assert.Equal(t, parameter.ModeSwitchBass, sink.triggers[1].Freq)
	assert.Equal(t, 1.0, sink.triggers[1].Intensity)
	assert.Equal(t, 1.5, sink.triggers[1].At)

	s.SwitchMode(2)
	s.SwitchMode(3)
	assert.Equal(t, core.ModeDeep, st.Mode)
}

// TestSchedulerSinkFailureIgnored keeps scheduling when every trigger is rejected
func TestSchedulerSinkFailureIgnored(t *testing.T) {
	s, _, clock, sink := newTestScheduler(20)
	sink.result = core.ResultUnavailable

	for i := 0; i < 100; i++ {
		clock.Advance(0.025)
		s.Tick()
	}
	steps, triggers, _ := s.Counters()
	assert.Positive(t, steps)
	assert.Zero(t, triggers)
	assert.NotEmpty(t, sink.triggers)
}
