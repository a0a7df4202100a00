package audio

import (
	"io"
	"log"
	"strings"
	"sync"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"github.com/gopxl/beep"

	"github.com/lixenwraith/driftgrid/core"
)

// Output pulls a stream to a platform device
// Ready closes once the device accepts audio; until then the graph renders nothing audible
type Output interface {
	Name() string
	Start(s beep.Streamer) error
	Ready() <-chan struct{}
	Resume() error
	Stop()
}

// NewOutput selects a backend by cfg.Backend; "pipe:<player>" pins the pipe player
// Device backends fall back to the pipe backend when they cannot start
func NewOutput(cfg *Config) Output {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if !cfg.Enabled {
		return NewNullOutput(true)
	}

	rate := beep.SampleRate(cfg.SampleRate)
	backend, prefer, _ := strings.Cut(cfg.Backend, ":")
	switch backend {
	case OutputNull:
		return NewNullOutput(true)
	case OutputPipe:
		return NewPipeOutput(cfg.SampleRate, prefer)
	case OutputOto:
		return NewFallbackOutput(NewOtoOutput(rate), NewPipeOutput(cfg.SampleRate, ""))
	default:
		return NewFallbackOutput(NewSpeakerOutput(rate), NewPipeOutput(cfg.SampleRate, ""))
	}
}

// FallbackOutput starts the first candidate that succeeds
type FallbackOutput struct {
	mu         sync.Mutex
	candidates []Output
	active     Output
}

// NewFallbackOutput tries candidates in order on Start
func NewFallbackOutput(candidates ...Output) *FallbackOutput {
	return &FallbackOutput{candidates: candidates}
}

func (f *FallbackOutput) Name() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.active != nil {
		return f.active.Name()
	}
	return "fallback"
}

// Start returns the last candidate's error, tagged unavailable, when none start
func (f *FallbackOutput) Start(s beep.Streamer) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.active != nil {
		return nil
	}

	var lastErr error = ErrNoAudioBackend
	for _, c := range f.candidates {
		if err := c.Start(s); err != nil {
			log.Printf("[audio] backend %s unavailable: %v", c.Name(), err)
			lastErr = err
			continue
		}
		f.active = c
		log.Printf("[audio] backend %s started", c.Name())
		return nil
	}
	return fault.Wrap(lastErr, fmsg.With("no output backend started"), ftag.With(core.KindUnavailable))
}

func (f *FallbackOutput) Ready() <-chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.active != nil {
		return f.active.Ready()
	}
	return nil
}

func (f *FallbackOutput) Resume() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.active == nil {
		return fault.Wrap(ErrNotReady, ftag.With(core.KindUnavailable))
	}
	return f.active.Resume()
}

func (f *FallbackOutput) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.active != nil {
		f.active.Stop()
		f.active = nil
	}
}

// NullOutput plays nowhere
// With drain set it pulls the stream in real time so the graph clock advances;
// held outputs keep Ready open until Release, like a device awaiting a user gesture
type NullOutput struct {
	drain bool

	mu      sync.Mutex
	ready   chan struct{}
	held    bool
	started bool
	pump    *pump
}

// NewNullOutput creates a null backend, ready as soon as it starts
func NewNullOutput(drain bool) *NullOutput {
	return &NullOutput{drain: drain, ready: make(chan struct{})}
}

// NewHeldOutput creates a null backend that stays not-ready until Release
func NewHeldOutput() *NullOutput {
	return &NullOutput{ready: make(chan struct{}), held: true}
}

func (n *NullOutput) Name() string {
	return OutputNull
}

func (n *NullOutput) Start(s beep.Streamer) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.started {
		return nil
	}
	n.started = true
	if n.drain {
		n.pump = newPump(s, io.Discard, 0)
		n.pump.start()
	}
	if !n.held {
		n.markReady()
	}
	return nil
}

// markReady closes ready once, caller holds n.mu
func (n *NullOutput) markReady() {
	select {
	case <-n.ready:
	default:
		close(n.ready)
	}
}

func (n *NullOutput) Ready() <-chan struct{} {
	return n.ready
}

// Release marks a held output ready
func (n *NullOutput) Release() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.held {
		n.held = false
		n.markReady()
	}
}

func (n *NullOutput) Resume() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.held {
		return fault.Wrap(ErrNotReady, fmsg.With("output held"), ftag.With(core.KindSuspended))
	}
	return nil
}

func (n *NullOutput) Stop() {
	n.mu.Lock()
	p := n.pump
	n.pump = nil
	n.started = false
	n.mu.Unlock()

	if p != nil {
		p.stop()
	}
}
