package audio

import (
	"sync"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/lixenwraith/driftgrid/core"
	"github.com/lixenwraith/driftgrid/parameter"
)

// SpeakerOutput plays through the beep speaker package
type SpeakerOutput struct {
	mu          sync.Mutex
	rate        beep.SampleRate
	ready       chan struct{}
	initialized bool
}

// NewSpeakerOutput creates a speaker backend at rate
func NewSpeakerOutput(rate beep.SampleRate) *SpeakerOutput {
	return &SpeakerOutput{rate: rate, ready: make(chan struct{})}
}

func (o *SpeakerOutput) Name() string {
	return OutputSpeaker
}

// Start initializes the device and begins pulling s
func (o *SpeakerOutput) Start(s beep.Streamer) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.initialized {
		return nil
	}

	if err := speaker.Init(o.rate, o.rate.N(parameter.SpeakerBufferDuration)); err != nil {
		return fault.Wrap(err, fmsg.With("speaker init"), ftag.With(core.KindUnavailable))
	}

	speaker.Play(s)
	o.initialized = true
	close(o.ready)
	return nil
}

func (o *SpeakerOutput) Ready() <-chan struct{} {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.ready
}

func (o *SpeakerOutput) Resume() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.initialized {
		return fault.Wrap(ErrNotReady, ftag.With(core.KindUnavailable))
	}
	return nil
}

// Stop clears the speaker and releases the device
func (o *SpeakerOutput) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.initialized {
		return
	}
	speaker.Clear()
	speaker.Close()
	o.initialized = false
	o.ready = make(chan struct{})
}
