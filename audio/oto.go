package audio

import (
	"encoding/binary"
	"io"
	"math"
	"sync"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"github.com/ebitengine/oto/v3"
	"github.com/gopxl/beep"

	"github.com/lixenwraith/driftgrid/core"
	"github.com/lixenwraith/driftgrid/parameter"
)

// oto allows one context per process
var (
	otoOnce  sync.Once
	otoCtx   *oto.Context
	otoReady chan struct{}
	otoErr   error
)

func sharedOtoContext(rate beep.SampleRate) (*oto.Context, chan struct{}, error) {
	otoOnce.Do(func() {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   int(rate),
			ChannelCount: parameter.AudioChannels,
			Format:       oto.FormatFloat32LE,
			BufferSize:   parameter.SpeakerBufferDuration,
		})
		otoCtx, otoReady, otoErr = ctx, ready, err
	})
	return otoCtx, otoReady, otoErr
}

// OtoOutput plays float32 frames through an oto context
// The context becomes ready asynchronously; Ready mirrors that
type OtoOutput struct {
	mu      sync.Mutex
	rate    beep.SampleRate
	ready   chan struct{}
	ctx     *oto.Context
	player  *oto.Player
	stopped bool
}

// NewOtoOutput creates an oto backend at rate
func NewOtoOutput(rate beep.SampleRate) *OtoOutput {
	return &OtoOutput{rate: rate, ready: make(chan struct{})}
}

func (o *OtoOutput) Name() string {
	return OutputOto
}

// Start creates the context and plays s once the device is ready
func (o *OtoOutput) Start(s beep.Streamer) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.ctx != nil {
		return nil
	}

	ctx, ready, err := sharedOtoContext(o.rate)
	if err != nil {
		return fault.Wrap(err, fmsg.With("oto context"), ftag.With(core.KindUnavailable))
	}
	if o.stopped {
		// Restart after Stop: the shared context was suspended and the old ready signal spent
		if err := ctx.Resume(); err != nil {
			return fault.Wrap(err, fmsg.With("oto resume"), ftag.With(core.KindSuspended))
		}
		o.ready = make(chan struct{})
		o.stopped = false
	}
	o.ctx = ctx
	readyOut := o.ready

	core.Go(func() {
		<-ready
		o.mu.Lock()
		defer o.mu.Unlock()
		if o.ctx == nil {
			return
		}
		o.player = ctx.NewPlayer(&streamReader{src: s})
		o.player.Play()
		close(readyOut)
	})
	return nil
}

func (o *OtoOutput) Ready() <-chan struct{} {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.ready
}

// Resume restarts a suspended context
func (o *OtoOutput) Resume() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.ctx == nil {
		return fault.Wrap(ErrNotReady, ftag.With(core.KindUnavailable))
	}
	if err := o.ctx.Resume(); err != nil {
		return fault.Wrap(err, fmsg.With("oto resume"), ftag.With(core.KindSuspended))
	}
	return nil
}

// Stop closes the player and suspends the shared context
func (o *OtoOutput) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.player != nil {
		o.player.Pause()
		o.player.Close()
		o.player = nil
	}
	if o.ctx != nil {
		o.ctx.Suspend()
		o.ctx = nil
		o.stopped = true
	}
}

// streamReader encodes a beep stream as interleaved float32 little endian
type streamReader struct {
	src beep.Streamer
	buf [][2]float64
}

func (r *streamReader) Read(p []byte) (int, error) {
	const frameBytes = 8
	frames := len(p) / frameBytes
	if frames == 0 {
		return 0, nil
	}
	if cap(r.buf) < frames {
		r.buf = make([][2]float64, frames)
	}
	buf := r.buf[:frames]
	clear(buf)

	n, ok := r.src.Stream(buf)
	if n == 0 && !ok {
		return 0, io.EOF
	}
	for i := 0; i < frames; i++ {
		binary.LittleEndian.PutUint32(p[i*frameBytes:], math.Float32bits(float32(buf[i][0])))
		binary.LittleEndian.PutUint32(p[i*frameBytes+4:], math.Float32bits(float32(buf[i][1])))
	}
	return frames * frameBytes, nil
}
