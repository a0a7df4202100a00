package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"github.com/gopxl/beep"

	"github.com/lixenwraith/driftgrid/core"
	"github.com/lixenwraith/driftgrid/parameter"
)

// PipeOutput streams s16le stereo into a CLI player's stdin or an OSS device
type PipeOutput struct {
	rate   int
	prefer string

	backend *BackendConfig
	cmd     *exec.Cmd
	stdin   io.WriteCloser
	ossFile *os.File
	pump    *pump

	ready   chan struct{}
	running atomic.Bool
	failed  atomic.Bool

	mu sync.Mutex
	wg sync.WaitGroup
}

// NewPipeOutput creates a pipe backend at rate; prefer names a player to try first
func NewPipeOutput(rate int, prefer string) *PipeOutput {
	return &PipeOutput{rate: rate, prefer: prefer, ready: make(chan struct{})}
}

func (p *PipeOutput) Name() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.backend != nil {
		return OutputPipe + ":" + p.backend.Name
	}
	return OutputPipe
}

// Start launches the detected backend and the writer loop
func (p *PipeOutput) Start(s beep.Streamer) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running.Load() {
		return nil
	}

	backend, err := DetectBackend(p.rate, p.prefer)
	if err != nil {
		return fault.Wrap(err, fmsg.With("detect pipe backend"), ftag.With(core.KindUnavailable))
	}
	p.backend = backend
	p.cmd, p.stdin, p.ossFile = nil, nil, nil
	p.failed.Store(false)

	var writer io.Writer
	if backend.Type == BackendOSS {
		f, err := os.OpenFile(backend.Path, os.O_WRONLY, 0)
		if err != nil {
			return fault.Wrap(err, fmsg.With("open oss device"), ftag.With(core.KindUnavailable))
		}
		p.ossFile = f
		writer = f
	} else {
		cmd := exec.Command(backend.Path, backend.Args...)
		stdin, err := cmd.StdinPipe()
		if err != nil {
			return fault.Wrap(err, fmsg.With("pipe stdin"), ftag.With(core.KindUnavailable))
		}
		if err := cmd.Start(); err != nil {
			stdin.Close()
			return fault.Wrap(err, fmsg.With("start "+backend.Name), ftag.With(core.KindUnavailable))
		}
		p.cmd = cmd
		p.stdin = stdin
		writer = stdin

		p.wg.Add(1)
		core.Go(p.monitorProcess)
	}

	p.pump = newPump(s, writer, p.rate)
	p.pump.start()

	p.wg.Add(1)
	core.Go(p.monitorPump)

	p.running.Store(true)
	close(p.ready)
	return nil
}

// monitorProcess watches for subprocess exit
func (p *PipeOutput) monitorProcess() {
	defer p.wg.Done()

	if err := p.cmd.Wait(); err != nil && p.running.Load() {
		log.Printf("[audio] %s exited: %v", p.backend.Name, err)
		p.failed.Store(true)
	}
}

// monitorPump watches for pipe errors
func (p *PipeOutput) monitorPump() {
	defer p.wg.Done()

	select {
	case err := <-p.pump.Errors():
		log.Printf("[audio] %v", err)
		p.failed.Store(true)
	case <-p.pump.stopChan:
	}
}

func (p *PipeOutput) Ready() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ready
}

// Resume reports whether the pipe is still alive; a dead player cannot be revived
func (p *PipeOutput) Resume() error {
	if p.failed.Load() {
		return fault.Wrap(ErrPipeClosed, ftag.With(core.KindUnavailable))
	}
	return nil
}

// Stop terminates the writer and the player process
func (p *PipeOutput) Stop() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pump != nil {
		p.pump.stop()
	}
	if p.stdin != nil {
		p.stdin.Close()
	}
	if p.ossFile != nil {
		p.ossFile.Close()
	}
	if p.cmd != nil && p.cmd.Process != nil {
		p.cmd.Process.Kill()
	}

	p.wg.Wait()
	p.ready = make(chan struct{})
}

// pump pulls fixed blocks from a stream on a ticker and writes them as s16le
type pump struct {
	src    beep.Streamer
	output io.Writer
	frames int

	stopChan chan struct{}
	stopped  atomic.Bool
	done     chan struct{}
	written  atomic.Int64

	errChan chan error
}

// newPump sizes blocks to parameter.AudioBufferDuration at rate
// A zero rate is taken from the stream when it reports one
func newPump(src beep.Streamer, out io.Writer, rate int) *pump {
	if rate <= 0 {
		rate = parameter.AudioSampleRate
		if r, ok := src.(interface{ SampleRate() beep.SampleRate }); ok {
			rate = int(r.SampleRate())
		}
	}
	return &pump{
		src:      src,
		output:   out,
		frames:   beep.SampleRate(rate).N(parameter.AudioBufferDuration),
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
		errChan:  make(chan error, 1),
	}
}

func (m *pump) start() {
	core.Go(m.loop)
}

// stop signals the loop and waits for it to exit
func (m *pump) stop() {
	if m.stopped.CompareAndSwap(false, true) {
		close(m.stopChan)
	}
	select {
	case <-m.done:
	case <-time.After(parameter.AudioDrainTimeout):
	}
}

// Errors returns channel for pipe errors
func (m *pump) Errors() <-chan error {
	return m.errChan
}

// Written returns frames delivered to the writer
func (m *pump) Written() int64 {
	return m.written.Load()
}

func (m *pump) loop() {
	defer close(m.done)

	ticker := time.NewTicker(parameter.AudioBufferDuration)
	defer ticker.Stop()

	mixBuf := make([][2]float64, m.frames)
	outBytes := make([]byte, m.frames*parameter.AudioBytesPerFrame)

	for {
		select {
		case <-m.stopChan:
			return

		case <-ticker.C:
			clear(mixBuf)
			// A drained source keeps writing silence so the pipe stays open
			m.src.Stream(mixBuf)
			floatToBytes(mixBuf, outBytes)

			if _, err := m.output.Write(outBytes); err != nil {
				select {
				case m.errChan <- fault.Wrap(fmt.Errorf("%w: %v", ErrPipeClosed, err), ftag.With(core.KindUnavailable)):
				default:
				}
				return
			}
			m.written.Add(int64(m.frames))
		}
	}
}

// floatToBytes converts stereo float frames to s16le
// Applies soft limiting before hard clip
func floatToBytes(in [][2]float64, out []byte) {
	for i, frame := range in {
		for ch, v := range frame {
			if v > 0.8 {
				v = 0.8 + 0.2*(1.0-1.0/(1.0+(v-0.8)*5.0))
			} else if v < -0.8 {
				v = -0.8 - 0.2*(1.0-1.0/(1.0+(-v-0.8)*5.0))
			}

			if v > 1.0 {
				v = 1.0
			} else if v < -1.0 {
				v = -1.0
			}

			i16 := int16(v * 32767)
			binary.LittleEndian.PutUint16(out[i*4+ch*2:], uint16(i16))
		}
	}
}
