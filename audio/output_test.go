package audio

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
	"os/exec"
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/driftgrid/core"
)

// failingOutput never starts
type failingOutput struct {
	starts int
}

func (f *failingOutput) Name() string { return "failing" }
func (f *failingOutput) Start(beep.Streamer) error {
	f.starts++
	return errors.New("no device")
}
func (f *failingOutput) Ready() <-chan struct{} { return nil }
func (f *failingOutput) Resume() error { return nil }
func (f *failingOutput) Stop() {}

// TestFallbackOutputPicksFirstWorking verifies candidates are tried in order
func TestFallbackOutputPicksFirstWorking(t *testing.T) {
	bad := &failingOutput{}
	good := NewNullOutput(false)
	out := NewFallbackOutput(bad, good)

	require.NoError(t, out.Start(beep.Silence(-1)))
	assert.Equal(t, 1, bad.starts)
	assert.Equal(t, OutputNull, out.Name())

	select {
	case <-out.Ready():
	default:
		t.Fatal("null output should be ready after start")
	}
	assert.NoError(t, out.Resume())

	// Second start is a no-op
	require.NoError(t, out.Start(beep.Silence(-1)))
	assert.Equal(t, 1, bad.starts)
	out.Stop()
}

// TestPipeOutputRestart verifies Start after Stop hands out a fresh Ready signal
func TestPipeOutputRestart(t *testing.T) {
	cat, err := exec.LookPath("cat")
	if err != nil {
		t.Skip("cat not available")
	}
	orig := lookPath
	t.Cleanup(func() { lookPath = orig })
	lookPath = func(name string) (string, error) {
		if name == "pacat" {
			return cat, nil
		}
		return "", exec.ErrNotFound
	}

	p := NewPipeOutput(44100, "")
	out := NewFallbackOutput(p)
	for i := 0; i < 2; i++ {
		require.NotPanics(t, func() { require.NoError(t, out.Start(beep.Silence(-1))) })
		select {
		case <-out.Ready():
		case <-time.After(time.Second):
			t.Fatalf("start %d never became ready", i)
		}
		assert.Equal(t, "pipe:pacat", out.Name())
		out.Stop()

		select {
		case <-p.Ready():
			t.Fatalf("ready still closed after stop %d", i)
		default:
		}
	}
}

func TestFallbackOutputAllFail(t *testing.T) {
	out := NewFallbackOutput(&failingOutput{}, &failingOutput{})
	err := out.Start(beep.Silence(-1))
	require.Error(t, err)
	assert.Equal(t, core.ResultUnavailable, core.ResultOf(err))
	assert.Equal(t, core.ResultUnavailable, core.ResultOf(out.Resume()))
	assert.Nil(t, out.Ready())
}

// TestHeldOutputDefersReady verifies a held output reports suspended until released
func TestHeldOutputDefersReady(t *testing.T) {
	out := NewHeldOutput()
	require.NoError(t, out.Start(beep.Silence(-1)))

	select {
	case <-out.Ready():
		t.Fatal("held output reported ready")
	default:
	}
	assert.Equal(t, core.ResultSuspended, core.ResultOf(out.Resume()))

	out.Release()
	out.Release()
	<-out.Ready()
	assert.NoError(t, out.Resume())
}

// TestNullOutputDrainAdvancesClock verifies the drain pump pulls the graph in real time
func TestNullOutputDrainAdvancesClock(t *testing.T) {
	g := newTestGraph(t)
	out := NewNullOutput(true)
	require.NoError(t, out.Start(g))
	defer out.Stop()

	assert.Eventually(t, func() bool { return g.Now() >= 0.1 }, 2*time.Second, 10*time.Millisecond)
}

func TestNewOutputSelection(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backend = OutputNull
	assert.Equal(t, OutputNull, NewOutput(cfg).Name())

	cfg.Backend = OutputPipe
	assert.IsType(t, &PipeOutput{}, NewOutput(cfg))

	cfg.Backend = "pipe:aplay"
	pinned, ok := NewOutput(cfg).(*PipeOutput)
	require.True(t, ok)
	assert.Equal(t, "aplay", pinned.prefer)

	cfg.Backend = OutputOto
	assert.IsType(t, &FallbackOutput{}, NewOutput(cfg))

	cfg.Backend = "bogus"
	assert.IsType(t, &FallbackOutput{}, NewOutput(cfg))

	cfg.Enabled = false
	assert.Equal(t, OutputNull, NewOutput(cfg).Name())
}

// TestFloatToBytes verifies s16le packing with limiting
func TestFloatToBytes(t *testing.T) {
	in := [][2]float64{{0, 0.5}, {2, -2}}
	out := make([]byte, len(in)*4)
	floatToBytes(in, out)

	sample := func(i int) int16 { return int16(binary.LittleEndian.Uint16(out[i*2:])) }
	assert.Equal(t, int16(0), sample(0))
	assert.Equal(t, int16(16383), sample(1))
	assert.Greater(t, sample(2), int16(30000))
	assert.Less(t, sample(3), int16(-30000))
}

type rampStreamer struct{ n, left int }

func (r *rampStreamer) Stream(samples [][2]float64) (int, bool) {
	if r.left == 0 {
		return 0, false
	}
	n := min(len(samples), r.left)
	for i := 0; i < n; i++ {
		samples[i] = [2]float64{float64(r.n) / 10, -float64(r.n) / 10}
		r.n++
	}
	r.left -= n
	return n, true
}

func (r *rampStreamer) Err() error { return nil }

// TestStreamReaderFloat32 verifies interleaved float32 encoding and EOF on drain
func TestStreamReaderFloat32(t *testing.T) {
	r := &streamReader{src: &rampStreamer{left: 2}}
	p := make([]byte, 16)
	n, err := r.Read(p)
	require.NoError(t, err)
	assert.Equal(t, 16, n)

	f := func(i int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(p[i*4:])) }
	assert.Equal(t, float32(0), f(0))
	assert.InDelta(t, 0.1, f(2), 1e-6)
	assert.InDelta(t, -0.1, f(3), 1e-6)

	_, err = r.Read(p)
	assert.ErrorIs(t, err, io.EOF)
}
