package render

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/driftgrid/core"
	"github.com/lixenwraith/driftgrid/engine"
	"github.com/lixenwraith/driftgrid/parameter"
)

// recordingController logs every call in order
type recordingController struct {
	calls    []string
	chaos    []float64
	presence []bool
	spatial  [][3]float64
	snap     engine.Snapshot
}

func (r *recordingController) Init() core.Result {
	r.calls = append(r.calls, "init")
	return core.ResultOK
}

func (r *recordingController) SetPresence(present bool) {
	r.calls = append(r.calls, "presence")
	r.presence = append(r.presence, present)
}

func (r *recordingController) SetChaos(level float64) {
	r.calls = append(r.calls, "chaos")
	r.chaos = append(r.chaos, level)
}

func (r *recordingController) UpdateSpatialParams(leftY, rightY, balance float64) {
	r.calls = append(r.calls, "spatial")
	r.spatial = append(r.spatial, [3]float64{leftY, rightY, balance})
}

func (r *recordingController) TriggerInteraction() core.Result {
	r.calls = append(r.calls, "interaction")
	return core.ResultOK
}

func (r *recordingController) TriggerModeSwitch() core.Result {
	r.calls = append(r.calls, "mode")
	return core.ResultOK
}

func (r *recordingController) Snapshot() engine.Snapshot {
	return r.snap
}

func (r *recordingController) count(call string) int {
	n := 0
	for _, c := range r.calls {
		if c == call {
			n++
		}
	}
	return n
}

func TestGesturesMoveMapsChaosAndSpatial(t *testing.T) {
	ctl := &recordingController{}
	t0 := time.Unix(100, 0)
	g := NewGestures(ctl, t0)

	g.Move(0.5, 0.5, t0)
	g.Move(1.0, 0.2, t0)
	g.Move(0.9, 1.0, t0)

	require.Len(t, ctl.chaos, 3)
	assert.InDelta(t, 0.5, ctl.chaos[0], 1e-12)
	assert.InDelta(t, 1.0, ctl.chaos[1], 1e-12)
	assert.InDelta(t, 1.0, ctl.chaos[2], 1e-12)

	assert.Equal(t, [3]float64{0.2, 0.2, 0}, ctl.spatial[1])
	assert.Equal(t, []bool{true, true, true}, ctl.presence)
	assert.True(t, g.Present())
}

func TestGesturesClickFiresInteraction(t *testing.T) {
	ctl := &recordingController{}
	t0 := time.Unix(100, 0)
	g := NewGestures(ctl, t0)

	g.Click(0.3, 0.7, t0)
	assert.Equal(t, []string{"presence", "init", "interaction", "chaos", "spatial"}, ctl.calls)
	assert.Equal(t, 1.0, ctl.chaos[0])
}

// TestGesturesShakeSwitchesMode sweeps the pointer back and forth until the accumulator fires
func TestGesturesShakeSwitchesMode(t *testing.T) {
	ctl := &recordingController{}
	t0 := time.Unix(100, 0)
	g := NewGestures(ctl, t0)

	xs := []float64{0.2, 0.4, 0.6, 0.4, 0.2, 0.4, 0.6, 0.4, 0.2, 0.4}
	for _, x := range xs {
		g.Move(x, 0.5, t0)
	}
	// Reversals at 0.6, 0.2, 0.6, 0.2 push the accumulator past its trigger
	assert.Equal(t, 1, ctl.count("mode"))
	assert.Equal(t, 1, g.Switches())
	assert.Zero(t, g.Shake())
}

// TestGesturesJitterIsNotShake ignores reversals shorter than the minimum travel
func TestGesturesJitterIsNotShake(t *testing.T) {
	ctl := &recordingController{}
	t0 := time.Unix(100, 0)
	g := NewGestures(ctl, t0)

	for i := 0; i < 50; i++ {
		x := 0.5
		if i%2 == 1 {
			x = 0.51
		}
		g.Move(x, 0.5, t0)
	}
	assert.Zero(t, ctl.count("mode"))
	assert.Zero(t, g.Shake())
}

func TestGesturesIdleDropsPresence(t *testing.T) {
	ctl := &recordingController{}
	t0 := time.Unix(100, 0)
	g := NewGestures(ctl, t0)

	g.Move(0.5, 0.5, t0)
	ctl.calls = nil

	g.Idle(t0.Add(parameter.IdleTimeout / 2))
	assert.Empty(t, ctl.calls)

	g.Idle(t0.Add(parameter.IdleTimeout + time.Millisecond))
	assert.Equal(t, []string{"presence", "chaos"}, ctl.calls)
	assert.False(t, ctl.presence[len(ctl.presence)-1])
	assert.Equal(t, 0.0, ctl.chaos[len(ctl.chaos)-1])
	assert.False(t, g.Present())
}

func TestGesturesIdleDecaysShake(t *testing.T) {
	ctl := &recordingController{}
	t0 := time.Unix(100, 0)
	g := NewGestures(ctl, t0)

	for _, x := range []float64{0.2, 0.4, 0.2, 0.4} {
		g.Move(x, 0.5, t0)
	}
	require.InDelta(t, 2.0, g.Shake(), 1e-12)

	late := t0.Add(2 * parameter.IdleTimeout)
	for i := 0; i < 5; i++ {
		g.Idle(late)
	}
	assert.InDelta(t, 1.0, g.Shake(), 1e-9)

	for i := 0; i < 20; i++ {
		g.Idle(late)
	}
	assert.Zero(t, g.Shake())
}

// TestGesturesTogglePresencePinned keeps a key-pinned presence through the idle timeout
func TestGesturesTogglePresencePinned(t *testing.T) {
	ctl := &recordingController{}
	t0 := time.Unix(100, 0)
	g := NewGestures(ctl, t0)

	g.TogglePresence()
	assert.True(t, g.Present())
	g.Idle(t0.Add(10 * parameter.IdleTimeout))
	assert.True(t, g.Present())
	assert.Equal(t, []bool{true}, ctl.presence)

	g.TogglePresence()
	assert.False(t, g.Present())

	// Pointer input releases the pin
	g.Move(0.5, 0.5, t0.Add(11*parameter.IdleTimeout))
	g.Idle(t0.Add(13 * parameter.IdleTimeout))
	assert.False(t, g.Present())
}
