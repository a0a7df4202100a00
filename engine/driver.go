package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/driftgrid/core"
)

// Driver re-arms the scheduler and smoothing callbacks on two tickers
// Start and Stop are idempotent; a stopped driver can be started again
type Driver struct {
	tick  func()
	frame func()

	tickInterval  time.Duration
	frameInterval time.Duration

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running atomic.Bool

	// Counters for debugging and metrics
	ticks  atomic.Uint64
	frames atomic.Uint64
}

// NewDriver creates a stopped driver
func NewDriver(tick, frame func(), tickInterval, frameInterval time.Duration) *Driver {
	return &Driver{
		tick:          tick,
		frame:         frame,
		tickInterval:  tickInterval,
		frameInterval: frameInterval,
	}
}

// Start launches the loop, returns false if already running
func (d *Driver) Start() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running.CompareAndSwap(false, true) {
		return false
	}

	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.wg.Add(1)
	core.Go(func() {
		defer d.wg.Done()
		d.Run(ctx)
	})
	return true
}

// Stop cancels the loop and waits for the in-flight callback to return
// Must not be called from inside a callback
func (d *Driver) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running.CompareAndSwap(true, false) {
		return
	}
	d.cancel()
	d.wg.Wait()
	d.cancel = nil
}

// Running reports whether the loop is active
func (d *Driver) Running() bool {
	return d.running.Load()
}

// Run ticks once immediately then on both intervals until ctx is done
// Exposed for callers that own their goroutine
func (d *Driver) Run(ctx context.Context) {
	d.runTick()

	tickTicker := time.NewTicker(d.tickInterval)
	defer tickTicker.Stop()
	frameTicker := time.NewTicker(d.frameInterval)
	defer frameTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tickTicker.C:
			d.runTick()
		case <-frameTicker.C:
			d.runFrame()
		}
	}
}

func (d *Driver) runTick() {
	if d.tick != nil {
		d.tick()
	}
	d.ticks.Add(1)
}

func (d *Driver) runFrame() {
	if d.frame != nil {
		d.frame()
	}
	d.frames.Add(1)
}

// Counts returns callbacks run since creation
func (d *Driver) Counts() (ticks, frames uint64) {
	return d.ticks.Load(), d.frames.Load()
}
