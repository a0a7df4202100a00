package engine

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDriverStartStopIdempotent(t *testing.T) {
	var ticks, frames atomic.Int64
	d := NewDriver(func() { ticks.Add(1) }, func() { frames.Add(1) }, time.Millisecond, time.Millisecond)

	require.True(t, d.Start())
	assert.False(t, d.Start())
	assert.True(t, d.Running())

	require.Eventually(t, func() bool {
		return ticks.Load() > 3 && frames.Load() > 3
	}, time.Second, time.Millisecond)

	d.Stop()
	d.Stop()
	assert.False(t, d.Running())

	// No callbacks after Stop returns
	settled := ticks.Load()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, settled, ticks.Load())

	// Restart
	require.True(t, d.Start())
	require.Eventually(t, func() bool { return ticks.Load() > settled }, time.Second, time.Millisecond)
	d.Stop()

	dt, df := d.Counts()
	assert.Equal(t, uint64(ticks.Load()), dt)
	assert.Equal(t, uint64(frames.Load()), df)
}

func TestDriverRunTicksImmediately(t *testing.T) {
	var ticks atomic.Int64
	d := NewDriver(func() { ticks.Add(1) }, nil, time.Hour, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return ticks.Load() == 1 }, time.Second, time.Millisecond)
	cancel()
	<-done
}
