package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestTickReportsFPSPerWindow(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	p := NewProfiler(WithClock(clock.now), WithUpdateInterval(500*time.Millisecond))

	for i := 0; i < 9; i++ {
		clock.advance(50 * time.Millisecond)
		_, ok := p.Tick()
		require.False(t, ok, "frame %d", i)
	}

	clock.advance(50 * time.Millisecond)
	fps, ok := p.Tick()
	require.True(t, ok)
	assert.InDelta(t, 20.0, fps, 1e-9)

	// the window restarts after reporting
	clock.advance(100 * time.Millisecond)
	_, ok = p.Tick()
	assert.False(t, ok)
}

func TestUpdateIntervalIgnoresNonPositive(t *testing.T) {
	p := NewProfiler(WithUpdateInterval(0), WithUpdateInterval(-time.Second))
	assert.Equal(t, time.Second, p.updateInterval)
}
