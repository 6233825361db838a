package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTickReportsOncePerInterval(t *testing.T) {
	now := time.Unix(0, 0)
	p := NewProfiler(WithClock(func() time.Time { return now }), WithInterval(time.Second))

	for i := 0; i < 49; i++ {
		now = now.Add(20 * time.Millisecond)
		require.False(t, p.Tick(5))
	}
	now = now.Add(20 * time.Millisecond)
	require.True(t, p.Tick(5))

	r := p.Last()
	assert.InDelta(t, 50, r.FPS, 0.01)
	assert.InDelta(t, 5, r.DrawsPerFrame, 0.001)
	assert.Greater(t, r.SysMB, 0.0)

	now = now.Add(time.Millisecond)
	assert.False(t, p.Tick(5))
}
