package profiler

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTickReportsOncePerInterval(t *testing.T) {
	var buf bytes.Buffer
	now := time.Unix(0, 0)
	p := NewProfiler(
		WithLogger(slog.New(slog.NewTextHandler(&buf, nil))),
		WithClock(func() time.Time { return now }),
	)

	for i := 0; i < 29; i++ {
		now = now.Add(10 * time.Millisecond)
		assert.False(t, p.Tick())
	}
	p.Skip()
	now = now.Add(710 * time.Millisecond)
	assert.True(t, p.Tick())

	s := p.Snapshot()
	assert.InDelta(t, 30.0, s.FPS, 1e-9)
	assert.Equal(t, uint64(30), s.Frames)
	assert.Equal(t, uint64(1), s.Skipped)
	assert.Contains(t, buf.String(), "[Profiler] frame stats")
	assert.Contains(t, buf.String(), "skipped=1")
}
