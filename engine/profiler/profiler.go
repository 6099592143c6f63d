package profiler

import (
	"log/slog"
	"runtime"
	"sync"
	"time"
)

// Snapshot is the frame statistics of one reporting interval.
type Snapshot struct {
	FPS     float64
	Frames  uint64
	Skipped uint64
	HeapMB  float64
}

// Profiler tracks frame rate, skipped frames and memory statistics for performance monitoring.
// Outputs stats to the log at a configurable interval.
type Profiler struct {
	mu             sync.Mutex
	logger         *slog.Logger
	now            func() time.Time
	updateInterval time.Duration

	intervalFrames int
	totalFrames    uint64
	skipped        uint64
	lastTime       time.Time
	last           Snapshot
	memStats       runtime.MemStats
	lastGCCount    uint32
}

// ProfilerBuilderOption is a function that configures a Profiler.
type ProfilerBuilderOption func(*Profiler)

// WithLogger sets the logger stats are reported to.
func WithLogger(logger *slog.Logger) ProfilerBuilderOption {
	return func(p *Profiler) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithInterval sets the reporting interval. Non-positive values keep the default of one second.
func WithInterval(d time.Duration) ProfilerBuilderOption {
	return func(p *Profiler) {
		if d > 0 {
			p.updateInterval = d
		}
	}
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) ProfilerBuilderOption {
	return func(p *Profiler) {
		if now != nil {
			p.now = now
		}
	}
}

// NewProfiler creates a new Profiler. Update interval defaults to 1 second.
//
// Parameters:
//   - options: variadic list of ProfilerBuilderOption functions
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		logger:         slog.Default(),
		now:            time.Now,
		updateInterval: time.Second,
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// Skip records a frame that was dropped instead of rendered.
func (p *Profiler) Skip() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.skipped++
}

// Tick should be called once per rendered frame. Logs statistics when the update interval
// has elapsed.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.intervalFrames++
	p.totalFrames++
	current := p.now()
	elapsed := current.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	gcCount := p.memStats.NumGC
	var lastPauseUs uint64
	if gcCount > 0 {
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000
	}

	p.last = Snapshot{
		FPS:     float64(p.intervalFrames) / elapsed.Seconds(),
		Frames:  p.totalFrames,
		Skipped: p.skipped,
		HeapMB:  float64(p.memStats.Alloc) / 1024 / 1024,
	}
	p.logger.Info("[Profiler] frame stats",
		"fps", p.last.FPS,
		"frames", p.last.Frames,
		"skipped", p.last.Skipped,
		"heap_mb", p.last.HeapMB,
		"gc", gcCount,
		"gc_new", gcCount-p.lastGCCount,
		"gc_last_pause_us", lastPauseUs,
	)

	p.intervalFrames = 0
	p.lastTime = current
	p.lastGCCount = gcCount
	return true
}

// Snapshot returns the totals so far, with FPS from the last completed interval.
func (p *Profiler) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.last
	s.Frames = p.totalFrames
	s.Skipped = p.skipped
	return s
}
