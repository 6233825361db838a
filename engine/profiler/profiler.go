package profiler

import (
	"log/slog"
	"runtime"
	"time"
)

// Report is one interval's worth of statistics.
type Report struct {
	FPS           float64
	DrawsPerFrame float64
	HeapMB        float64
	AllocRateMB   float64
	GCCount       uint32
	LastPauseUs   uint64
	MaxPauseUs    uint64
	SysMB         float64
}

// Profiler tracks frame rate, draw counts and memory statistics, and logs a Report at a fixed interval.
type Profiler struct {
	logger         *slog.Logger
	now            func() time.Time
	frameCount     int
	drawCount      int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	last           Report
}

// ProfilerOption configures a Profiler.
type ProfilerOption func(*Profiler)

// WithInterval sets how often statistics are reported. Defaults to 1 second.
func WithInterval(d time.Duration) ProfilerOption {
	return func(p *Profiler) {
		if d > 0 {
			p.updateInterval = d
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) ProfilerOption {
	return func(p *Profiler) {
		p.now = now
	}
}

// NewProfiler creates a new Profiler. The interval starts at creation.
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(opts ...ProfilerOption) *Profiler {
	p := &Profiler{
		logger:         slog.Default().With("component", "profiler"),
		now:            time.Now,
		updateInterval: time.Second,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// Tick should be called once per frame with the number of draws the frame issued.
// When the update interval has elapsed it logs the interval's Report at info level.
//
// Parameters:
//   - draws: the frame's draw count
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick(draws int) bool {
	p.frameCount++
	p.drawCount += draws
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)

	if elapsed < p.updateInterval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	r := Report{
		FPS:           float64(p.frameCount) / elapsed.Seconds(),
		DrawsPerFrame: float64(p.drawCount) / float64(p.frameCount),
		HeapMB:        float64(p.memStats.Alloc) / 1024 / 1024,
		AllocRateMB:   float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds(),
		GCCount:       p.memStats.NumGC,
		SysMB:         float64(p.memStats.Sys) / 1024 / 1024,
	}

	if gcCount := p.memStats.NumGC; gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 pauses
		r.LastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			r.MaxPauseUs = max(r.MaxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	p.logger.Info("frame stats",
		"fps", r.FPS,
		"draws_per_frame", r.DrawsPerFrame,
		"heap_mb", r.HeapMB,
		"alloc_rate_mb_s", r.AllocRateMB,
		"gc", r.GCCount,
		"gc_last_us", r.LastPauseUs,
		"gc_max_us", r.MaxPauseUs,
		"sys_mb", r.SysMB,
	)

	p.last = r
	p.frameCount = 0
	p.drawCount = 0
	p.lastTime = currentTime
	p.lastGCCount = r.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// Last returns the most recently logged Report.
//
// Returns:
//   - Report: the report, zero before the first interval completes
func (p *Profiler) Last() Report {
	return p.last
}
