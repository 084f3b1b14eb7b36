package profiler

import (
	"log"
	"runtime"
	"time"
)

// Profiler tracks document load throughput and memory statistics while a batch of loads runs.
// Outputs stats to the log at a configurable interval.
type Profiler struct {
	logger         *log.Logger
	loadCount      int
	failCount      int
	totalLoads     int
	totalFails     int
	start          time.Time
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
}

// NewProfiler creates a new Profiler writing to logger.
// Update interval defaults to 1 second.
//
// Parameters:
//   - logger: the logger stats are written to; nil selects log.Default()
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(logger *log.Logger) *Profiler {
	if logger == nil {
		logger = log.Default()
	}
	now := time.Now()
	return &Profiler{
		logger:         logger,
		start:          now,
		lastTime:       now,
		updateInterval: time.Second,
	}
}

// SetInterval changes how often Tick logs statistics.
//
// Parameters:
//   - d: the interval; values below 1ms are ignored
func (p *Profiler) SetInterval(d time.Duration) {
	if d >= time.Millisecond {
		p.updateInterval = d
	}
}

// Tick should be called once per completed load to track throughput.
// Logs performance statistics when the update interval has elapsed.
// Statistics include: loads/s, failures, heap usage, allocation rate, GC count/pause times, total memory.
//
// Parameters:
//   - failed: whether the load that just completed failed
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick(failed bool) bool {
	p.loadCount++
	p.totalLoads++
	if failed {
		p.failCount++
		p.totalFails++
	}

	currentTime := time.Now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	p.logStats(float64(p.loadCount)/elapsed.Seconds(), p.failCount, elapsed)
	p.loadCount = 0
	p.failCount = 0
	p.lastTime = currentTime
	return true
}

// Report logs the totals since the profiler was created.
//
// Returns:
//   - int: the number of loads recorded
//   - int: the number of failed loads recorded
func (p *Profiler) Report() (int, int) {
	elapsed := time.Since(p.start)
	var rate float64
	if elapsed > 0 {
		rate = float64(p.totalLoads) / elapsed.Seconds()
	}
	p.logger.Printf("[Profiler] %d loads (%d failed) in %s", p.totalLoads, p.totalFails, elapsed.Round(time.Millisecond))
	p.logStats(rate, p.totalFails, elapsed)
	return p.totalLoads, p.totalFails
}

func (p *Profiler) logStats(rate float64, fails int, elapsed time.Duration) {
	runtime.ReadMemStats(&p.memStats)
	// Alloc is live heap, Sys is the process footprint obtained from the OS.
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	sysMB := float64(p.memStats.Sys) / 1024 / 1024

	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	gcCount := p.memStats.NumGC
	var lastPauseUs, maxPauseUs uint64
	if gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 GC pauses
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000

		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			pause := p.memStats.PauseNs[i%256] / 1000
			if pause > maxPauseUs {
				maxPauseUs = pause
			}
		}
	}

	p.logger.Printf("[Profiler] Loads: %.2f/s | Failed: %d | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (last: %d µs, max: %d µs) | Sys: %.2f MB",
		rate, fails, allocMB, allocRateMB, gcCount, lastPauseUs, maxPauseUs, sysMB)

	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
}
