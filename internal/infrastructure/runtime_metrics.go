package infrastructure

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// RuntimeMetrics records Go runtime gauges for the dashboard process
type RuntimeMetrics struct {
	goroutines metric.Int64Gauge
	heapAlloc  metric.Int64Gauge
	heapSys    metric.Int64Gauge
	gcPause    metric.Float64Histogram
	uptime     metric.Float64Gauge

	startTime time.Time
}

// RuntimeStats is a point-in-time runtime snapshot
type RuntimeStats struct {
	Goroutines  int64
	HeapAlloc   int64
	HeapSys     int64
	GCCount     uint32
	LastGCPause time.Duration
	CPUCount    int
	Uptime      time.Duration
	Timestamp   time.Time
}

// NewRuntimeMetrics creates runtime instruments. A nil meter records nothing.
func NewRuntimeMetrics(meter metric.Meter) (*RuntimeMetrics, error) {
	if meter == nil {
		meter = noop.NewMeterProvider().Meter(MeterName)
	}

	goroutines, err := meter.Int64Gauge("dashboard_runtime_goroutines",
		metric.WithDescription("Number of active goroutines"))
	if err != nil {
		return nil, fmt.Errorf("goroutines gauge: %w", err)
	}

	heapAlloc, err := meter.Int64Gauge("dashboard_runtime_heap_alloc_bytes",
		metric.WithDescription("Bytes of allocated heap objects"),
		metric.WithUnit("By"))
	if err != nil {
		return nil, fmt.Errorf("heap alloc gauge: %w", err)
	}

	heapSys, err := meter.Int64Gauge("dashboard_runtime_sys_bytes",
		metric.WithDescription("Memory obtained from the OS"),
		metric.WithUnit("By"))
	if err != nil {
		return nil, fmt.Errorf("sys gauge: %w", err)
	}

	gcPause, err := meter.Float64Histogram("dashboard_runtime_gc_pause_seconds",
		metric.WithDescription("Most recent garbage collection pause"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("gc pause histogram: %w", err)
	}

	uptime, err := meter.Float64Gauge("dashboard_process_uptime_seconds",
		metric.WithDescription("Process uptime in seconds"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("uptime gauge: %w", err)
	}

	return &RuntimeMetrics{
		goroutines: goroutines,
		heapAlloc:  heapAlloc,
		heapSys:    heapSys,
		gcPause:    gcPause,
		uptime:     uptime,
		startTime:  time.Now(),
	}, nil
}

// Collect reads runtime statistics and records them
func (m *RuntimeMetrics) Collect(ctx context.Context) RuntimeStats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	stats := RuntimeStats{
		Goroutines: int64(runtime.NumGoroutine()),
		HeapAlloc:  int64(mem.HeapAlloc),
		HeapSys:    int64(mem.Sys),
		GCCount:    mem.NumGC,
		CPUCount:   runtime.NumCPU(),
		Uptime:     time.Since(m.startTime),
		Timestamp:  time.Now(),
	}
	if mem.NumGC > 0 {
		stats.LastGCPause = time.Duration(mem.PauseNs[(mem.NumGC+255)%256])
	}

	m.goroutines.Record(ctx, stats.Goroutines)
	m.heapAlloc.Record(ctx, stats.HeapAlloc)
	m.heapSys.Record(ctx, stats.HeapSys)
	m.uptime.Record(ctx, stats.Uptime.Seconds())
	if stats.LastGCPause > 0 {
		m.gcPause.Record(ctx, stats.LastGCPause.Seconds())
	}
	return stats
}

// Run collects every interval until ctx is done
func (m *RuntimeMetrics) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.Collect(ctx)
	for {
		select {
		case <-ticker.C:
			m.Collect(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Map renders the snapshot for health responses
func (s RuntimeStats) Map() map[string]interface{} {
	return map[string]interface{}{
		"goroutines":       s.Goroutines,
		"heap_alloc_mb":    s.HeapAlloc / 1024 / 1024,
		"sys_mb":           s.HeapSys / 1024 / 1024,
		"gc_count":         s.GCCount,
		"last_gc_pause_ms": s.LastGCPause.Milliseconds(),
		"cpu_count":        s.CPUCount,
		"uptime_seconds":   s.Uptime.Seconds(),
		"go_version":       runtime.Version(),
	}
}
