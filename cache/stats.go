package cache

import (
	"time"

	metrics "github.com/rcrowley/go-metrics"
)

// Statistics is a point in time snapshot of pool counters.
type Statistics struct {
	Hits      int64
	Misses    int64
	Sets      int64
	Deletes   int64
	Evictions int64
	// HitRate is Hits/(Hits+Misses), 0.0 before first lookup.
	HitRate        float64
	KeyCount       int
	MaxEntries     int
	TotalSizeBytes int64
	MemoryUsageMB  float64
	Uptime         time.Duration
}

// OptimizeResult reports entry and byte totals around one OptimizeMemory
// call.
type OptimizeResult struct {
	InitialEntries     int
	FinalEntries       int
	EntriesRemoved     int
	InitialMemoryBytes int64
	FinalMemoryBytes   int64
	MemoryFreedBytes   int64
	Successful         bool
}

// counters are pool operation counters registered in the pool metrics
// registry, so an external metrics pipeline can scrape them from
// Cache.Metrics().
type counters struct {
	hits      metrics.Counter
	misses    metrics.Counter
	sets      metrics.Counter
	deletes   metrics.Counter
	evictions metrics.Counter
}

func newCounters(r metrics.Registry) counters {
	return counters{
		hits:      metrics.NewRegisteredCounter("cache.hits", r),
		misses:    metrics.NewRegisteredCounter("cache.misses", r),
		sets:      metrics.NewRegisteredCounter("cache.sets", r),
		deletes:   metrics.NewRegisteredCounter("cache.deletes", r),
		evictions: metrics.NewRegisteredCounter("cache.evictions", r),
	}
}

func (c counters) reset() {
	c.hits.Clear()
	c.misses.Clear()
	c.sets.Clear()
	c.deletes.Clear()
	c.evictions.Clear()
}
