// Package cachepool provides a registry of independently configured
// in-process bounded cache pools. One Registry instance is constructed at
// process start and passed by handle to every consumer; there is no
// package level singleton.
package cachepool

import (
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/skipor/cachepool/cache"
	"github.com/skipor/cachepool/log"
)

// PoolType identifies one logical cache pool. The set is closed: the
// default config table covers every value, and unknown values fall back
// to a generic config.
type PoolType int

const (
	// ComputePool holds transient intermediate computation state.
	ComputePool PoolType = iota
	// ResponsePool holds rendered responses.
	ResponsePool
	// ConfigPool holds rarely changing configuration values.
	ConfigPool
)

// PoolTypes lists all known pool types.
func PoolTypes() []PoolType {
	return []PoolType{ComputePool, ResponsePool, ConfigPool}
}

func (t PoolType) String() string {
	switch t {
	case ComputePool:
		return "compute"
	case ResponsePool:
		return "response"
	case ConfigPool:
		return "config"
	}
	return fmt.Sprintf("pool-%d", int(t))
}

func PoolTypeFromString(s string) (PoolType, bool) {
	for _, t := range PoolTypes() {
		if t.String() == s {
			return t, true
		}
	}
	return 0, false
}

// DefaultConfigs returns the per pool type configuration used when
// NewRegistry is given none.
func DefaultConfigs() map[PoolType]cache.Config {
	return map[PoolType]cache.Config{
		ComputePool:  {MaxEntries: 500, DefaultTTL: 5 * time.Minute},
		ResponsePool: {MaxEntries: 2000, DefaultTTL: 30 * time.Minute},
		ConfigPool:   {MaxEntries: 100, DefaultTTL: 12 * time.Hour, MaxMemory: 8 << 20},
	}
}

// fallbackConfig serves pool types missing from the config table.
var fallbackConfig = cache.Config{MaxEntries: 1000, DefaultTTL: 10 * time.Minute}

// Registry owns named cache pools and creates missing ones lazily. Its
// lock guards only the create-if-absent path; a pool handle obtained from
// GetCache is used without revisiting the registry lock.
type Registry struct {
	log     log.Logger
	configs map[PoolType]cache.Config

	mu    sync.Mutex
	pools map[PoolType]*cache.Cache
}

func NewRegistry(l log.Logger, configs map[PoolType]cache.Config) *Registry {
	if configs == nil {
		configs = DefaultConfigs()
	}
	return &Registry{
		log:     l,
		configs: configs,
		pools:   make(map[PoolType]*cache.Cache),
	}
}

// GetCache returns the pool registered under t, creating it from its
// configured defaults on first use.
func (r *Registry) GetCache(t PoolType) *cache.Cache {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.pools[t]; ok {
		return c
	}
	conf, ok := r.configs[t]
	if !ok {
		r.log.Warnf("No config for pool %s, using fallback.", t)
		conf = fallbackConfig
	}
	r.log.Debugf("Create pool %s.", t)
	c := cache.New(r.log.WithFields(log.Fields{"pool": t.String()}), conf)
	r.pools[t] = c
	return c
}

// PoolStatistics returns statistics of the pool registered under t.
// It reports false when the pool was never created.
func (r *Registry) PoolStatistics(t PoolType) (cache.Statistics, bool) {
	r.mu.Lock()
	c, ok := r.pools[t]
	r.mu.Unlock()
	if !ok {
		return cache.Statistics{}, false
	}
	return c.Statistics(), true
}

// RegistryStats is per pool statistics plus totals across all pools.
type RegistryStats struct {
	Pools          map[PoolType]cache.Statistics
	TotalHits      int64
	TotalMisses    int64
	TotalEntries   int
	TotalSizeBytes int64
	// OverallHitRate is computed from summed hits and misses.
	OverallHitRate float64
}

func (r *Registry) Statistics() RegistryStats {
	pools := r.snapshot()
	stats := RegistryStats{Pools: make(map[PoolType]cache.Statistics, len(pools))}
	for t, c := range pools {
		s := c.Statistics()
		stats.Pools[t] = s
		stats.TotalHits += s.Hits
		stats.TotalMisses += s.Misses
		stats.TotalEntries += s.KeyCount
		stats.TotalSizeBytes += s.TotalSizeBytes
	}
	if lookups := stats.TotalHits + stats.TotalMisses; lookups > 0 {
		stats.OverallHitRate = float64(stats.TotalHits) / float64(lookups)
	}
	return stats
}

// PoolOptimizeResult wraps one pool optimize outcome. Err is set when that
// pool's optimization failed; it is reporting only and never aborts the
// other pools.
type PoolOptimizeResult struct {
	cache.OptimizeResult
	Err error
}

// OptimizeAll runs OptimizeMemory on every created pool.
func (r *Registry) OptimizeAll() map[PoolType]PoolOptimizeResult {
	pools := r.snapshot()
	results := make(map[PoolType]PoolOptimizeResult, len(pools))
	for t, c := range pools {
		results[t] = optimizePool(t, c)
	}
	return results
}

func optimizePool(t PoolType, c *cache.Cache) (res PoolOptimizeResult) {
	defer func() {
		if p := recover(); p != nil {
			res.Err = errors.Errorf("optimize pool %s: %v", t, p)
		}
	}()
	res.OptimizeResult = c.OptimizeMemory()
	if !res.Successful {
		res.Err = errors.Errorf("optimize pool %s failed", t)
	}
	return
}

// ClearAll clears every created pool. It reports false only when no pool
// clear succeeded.
func (r *Registry) ClearAll() bool {
	pools := r.snapshot()
	if len(pools) == 0 {
		return true
	}
	cleared := false
	for _, c := range pools {
		if c.Clear() {
			cleared = true
		}
	}
	return cleared
}

// Reset drops all pools. Handles obtained earlier keep working but are no
// longer tracked by the registry.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pools = make(map[PoolType]*cache.Cache)
}

func (r *Registry) snapshot() map[PoolType]*cache.Cache {
	r.mu.Lock()
	defer r.mu.Unlock()
	pools := make(map[PoolType]*cache.Cache, len(r.pools))
	for t, c := range r.pools {
		pools[t] = c
	}
	return pools
}
