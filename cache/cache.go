package cache

import (
	"sync"
	"time"

	metrics "github.com/rcrowley/go-metrics"

	"github.com/skipor/cachepool/log"
)

// DefaultMaxMemory is per pool byte budget used when Config.MaxMemory is
// not set.
const DefaultMaxMemory = 32 << 20

// Eviction hysteresis. Write pressure evicts down to pressureEvictRatio of
// the budget but keeps at least pressureEvictFloor entries; OptimizeMemory
// stops higher, at optimizeEvictRatio. The gap between the two ratios
// avoids eviction thrashing around the budget.
const (
	pressureEvictRatio = 0.7
	optimizeEvictRatio = 0.8
	pressureEvictFloor = 10
)

type Config struct {
	// MaxEntries caps entry count. 0 means no count cap.
	MaxEntries int
	// DefaultTTL applies to Set. <= 0 means entries never expire.
	DefaultTTL time.Duration
	// MaxMemory is the pool byte budget. 0 means DefaultMaxMemory.
	MaxMemory int64
	// SizeOf estimates value footprint. nil means EstimateSize.
	SizeOf SizeEstimator
}

// Cache is one bounded pool. All operations serialize on one lock, so the
// byte accounting and the LRU order are always consistent with the table.
type Cache struct {
	mu       sync.Mutex
	table    map[string]*node
	queue    *queue
	conf     Config
	log      log.Logger
	now      func() time.Time
	start    time.Time
	registry metrics.Registry
	counters counters
}

func New(l log.Logger, conf Config) *Cache {
	if conf.MaxMemory <= 0 {
		conf.MaxMemory = DefaultMaxMemory
	}
	if conf.SizeOf == nil {
		conf.SizeOf = EstimateSize
	}
	c := &Cache{
		log:      l,
		conf:     conf,
		table:    make(map[string]*node),
		queue:    newQueue(),
		now:      time.Now,
		registry: metrics.NewRegistry(),
	}
	c.counters = newCounters(c.registry)
	c.start = c.now()
	c.queue.onExpire = c.onExpire
	c.queue.onEvict = c.onEvict
	return c
}

// Get returns the value stored under key, or def when key is absent or
// expired. An expired entry found here is removed. Get never panics;
// internal faults degrade to a miss.
func (c *Cache) Get(key string, def interface{}) (value interface{}) {
	value = def
	defer c.recoverOp("get")
	c.mu.Lock()
	defer c.mu.Unlock()
	defer c.checkInvariants()
	n, ok := c.table[key]
	if !ok {
		c.counters.misses.Inc(1)
		return def
	}
	now := c.now()
	if n.expired(now) {
		c.log.Debugf("Entry %s expired.", key)
		n.detach()
		c.deleteDetached(n)
		c.counters.misses.Inc(1)
		return def
	}
	n.AccessCount++
	n.LastAccess = now
	c.queue.touch(n)
	c.counters.hits.Inc(1)
	return n.Value
}

// Set stores value under key with the pool default TTL.
func (c *Cache) Set(key string, value interface{}) bool {
	return c.SetWithTTL(key, value, c.conf.DefaultTTL)
}

// SetWithTTL stores value under key. ttl <= 0 means the entry never
// expires. It reports whether the value was stored; internal faults
// degrade to false and leave the pool unchanged.
func (c *Cache) SetWithTTL(key string, value interface{}, ttl time.Duration) (ok bool) {
	defer c.recoverOp("set")
	size := c.conf.SizeOf(value)
	c.mu.Lock()
	defer c.mu.Unlock()
	defer c.checkInvariants()
	now := c.now()
	if c.queue.size+size > c.conf.MaxMemory {
		c.evictPressure(now)
	}
	if old, exists := c.table[key]; exists {
		c.log.Debugf("Replace entry %s.", key)
		old.detach()
		c.deleteDetached(old)
	}
	c.log.Debugf("Add entry %s.", key)
	n := &node{Key: key, Entry: Entry{
		Value:     value,
		Written:   now,
		TTL:       ttl,
		SizeBytes: size,
	}}
	c.table[key] = n
	c.queue.push(n)
	if c.conf.MaxEntries > 0 {
		c.queue.shrinkWhile(func() bool {
			return len(c.table) > c.conf.MaxEntries
		}, now)
	}
	c.counters.sets.Inc(1)
	return true
}

// Delete reports whether key existed and was removed.
func (c *Cache) Delete(key string) (deleted bool) {
	defer c.recoverOp("delete")
	c.mu.Lock()
	defer c.mu.Unlock()
	defer c.checkInvariants()
	n, ok := c.table[key]
	if !ok {
		return false
	}
	n.detach()
	c.deleteDetached(n)
	c.counters.deletes.Inc(1)
	return true
}

// Clear drops all entries and resets statistics.
func (c *Cache) Clear() (ok bool) {
	defer c.recoverOp("clear")
	c.mu.Lock()
	defer c.mu.Unlock()
	c.table = make(map[string]*node)
	c.queue = newQueue()
	c.queue.onExpire = c.onExpire
	c.queue.onEvict = c.onEvict
	c.counters.reset()
	c.start = c.now()
	return true
}

func (c *Cache) Statistics() (s Statistics) {
	defer c.recoverOp("statistics")
	c.mu.Lock()
	defer c.mu.Unlock()
	s = Statistics{
		Hits:           c.counters.hits.Count(),
		Misses:         c.counters.misses.Count(),
		Sets:           c.counters.sets.Count(),
		Deletes:        c.counters.deletes.Count(),
		Evictions:      c.counters.evictions.Count(),
		KeyCount:       len(c.table),
		MaxEntries:     c.conf.MaxEntries,
		TotalSizeBytes: c.queue.size,
		MemoryUsageMB:  float64(c.queue.size) / (1 << 20),
		Uptime:         c.now().Sub(c.start),
	}
	if lookups := s.Hits + s.Misses; lookups > 0 {
		s.HitRate = float64(s.Hits) / float64(lookups)
	}
	return
}

// Metrics exposes the pool counter registry for scraping.
func (c *Cache) Metrics() metrics.Registry { return c.registry }

// OptimizeMemory drops every expired entry, then evicts LRU entries while
// usage is above optimizeEvictRatio of the budget. Expired removals are
// not counted as evictions. Calling it again with no intervening writes
// removes nothing.
func (c *Cache) OptimizeMemory() (r OptimizeResult) {
	defer c.recoverOp("optimize")
	c.mu.Lock()
	defer c.mu.Unlock()
	defer c.checkInvariants()
	now := c.now()
	r.InitialEntries = len(c.table)
	r.InitialMemoryBytes = c.queue.size
	c.queue.purgeExpired(now)
	target := int64(float64(c.conf.MaxMemory) * optimizeEvictRatio)
	c.queue.shrinkWhile(func() bool {
		return c.queue.size > target && len(c.table) > 0
	}, now)
	r.FinalEntries = len(c.table)
	r.FinalMemoryBytes = c.queue.size
	r.EntriesRemoved = r.InitialEntries - r.FinalEntries
	r.MemoryFreedBytes = r.InitialMemoryBytes - r.FinalMemoryBytes
	r.Successful = true
	return
}

// evictPressure runs before a write that would exceed the byte budget:
// expired entries go first, then LRU entries until usage is back under
// pressureEvictRatio of the budget or only pressureEvictFloor entries
// remain. An entry larger than the budget is still admitted afterwards;
// the budget is best effort, not a hard ceiling.
func (c *Cache) evictPressure(now time.Time) {
	c.queue.purgeExpired(now)
	target := int64(float64(c.conf.MaxMemory) * pressureEvictRatio)
	c.queue.shrinkWhile(func() bool {
		return c.queue.size > target && len(c.table) > pressureEvictFloor
	}, now)
}

func (c *Cache) onEvict(n *node) {
	c.log.Debugf("Entry %s evicted.", n.Key)
	c.deleteDetached(n)
	c.counters.evictions.Inc(1)
}

func (c *Cache) onExpire(n *node) {
	c.log.Debugf("Entry %s expired.", n.Key)
	c.deleteDetached(n)
}

// deleteDetached removes owned but detached node.
func (c *Cache) deleteDetached(n *node) {
	n.disown()
	delete(c.table, n.Key)
}

// recoverOp absorbs panics at the public boundary. The caller's named
// return keeps its failure value.
func (c *Cache) recoverOp(op string) {
	if r := recover(); r != nil {
		c.log.Errorf("Cache %s fault: %v", op, r)
	}
}
