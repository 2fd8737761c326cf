// Package chunkcache keeps generated chunks in memory, keyed on their
// world-space origin, with TTL/LRU eviction and single-flight generation:
// concurrent callers asking for the same not-yet-cached origin all
// receive the one chunk instance a single pipeline run produces.
package chunkcache

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/rs/zerolog"

	"github.com/voxelcore/voxelserver/internal/world"
)

// DefaultTTL is how long after its creation a cached chunk becomes
// eligible for eviction, however recently it was accessed.
const DefaultTTL = 30 * time.Minute

// Generator produces the chunk for a world-space origin, typically a
// generation pipeline's Generate method.
type Generator func(origin world.Vec3) (*world.Chunk, error)

type cacheEntry struct {
	chunk      *world.Chunk
	createdAt  time.Time
	lastAccess time.Time
}

// Cache is safe for concurrent use.
type Cache struct {
	generate Generator
	ttl      time.Duration
	maxSize  int
	log      zerolog.Logger
	metrics  *Metrics

	mu      sync.Mutex
	entries map[world.Vec3]*cacheEntry
	group   singleflight.Group

	hits           atomic.Int64
	misses         atomic.Int64
	totalGenerated atomic.Int64
}

// New builds a Cache. maxSize <= 0 disables the LRU cap, leaving only
// TTL-based eviction.
func New(generate Generator, ttl time.Duration, maxSize int, log zerolog.Logger, metrics *Metrics) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		generate: generate,
		ttl:      ttl,
		maxSize:  maxSize,
		log:      log,
		metrics:  metrics,
		entries:  make(map[world.Vec3]*cacheEntry),
	}
}

// Get returns the chunk at origin, generating it if this is the first
// request. Every concurrent caller for the same origin blocks on and
// receives the result of exactly one pipeline execution.
func (c *Cache) Get(origin world.Vec3) (*world.Chunk, error) {
	c.mu.Lock()
	if e, ok := c.entries[origin]; ok {
		e.lastAccess = time.Now()
		c.mu.Unlock()
		c.recordHit()
		return e.chunk, nil
	}
	c.mu.Unlock()
	c.recordMiss()

	result, err, _ := c.group.Do(origin.String(), func() (any, error) {
		// Re-check: another goroutine may have populated this origin
		// between the miss above and acquiring the singleflight slot.
		c.mu.Lock()
		if e, ok := c.entries[origin]; ok {
			c.mu.Unlock()
			return e.chunk, nil
		}
		c.mu.Unlock()

		chunk, err := c.generate(origin)
		if err != nil {
			return nil, err
		}

		now := time.Now()
		c.mu.Lock()
		c.entries[origin] = &cacheEntry{chunk: chunk, createdAt: now, lastAccess: now}
		c.mu.Unlock()

		c.totalGenerated.Add(1)
		if c.metrics != nil {
			c.metrics.TotalGenerated.Inc()
			c.metrics.Cached.Set(float64(c.Len()))
		}
		return chunk, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*world.Chunk), nil
}

func (c *Cache) recordHit() {
	c.hits.Add(1)
	if c.metrics != nil {
		c.metrics.Hits.Inc()
	}
}

func (c *Cache) recordMiss() {
	c.misses.Add(1)
	if c.metrics != nil {
		c.metrics.Misses.Inc()
	}
}

// Len reports how many chunks are currently cached.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// EvictExpired removes every entry whose age (relative to now) exceeds
// the cache's TTL. An in-flight generation is never in c.entries yet,
// so eviction can never race with it — the singleflight group pins the
// key until the entry is actually written under c.mu.
func (c *Cache) EvictExpired(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for origin, e := range c.entries {
		if now.Sub(e.createdAt) > c.ttl {
			delete(c.entries, origin)
			removed++
		}
	}
	if c.metrics != nil {
		c.metrics.Cached.Set(float64(len(c.entries)))
	}
	return removed
}

// EnforceCap evicts the least-recently-accessed entries until the cache
// is at or under maxSize. A no-op if maxSize is disabled or not exceeded.
func (c *Cache) EnforceCap() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxSize <= 0 || len(c.entries) <= c.maxSize {
		return 0
	}

	type ranked struct {
		origin     world.Vec3
		lastAccess time.Time
	}
	all := make([]ranked, 0, len(c.entries))
	for origin, e := range c.entries {
		all = append(all, ranked{origin, e.lastAccess})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].lastAccess.Before(all[j].lastAccess) })

	toRemove := len(c.entries) - c.maxSize
	for i := 0; i < toRemove; i++ {
		delete(c.entries, all[i].origin)
	}
	if c.metrics != nil {
		c.metrics.Cached.Set(float64(len(c.entries)))
	}
	return toRemove
}

// Run periodically applies EvictExpired and EnforceCap until stop is
// closed. Eviction only ever touches the cache's own bookkeeping, not
// session or world state, so it is safe to run off the event loop.
func (c *Cache) Run(stop <-chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			if removed := c.EvictExpired(now); removed > 0 {
				c.log.Debug().Int("removed", removed).Msg("evicted expired chunks")
			}
			if removed := c.EnforceCap(); removed > 0 {
				c.log.Debug().Int("removed", removed).Msg("evicted over-capacity chunks")
			}
		}
	}
}

// PopulateArea eagerly generates every chunk origin within radius chunks
// of the world origin in the X/Z plane, concurrently, subject to the
// same single-flight guarantee as any other Get.
func (c *Cache) PopulateArea(radius int) {
	var wg sync.WaitGroup
	for cx := -radius; cx <= radius; cx++ {
		for cz := -radius; cz <= radius; cz++ {
			origin := world.WorldOrigin(cx, 0, cz)
			wg.Add(1)
			go func(origin world.Vec3) {
				defer wg.Done()
				if _, err := c.Get(origin); err != nil {
					c.log.Warn().Err(err).Str("origin", origin.String()).Msg("initial chunk population failed")
				}
			}(origin)
		}
	}
	wg.Wait()
}

// Stats is a point-in-time snapshot of cache health, matching the fields
// an operator dashboard or diagnostics endpoint wants to surface.
type Stats struct {
	Cached         int
	TotalGenerated int64
	Hits           int64
	Misses         int64
	HitRate        float64
}

func (c *Cache) Stats() Stats {
	hits := c.hits.Load()
	misses := c.misses.Load()
	total := hits + misses

	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return Stats{
		Cached:         c.Len(),
		TotalGenerated: c.totalGenerated.Load(),
		Hits:           hits,
		Misses:         misses,
		HitRate:        hitRate,
	}
}
