// Package scripturecache memoizes fetched readings by reference.
package scripturecache

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/golang/groupcache/lru"

	"lectio/internal/scripture"
)

// Stats is a point-in-time view of cache activity.
type Stats struct {
	Entries    int    `json:"entries"`
	MaxEntries int    `json:"max_entries"`
	Hits       uint64 `json:"hits"`
	Misses     uint64 `json:"misses"`
	Evictions  uint64 `json:"evictions"`
}

// Cache maps references to readings. The map is authoritative; when a bound
// is set, an LRU list tracks recency and evicts from the map.
type Cache struct {
	mu         sync.RWMutex
	maxEntries int
	entries    map[scripture.Reference]scripture.Reading
	recent     *lru.Cache

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// New returns a cache holding at most maxEntries readings; 0 is unbounded.
func New(maxEntries int) *Cache {
	if maxEntries < 0 {
		maxEntries = 0
	}
	c := &Cache{maxEntries: maxEntries}
	c.reset()
	return c
}

func (c *Cache) reset() {
	c.entries = make(map[scripture.Reference]scripture.Reading)
	c.recent = nil
	if c.maxEntries == 0 {
		return
	}
	c.recent = lru.New(c.maxEntries)
	c.recent.OnEvicted = func(key lru.Key, _ interface{}) {
		delete(c.entries, key.(scripture.Reference))
		c.evictions.Add(1)
	}
}

// Get returns the cached reading for ref. It never waits on a fetch.
func (c *Cache) Get(ref scripture.Reference) (scripture.Reading, bool) {
	var (
		reading scripture.Reading
		ok      bool
	)
	if c.maxEntries > 0 {
		c.mu.Lock()
		reading, ok = c.entries[ref]
		if ok {
			c.recent.Get(ref)
		}
		c.mu.Unlock()
	} else {
		c.mu.RLock()
		reading, ok = c.entries[ref]
		c.mu.RUnlock()
	}
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return reading, ok
}

// Store inserts or replaces the reading for ref. Last writer wins.
func (c *Cache) Store(ref scripture.Reference, reading scripture.Reading) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[ref] = reading
	if c.recent != nil {
		c.recent.Add(ref, struct{}{})
	}
}

// Len reports the number of cached readings.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns counters and size.
func (c *Cache) Stats() Stats {
	return Stats{
		Entries:    c.Len(),
		MaxEntries: c.maxEntries,
		Hits:       c.hits.Load(),
		Misses:     c.misses.Load(),
		Evictions:  c.evictions.Load(),
	}
}

// Clear drops every entry. Counters are kept.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
}

// Readings returns a snapshot of every cached reading ordered by title.
func (c *Cache) Readings() []scripture.Reading {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]scripture.Reading, 0, len(c.entries))
	for _, r := range c.entries {
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Title < out[j].Title
	})
	return out
}
