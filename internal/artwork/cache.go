package artwork

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"
	"github.com/golang/groupcache/lru"

	"lectio/internal/fileutil"
)

const lockFileName = ".lock"

// CacheStats reports image cache activity.
type CacheStats struct {
	MemoryEntries int    `json:"memory_entries"`
	MaxEntries    int    `json:"max_entries"`
	MemoryHits    uint64 `json:"memory_hits"`
	DiskHits      uint64 `json:"disk_hits"`
	Misses        uint64 `json:"misses"`
}

// Cache stores JPEG bytes by key in memory and, when dir is set, on disk
// under <dir>/<k[:2]>/<k>.jpg. Disk writes are atomic and serialized across
// processes with a file lock.
type Cache struct {
	dir string

	mu         sync.RWMutex
	maxEntries int
	memory     map[string][]byte
	recent     *lru.Cache

	// writeMu serializes writers in this process; lock covers other processes.
	writeMu sync.Mutex
	lock    *flock.Flock

	memoryHits atomic.Uint64
	diskHits   atomic.Uint64
	misses     atomic.Uint64
}

// NewCache builds an image cache. An empty dir keeps images in memory only;
// maxEntries bounds the memory tier (0 is unbounded).
func NewCache(dir string, maxEntries int) (*Cache, error) {
	if maxEntries < 0 {
		maxEntries = 0
	}
	c := &Cache{dir: dir, maxEntries: maxEntries, memory: make(map[string][]byte)}
	if maxEntries > 0 {
		c.recent = lru.New(maxEntries)
		c.recent.OnEvicted = func(key lru.Key, _ interface{}) {
			delete(c.memory, key.(string))
		}
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create image cache dir: %w", err)
		}
		c.lock = flock.New(filepath.Join(dir, lockFileName))
	}
	return c, nil
}

// Dir returns the disk cache directory, or "" when disk caching is off.
func (c *Cache) Dir() string {
	return c.dir
}

// Path returns the disk location for key.
func (c *Cache) Path(key string) string {
	if c.dir == "" || len(key) < 2 {
		return ""
	}
	return filepath.Join(c.dir, key[:2], key+".jpg")
}

// Get looks in memory, then on disk. Disk hits are promoted to memory.
func (c *Cache) Get(key string) ([]byte, string, bool) {
	if data, ok := c.getMemory(key); ok {
		c.memoryHits.Add(1)
		return data, SourceMemory, true
	}
	if path := c.Path(key); path != "" {
		data, err := os.ReadFile(path)
		if err == nil && len(data) > 0 {
			c.diskHits.Add(1)
			c.putMemory(key, data)
			return data, SourceDisk, true
		}
	}
	c.misses.Add(1)
	return nil, "", false
}

// Put stores data in memory and on disk. The memory tier is always updated;
// the returned error reports a disk failure.
func (c *Cache) Put(key string, data []byte) error {
	c.putMemory(key, data)
	path := c.Path(key)
	if path == "" {
		return nil
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.lock.Lock(); err != nil {
		return fmt.Errorf("lock image cache: %w", err)
	}
	defer func() {
		_ = c.lock.Unlock()
	}()
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("write cached image: %w", err)
	}
	return nil
}

// Remove drops key from both tiers.
func (c *Cache) Remove(key string) error {
	c.mu.Lock()
	delete(c.memory, key)
	if c.recent != nil {
		c.recent.Remove(key)
	}
	c.mu.Unlock()
	if path := c.Path(key); path != "" {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// Stats returns a snapshot of the counters.
func (c *Cache) Stats() CacheStats {
	c.mu.RLock()
	entries := len(c.memory)
	c.mu.RUnlock()
	return CacheStats{
		MemoryEntries: entries,
		MaxEntries:    c.maxEntries,
		MemoryHits:    c.memoryHits.Load(),
		DiskHits:      c.diskHits.Load(),
		Misses:        c.misses.Load(),
	}
}

func (c *Cache) getMemory(key string) ([]byte, bool) {
	if c.recent != nil {
		c.mu.Lock()
		defer c.mu.Unlock()
		data, ok := c.memory[key]
		if ok {
			c.recent.Get(key)
		}
		return data, ok
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	data, ok := c.memory[key]
	return data, ok
}

func (c *Cache) putMemory(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.memory[key] = data
	if c.recent != nil {
		c.recent.Add(key, struct{}{})
	}
}
