package catalog

import (
	"github.com/dgraph-io/ristretto"
)

const catalogKey = "catalog"

// readCache caches the decoded catalog between file reads. Saves
// invalidate the single entry so the next load hits the disk.
type readCache struct {
	cache *ristretto.Cache
}

func newReadCache(maxEntries int64) (*readCache, error) {
	if maxEntries <= 0 {
		maxEntries = 64
	}
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &readCache{cache: cache}, nil
}

func (c *readCache) Get() ([]Course, bool) {
	value, ok := c.cache.Get(catalogKey)
	if !ok {
		return nil, false
	}
	courses, ok := value.([]Course)
	if !ok {
		return nil, false
	}
	// Hand out a copy; callers append to and mutate what Load returns.
	snapshot := make([]Course, len(courses))
	copy(snapshot, courses)
	return snapshot, true
}

func (c *readCache) Set(courses []Course) {
	// Copy before caching so later appends by callers do not alias the
	// cached slice.
	snapshot := make([]Course, len(courses))
	copy(snapshot, courses)
	c.cache.Set(catalogKey, snapshot, 1)
	c.cache.Wait()
}

func (c *readCache) Invalidate() {
	c.cache.Del(catalogKey)
	c.cache.Wait()
}
