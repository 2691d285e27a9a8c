package openmeteo

import (
	"context"
	"fmt"
	"sync"

	"github.com/couchcryptid/nivo-observations/internal/domain"
	"github.com/couchcryptid/nivo-observations/internal/observability"
)

// CachedElevation wraps an ElevationProvider with an in-memory LRU cache.
// Coordinates are keyed at 1e-4 degrees (about 10 m), well under the DEM resolution.
type CachedElevation struct {
	inner   domain.ElevationProvider
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedElevation creates a cache decorator around a provider.
func NewCachedElevation(inner domain.ElevationProvider, maxEntries int, metrics *observability.Metrics) *CachedElevation {
	return &CachedElevation{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

func (c *CachedElevation) Elevation(ctx context.Context, lat, lon float64) (int, bool, error) {
	key := fmt.Sprintf("%.4f,%.4f", lat, lon)
	if meters, ok := c.cache.get(key); ok {
		c.metrics.ElevationCache.WithLabelValues("hit").Inc()
		return meters, true, nil
	}
	c.metrics.ElevationCache.WithLabelValues("miss").Inc()

	meters, ok, err := c.inner.Elevation(ctx, lat, lon)
	if err != nil {
		return 0, false, err
	}
	// Only cache found points so transient "no data" responses can be retried.
	if ok {
		c.cache.put(key, meters)
	}
	return meters, ok, nil
}

// lruCache is a simple thread-safe LRU cache of elevations in meters.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value int
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return 0, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
