package mapbox

import (
	"context"
	"fmt"
	"sync"

	"github.com/couchcryptid/hazard-map-overlay/internal/observability"
)

// Namer resolves a place name at a coordinate.
type Namer interface {
	PlaceName(ctx context.Context, lat, lon float64) (string, error)
}

// CachedNamer wraps a Namer with an in-memory LRU cache. Coordinates are
// keyed at three decimals, roughly 100 m.
type CachedNamer struct {
	inner   Namer
	cache   *lruCache[string, string]
	metrics *observability.Metrics
}

// NewCachedNamer creates a cache decorator around a namer.
func NewCachedNamer(inner Namer, maxEntries int, metrics *observability.Metrics) *CachedNamer {
	return &CachedNamer{
		inner:   inner,
		cache:   newLRUCache[string, string](maxEntries),
		metrics: metrics,
	}
}

// PlaceName returns the cached name or asks the wrapped namer.
func (c *CachedNamer) PlaceName(ctx context.Context, lat, lon float64) (string, error) {
	key := fmt.Sprintf("%.3f,%.3f", lat, lon)
	if name, ok := c.cache.get(key); ok {
		c.metrics.GeocodeCache.WithLabelValues("hit").Inc()
		return name, nil
	}
	c.metrics.GeocodeCache.WithLabelValues("miss").Inc()

	name, err := c.inner.PlaceName(ctx, lat, lon)
	if err != nil {
		return "", err
	}
	// Only cache names so open ocean can be retried against a better dataset.
	if name != "" {
		c.cache.put(key, name)
	}
	return name, nil
}

// lruCache is a thread-safe LRU cache.
type lruCache[K comparable, V any] struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[K]*entry[K, V]
	head       *entry[K, V] // most recently used
	tail       *entry[K, V] // least recently used
}

type entry[K comparable, V any] struct {
	key   K
	value V
	prev  *entry[K, V]
	next  *entry[K, V]
}

func newLRUCache[K comparable, V any](maxEntries int) *lruCache[K, V] {
	return &lruCache[K, V]{
		maxEntries: maxEntries,
		entries:    make(map[K]*entry[K, V]),
	}
}

func (c *lruCache[K, V]) get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache[K, V]) put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry[K, V]{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache[K, V]) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *lruCache[K, V]) moveToFront(e *entry[K, V]) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache[K, V]) addToFront(e *entry[K, V]) {
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

func (c *lruCache[K, V]) remove(e *entry[K, V]) {
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

func (c *lruCache[K, V]) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
