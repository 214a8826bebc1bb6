package ping

import "sync"

// DefaultMaxCacheLength is the capacity used when none is configured.
const DefaultMaxCacheLength = 1000

// Cache is a bounded, insertion-ordered set of accepted records keyed by
// PingID. When an insert pushes it past capacity the oldest record is evicted.
// It is safe for concurrent use.
type Cache struct {
	mu       sync.RWMutex
	capacity int
	records  []Record
	index    map[float64]struct{}
}

// NewCache returns an empty cache. A non-positive capacity falls back to
// DefaultMaxCacheLength.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultMaxCacheLength
	}
	return &Cache{
		capacity: capacity,
		records:  make([]Record, 0, capacity+1),
		index:    make(map[float64]struct{}, capacity+1),
	}
}

// Insert stores r unless a record with the same PingID is already cached.
// The first write for a PingID wins. It reports whether r was stored.
func (c *Cache) Insert(r Record) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.index[r.PingID]; ok {
		return false
	}

	c.records = append(c.records, r)
	c.index[r.PingID] = struct{}{}

	if len(c.records) > c.capacity {
		oldest := c.records[0]
		delete(c.index, oldest.PingID)
		copy(c.records, c.records[1:])
		c.records = c.records[:len(c.records)-1]
	}
	return true
}

// Len returns the number of cached records.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

// Cap returns the configured capacity.
func (c *Cache) Cap() int {
	return c.capacity
}

// Records returns a copy of the cached records, oldest first.
func (c *Cache) Records() []Record {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Record, len(c.records))
	copy(out, c.records)
	return out
}

// Samples returns the ResponseTime of every cached record, oldest first.
func (c *Cache) Samples() []float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]float64, len(c.records))
	for i, r := range c.records {
		out[i] = r.ResponseTime
	}
	return out
}
