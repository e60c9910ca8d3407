// Menaxa - Security Intelligence Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/menaxa

package cache

import (
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/menaxa/internal/metrics"
	"github.com/tomtom215/menaxa/internal/models"
)

// DefaultMaxPartitions is the reference working-set bound.
const DefaultMaxPartitions = 2

// Loader produces the filtered records of one partition.
type Loader func(key string) ([]models.Record, error)

type partitionEntry struct {
	key     string
	records []models.Record
	prev    *partitionEntry
	next    *partitionEntry
}

// PartitionCache is a bounded map from partition key to filtered records.
//
// Eviction is strictly by insertion order (FIFO): reading an entry does not
// move it. The records returned are shared between callers and must be
// treated as read-only.
//
// A capacity of zero disables caching; every GetOrLoad calls the loader.
type PartitionCache struct {
	mu sync.Mutex

	capacity int
	load     Loader
	items    map[string]*partitionEntry

	// head.next is the newest insertion, tail.prev the oldest.
	head *partitionEntry
	tail *partitionEntry

	// generation advances on every invalidation so a load that started
	// before it is not inserted afterwards.
	generation uint64
	flight     singleflight.Group

	hits      int64
	misses    int64
	evictions int64
}

// NewPartitionCache creates a cache holding at most capacity partitions.
// Negative capacities are treated as zero.
func NewPartitionCache(capacity int, load Loader) *PartitionCache {
	if capacity < 0 {
		capacity = 0
	}
	c := &PartitionCache{
		capacity: capacity,
		load:     load,
		items:    make(map[string]*partitionEntry, capacity),
		head:     &partitionEntry{},
		tail:     &partitionEntry{},
	}
	c.head.next = c.tail
	c.tail.prev = c.head
	return c
}

// Capacity returns the configured bound.
func (c *PartitionCache) Capacity() int { return c.capacity }

// GetOrLoad returns key's records, loading and inserting them on a miss.
// Concurrent misses for the same key share one load. Load errors are not
// cached and leave existing entries untouched.
func (c *PartitionCache) GetOrLoad(key string) ([]models.Record, error) {
	if c.capacity == 0 {
		c.mu.Lock()
		c.misses++
		c.mu.Unlock()
		metrics.CacheMisses.WithLabelValues(metrics.CachePartition).Inc()
		return c.load(key)
	}

	c.mu.Lock()
	if entry, ok := c.items[key]; ok {
		c.hits++
		c.mu.Unlock()
		metrics.CacheHits.WithLabelValues(metrics.CachePartition).Inc()
		return entry.records, nil
	}
	c.misses++
	c.mu.Unlock()
	metrics.CacheMisses.WithLabelValues(metrics.CachePartition).Inc()

	v, err, _ := c.flight.Do(key, func() (interface{}, error) {
		c.mu.Lock()
		gen := c.generation
		c.mu.Unlock()

		records, err := c.load(key)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if c.generation == gen {
			c.insert(key, records)
		}
		c.mu.Unlock()
		return records, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.Record), nil
}

// Peek returns key's records without loading.
func (c *PartitionCache) Peek(key string) ([]models.Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, ok := c.items[key]; ok {
		return entry.records, true
	}
	return nil, false
}

// Invalidate drops key. It reports whether an entry was present.
func (c *PartitionCache) Invalidate(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	entry, ok := c.items[key]
	if !ok {
		return false
	}
	c.removeEntry(entry)
	c.evictions++
	metrics.CacheEvictions.WithLabelValues(metrics.CachePartition).Inc()
	metrics.CacheSize.WithLabelValues(metrics.CachePartition).Set(float64(len(c.items)))
	return true
}

// InvalidateAll clears every entry and the insertion ledger.
func (c *PartitionCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.items = make(map[string]*partitionEntry, c.capacity)
	c.head.next = c.tail
	c.tail.prev = c.head
	metrics.CacheSize.WithLabelValues(metrics.CachePartition).Set(0)
}

// Keys returns the cached keys, oldest insertion first.
func (c *PartitionCache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.items))
	for e := c.tail.prev; e != c.head; e = e.prev {
		keys = append(keys, e.key)
	}
	return keys
}

// Len returns the number of cached partitions.
func (c *PartitionCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats returns hit, miss and eviction counts and the current size.
func (c *PartitionCache) Stats() (hits, misses, evictions int64, size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses, c.evictions, len(c.items)
}

// insert must be called with mu held.
func (c *PartitionCache) insert(key string, records []models.Record) {
	if entry, ok := c.items[key]; ok {
		// Replacing keeps the original insertion position.
		entry.records = records
		return
	}

	entry := &partitionEntry{key: key, records: records}
	entry.prev = c.head
	entry.next = c.head.next
	c.head.next.prev = entry
	c.head.next = entry
	c.items[key] = entry

	for len(c.items) > c.capacity {
		oldest := c.tail.prev
		if oldest == c.head {
			break
		}
		c.removeEntry(oldest)
		c.evictions++
		metrics.CacheEvictions.WithLabelValues(metrics.CachePartition).Inc()
	}
	metrics.CacheSize.WithLabelValues(metrics.CachePartition).Set(float64(len(c.items)))
}

func (c *PartitionCache) removeEntry(entry *partitionEntry) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
	delete(c.items, entry.key)
}
