// Menaxa - Security Intelligence Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/menaxa

package cache

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/menaxa/internal/metrics"
	"github.com/tomtom215/menaxa/internal/store"
)

// CountIndexType selects the count index backend.
type CountIndexType string

const (
	// CountIndexMemory keeps counts for the life of the process.
	CountIndexMemory CountIndexType = "memory"

	// CountIndexBadger persists counts across restarts.
	CountIndexBadger CountIndexType = "badger"
)

// ErrCountIndexClosed is returned after Close.
var ErrCountIndexClosed = errors.New("count index closed")

// CountIndex remembers how many filtered records each partition file holds.
// Entries are never evicted; an entry whose fingerprint no longer matches the
// file on disk is treated as missing.
type CountIndex interface {
	Get(key string, fp store.Fingerprint) (int, bool)
	Put(key string, fp store.Fingerprint, count int) error
	Close() error
}

// NewCountIndex opens the configured backend. path is only used by badger;
// an empty path opens an in-memory badger instance.
func NewCountIndex(kind CountIndexType, path string) (CountIndex, error) {
	switch kind {
	case CountIndexMemory, "":
		return NewMemoryCountIndex(), nil
	case CountIndexBadger:
		opts := badger.DefaultOptions(path)
		if path == "" {
			opts = opts.WithInMemory(true)
		}
		opts.Logger = nil // Suppress BadgerDB logs

		db, err := badger.Open(opts)
		if err != nil {
			return nil, fmt.Errorf("open badger db for count index: %w", err)
		}
		return NewBadgerCountIndex(db, true), nil
	default:
		return nil, fmt.Errorf("unknown count index backend %q", kind)
	}
}

type countEntry struct {
	Size    int64 `json:"size"`
	ModTime int64 `json:"mtime_ns"`
	Count   int   `json:"count"`
}

func (e countEntry) matches(fp store.Fingerprint) bool {
	return e.Size == fp.Size && e.ModTime == fp.ModTime.UnixNano()
}

func newCountEntry(fp store.Fingerprint, count int) countEntry {
	return countEntry{Size: fp.Size, ModTime: fp.ModTime.UnixNano(), Count: count}
}

func recordLookup(hit bool) {
	if hit {
		metrics.CacheHits.WithLabelValues(metrics.CacheCountIndex).Inc()
	} else {
		metrics.CacheMisses.WithLabelValues(metrics.CacheCountIndex).Inc()
	}
}

// MemoryCountIndex is the in-process CountIndex.
type MemoryCountIndex struct {
	mu      sync.RWMutex
	entries map[string]countEntry
}

// NewMemoryCountIndex creates an empty in-memory index.
func NewMemoryCountIndex() *MemoryCountIndex {
	return &MemoryCountIndex{entries: make(map[string]countEntry)}
}

// Get returns the stored count when the fingerprint still matches.
func (m *MemoryCountIndex) Get(key string, fp store.Fingerprint) (int, bool) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	hit := ok && e.matches(fp)
	recordLookup(hit)
	if !hit {
		return 0, false
	}
	return e.Count, true
}

// Put stores count for key at fingerprint fp.
func (m *MemoryCountIndex) Put(key string, fp store.Fingerprint, count int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entries == nil {
		return ErrCountIndexClosed
	}
	m.entries[key] = newCountEntry(fp, count)
	metrics.CacheSize.WithLabelValues(metrics.CacheCountIndex).Set(float64(len(m.entries)))
	return nil
}

// Close drops every entry.
func (m *MemoryCountIndex) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = nil
	return nil
}

const badgerCountKeyPrefix = "cve_count:"

// BadgerCountIndex stores counts in BadgerDB so a restart does not need to
// rescan every partition to answer unscoped page totals.
type BadgerCountIndex struct {
	db     *badger.DB
	owned  bool
	closed bool
	mu     sync.RWMutex
}

// NewBadgerCountIndex wraps db. When owned is true Close also closes db.
func NewBadgerCountIndex(db *badger.DB, owned bool) *BadgerCountIndex {
	return &BadgerCountIndex{db: db, owned: owned}
}

func (b *BadgerCountIndex) makeKey(key string) []byte {
	return []byte(badgerCountKeyPrefix + key)
}

// Get returns the stored count when the fingerprint still matches. Read
// errors are reported as misses.
func (b *BadgerCountIndex) Get(key string, fp store.Fingerprint) (int, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return 0, false
	}

	var e countEntry
	found := false
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(b.makeKey(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &e)
		})
	})

	hit := err == nil && found && e.matches(fp)
	recordLookup(hit)
	if !hit {
		return 0, false
	}
	return e.Count, true
}

// Put stores count for key at fingerprint fp, replacing any older entry.
func (b *BadgerCountIndex) Put(key string, fp store.Fingerprint, count int) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrCountIndexClosed
	}

	data, err := json.Marshal(newCountEntry(fp, count))
	if err != nil {
		return fmt.Errorf("marshal count entry: %w", err)
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(b.makeKey(key), data)
	})
}

// Close marks the index closed and closes the DB when it is owned.
func (b *BadgerCountIndex) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	if b.owned {
		return b.db.Close()
	}
	return nil
}

