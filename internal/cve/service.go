// Menaxa - Security Intelligence Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/menaxa

// Package cve serves the year-partitioned CVE dataset. It owns the partition
// catalog and the bounded partition cache, and answers page requests scoped
// to one year or spanning every year.
package cve

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/tomtom215/menaxa/internal/cache"
	"github.com/tomtom215/menaxa/internal/filter"
	"github.com/tomtom215/menaxa/internal/logging"
	"github.com/tomtom215/menaxa/internal/metrics"
	"github.com/tomtom215/menaxa/internal/models"
	"github.com/tomtom215/menaxa/internal/store"
)

// ErrNoValidData is returned by an eager catalog refresh that found no
// partition with at least one record. The previous catalog stays in place.
var ErrNoValidData = errors.New("no valid CVE data found")

// Freshener refreshes the current-year partition before a read.
type Freshener interface {
	EnsureFresh(ctx context.Context, key string, now time.Time) bool
}

// Options configures a Service.
type Options struct {
	// LowMemory keeps partitions on disk and loads them through the bounded
	// cache. When false every partition is loaded at catalog refresh.
	LowMemory bool

	// MaxPartitions bounds the partition cache in low-memory mode.
	MaxPartitions int

	// Clock defaults to time.Now.
	Clock func() time.Time
}

// Service is the CVE read model shared by the HTTP handlers and the refresh
// manager.
type Service struct {
	store     *store.Store
	counts    cache.CountIndex
	partCache *cache.PartitionCache
	lowMemory bool
	now       func() time.Time

	freshMu   sync.RWMutex
	freshener Freshener

	mu          sync.RWMutex
	loaded      bool
	catalog     []string
	eager       map[string][]models.Record
	lastUpdated time.Time

	// refreshMu serializes catalog refreshes.
	refreshMu sync.Mutex
}

// NewService builds a Service over st. counts may be nil, in which case an
// in-memory count index is used.
func NewService(st *store.Store, counts cache.CountIndex, opts Options) *Service {
	if counts == nil {
		counts = cache.NewMemoryCountIndex()
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}

	s := &Service{
		store:     st,
		counts:    counts,
		lowMemory: opts.LowMemory,
		now:       now,
	}
	s.partCache = cache.NewPartitionCache(opts.MaxPartitions, s.loadPartition)
	return s
}

// SetFreshener installs the read-path synchronizer. It is set after
// construction because the synchronizer reports rewrites back through
// PartitionUpdated.
func (s *Service) SetFreshener(f Freshener) {
	s.freshMu.Lock()
	defer s.freshMu.Unlock()
	s.freshener = f
}

// LowMemory reports the memory mode.
func (s *Service) LowMemory() bool { return s.lowMemory }

// loadPartition reads, filters and counts one partition. It is the partition
// cache's loader.
func (s *Service) loadPartition(key string) ([]models.Record, error) {
	start := time.Now()

	before, statErr := s.store.Stat(key)
	raw, err := s.store.LoadPartitionRaw(key)
	if err != nil {
		recordLoadError(err)
		if errors.Is(err, store.ErrPartitionCorrupt) {
			logging.Error().Err(err).Str("year", key).Msg("CVE partition is corrupt")
		}
		return nil, err
	}
	records := filter.Apply(raw)

	// Only trust the count when the file did not change while being read.
	if statErr == nil {
		if after, err := s.store.Stat(key); err == nil && after.Equal(before) {
			if err := s.counts.Put(key, after, len(records)); err != nil {
				logging.Warn().Err(err).Str("year", key).Msg("Failed to store partition count")
			}
		}
	}

	metrics.PartitionLoadDuration.Observe(time.Since(start).Seconds())
	logging.Debug().Str("year", key).Int("raw", len(raw)).Int("records", len(records)).Msg("CVE partition loaded")
	return records, nil
}

func recordLoadError(err error) {
	errorType := "other"
	switch {
	case errors.Is(err, store.ErrPartitionNotFound):
		errorType = "not_found"
	case errors.Is(err, store.ErrPartitionCorrupt):
		errorType = "corrupt"
	case errors.Is(err, store.ErrStoreUnavailable):
		errorType = "unavailable"
	}
	metrics.PartitionLoadErrors.WithLabelValues(errorType).Inc()
}

// RefreshCatalog recomputes the catalog from the store.
//
// In low-memory mode only the key list is refreshed and the partition cache
// is cleared. In eager mode every partition is loaded and filtered, and
// partitions that filter to nothing are left out. A failed refresh keeps the
// previous state.
func (s *Service) RefreshCatalog(ctx context.Context) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	keys, err := s.store.ListPartitionKeys()
	if err != nil {
		return fmt.Errorf("list CVE partitions: %w", err)
	}

	if s.lowMemory {
		s.partCache.InvalidateAll()

		s.mu.Lock()
		s.catalog = keys
		s.eager = nil
		s.lastUpdated = s.now()
		s.loaded = true
		s.mu.Unlock()

		metrics.CatalogPartitions.Set(float64(len(keys)))
		logging.Ctx(ctx).Info().Int("years", len(keys)).Msg("CVE metadata refreshed in low-memory mode")
		return nil
	}

	data := make(map[string][]models.Record, len(keys))
	kept := make([]string, 0, len(keys))
	total := 0
	for _, key := range keys {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		records, err := s.loadPartition(key)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("year", key).Msg("Skipping CVE partition")
			continue
		}
		if len(records) == 0 {
			continue
		}
		data[key] = records
		kept = append(kept, key)
		total += len(records)
	}

	if len(kept) == 0 {
		logging.Ctx(ctx).Error().Int("files", len(keys)).Msg("No valid CVE data found in files")
		return ErrNoValidData
	}

	s.mu.Lock()
	s.catalog = kept
	s.eager = data
	s.lastUpdated = s.now()
	s.loaded = true
	s.mu.Unlock()

	metrics.CatalogPartitions.Set(float64(len(kept)))
	logging.Ctx(ctx).Info().Int("records", total).Int("years", len(kept)).Msg("CVE cache refreshed")
	return nil
}

// PartitionUpdated reacts to a refresh that rewrote key's file: the cached
// copy is dropped and, in eager mode, the partition is reloaded. A key new to
// the catalog is added to it.
func (s *Service) PartitionUpdated(key string) {
	s.partCache.Invalidate(key)

	if s.lowMemory {
		s.mu.Lock()
		if s.loaded && !slices.Contains(s.catalog, key) {
			s.catalog = insertKey(s.catalog, key)
		}
		s.mu.Unlock()
		return
	}

	records, err := s.loadPartition(key)
	if err != nil {
		logging.Warn().Err(err).Str("year", key).Msg("Reload after upstream sync failed")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return
	}
	// Copy on write; readers may hold the old map.
	data := make(map[string][]models.Record, len(s.eager)+1)
	for k, v := range s.eager {
		data[k] = v
	}
	catalog := slices.Clone(s.catalog)
	if len(records) == 0 {
		delete(data, key)
		catalog = slices.DeleteFunc(catalog, func(k string) bool { return k == key })
	} else {
		data[key] = records
		if !slices.Contains(catalog, key) {
			catalog = insertKey(catalog, key)
		}
	}
	s.eager = data
	s.catalog = catalog
}

// insertKey returns keys with key added, keeping descending order.
func insertKey(keys []string, key string) []string {
	out := make([]string, 0, len(keys)+1)
	out = append(out, keys...)
	out = append(out, key)
	slices.SortFunc(out, func(a, b string) int { return strings.Compare(b, a) })
	return out
}
