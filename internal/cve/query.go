// Menaxa - Security Intelligence Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/menaxa

package cve

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/tomtom215/menaxa/internal/models"
	"github.com/tomtom215/menaxa/internal/pagination"
	"github.com/tomtom215/menaxa/internal/store"
)

// snapshot is a consistent view of the catalog for one request.
type snapshot struct {
	catalog     []string
	eager       map[string][]models.Record
	lastUpdated time.Time
}

func (s *Service) ensureFresh(ctx context.Context, key string) {
	s.freshMu.RLock()
	f := s.freshener
	s.freshMu.RUnlock()
	if f != nil {
		f.EnsureFresh(ctx, key, s.now())
	}
}

// ensureLoaded returns the current snapshot, running one catalog refresh
// first if none has succeeded yet.
func (s *Service) ensureLoaded(ctx context.Context) (snapshot, error) {
	if snap, ok := s.current(); ok {
		return snap, nil
	}
	if err := s.RefreshCatalog(ctx); err != nil {
		return snapshot{}, fmt.Errorf("%w: CVE data not yet loaded: %v", store.ErrStoreUnavailable, err)
	}
	snap, _ := s.current()
	return snap, nil
}

func (s *Service) current() (snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return snapshot{}, false
	}
	return snapshot{catalog: s.catalog, eager: s.eager, lastUpdated: s.lastUpdated}, true
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

// YearPage serves one page of a single year. The current year is refreshed
// from upstream first when stale.
func (s *Service) YearPage(ctx context.Context, year string, req pagination.Request) (*models.YearPage, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if !store.ValidKey(year) {
		return nil, fmt.Errorf("%w: no CVE data found for year %s", store.ErrPartitionNotFound, year)
	}

	s.ensureFresh(ctx, year)
	snap, err := s.ensureLoaded(ctx)
	if err != nil {
		return nil, err
	}

	var records []models.Record
	if s.lowMemory {
		records, err = s.partCache.GetOrLoad(year)
		if err != nil {
			return nil, err
		}
	} else {
		var ok bool
		records, ok = snap.eager[year]
		if !ok {
			return nil, fmt.Errorf("%w: no CVE data found for year %s", store.ErrPartitionNotFound, year)
		}
	}

	page, err := pagination.Scoped(records, req)
	if err != nil {
		return nil, err
	}
	return &models.YearPage{
		LastUpdated:  formatTime(snap.lastUpdated),
		Year:         year,
		TotalRecords: page.TotalRecords,
		TotalPages:   page.TotalPages,
		CurrentPage:  page.CurrentPage,
		PageSize:     page.PageSize,
		Data:         page.Records,
	}, nil
}

// AllYearsPage serves one page across every year, newest first. The current
// year is refreshed from upstream first when stale.
//
// In low-memory mode the partition list is re-read from disk so a year file
// that appeared since the last catalog refresh is included.
func (s *Service) AllYearsPage(ctx context.Context, req pagination.Request) (*models.AllYearsPage, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	s.ensureFresh(ctx, "")
	snap, err := s.ensureLoaded(ctx)
	if err != nil {
		return nil, err
	}

	keys := snap.catalog
	var src pagination.Source
	if s.lowMemory {
		keys, err = s.store.ListPartitionKeys()
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.catalog = keys
		s.mu.Unlock()
		src = lazySource{s}
	} else {
		src = eagerSource(snap.eager)
	}

	page, err := pagination.Unscoped(keys, src, req)
	if err != nil {
		return nil, err
	}
	return &models.AllYearsPage{
		PageInfo: models.PageInfo{
			LastUpdated:  formatTime(snap.lastUpdated),
			TotalRecords: page.TotalRecords,
			TotalPages:   page.TotalPages,
			CurrentPage:  page.CurrentPage,
			PageSize:     page.PageSize,
			Data:         page.Records,
		},
		AvailableYears: slices.Clone(keys),
	}, nil
}

// lazySource loads partitions through the bounded cache and answers counts
// from the cache or the count index.
type lazySource struct{ s *Service }

func (l lazySource) Count(key string) (int, bool) {
	if records, ok := l.s.partCache.Peek(key); ok {
		return len(records), true
	}
	fp, err := l.s.store.Stat(key)
	if err != nil {
		return 0, false
	}
	return l.s.counts.Get(key, fp)
}

func (l lazySource) Load(key string) ([]models.Record, error) {
	return l.s.partCache.GetOrLoad(key)
}

// eagerSource serves fully loaded partitions.
type eagerSource map[string][]models.Record

func (e eagerSource) Count(key string) (int, bool) {
	return len(e[key]), true
}

func (e eagerSource) Load(key string) ([]models.Record, error) {
	return e[key], nil
}

// Status is a point-in-time summary for health reporting.
type Status struct {
	Loaded          bool
	LowMemory       bool
	AvailableYears  []string
	CachedYears     []string
	LastUpdated     time.Time
	UpstreamEnabled bool
}

// Status reports catalog and cache state.
func (s *Service) Status() Status {
	s.mu.RLock()
	st := Status{
		Loaded:         s.loaded,
		LowMemory:      s.lowMemory,
		AvailableYears: slices.Clone(s.catalog),
		LastUpdated:    s.lastUpdated,
	}
	s.mu.RUnlock()

	if s.lowMemory {
		st.CachedYears = s.partCache.Keys()
	} else {
		st.CachedYears = slices.Clone(st.AvailableYears)
	}
	st.UpstreamEnabled = s.store.UpstreamEnabled()
	return st
}
