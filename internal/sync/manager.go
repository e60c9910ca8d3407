// Menaxa - Security Intelligence Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/menaxa

package sync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/menaxa/internal/logging"
	"github.com/tomtom215/menaxa/internal/metrics"
)

// DefaultInterval is the background refresh period.
const DefaultInterval = 5 * time.Minute

// FeedLoader reloads every auxiliary feed. It returns the names of feeds
// that failed.
type FeedLoader interface {
	LoadAll(ctx context.Context) []string
}

// CatalogRefresher recomputes the CVE partition catalog.
type CatalogRefresher interface {
	RefreshCatalog(ctx context.Context) error
}

// Manager runs the periodic refresh cycle. Each cycle syncs the current year
// from upstream before reloading the feeds and the CVE catalog. A cycle runs on
// Start and then on a fixed interval; TriggerRefresh adds one on demand.
type Manager struct {
	synchronizer *Synchronizer
	feeds        FeedLoader
	catalog      CatalogRefresher
	interval     time.Duration
	now          func() time.Time

	// baseCtx outlives requests; triggered cycles run under it.
	baseCtx context.Context

	running  bool
	lastRun  time.Time
	mu       sync.RWMutex
	cycleMu  sync.Mutex // Held for the duration of one cycle
	stopChan chan struct{} // Replaced on every Start so the manager can restart
	wg       sync.WaitGroup
}

// NewManager creates a manager. feeds may be nil.
func NewManager(s *Synchronizer, feeds FeedLoader, catalog CatalogRefresher, interval time.Duration) *Manager {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Manager{
		synchronizer: s,
		feeds:        feeds,
		catalog:      catalog,
		interval:     interval,
		now:          time.Now,
		baseCtx:      context.Background(),
	}
}

// Start runs the first cycle in the background and starts the ticker loop.
func (m *Manager) Start(ctx context.Context, runNow bool) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return fmt.Errorf("refresh manager is already running")
	}
	m.running = true
	m.baseCtx = ctx
	stop := make(chan struct{})
	m.stopChan = stop
	m.mu.Unlock()

	logging.Info().Dur("interval", m.interval).Msg("Starting refresh manager")

	// Add before starting goroutines so Stop never waits on a partial count.
	m.wg.Add(1)
	if runNow {
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			m.RunCycle(ctx)
		}()
	}
	go m.loop(ctx, stop)
	return nil
}

// Stop ends the ticker loop and waits for any cycle in flight.
func (m *Manager) Stop() error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return fmt.Errorf("refresh manager is not running")
	}
	m.running = false
	stop := m.stopChan
	m.mu.Unlock()

	close(stop)
	m.wg.Wait()
	logging.Info().Msg("Refresh manager stopped")
	return nil
}

func (m *Manager) loop(ctx context.Context, stop <-chan struct{}) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.RunCycle(ctx)
		case <-stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

// TriggerRefresh starts a cycle in the background, detached from the caller.
// It returns false without doing anything when a cycle is already running.
func (m *Manager) TriggerRefresh() bool {
	if !m.cycleMu.TryLock() {
		logging.Debug().Msg("Refresh already in progress, trigger ignored")
		return false
	}

	m.mu.RLock()
	ctx := m.baseCtx
	m.mu.RUnlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer m.cycleMu.Unlock()
		m.runCycleLocked(ctx)
	}()
	return true
}

// RunCycle runs one cycle in the calling goroutine, waiting for any cycle
// already in progress.
func (m *Manager) RunCycle(ctx context.Context) {
	m.cycleMu.Lock()
	defer m.cycleMu.Unlock()
	m.runCycleLocked(ctx)
}

// runCycleLocked must be called with cycleMu held. Every stage runs even if an
// earlier one failed.
func (m *Manager) runCycleLocked(ctx context.Context) {
	start := time.Now()
	var failed []string

	key := CurrentKey(m.now())
	if m.synchronizer != nil {
		m.synchronizer.Sync(ctx, key, false)
	}

	if m.feeds != nil {
		if bad := m.feeds.LoadAll(ctx); len(bad) > 0 {
			logging.Warn().Strs("feeds", bad).Msg("Some feeds failed to load")
			failed = append(failed, "feeds")
		}
	}

	if err := m.catalog.RefreshCatalog(ctx); err != nil {
		logging.Error().Err(err).Msg("CVE catalog refresh failed")
		failed = append(failed, "catalog")
	}

	duration := time.Since(start)
	metrics.RecordRefreshCycle(duration, failed...)

	m.mu.Lock()
	m.lastRun = m.now()
	m.mu.Unlock()

	logging.Info().Dur("duration", duration).Int("failed_stages", len(failed)).Msg("Refresh cycle completed")
}

// LastRun returns when the last cycle finished.
func (m *Manager) LastRun() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastRun
}
