// Menaxa - Security Intelligence Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/menaxa

/*
Package sync keeps Menaxa's on-disk data current.

Key Components:

  - UpstreamClient: pulls <year>.json documents from the CVE mirror, paced by
    a token bucket (golang.org/x/time/rate) and guarded by a circuit breaker
    (sony/gobreaker). It implements store.Fetcher.
  - Synchronizer: read-path freshness. Before a read touching the current
    year, it asks the store to refresh that partition if the file is older
    than the configured max age (6h by default).
  - Manager: the background cycle, every 5 minutes and once at startup. It
    syncs the current year and then reloads the feeds and the CVE catalog.

Upstream failures never reach readers. They are logged, counted in
upstream_pulls_total{result="failed"} and the existing file keeps serving.

Usage Example:

	client := sync.NewUpstreamClient(&cfg.Upstream)
	st := store.New(afero.NewOsFs(), cfg.CVEDir(), store.WithFetcher(client), store.WithMaxAge(cfg.MaxAge()))

	syncer := sync.NewSynchronizer(st, cves.PartitionUpdated)
	manager := sync.NewManager(syncer, feedRegistry, cves, cfg.Sync.Interval)
	if err := manager.Start(ctx, true); err != nil {
	    return err
	}
	defer manager.Stop()

	// From POST /refresh
	manager.TriggerRefresh()
*/
package sync
