// Menaxa - Security Intelligence Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/menaxa

package sync

import (
	"context"
	"strconv"
	"time"

	"github.com/tomtom215/menaxa/internal/logging"
	"github.com/tomtom215/menaxa/internal/metrics"
)

// PartitionRefresher is the part of store.Store the synchronizer needs.
type PartitionRefresher interface {
	RefreshPartition(ctx context.Context, key string, force bool) (bool, error)
}

// Synchronizer keeps the current-year partition fresh on the read path.
type Synchronizer struct {
	refresher PartitionRefresher
	onUpdated func(key string)
}

// NewSynchronizer creates a synchronizer. onUpdated, when non-nil, is called
// with the key of every partition file a refresh rewrote.
func NewSynchronizer(refresher PartitionRefresher, onUpdated func(key string)) *Synchronizer {
	return &Synchronizer{refresher: refresher, onUpdated: onUpdated}
}

// CurrentKey is the partition key for now's year in UTC.
func CurrentKey(now time.Time) string {
	return strconv.Itoa(now.UTC().Year())
}

// EnsureFresh refreshes key before a read when it names the current year.
// An empty key means an unscoped read, which also covers the current year.
// Historical keys are left alone.
//
// Failures are logged and swallowed; the read proceeds on the disk copy.
func (s *Synchronizer) EnsureFresh(ctx context.Context, key string, now time.Time) bool {
	current := CurrentKey(now)
	if key != "" && key != current {
		return false
	}
	return s.Sync(ctx, current, false)
}

// Sync runs one refresh of key and reports whether the file was rewritten.
func (s *Synchronizer) Sync(ctx context.Context, key string, force bool) bool {
	updated, err := s.refresher.RefreshPartition(ctx, key, force)
	metrics.RecordUpstreamPull(updated, err)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("year", key).Msg("CVE upstream sync skipped")
		return false
	}
	if updated {
		logging.Ctx(ctx).Info().Str("year", key).Msg("Synced CVE year file from upstream")
		if s.onUpdated != nil {
			s.onUpdated(key)
		}
	}
	return updated
}
