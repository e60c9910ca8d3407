// Menaxa - Security Intelligence Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/menaxa

// Package store manages the CVE partition files: one <year>.json document per
// partition under a single directory. It lists partitions, loads their raw
// records and replaces them atomically from an upstream mirror.
package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/menaxa/internal/models"
)

// DefaultMaxAge is how old a partition file may get before a non-forced
// refresh pulls it again.
const DefaultMaxAge = 6 * time.Hour

// DefaultPullTimeout bounds one upstream pull, independent of the caller.
const DefaultPullTimeout = 90 * time.Second

const fileExt = ".json"

// Fetcher pulls one partition document from upstream.
type Fetcher interface {
	// Enabled is false when no upstream is configured; refreshes are then
	// skipped without error.
	Enabled() bool
	FetchPartition(ctx context.Context, key string) ([]byte, error)
}

// Fingerprint identifies one version of a partition file.
type Fingerprint struct {
	Size    int64
	ModTime time.Time
}

// Equal compares size and modification time.
func (f Fingerprint) Equal(o Fingerprint) bool {
	return f.Size == o.Size && f.ModTime.Equal(o.ModTime)
}

// Store is the partition directory.
type Store struct {
	fs          afero.Fs
	dir         string
	maxAge      time.Duration
	pullTimeout time.Duration
	fetcher     Fetcher
	now         func() time.Time
	flight      singleflight.Group
}

// Option configures a Store.
type Option func(*Store)

// WithFetcher sets the upstream used by RefreshPartition.
func WithFetcher(f Fetcher) Option {
	return func(s *Store) { s.fetcher = f }
}

// WithMaxAge overrides DefaultMaxAge.
func WithMaxAge(d time.Duration) Option {
	return func(s *Store) { s.maxAge = d }
}

// WithPullTimeout overrides DefaultPullTimeout.
func WithPullTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.pullTimeout = d
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New returns a Store rooted at dir on fsys.
func New(fsys afero.Fs, dir string, opts ...Option) *Store {
	s := &Store{
		fs:          fsys,
		dir:         dir,
		maxAge:      DefaultMaxAge,
		pullTimeout: DefaultPullTimeout,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dir returns the partition directory.
func (s *Store) Dir() string { return s.dir }

// UpstreamEnabled reports whether RefreshPartition can reach a mirror.
func (s *Store) UpstreamEnabled() bool {
	return s.fetcher != nil && s.fetcher.Enabled()
}

// ValidKey reports whether key looks like a partition key (a 4-digit year).
// Anything else can never name a partition file.
func ValidKey(key string) bool {
	if len(key) != 4 {
		return false
	}
	for _, c := range key {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func (s *Store) partitionPath(key string) string {
	return filepath.Join(s.dir, key+fileExt)
}

// ListPartitionKeys returns every partition key on disk, newest first.
func (s *Store) ListPartitionKeys() ([]string, error) {
	entries, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrStoreUnavailable, s.dir)
		}
		return nil, fmt.Errorf("%w: list %s: %v", ErrStoreUnavailable, s.dir, err)
	}

	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileExt) {
			continue
		}
		key := strings.TrimSuffix(e.Name(), fileExt)
		if ValidKey(key) {
			keys = append(keys, key)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	return keys, nil
}

// Exists reports whether a file exists for key.
func (s *Store) Exists(key string) (bool, error) {
	if !ValidKey(key) {
		return false, nil
	}
	if _, err := s.dirInfo(); err != nil {
		return false, err
	}
	return afero.Exists(s.fs, s.partitionPath(key))
}

// Stat returns the fingerprint of key's file.
func (s *Store) Stat(key string) (Fingerprint, error) {
	if !ValidKey(key) {
		return Fingerprint{}, fmt.Errorf("%w: %q", ErrPartitionNotFound, key)
	}
	fi, err := s.fs.Stat(s.partitionPath(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if _, dirErr := s.dirInfo(); dirErr != nil {
				return Fingerprint{}, dirErr
			}
			return Fingerprint{}, fmt.Errorf("%w: %s", ErrPartitionNotFound, key)
		}
		return Fingerprint{}, fmt.Errorf("stat partition %s: %w", key, err)
	}
	return Fingerprint{Size: fi.Size(), ModTime: fi.ModTime()}, nil
}

// LoadPartitionRaw reads and decodes key's file. The records are unfiltered.
func (s *Store) LoadPartitionRaw(key string) ([]models.Record, error) {
	if !ValidKey(key) {
		return nil, fmt.Errorf("%w: %q", ErrPartitionNotFound, key)
	}
	data, err := afero.ReadFile(s.fs, s.partitionPath(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if _, dirErr := s.dirInfo(); dirErr != nil {
				return nil, dirErr
			}
			return nil, fmt.Errorf("%w: %s", ErrPartitionNotFound, key)
		}
		return nil, fmt.Errorf("read partition %s: %w", key, err)
	}

	p, err := DecodePayload(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrPartitionCorrupt, key, err)
	}
	return p.Records(), nil
}

// RefreshPartition pulls key from upstream and replaces the file when it is
// missing, force is set, or the file is at least maxAge old. It reports
// whether the file was written. On any upstream failure it returns false
// with the cause; the file on disk is left as it was.
//
// Concurrent refreshes of the same key share a single pull. The pull is not
// tied to ctx: it runs to completion (bounded by the pull timeout) even when
// the caller that started it gives up, so other waiters still get its result.
// A caller whose ctx ends first returns ctx.Err().
func (s *Store) RefreshPartition(ctx context.Context, key string, force bool) (bool, error) {
	if !ValidKey(key) {
		return false, fmt.Errorf("%w: %q", ErrPartitionNotFound, key)
	}
	if !s.UpstreamEnabled() {
		return false, nil
	}

	flightKey := key
	if force {
		flightKey += "!"
	}
	pullCtx := context.WithoutCancel(ctx)
	ch := s.flight.DoChan(flightKey, func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(pullCtx, s.pullTimeout)
		defer cancel()
		return s.refresh(ctx, key, force)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return false, res.Err
		}
		return res.Val.(bool), nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

func (s *Store) refresh(ctx context.Context, key string, force bool) (bool, error) {
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return false, fmt.Errorf("create partition dir: %w", err)
	}

	target := s.partitionPath(key)
	if !force {
		if fi, err := s.fs.Stat(target); err == nil && s.now().Sub(fi.ModTime()) < s.maxAge {
			return false, nil
		}
	}

	data, err := s.fetcher.FetchPartition(ctx, key)
	if err != nil {
		return false, fmt.Errorf("fetch partition %s: %w", key, err)
	}

	p, err := DecodePayload(data)
	if err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrMalformedPayload, key, err)
	}

	if err := s.writeAtomic(key, normalizedBytes(p.Kind, data)); err != nil {
		return false, err
	}
	return true, nil
}

// WritePartition validates data as a partition document and atomically
// replaces key's file with it.
func (s *Store) WritePartition(key string, data []byte) error {
	if !ValidKey(key) {
		return fmt.Errorf("%w: %q", ErrPartitionNotFound, key)
	}
	p, err := DecodePayload(data)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedPayload, key, err)
	}
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create partition dir: %w", err)
	}
	return s.writeAtomic(key, normalizedBytes(p.Kind, data))
}

// writeAtomic writes to a temp file in the same directory and renames it over
// the target, so readers see either the old or the new document.
func (s *Store) writeAtomic(key string, data []byte) error {
	tmp, err := afero.TempFile(s.fs, s.dir, "."+key+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", key, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("write partition %s: %w", key, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("sync partition %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("close partition %s: %w", key, err)
	}
	if err := s.fs.Rename(tmpName, s.partitionPath(key)); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("replace partition %s: %w", key, err)
	}
	return nil
}

func (s *Store) dirInfo() (os.FileInfo, error) {
	fi, err := s.fs.Stat(s.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrStoreUnavailable, s.dir)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrStoreUnavailable, s.dir)
	}
	return fi, nil
}
