// Menaxa - Security Intelligence Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/menaxa

package feeds

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/tomtom215/menaxa/internal/logging"
	"github.com/tomtom215/menaxa/internal/metrics"
	"github.com/tomtom215/menaxa/internal/models"
)

// Feed names. They double as metric labels.
const (
	Web3Threats  = "web3-threats"
	EOL          = "eol"
	Leaks        = "leaks"
	News         = "news"
	Web3Releases = "web3-releases"
	Phishing     = "phishing"
)

var (
	// ErrNotLoaded is returned for a feed that has never loaded successfully.
	ErrNotLoaded = errors.New("feed data not yet loaded")

	// ErrUnknownFeed is returned for a name the registry does not serve.
	ErrUnknownFeed = errors.New("unknown feed")

	// ErrSourceMissing is returned when a feed's source file does not exist.
	ErrSourceMissing = errors.New("feed source file not found")

	// ErrInvalidFormat is returned when a source file has the wrong shape.
	ErrInvalidFormat = errors.New("invalid feed format")
)

// loadFunc reads one feed from disk and returns its snapshot and record count.
type loadFunc func(ctx context.Context) (models.FeedSnapshot, error)

type feed struct {
	name string
	load loadFunc

	loadMu sync.Mutex // Serializes loads of this feed

	mu   sync.RWMutex
	snap *models.FeedSnapshot
}

func (f *feed) get() (models.FeedSnapshot, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.snap == nil {
		return models.FeedSnapshot{}, false
	}
	return *f.snap, true
}

func (f *feed) set(snap models.FeedSnapshot) {
	f.mu.Lock()
	f.snap = &snap
	f.mu.Unlock()
}

// Options configures a Registry.
type Options struct {
	// LowMemory keeps the phishing domain list on disk.
	LowMemory bool

	// Clock defaults to time.Now.
	Clock func() time.Time
}

// Registry owns the auxiliary feeds. Each feed is loaded from a single file
// under the data directory and served from memory until the next load. A
// failed load leaves the previous snapshot in place.
type Registry struct {
	fs       afero.Fs
	dataDir  string
	feedRoot string
	now      func() time.Time

	order    []*feed
	byName   map[string]*feed
	phishing *PhishingDB
}

// NewRegistry builds the registry over dataDir. Third-party snapshots are
// read from dataDir/external_feed.
func NewRegistry(fsys afero.Fs, dataDir string, opts Options) *Registry {
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	r := &Registry{
		fs:       fsys,
		dataDir:  dataDir,
		feedRoot: filepath.Join(dataDir, "external_feed"),
		now:      now,
		byName:   make(map[string]*feed),
	}
	r.phishing = newPhishingDB(fsys, filepath.Join(dataDir, "phishing-scam-db.json"), opts.LowMemory)

	r.register(Web3Threats, r.loadWeb3Threats)
	r.register(EOL, r.loadEOL)
	r.register(Leaks, r.loadLeaks)
	r.register(News, r.loadNews)
	r.register(Web3Releases, r.loadWeb3Releases)
	return r
}

func (r *Registry) register(name string, load loadFunc) {
	f := &feed{name: name, load: load}
	r.order = append(r.order, f)
	r.byName[name] = f
}

// Phishing returns the phishing domain database.
func (r *Registry) Phishing() *PhishingDB { return r.phishing }

// Names lists the snapshot feeds in load order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	for i, f := range r.order {
		names[i] = f.name
	}
	return names
}

// Load reloads one feed. Phishing is accepted as a name too.
func (r *Registry) Load(ctx context.Context, name string) error {
	if name == Phishing {
		n, err := r.phishing.Refresh()
		metrics.RecordFeedLoad(Phishing, n, err)
		return err
	}

	f, ok := r.byName[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownFeed, name)
	}

	f.loadMu.Lock()
	defer f.loadMu.Unlock()

	snap, err := f.load(ctx)
	metrics.RecordFeedLoad(name, snap.TotalRecords, err)
	if err != nil {
		return fmt.Errorf("load %s feed: %w", name, err)
	}
	f.set(snap)
	logging.Ctx(ctx).Info().Str("feed", name).Int("records", snap.TotalRecords).Msg("Feed refreshed")
	return nil
}

// LoadAll reloads every feed, phishing included, and returns the names of
// the feeds that failed. Failures are logged and do not stop the others.
func (r *Registry) LoadAll(ctx context.Context) []string {
	var failed []string
	for _, name := range append(r.Names(), Phishing) {
		if ctx.Err() != nil {
			failed = append(failed, name)
			continue
		}
		if err := r.Load(ctx, name); err != nil {
			logging.Ctx(ctx).Error().Err(err).Str("feed", name).Msg("Feed refresh failed")
			failed = append(failed, name)
		}
	}
	return failed
}

// Snapshot returns the last successfully loaded snapshot of name.
func (r *Registry) Snapshot(name string) (models.FeedSnapshot, error) {
	f, ok := r.byName[name]
	if !ok {
		return models.FeedSnapshot{}, fmt.Errorf("%w: %s", ErrUnknownFeed, name)
	}
	snap, ok := f.get()
	if !ok {
		return models.FeedSnapshot{}, fmt.Errorf("%w: %s", ErrNotLoaded, name)
	}
	return snap, nil
}

// Loaded lists the feeds currently holding a snapshot, phishing included.
func (r *Registry) Loaded() []string {
	var names []string
	for _, f := range r.order {
		if _, ok := f.get(); ok {
			names = append(names, f.name)
		}
	}
	if r.phishing.Loaded() {
		names = append(names, Phishing)
	}
	return names
}

func stamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
