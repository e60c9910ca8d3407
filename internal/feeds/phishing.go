// Menaxa - Security Intelligence Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/menaxa

package feeds

import (
	"fmt"
	"strings"
	"sync"

	"github.com/samber/lo"
	"github.com/spf13/afero"
)

// SampleSize is how many domains GET /get-web3-scam-domains returns.
const SampleSize = 5

// PhishingDB answers lookups against the scam domain list. In low-memory
// mode the list is several hundred thousand entries long and stays on disk;
// each lookup reads the file.
type PhishingDB struct {
	fs        afero.Fs
	path      string
	lowMemory bool

	mu          sync.RWMutex
	domains     []string
	lastUpdated string
	loaded      bool
}

func newPhishingDB(fsys afero.Fs, path string, lowMemory bool) *PhishingDB {
	return &PhishingDB{fs: fsys, path: path, lowMemory: lowMemory}
}

// Refresh re-reads the file. In low-memory mode only the modification time
// is recorded and the returned count is 0.
func (p *PhishingDB) Refresh() (int, error) {
	if p.lowMemory {
		info, err := p.fs.Stat(p.path)
		if err != nil {
			return 0, fmt.Errorf("%w: %s", ErrSourceMissing, p.path)
		}
		p.mu.Lock()
		p.lastUpdated = stamp(info.ModTime())
		p.domains = nil
		p.loaded = true
		p.mu.Unlock()
		return 0, nil
	}

	domains, updated, err := p.readDisk()
	if err != nil {
		return 0, err
	}
	if len(domains) == 0 {
		return 0, fmt.Errorf("%w: empty phishing list", ErrInvalidFormat)
	}
	p.mu.Lock()
	p.domains = domains
	p.lastUpdated = updated
	p.loaded = true
	p.mu.Unlock()
	return len(domains), nil
}

func (p *PhishingDB) readDisk() ([]string, string, error) {
	v, info, err := readJSON(p.fs, p.path)
	if err != nil {
		return nil, "", err
	}
	list, ok := v.([]interface{})
	if !ok {
		return nil, "", fmt.Errorf("%w: phishing file must be a list", ErrInvalidFormat)
	}
	domains := lo.FilterMap(list, func(item interface{}, _ int) (string, bool) {
		s, ok := item.(string)
		return s, ok
	})
	return domains, stamp(info.ModTime()), nil
}

// source returns the domain list to search and the last_updated stamp.
func (p *PhishingDB) source() ([]string, string, error) {
	p.mu.RLock()
	domains, updated := p.domains, p.lastUpdated
	p.mu.RUnlock()

	if domains == nil {
		var err error
		var diskUpdated string
		domains, diskUpdated, err = p.readDisk()
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrNotLoaded, err)
		}
		if updated == "" {
			updated = diskUpdated
		}
	}
	if len(domains) == 0 {
		return nil, "", ErrNotLoaded
	}
	return domains, updated, nil
}

// Sample returns up to SampleSize random domains and the last_updated stamp.
func (p *PhishingDB) Sample() ([]string, string, error) {
	domains, updated, err := p.source()
	if err != nil {
		return nil, "", err
	}
	return lo.Samples(domains, SampleSize), updated, nil
}

// Contains reports whether domain is listed, ignoring case.
func (p *PhishingDB) Contains(domain string) (bool, string, error) {
	domains, updated, err := p.source()
	if err != nil {
		return false, "", err
	}
	found := lo.ContainsBy(domains, func(d string) bool {
		return strings.EqualFold(d, domain)
	})
	return found, updated, nil
}

// Loaded reports whether a refresh has succeeded.
func (p *PhishingDB) Loaded() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.loaded
}
