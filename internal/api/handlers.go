// Menaxa - Security Intelligence Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/menaxa

package api

import (
	"context"
	"time"

	"github.com/tomtom215/menaxa/internal/cve"
	"github.com/tomtom215/menaxa/internal/models"
	"github.com/tomtom215/menaxa/internal/pagination"
)

// CVEService serves CVE pages.
type CVEService interface {
	YearPage(ctx context.Context, year string, req pagination.Request) (*models.YearPage, error)
	AllYearsPage(ctx context.Context, req pagination.Request) (*models.AllYearsPage, error)
	Status() cve.Status
}

// FeedReader serves the auxiliary feed snapshots.
type FeedReader interface {
	Snapshot(name string) (models.FeedSnapshot, error)
	Load(ctx context.Context, name string) error
	Loaded() []string
}

// DomainLookup serves the phishing domain list.
type DomainLookup interface {
	Sample() ([]string, string, error)
	Contains(domain string) (bool, string, error)
}

// Refresher triggers background refresh cycles.
type Refresher interface {
	TriggerRefresh() bool
	LastRun() time.Time
}

// BreakerReporter exposes the upstream circuit breaker state.
type BreakerReporter interface {
	Enabled() bool
	BreakerState() string
}

// Deps are the handler's collaborators. Upstream may be nil.
type Deps struct {
	CVEs      CVEService
	Feeds     FeedReader
	Domains   DomainLookup
	Refresher Refresher
	Upstream  BreakerReporter
}

// Handler implements every HTTP endpoint.
type Handler struct {
	cves      CVEService
	feeds     FeedReader
	domains   DomainLookup
	refresher Refresher
	upstream  BreakerReporter

	defaultPageSize int
	version         string
	startTime       time.Time
}

// NewHandler builds a handler. defaultPageSize <= 0 falls back to
// pagination.DefaultPageSize.
func NewHandler(deps Deps, defaultPageSize int, version string) *Handler {
	if defaultPageSize <= 0 {
		defaultPageSize = pagination.DefaultPageSize
	}
	return &Handler{
		cves:            deps.CVEs,
		feeds:           deps.Feeds,
		domains:         deps.Domains,
		refresher:       deps.Refresher,
		upstream:        deps.Upstream,
		defaultPageSize: defaultPageSize,
		version:         version,
		startTime:       time.Now(),
	}
}
