// Menaxa - Security Intelligence Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/menaxa

package models

// FeedSnapshot is the body served for single-file feeds (web3 threats, EOL,
// leaks, news, web3 releases).
type FeedSnapshot struct {
	LastUpdated  string      `json:"last_updated"`
	TotalRecords int         `json:"total_records"`
	Data         interface{} `json:"data"`
}

// DomainSearchResult answers GET /search?domain=.
type DomainSearchResult struct {
	Domain      string `json:"domain"`
	Exists      bool   `json:"exists"`
	LastUpdated string `json:"last_updated"`
}

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status          string   `json:"status"`
	Version         string   `json:"version"`
	Uptime          float64  `json:"uptime_seconds"`
	LowMemory       bool     `json:"low_memory"`
	CatalogLoaded   bool     `json:"catalog_loaded"`
	AvailableYears  []string `json:"available_years"`
	CachedYears     []string `json:"cached_years"`
	LastRefresh     string   `json:"last_refresh,omitempty"`
	UpstreamEnabled bool     `json:"upstream_enabled"`
	UpstreamBreaker string   `json:"upstream_breaker,omitempty"`
	Feeds           []string `json:"feeds_loaded"`
}
