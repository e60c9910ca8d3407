// Menaxa - Security Intelligence Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/menaxa

// Package config loads Menaxa's configuration from built-in defaults, an
// optional YAML file and environment variables, in that order of precedence.
// Environment variable names match the ones the service has always used
// (LOW_MEMORY_MODE, UPSTREAM_DATA_BASE_URL, CURRENT_YEAR_SYNC_MAX_AGE_HOURS...).
package config

import (
	"fmt"
	"path/filepath"
	"time"
)

// Config is the root configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Storage  StorageConfig  `koanf:"storage"`
	Cache    CacheConfig    `koanf:"cache"`
	Sync     SyncConfig     `koanf:"sync"`
	Upstream UpstreamConfig `koanf:"upstream"`
	API      APIConfig      `koanf:"api"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`
}

// StorageConfig describes where feed snapshots live on disk.
type StorageConfig struct {
	// DataDir is the root data directory. CVE year files live under
	// <DataDir>/external_feed/cve.
	DataDir string `koanf:"data_dir"`

	// LowMemory keeps CVE partitions on disk and loads them lazily through the
	// bounded partition cache. When false every partition is held in memory.
	LowMemory bool `koanf:"low_memory"`
}

// CacheConfig configures the bounded partition cache and the count index.
type CacheConfig struct {
	// MaxPartitions is the FIFO cache capacity. 0 disables caching.
	MaxPartitions int `koanf:"max_partitions"`

	// CountIndex selects the record-count index backend: memory or badger.
	CountIndex string `koanf:"count_index"`

	// CountIndexPath is the badger directory. Empty means an in-memory badger.
	CountIndexPath string `koanf:"count_index_path"`
}

// SyncConfig controls the background refresh cycle and read-path freshness.
type SyncConfig struct {
	Interval    time.Duration `koanf:"interval"`
	MaxAgeHours int           `koanf:"max_age_hours"`
	OnStartup   bool          `koanf:"on_startup"`
}

// UpstreamConfig describes the mirror CVE year files are pulled from.
type UpstreamConfig struct {
	// BaseURL is the mirror root; year files are fetched from <BaseURL>/<year>.json.
	// Empty disables upstream sync entirely.
	BaseURL           string        `koanf:"base_url"`
	Token             string        `koanf:"token"`
	UserAgent         string        `koanf:"user_agent"`
	Timeout           time.Duration `koanf:"timeout"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
	Burst             int           `koanf:"burst"`
	BreakerFailures   uint32        `koanf:"breaker_failures"`
	BreakerTimeout    time.Duration `koanf:"breaker_timeout"`
}

// APIConfig holds pagination defaults.
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
}

// SecurityConfig holds CORS and rate limiting settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig maps onto logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Load is the entry point used by main.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// FeedRoot is the directory holding third-party feed snapshots.
func (c *Config) FeedRoot() string {
	return filepath.Join(c.Storage.DataDir, "external_feed")
}

// CVEDir is the partition directory, one <year>.json per partition.
func (c *Config) CVEDir() string {
	return filepath.Join(c.FeedRoot(), "cve")
}

// MaxAge is the freshness threshold for the current-year partition.
func (c *Config) MaxAge() time.Duration {
	return time.Duration(c.Sync.MaxAgeHours) * time.Hour
}

// Addr is the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// IsProduction reports whether ENVIRONMENT=production.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
