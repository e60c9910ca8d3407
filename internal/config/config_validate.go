// Menaxa - Security Intelligence Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/menaxa

package config

import (
	"fmt"
	"net/url"

	"github.com/tomtom215/menaxa/internal/logging"
)

// MaxPageSize is the hard upper bound on page_size.
const MaxPageSize = 1000

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateSync(); err != nil {
		return err
	}
	if err := c.validateUpstream(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if c.API.DefaultPageSize < 1 || c.API.DefaultPageSize > MaxPageSize {
		return fmt.Errorf("DEFAULT_PAGE_SIZE must be between 1 and %d, got %d", MaxPageSize, c.API.DefaultPageSize)
	}
	return nil
}

func (c *Config) validateStorage() error {
	if c.Storage.DataDir == "" {
		return fmt.Errorf("DATA_DIR is required")
	}
	if c.Cache.MaxPartitions < 0 {
		return fmt.Errorf("CACHE_MAX_PARTITIONS must be >= 0, got %d", c.Cache.MaxPartitions)
	}
	switch c.Cache.CountIndex {
	case "memory", "badger":
	default:
		return fmt.Errorf("COUNT_INDEX must be memory or badger, got %q", c.Cache.CountIndex)
	}
	return nil
}

func (c *Config) validateSync() error {
	if c.Sync.Interval <= 0 {
		return fmt.Errorf("REFRESH_INTERVAL must be positive")
	}
	if c.Sync.MaxAgeHours < 0 {
		return fmt.Errorf("CURRENT_YEAR_SYNC_MAX_AGE_HOURS must be >= 0, got %d", c.Sync.MaxAgeHours)
	}
	return nil
}

func (c *Config) validateUpstream() error {
	if c.Upstream.Timeout <= 0 {
		return fmt.Errorf("UPSTREAM_TIMEOUT must be positive")
	}
	if c.Upstream.RequestsPerSecond <= 0 || c.Upstream.Burst < 1 {
		return fmt.Errorf("UPSTREAM_RPS must be positive and UPSTREAM_BURST at least 1")
	}
	if c.Upstream.BaseURL == "" {
		return nil
	}
	return validateHTTPURL(c.Upstream.BaseURL, "UPSTREAM_DATA_BASE_URL")
}

func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < 1 || c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL %q is not a valid level", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

// validateHTTPURL accepts http(s) URLs with a host. Paths are allowed since
// mirrors are often mounted below a prefix.
func validateHTTPURL(rawURL, fieldName string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got: %q", fieldName, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%s host is required", fieldName)
	}
	if u.RawQuery != "" {
		return fmt.Errorf("%s should not contain query parameters", fieldName)
	}
	return nil
}
