// Menaxa - Security Intelligence Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/menaxa

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order; the first existing file wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/menaxa/config.yaml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8000,
			Host:        "0.0.0.0",
			Timeout:     120 * time.Second,
			Environment: "development",
		},
		Storage: StorageConfig{
			DataDir:   "data",
			LowMemory: true,
		},
		Cache: CacheConfig{
			MaxPartitions: 2,
			CountIndex:    "memory",
		},
		Sync: SyncConfig{
			Interval:    5 * time.Minute,
			MaxAgeHours: 6,
			OnStartup:   true,
		},
		Upstream: UpstreamConfig{
			UserAgent:         "menaxa-backend/1.0",
			Timeout:           90 * time.Second,
			RequestsPerSecond: 2,
			Burst:             4,
			BreakerFailures:   5,
			BreakerTimeout:    time.Minute,
		},
		API: APIConfig{
			DefaultPageSize: 100,
		},
		Security: SecurityConfig{
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   300,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadWithKoanf layers defaults, the optional YAML file and environment
// variables, then validates the result.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.ProviderWithValue("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func (c *Config) normalize() {
	c.Upstream.BaseURL = strings.TrimRight(strings.TrimSpace(c.Upstream.BaseURL), "/")
	c.Upstream.Token = strings.TrimSpace(c.Upstream.Token)
	c.Cache.CountIndex = strings.ToLower(strings.TrimSpace(c.Cache.CountIndex))
}

var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields splits comma-separated env values for slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		raw, ok := k.Get(path).(string)
		if !ok || raw == "" {
			continue
		}
		var parts []string
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if len(parts) == 0 {
			continue
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

var envMappings = map[string]string{
	"http_port":    "server.port",
	"http_host":    "server.host",
	"http_timeout": "server.timeout",
	"environment":  "server.environment",

	"data_dir":        "storage.data_dir",
	"low_memory_mode": "storage.low_memory",

	"cache_max_partitions": "cache.max_partitions",
	"count_index":          "cache.count_index",
	"count_index_path":     "cache.count_index_path",

	"refresh_interval":                "sync.interval",
	"current_year_sync_max_age_hours": "sync.max_age_hours",
	"sync_on_startup":                 "sync.on_startup",

	"upstream_data_base_url":    "upstream.base_url",
	"upstream_proxy_token":      "upstream.token",
	"upstream_user_agent":       "upstream.user_agent",
	"upstream_timeout":          "upstream.timeout",
	"upstream_rps":              "upstream.requests_per_second",
	"upstream_burst":            "upstream.burst",
	"upstream_breaker_failures": "upstream.breaker_failures",
	"upstream_breaker_timeout":  "upstream.breaker_timeout",

	"default_page_size": "api.default_page_size",

	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_requests",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// boolPaths accept the loose spellings the deployment scripts use
// (1/true/yes/on), which strconv.ParseBool would reject.
var boolPaths = map[string]bool{
	"storage.low_memory":           true,
	"sync.on_startup":              true,
	"security.rate_limit_disabled": true,
	"logging.caller":               true,
}

// envTransformFunc maps an environment variable to its koanf path. Unknown
// variables return "" and are ignored.
func envTransformFunc(key, value string) (string, interface{}) {
	path, ok := envMappings[strings.ToLower(key)]
	if !ok {
		return "", nil
	}
	if boolPaths[path] {
		return path, envBool(value)
	}
	return path, value
}

func envBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
