// Menaxa - Security Intelligence Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/menaxa

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// isolate points CONFIG_PATH at a missing file and runs from an empty
// directory so a developer's config.yaml cannot leak into the test.
func isolate(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv(ConfigPathEnvVar, filepath.Join(dir, "missing.yaml"))
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if !cfg.Storage.LowMemory {
		t.Error("Storage.LowMemory should default to true")
	}
	if cfg.Cache.MaxPartitions != 2 {
		t.Errorf("Cache.MaxPartitions = %d, want 2", cfg.Cache.MaxPartitions)
	}
	if cfg.Sync.Interval != 5*time.Minute {
		t.Errorf("Sync.Interval = %v, want 5m", cfg.Sync.Interval)
	}
	if cfg.Sync.MaxAgeHours != 6 {
		t.Errorf("Sync.MaxAgeHours = %d, want 6", cfg.Sync.MaxAgeHours)
	}
	if cfg.Upstream.Timeout != 90*time.Second {
		t.Errorf("Upstream.Timeout = %v, want 90s", cfg.Upstream.Timeout)
	}
	if cfg.Upstream.UserAgent != "menaxa-backend/1.0" {
		t.Errorf("Upstream.UserAgent = %q", cfg.Upstream.UserAgent)
	}
	if cfg.API.DefaultPageSize != 100 {
		t.Errorf("API.DefaultPageSize = %d, want 100", cfg.API.DefaultPageSize)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key, value string
		wantPath   string
		wantValue  interface{}
	}{
		{"UPSTREAM_DATA_BASE_URL", "https://mirror.example", "upstream.base_url", "https://mirror.example"},
		{"CURRENT_YEAR_SYNC_MAX_AGE_HOURS", "12", "sync.max_age_hours", "12"},
		{"LOW_MEMORY_MODE", "yes", "storage.low_memory", true},
		{"LOW_MEMORY_MODE", "0", "storage.low_memory", false},
		{"LOW_MEMORY_MODE", "On", "storage.low_memory", true},
		{"HTTP_PORT", "9000", "server.port", "9000"},
		{"PATH", "/usr/bin", "", nil},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Parallel()
			path, value := envTransformFunc(tt.key, tt.value)
			if path != tt.wantPath {
				t.Errorf("path = %q, want %q", path, tt.wantPath)
			}
			if value != tt.wantValue {
				t.Errorf("value = %v, want %v", value, tt.wantValue)
			}
		})
	}
}

func TestLoadWithKoanfEnvVars(t *testing.T) {
	isolate(t)
	t.Setenv("UPSTREAM_DATA_BASE_URL", "https://mirror.example/cve/")
	t.Setenv("UPSTREAM_PROXY_TOKEN", "  secret  ")
	t.Setenv("CURRENT_YEAR_SYNC_MAX_AGE_HOURS", "3")
	t.Setenv("LOW_MEMORY_MODE", "false")
	t.Setenv("CACHE_MAX_PARTITIONS", "0")
	t.Setenv("REFRESH_INTERVAL", "10m")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Upstream.BaseURL != "https://mirror.example/cve" {
		t.Errorf("Upstream.BaseURL = %q, trailing slash should be trimmed", cfg.Upstream.BaseURL)
	}
	if cfg.Upstream.Token != "secret" {
		t.Errorf("Upstream.Token = %q", cfg.Upstream.Token)
	}
	if cfg.MaxAge() != 3*time.Hour {
		t.Errorf("MaxAge() = %v, want 3h", cfg.MaxAge())
	}
	if cfg.Storage.LowMemory {
		t.Error("Storage.LowMemory should be false")
	}
	if cfg.Cache.MaxPartitions != 0 {
		t.Errorf("Cache.MaxPartitions = %d, want 0", cfg.Cache.MaxPartitions)
	}
	if cfg.Sync.Interval != 10*time.Minute {
		t.Errorf("Sync.Interval = %v, want 10m", cfg.Sync.Interval)
	}
	if len(cfg.Security.CORSOrigins) != 2 || cfg.Security.CORSOrigins[1] != "https://b.example" {
		t.Errorf("Security.CORSOrigins = %v", cfg.Security.CORSOrigins)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("Server.Port = %d, want default 8000", cfg.Server.Port)
	}
}

func TestLoadWithKoanfConfigFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9100
storage:
  data_dir: /srv/menaxa
cache:
  max_partitions: 4
  count_index: badger
  count_index_path: /srv/menaxa/counts
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("HTTP_PORT", "9200")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.Server.Port != 9200 {
		t.Errorf("Server.Port = %d, env should override file", cfg.Server.Port)
	}
	if cfg.Storage.DataDir != "/srv/menaxa" {
		t.Errorf("Storage.DataDir = %q", cfg.Storage.DataDir)
	}
	if cfg.CVEDir() != filepath.Join("/srv/menaxa", "external_feed", "cve") {
		t.Errorf("CVEDir() = %q", cfg.CVEDir())
	}
	if cfg.Cache.MaxPartitions != 4 || cfg.Cache.CountIndex != "badger" {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
}

func TestLoadWithKoanfValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad port", map[string]string{"HTTP_PORT": "70000"}},
		{"bad upstream scheme", map[string]string{"UPSTREAM_DATA_BASE_URL": "ftp://mirror.example"}},
		{"negative cache", map[string]string{"CACHE_MAX_PARTITIONS": "-1"}},
		{"unknown count index", map[string]string{"COUNT_INDEX": "redis"}},
		{"page size too large", map[string]string{"DEFAULT_PAGE_SIZE": "1001"}},
		{"bad log format", map[string]string{"LOG_FORMAT": "xml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := LoadWithKoanf(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestValidateHTTPURL(t *testing.T) {
	t.Parallel()

	valid := []string{"http://localhost:8787", "https://mirror.example/cve", "https://mirror.example/"}
	for _, u := range valid {
		if err := validateHTTPURL(u, "X"); err != nil {
			t.Errorf("validateHTTPURL(%q) = %v", u, err)
		}
	}
	invalid := []string{"mirror.example", "https://", "https://mirror.example?token=1"}
	for _, u := range invalid {
		if err := validateHTTPURL(u, "X"); err == nil {
			t.Errorf("validateHTTPURL(%q) should fail", u)
		}
	}
}
