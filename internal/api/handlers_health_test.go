// Menaxa - Security Intelligence Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/menaxa

package api

import (
	"net/http"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/menaxa/internal/models"
)

type healthEnvelope struct {
	Status string              `json:"status"`
	Data   models.HealthStatus `json:"data"`
}

func TestHealth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		loaded     bool
		wantStatus string
	}{
		{"catalog loaded", true, "healthy"},
		{"catalog missing", false, "degraded"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			env := newTestEnv(t)
			env.cves.loaded = tt.loaded

			rec := env.do(t, http.MethodGet, "/health")
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}
			var body healthEnvelope
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			if body.Status != "success" {
				t.Errorf("envelope status = %q", body.Status)
			}
			if body.Data.Status != tt.wantStatus {
				t.Errorf("health status = %q, want %q", body.Data.Status, tt.wantStatus)
			}
			if body.Data.Version != "test" || body.Data.LastRefresh != "2025-06-01T12:00:00Z" {
				t.Errorf("unexpected health data: %+v", body.Data)
			}
			if len(body.Data.Feeds) != 1 {
				t.Errorf("feeds = %v", body.Data.Feeds)
			}
		})
	}
}

func TestHealthReady(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	env.cves.loaded = false
	if rec := env.do(t, http.MethodGet, "/health/ready"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("not loaded: status = %d, want 503", rec.Code)
	}

	env.cves.loaded = true
	if rec := env.do(t, http.MethodGet, "/health/ready"); rec.Code != http.StatusOK {
		t.Errorf("loaded: status = %d, want 200", rec.Code)
	}
}

func TestHealthLive(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/health/live")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	env.do(t, http.MethodGet, "/health/live")
	rec := env.do(t, http.MethodGet, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}
