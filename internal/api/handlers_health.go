// Menaxa - Security Intelligence Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/menaxa

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/menaxa/internal/metrics"
	"github.com/tomtom215/menaxa/internal/models"
)

const timeLayout = time.RFC3339

// Health reports catalog, cache, feed and upstream state. It always answers
// 200; a catalog that has not loaded yet reports "degraded".
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	st := h.cves.Status()
	uptime := time.Since(h.startTime).Seconds()
	metrics.AppUptime.Set(uptime)

	health := models.HealthStatus{
		Status:          "healthy",
		Version:         h.version,
		Uptime:          uptime,
		LowMemory:       st.LowMemory,
		CatalogLoaded:   st.Loaded,
		AvailableYears:  nonNil(st.AvailableYears),
		CachedYears:     nonNil(st.CachedYears),
		UpstreamEnabled: st.UpstreamEnabled,
		Feeds:           nonNil(h.feeds.Loaded()),
	}
	if !st.Loaded {
		health.Status = "degraded"
	}
	if last := h.refresher.LastRun(); !last.IsZero() {
		health.LastRefresh = last.UTC().Format(timeLayout)
	}
	if h.upstream != nil && h.upstream.Enabled() {
		health.UpstreamBreaker = h.upstream.BreakerState()
	}

	w.Header().Set("Cache-Control", "no-store")
	respondEnvelope(w, r, http.StatusOK, "success", health)
}

// HealthLive is the liveness probe: the process is serving HTTP.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	respondEnvelope(w, r, http.StatusOK, "success", map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady is the readiness probe: 503 until the CVE catalog is loaded.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	st := h.cves.Status()
	if !st.Loaded {
		respondEnvelope(w, r, http.StatusServiceUnavailable, "not_ready", map[string]interface{}{
			"ready":          false,
			"catalog_loaded": false,
		})
		return
	}
	respondEnvelope(w, r, http.StatusOK, "ready", map[string]interface{}{
		"ready":           true,
		"catalog_loaded":  true,
		"available_years": len(st.AvailableYears),
	})
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
