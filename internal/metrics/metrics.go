// Menaxa - Security Intelligence Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/menaxa

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cache type labels.
const (
	CachePartition  = "partition"
	CacheCountIndex = "count_index"
)

// Upstream pull results.
const (
	PullUpdated = "updated"
	PullSkipped = "skipped"
	PullFailed  = "failed"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 90},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"}, // "partition", "count_index"
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_entries",
			Help: "Current number of cached entries",
		},
		[]string{"cache_type"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Total number of cache evictions (capacity or invalidation)",
		},
		[]string{"cache_type"},
	)

	// Partition Metrics
	PartitionLoadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "partition_load_duration_seconds",
			Help:    "Time to read, decode and filter one CVE partition",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	PartitionLoadErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "partition_load_errors_total",
			Help: "Total number of failed partition loads",
		},
		[]string{"error_type"}, // "not_found", "corrupt", "unavailable", "other"
	)

	CatalogPartitions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_partitions",
			Help: "Number of CVE partitions in the current catalog",
		},
	)

	// Refresh Metrics
	RefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "refresh_duration_seconds",
			Help:    "Duration of full refresh cycles in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
		},
	)

	RefreshErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "refresh_errors_total",
			Help: "Total number of refresh stage failures",
		},
		[]string{"stage"}, // "feeds", "catalog"
	)

	RefreshLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "refresh_last_success_timestamp",
			Help: "Unix timestamp of the last successful catalog refresh",
		},
	)

	UpstreamPulls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_pulls_total",
			Help: "Upstream partition refresh attempts by outcome",
		},
		[]string{"result"}, // "updated", "skipped", "failed"
	)

	// Feed Metrics
	FeedRecords = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "feed_records",
			Help: "Number of records served by each auxiliary feed",
		},
		[]string{"feed"},
	)

	FeedLoadErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_load_errors_total",
			Help: "Total number of failed feed loads",
		},
		[]string{"feed"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected", "ignored"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRefreshCycle records one background refresh cycle. failedStages lists
// the stages that did not complete; the catalog timestamp only advances when
// the catalog stage succeeded.
func RecordRefreshCycle(duration time.Duration, failedStages ...string) {
	RefreshDuration.Observe(duration.Seconds())
	catalogOK := true
	for _, stage := range failedStages {
		RefreshErrors.WithLabelValues(stage).Inc()
		if stage == "catalog" {
			catalogOK = false
		}
	}
	if catalogOK {
		RefreshLastSuccess.Set(float64(time.Now().Unix()))
	}
}

// RecordUpstreamPull counts one RefreshPartition outcome.
func RecordUpstreamPull(updated bool, err error) {
	switch {
	case err != nil:
		UpstreamPulls.WithLabelValues(PullFailed).Inc()
	case updated:
		UpstreamPulls.WithLabelValues(PullUpdated).Inc()
	default:
		UpstreamPulls.WithLabelValues(PullSkipped).Inc()
	}
}

// RecordFeedLoad updates a feed's record gauge, or its error counter on failure.
func RecordFeedLoad(feed string, records int, err error) {
	if err != nil {
		FeedLoadErrors.WithLabelValues(feed).Inc()
		return
	}
	FeedRecords.WithLabelValues(feed).Set(float64(records))
}
