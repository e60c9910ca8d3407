// Menaxa - Security Intelligence Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/menaxa

/*
Package metrics holds the Prometheus collectors exported on /metrics.

All collectors are registered on the default registry through promauto, so
importing the package is enough to expose them.

# Available Metrics

API:
  - api_requests_total{method, endpoint, status_code}
  - api_request_duration_seconds{method, endpoint}
  - api_active_requests
  - api_rate_limit_hits_total{endpoint}

Cache (cache_type is "partition" or "count_index"):
  - cache_hits_total, cache_misses_total, cache_entries, cache_evictions_total

CVE partitions and refresh:
  - partition_load_duration_seconds
  - partition_load_errors_total{error_type}
  - catalog_partitions
  - refresh_duration_seconds
  - refresh_errors_total{stage}
  - refresh_last_success_timestamp
  - upstream_pulls_total{result}

Feeds:
  - feed_records{feed}
  - feed_load_errors_total{feed}

Circuit breaker (upstream mirror):
  - circuit_breaker_state{name} (0=closed, 1=half-open, 2=open)
  - circuit_breaker_requests_total{name, result}
  - circuit_breaker_consecutive_failures{name}
  - circuit_breaker_state_transitions_total{name, from_state, to_state}

Example PromQL:

	# Partition cache hit rate
	sum(rate(cache_hits_total{cache_type="partition"}[5m]))
	  / sum(rate(cache_hits_total{cache_type="partition"}[5m]) + rate(cache_misses_total{cache_type="partition"}[5m]))

	# Upstream failures per hour
	increase(upstream_pulls_total{result="failed"}[1h])

Endpoint labels use chi route patterns, never raw paths, to keep cardinality
bounded.
*/
package metrics
