// Menaxa - Security Intelligence Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/menaxa

// Package middleware holds the HTTP middleware shared by every route.
//
//   - RequestID: propagates or generates X-Request-ID and attaches it to the
//     logging context.
//   - PrometheusMetrics: api_requests_total, api_request_duration_seconds and
//     api_active_requests, labelled by chi route pattern.
//
// CORS, rate limiting, compression and panic recovery come from chi and its
// companion modules and are wired in internal/api.
package middleware
