// Menaxa - Security Intelligence Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/menaxa

package sync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/menaxa/internal/config"
)

// DefaultUserAgent identifies Menaxa to the upstream mirror.
const DefaultUserAgent = "menaxa-backend/1.0"

// UpstreamTokenHeader carries the optional mirror access token.
const UpstreamTokenHeader = "X-Upstream-Token"

// maxErrorBodySize limits how much of a failed response is read for the error.
const maxErrorBodySize = 4 * 1024

// maxPartitionSize bounds a single year document. The largest years are a
// few hundred MB uncompressed.
const maxPartitionSize = 1 << 30

// ErrUnexpectedStatus is wrapped by FetchPartition for any non-200 reply.
var ErrUnexpectedStatus = errors.New("unexpected upstream status")

// StatusError is a non-200 reply from the mirror. It matches
// ErrUnexpectedStatus with errors.Is.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %d: %s", ErrUnexpectedStatus, e.Code, e.Body)
}

func (e *StatusError) Unwrap() error { return ErrUnexpectedStatus }

// clientError reports a 4xx reply about the request itself, such as a year
// the mirror does not publish. 408 and 429 are load signals, not client
// errors.
func (e *StatusError) clientError() bool {
	switch e.Code {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return false
	}
	return e.Code >= 400 && e.Code < 500
}

func readBodyForError(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return "(failed to read response body)"
	}
	return strings.TrimSpace(string(body))
}

// UpstreamClient downloads CVE year documents from <BaseURL>/<year>.json.
//
// Calls are paced by a token bucket and guarded by a circuit breaker, so a
// dead mirror costs one timeout per breaker window instead of one per read.
// Retries are left to the next refresh cycle.
type UpstreamClient struct {
	baseURL   string
	token     string
	userAgent string
	client    *http.Client
	limiter   *rate.Limiter
	breaker   *upstreamBreaker
}

// NewUpstreamClient builds a client from cfg. A client with an empty BaseURL
// is valid and reports Enabled() == false.
func NewUpstreamClient(cfg *config.UpstreamConfig) *UpstreamClient {
	ua := cfg.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	return &UpstreamClient{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		token:     cfg.Token,
		userAgent: ua,
		client:    &http.Client{Timeout: timeout},
		limiter:   rate.NewLimiter(limit, burst),
		breaker:   newUpstreamBreaker("cve-upstream", cfg.BreakerFailures, cfg.BreakerTimeout),
	}
}

// Enabled reports whether a mirror is configured.
func (c *UpstreamClient) Enabled() bool {
	return c.baseURL != ""
}

// BreakerState returns the circuit breaker state as a string.
func (c *UpstreamClient) BreakerState() string {
	return c.breaker.State()
}

// FetchPartition downloads one year document and returns its raw body. Any
// status other than 200 is an error.
func (c *UpstreamClient) FetchPartition(ctx context.Context, key string) ([]byte, error) {
	if !c.Enabled() {
		return nil, errors.New("upstream not configured")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("upstream rate limiter: %w", err)
	}

	return c.breaker.execute(func() ([]byte, error) {
		return c.get(ctx, c.baseURL+"/"+key+".json")
	})
}

func (c *UpstreamClient) get(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set(UpstreamTokenHeader, c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode, Body: readBodyForError(resp.Body)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPartitionSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upstream body: %w", err)
	}
	if len(body) > maxPartitionSize {
		return nil, fmt.Errorf("upstream document exceeds %d bytes", maxPartitionSize)
	}
	return body, nil
}
