// Menaxa - Security Intelligence Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/menaxa

package sync

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/menaxa/internal/config"
)

func newTestUpstream(baseURL string) *UpstreamClient {
	return NewUpstreamClient(&config.UpstreamConfig{
		BaseURL:         baseURL,
		Timeout:         5 * time.Second,
		BreakerFailures: 3,
		BreakerTimeout:  time.Minute,
	})
}

func TestUpstreamClientFetchPartition(t *testing.T) {
	t.Parallel()

	var gotPath, gotUA, gotToken string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUA = r.Header.Get("User-Agent")
		gotToken = r.Header.Get(UpstreamTokenHeader)
		_, _ = w.Write([]byte(`[{"id":"CVE-2024-0001"}]`))
	}))
	defer server.Close()

	client := NewUpstreamClient(&config.UpstreamConfig{BaseURL: server.URL + "/cve/", Token: "s3cret"})
	body, err := client.FetchPartition(context.Background(), "2024")
	if err != nil {
		t.Fatalf("FetchPartition() error = %v", err)
	}
	if string(body) != `[{"id":"CVE-2024-0001"}]` {
		t.Errorf("body = %s", body)
	}
	if gotPath != "/cve/2024.json" {
		t.Errorf("path = %q, want /cve/2024.json", gotPath)
	}
	if gotUA != DefaultUserAgent {
		t.Errorf("User-Agent = %q, want %q", gotUA, DefaultUserAgent)
	}
	if gotToken != "s3cret" {
		t.Errorf("%s = %q, want s3cret", UpstreamTokenHeader, gotToken)
	}
}

func TestUpstreamClientOmitsEmptyToken(t *testing.T) {
	t.Parallel()

	var hasToken atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := r.Header[http.CanonicalHeaderKey(UpstreamTokenHeader)]
		hasToken.Store(ok)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	if _, err := newTestUpstream(server.URL).FetchPartition(context.Background(), "2024"); err != nil {
		t.Fatal(err)
	}
	if hasToken.Load() {
		t.Error("token header sent without a configured token")
	}
}

func TestUpstreamClientNon200(t *testing.T) {
	t.Parallel()

	for _, status := range []int{http.StatusNotFound, http.StatusBadGateway, http.StatusTooManyRequests, http.StatusNoContent} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(status)
			_, _ = w.Write([]byte("nope"))
		}))

		_, err := newTestUpstream(server.URL).FetchPartition(context.Background(), "2024")
		if !errors.Is(err, ErrUnexpectedStatus) {
			t.Errorf("status %d: error = %v, want ErrUnexpectedStatus", status, err)
		}
		var statusErr *StatusError
		if !errors.As(err, &statusErr) || statusErr.Code != status {
			t.Errorf("status %d: error = %v, want a StatusError carrying the code", status, err)
		}
		server.Close()
	}
}

func TestUpstreamClientDisabled(t *testing.T) {
	t.Parallel()

	client := newTestUpstream("")
	if client.Enabled() {
		t.Error("Enabled() = true with empty base URL")
	}
	if _, err := client.FetchPartition(context.Background(), "2024"); err == nil {
		t.Error("FetchPartition() on disabled client error = nil")
	}
}

func TestUpstreamClientBreakerOpens(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestUpstream(server.URL)
	for i := 0; i < 3; i++ {
		if _, err := client.FetchPartition(context.Background(), "2024"); !errors.Is(err, ErrUnexpectedStatus) {
			t.Fatalf("attempt %d error = %v", i, err)
		}
	}
	if got := client.BreakerState(); got != "open" {
		t.Fatalf("BreakerState() = %q, want open", got)
	}

	_, err := client.FetchPartition(context.Background(), "2024")
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("error with open circuit = %v, want ErrOpenState", err)
	}
	if got := hits.Load(); got != 3 {
		t.Errorf("upstream hit %d times, want 3", got)
	}
}

func TestUpstreamClientHonoursContext(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := newTestUpstream(server.URL).FetchPartition(ctx, "2024"); err == nil {
		t.Error("FetchPartition() with expired context error = nil")
	}
}

func TestUpstreamClientMissingYearsKeepBreakerClosed(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path < "/2007.json" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := newTestUpstream(server.URL)
	for _, year := range []string{"2002", "2003", "2004", "2005", "2006"} {
		if _, err := client.FetchPartition(context.Background(), year); !errors.Is(err, ErrUnexpectedStatus) {
			t.Fatalf("year %s error = %v, want ErrUnexpectedStatus", year, err)
		}
	}
	if got := client.BreakerState(); got != "closed" {
		t.Fatalf("BreakerState() after missing years = %q, want closed", got)
	}
	if _, err := client.FetchPartition(context.Background(), "2007"); err != nil {
		t.Errorf("year 2007 error = %v", err)
	}
}

func TestUpstreamClientCallerCancelKeepsBreakerClosed(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer server.Close()

	client := newTestUpstream(server.URL)
	for i := 0; i < 5; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		time.AfterFunc(20*time.Millisecond, cancel)
		if _, err := client.FetchPartition(ctx, "2024"); !errors.Is(err, context.Canceled) {
			t.Fatalf("attempt %d error = %v, want context.Canceled", i, err)
		}
		cancel()
	}
	if got := client.BreakerState(); got != "closed" {
		t.Errorf("BreakerState() after canceled callers = %q, want closed", got)
	}
}

func TestMirrorHealthy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, true},
		{"canceled", fmt.Errorf("HTTP request failed: %w", context.Canceled), true},
		{"not found", &StatusError{Code: http.StatusNotFound}, true},
		{"forbidden", &StatusError{Code: http.StatusForbidden}, true},
		{"too many requests", &StatusError{Code: http.StatusTooManyRequests}, false},
		{"request timeout", &StatusError{Code: http.StatusRequestTimeout}, false},
		{"bad gateway", &StatusError{Code: http.StatusBadGateway}, false},
		{"deadline", context.DeadlineExceeded, false},
		{"network", errors.New("connection refused"), false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := mirrorHealthy(tt.err); got != tt.want {
				t.Errorf("mirrorHealthy(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
