// Menaxa - Security Intelligence Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/menaxa

package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/tomtom215/menaxa/internal/config"
	"github.com/tomtom215/menaxa/internal/store"
	"github.com/tomtom215/menaxa/internal/sync"
)

type fakeRefresher struct {
	updated map[string]bool
	failing map[string]error
	calls   []string
}

func (f *fakeRefresher) RefreshPartition(_ context.Context, key string, force bool) (bool, error) {
	call := key
	if force {
		call += "!"
	}
	f.calls = append(f.calls, call)
	if err, ok := f.failing[key]; ok {
		return false, err
	}
	return f.updated[key], nil
}

func TestYearRange(t *testing.T) {
	t.Parallel()
	got := yearRange(2022, 2025)
	want := []string{"2022", "2023", "2024", "2025"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("yearRange = %v, want %v", got, want)
	}
	if got := yearRange(2025, 2025); len(got) != 1 {
		t.Errorf("single-year range = %v", got)
	}
}

func TestSyncYears(t *testing.T) {
	t.Parallel()
	boom := errors.New("upstream 502")
	r := &fakeRefresher{
		updated: map[string]bool{"2023": true},
		failing: map[string]error{"2024": boom},
	}

	s := syncYears(context.Background(), r, []string{"2022", "2023", "2024"}, true, io.Discard)

	if !reflect.DeepEqual(r.calls, []string{"2022!", "2023!", "2024!"}) {
		t.Errorf("calls = %v", r.calls)
	}
	if !reflect.DeepEqual(s.Updated, []string{"2023"}) || !reflect.DeepEqual(s.Unchanged, []string{"2022"}) {
		t.Errorf("updated %v unchanged %v", s.Updated, s.Unchanged)
	}
	if !errors.Is(s.Failed["2024"], boom) || len(s.Failed) != 1 {
		t.Errorf("failed = %v", s.Failed)
	}

	var out bytes.Buffer
	printSummary(&out, s)
	if !strings.Contains(out.String(), "updated: 1, unchanged: 1, failed: 1") {
		t.Errorf("summary = %q", out.String())
	}
}

func TestSyncYearsMirrorMissingEarlyYears(t *testing.T) {
	t.Parallel()
	mirror := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path < "/2007.json" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`[{"id":"CVE-0000-0001"}]`))
	}))
	defer mirror.Close()

	upstream := sync.NewUpstreamClient(&config.UpstreamConfig{
		BaseURL:         mirror.URL,
		Timeout:         5 * time.Second,
		BreakerFailures: 3,
		BreakerTimeout:  time.Minute,
	})
	st := store.New(afero.NewMemMapFs(), "/data/external_feed/cve", store.WithFetcher(upstream))

	s := syncYears(context.Background(), st, yearRange(2002, 2012), false, io.Discard)

	want := []string{"2007", "2008", "2009", "2010", "2011", "2012"}
	if !reflect.DeepEqual(s.Updated, want) {
		t.Errorf("updated = %v, want %v", s.Updated, want)
	}
	if len(s.Failed) != 5 {
		t.Errorf("failed = %v, want the five missing years", s.Failed)
	}
	for year, err := range s.Failed {
		if !errors.Is(err, sync.ErrUnexpectedStatus) {
			t.Errorf("year %s error = %v, want an upstream status error", year, err)
		}
	}
	if got := upstream.BreakerState(); got != "closed" {
		t.Errorf("BreakerState() = %q, want closed", got)
	}
}

func TestPrintSummaryOrdersFailures(t *testing.T) {
	t.Parallel()
	s := syncSummary{Failed: map[string]error{
		"2010": errors.New("c"),
		"2003": errors.New("a"),
		"2007": errors.New("b"),
	}}

	var out bytes.Buffer
	printSummary(&out, s)
	want := "updated: 0, unchanged: 0, failed: 3\n  2003: a\n  2007: b\n  2010: c\n"
	if out.String() != want {
		t.Errorf("summary = %q, want %q", out.String(), want)
	}
}

func TestSyncYearsCanceled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &fakeRefresher{}
	s := syncYears(ctx, r, []string{"2024", "2025"}, false, io.Discard)
	if len(r.calls) != 0 {
		t.Errorf("refresher called after cancellation: %v", r.calls)
	}
	if len(s.Failed) != 2 {
		t.Errorf("failed = %v", s.Failed)
	}
}

func TestRunCheck(t *testing.T) {
	t.Parallel()
	fsys := afero.NewMemMapFs()
	files := map[string]string{
		"/data/external_feed/eol.json":      `{"go":{"1.24":"2026-02-01"}}`,
		"/data/external_feed/cve/2024.json": `[{"id":"CVE-2024-0001","severity":"HIGH","score":7.5,"publishedDate":"2024-01-01T00:00:00"}]`,
	}
	for path, body := range files {
		if err := afero.WriteFile(fsys, path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	var out bytes.Buffer
	err := runCheck(context.Background(), &out, fsys, "/data", "/data/external_feed/cve")
	if err == nil {
		t.Fatal("runCheck() = nil, want an error for the missing feeds")
	}

	report := out.String()
	for _, want := range []string{"eol", "1 records", "leaks", "FAILED", "cve", "1 years (2024)"} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q:\n%s", want, report)
		}
	}
}
