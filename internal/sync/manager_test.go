// Menaxa - Security Intelligence Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/menaxa

package sync

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"
)

type fakeRefresher struct {
	mu      sync.Mutex
	calls   []string
	updated bool
	err     error
}

func (f *fakeRefresher) RefreshPartition(_ context.Context, key string, force bool) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	call := key
	if force {
		call += "!"
	}
	f.calls = append(f.calls, call)
	return f.updated, f.err
}

func (f *fakeRefresher) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// recorder captures the order in which cycle stages run.
type recorder struct {
	mu      sync.Mutex
	events  []string
	block   chan struct{}
	failed  []string
	catErr  error
	catalog int
}

func (r *recorder) add(e string) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recorder) LoadAll(context.Context) []string {
	r.add("feeds")
	return r.failed
}

func (r *recorder) RefreshCatalog(context.Context) error {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	r.catalog++
	r.mu.Unlock()
	r.add("catalog")
	return r.catErr
}

func (r *recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func TestSynchronizerEnsureFresh(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name      string
		key       string
		wantCalls []string
	}{
		{"current year", "2025", []string{"2025"}},
		{"unscoped", "", []string{"2025"}},
		{"historical year", "2019", nil},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := &fakeRefresher{}
			NewSynchronizer(f, nil).EnsureFresh(context.Background(), tt.key, now)
			if got := f.Calls(); !reflect.DeepEqual(got, tt.wantCalls) {
				t.Errorf("refresh calls = %v, want %v", got, tt.wantCalls)
			}
		})
	}
}

func TestCurrentKeyUsesUTC(t *testing.T) {
	t.Parallel()

	// 23:30 on New Year's Eve in New York is already January 1st in UTC.
	eve := time.Date(2025, 12, 31, 23, 30, 0, 0, time.FixedZone("EST", -5*60*60))
	if got := CurrentKey(eve); got != "2026" {
		t.Errorf("CurrentKey(%v) = %q, want 2026", eve, got)
	}
	// And 00:30 on January 1st in Auckland is still the old year in UTC.
	newYear := time.Date(2026, 1, 1, 0, 30, 0, 0, time.FixedZone("NZDT", 13*60*60))
	if got := CurrentKey(newYear); got != "2025" {
		t.Errorf("CurrentKey(%v) = %q, want 2025", newYear, got)
	}
}

func TestSynchronizerNotifiesOnlyOnUpdate(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	var notified []string
	onUpdated := func(key string) { notified = append(notified, key) }

	if NewSynchronizer(&fakeRefresher{updated: false}, onUpdated).EnsureFresh(context.Background(), "", now) {
		t.Error("EnsureFresh() = true for skipped refresh")
	}
	if NewSynchronizer(&fakeRefresher{err: errors.New("502")}, onUpdated).EnsureFresh(context.Background(), "", now) {
		t.Error("EnsureFresh() = true for failed refresh")
	}
	if len(notified) != 0 {
		t.Fatalf("notified = %v before any update", notified)
	}

	if !NewSynchronizer(&fakeRefresher{updated: true}, onUpdated).EnsureFresh(context.Background(), "2025", now) {
		t.Error("EnsureFresh() = false for updated refresh")
	}
	if !reflect.DeepEqual(notified, []string{"2025"}) {
		t.Errorf("notified = %v, want [2025]", notified)
	}
}

func TestManagerRunCycleOrder(t *testing.T) {
	t.Parallel()

	f := &fakeRefresher{}
	rec := &recorder{failed: []string{"news"}, catErr: errors.New("no partitions")}
	m := NewManager(NewSynchronizer(f, nil), rec, rec, time.Hour)
	m.now = func() time.Time { return time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC) }

	m.RunCycle(context.Background())

	if got := f.Calls(); !reflect.DeepEqual(got, []string{"2026"}) {
		t.Errorf("refresh calls = %v, want [2026]", got)
	}
	if got := rec.Events(); !reflect.DeepEqual(got, []string{"feeds", "catalog"}) {
		t.Errorf("stages = %v, want [feeds catalog]", got)
	}
	if m.LastRun().IsZero() {
		t.Error("LastRun() not set after a cycle")
	}
}

func TestManagerTriggerRefreshSkipsWhileRunning(t *testing.T) {
	t.Parallel()

	rec := &recorder{block: make(chan struct{})}
	m := NewManager(nil, nil, rec, time.Hour)

	if !m.TriggerRefresh() {
		t.Fatal("first TriggerRefresh() = false")
	}
	// The first cycle is parked in RefreshCatalog.
	if m.TriggerRefresh() {
		t.Error("second TriggerRefresh() = true while a cycle is running")
	}
	close(rec.block)
	m.wg.Wait()

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.catalog != 1 {
		t.Errorf("catalog refreshed %d times, want 1", rec.catalog)
	}
}

func TestManagerStartStop(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	m := NewManager(nil, rec, rec, 10*time.Millisecond)

	if err := m.Start(context.Background(), true); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := m.Start(context.Background(), true); err == nil {
		t.Error("second Start() error = nil")
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		rec.mu.Lock()
		n := rec.catalog
		rec.mu.Unlock()
		if n >= 3 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("only %d cycles ran", n)
		}
		time.Sleep(5 * time.Millisecond)
	}

	if err := m.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if err := m.Stop(); err == nil {
		t.Error("second Stop() error = nil")
	}
}

func TestManagerRestart(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	m := NewManager(nil, rec, rec, 10*time.Millisecond)

	for round := 0; round < 2; round++ {
		if err := m.Start(context.Background(), false); err != nil {
			t.Fatalf("round %d: Start() error = %v", round, err)
		}

		rec.mu.Lock()
		before := rec.catalog
		rec.mu.Unlock()

		deadline := time.Now().Add(2 * time.Second)
		for {
			rec.mu.Lock()
			n := rec.catalog
			rec.mu.Unlock()
			if n > before {
				break
			}
			if time.Now().After(deadline) {
				t.Fatalf("round %d: ticker never fired", round)
			}
			time.Sleep(5 * time.Millisecond)
		}

		if err := m.Stop(); err != nil {
			t.Fatalf("round %d: Stop() error = %v", round, err)
		}
	}
}
