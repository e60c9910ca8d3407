// Menaxa - Security Intelligence Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/menaxa

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/cves", "200"))
	RecordAPIRequest("GET", "/cves", 200, 25*time.Millisecond)
	RecordAPIRequest("GET", "/cves", 200, 5*time.Millisecond)
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/cves", "200"))

	if after-before != 2 {
		t.Errorf("api_requests_total delta = %v, want 2", after-before)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != before+1 {
		t.Errorf("after inc = %v, want %v", got, before+1)
	}
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("after dec = %v, want %v", got, before)
	}
}

func TestRecordUpstreamPull(t *testing.T) {
	tests := []struct {
		name    string
		updated bool
		err     error
		result  string
	}{
		{"updated", true, nil, PullUpdated},
		{"skipped", false, nil, PullSkipped},
		{"failed", false, errors.New("status 503"), PullFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := UpstreamPulls.WithLabelValues(tt.result)
			before := testutil.ToFloat64(c)
			RecordUpstreamPull(tt.updated, tt.err)
			if got := testutil.ToFloat64(c) - before; got != 1 {
				t.Errorf("upstream_pulls_total{result=%q} delta = %v, want 1", tt.result, got)
			}
		})
	}
}

func TestRecordRefreshCycle(t *testing.T) {
	RefreshLastSuccess.Set(0)
	RecordRefreshCycle(time.Second, "catalog")
	if got := testutil.ToFloat64(RefreshLastSuccess); got != 0 {
		t.Errorf("last success set after catalog failure: %v", got)
	}

	before := testutil.ToFloat64(RefreshErrors.WithLabelValues("feeds"))
	RecordRefreshCycle(time.Second, "feeds")
	if got := testutil.ToFloat64(RefreshErrors.WithLabelValues("feeds")) - before; got != 1 {
		t.Errorf("refresh_errors_total{stage=feeds} delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(RefreshLastSuccess); got == 0 {
		t.Error("last success not set when catalog stage succeeded")
	}
}

func TestRecordFeedLoad(t *testing.T) {
	RecordFeedLoad("eol", 42, nil)
	if got := testutil.ToFloat64(FeedRecords.WithLabelValues("eol")); got != 42 {
		t.Errorf("feed_records{feed=eol} = %v, want 42", got)
	}

	before := testutil.ToFloat64(FeedLoadErrors.WithLabelValues("eol"))
	RecordFeedLoad("eol", 0, errors.New("missing"))
	if got := testutil.ToFloat64(FeedLoadErrors.WithLabelValues("eol")) - before; got != 1 {
		t.Errorf("feed_load_errors_total delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(FeedRecords.WithLabelValues("eol")); got != 42 {
		t.Errorf("failed load changed the gauge to %v", got)
	}
}
