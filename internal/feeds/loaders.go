// Menaxa - Security Intelligence Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/menaxa

package feeds

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/samber/lo"

	"github.com/tomtom215/menaxa/internal/logging"
	"github.com/tomtom215/menaxa/internal/models"
)

// newsFutureSlack is how far ahead of now a news item may be dated before it
// is treated as a feed anomaly and dropped.
const newsFutureSlack = 24 * time.Hour

func (r *Registry) loadEOL(_ context.Context) (models.FeedSnapshot, error) {
	v, info, err := readJSON(r.fs, filepath.Join(r.feedRoot, "eol.json"))
	if err != nil {
		return models.FeedSnapshot{}, err
	}
	if isEmpty(v) {
		return models.FeedSnapshot{}, fmt.Errorf("%w: empty EOL file", ErrInvalidFormat)
	}

	total := 1
	if list, ok := v.([]interface{}); ok {
		total = len(list)
	}
	return models.FeedSnapshot{
		LastUpdated:  stamp(info.ModTime()),
		TotalRecords: total,
		Data:         v,
	}, nil
}

func (r *Registry) loadLeaks(_ context.Context) (models.FeedSnapshot, error) {
	v, info, err := readJSON(r.fs, filepath.Join(r.feedRoot, "leak.json"))
	if err != nil {
		return models.FeedSnapshot{}, err
	}
	if isEmpty(v) {
		return models.FeedSnapshot{}, fmt.Errorf("%w: empty leaks file", ErrInvalidFormat)
	}
	items, ok := v.([]interface{})
	if !ok {
		return models.FeedSnapshot{}, fmt.Errorf("%w: leaks file must be a list", ErrInvalidFormat)
	}

	cleaned := make([]models.Record, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return models.FeedSnapshot{}, fmt.Errorf("%w: leak %d is not an object", ErrInvalidFormat, i)
		}
		cleaned = append(cleaned, cleanLeak(obj))
	}

	return models.FeedSnapshot{
		LastUpdated:  stamp(info.ModTime()),
		TotalRecords: len(cleaned),
		Data:         cleaned,
	}, nil
}

// cleanLeak drops the Polish translations (keys ending in _pl) and turns the
// HTML description into plain text with a references list.
func cleanLeak(obj map[string]interface{}) models.Record {
	out := models.Record(lo.OmitBy(obj, func(k string, _ interface{}) bool {
		return strings.HasSuffix(k, "_pl")
	}))

	desc, present := out["description"]
	if !present {
		return out
	}
	var text string
	switch d := desc.(type) {
	case string:
		text = d
	case nil:
	default:
		return out
	}
	domain, _ := out.String("domain")
	clean, refs := sanitizeDescription(text, domain)
	out["description"] = clean
	if len(refs) > 0 {
		out["references"] = refs
	}
	return out
}

func (r *Registry) loadNews(ctx context.Context) (models.FeedSnapshot, error) {
	v, info, err := readJSON(r.fs, filepath.Join(r.feedRoot, "newsen.json"))
	if err != nil {
		return models.FeedSnapshot{}, err
	}
	if isEmpty(v) {
		return models.FeedSnapshot{}, fmt.Errorf("%w: empty news file", ErrInvalidFormat)
	}
	if doc, ok := v.(map[string]interface{}); ok {
		v = doc["data"]
	}
	items, ok := v.([]interface{})
	if !ok {
		return models.FeedSnapshot{}, fmt.Errorf("%w: news data must be a list", ErrInvalidFormat)
	}

	cutoff := r.now().Add(newsFutureSlack)
	kept := lo.Filter(items, func(item interface{}, _ int) bool {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return true
		}
		published, ok := parseNewsDate(obj["pubDate"])
		return !ok || !published.After(cutoff)
	})
	if dropped := len(items) - len(kept); dropped > 0 {
		logging.Ctx(ctx).Info().Int("dropped", dropped).Msg("Dropped future-dated news entries")
	}

	return models.FeedSnapshot{
		LastUpdated:  stamp(info.ModTime()),
		TotalRecords: len(kept),
		Data:         kept,
	}, nil
}

// parseNewsDate accepts ISO-8601 and RFC 2822 dates. Values without a zone
// are taken as UTC.
func parseNewsDate(v interface{}) (time.Time, bool) {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseIn(strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

func (r *Registry) loadWeb3Releases(_ context.Context) (models.FeedSnapshot, error) {
	path, err := newest(r.fs, []string{
		filepath.Join(r.feedRoot, "web3-releases.json"),
		filepath.Join(r.dataDir, "web3-releases.json"),
	})
	if err != nil {
		return models.FeedSnapshot{}, err
	}
	v, _, err := readJSON(r.fs, path)
	if err != nil {
		return models.FeedSnapshot{}, err
	}

	doc, ok := v.(map[string]interface{})
	if !ok || len(doc) == 0 {
		return models.FeedSnapshot{}, fmt.Errorf("%w: releases file must be an object", ErrInvalidFormat)
	}
	data, ok := doc["data"]
	if !ok {
		return models.FeedSnapshot{}, fmt.Errorf("%w: missing 'data' key in %s", ErrInvalidFormat, path)
	}

	total := 1
	switch d := data.(type) {
	case []interface{}:
		total = len(d)
	case map[string]interface{}:
		total = len(d)
	case nil:
		total = 0
	}
	return models.FeedSnapshot{
		LastUpdated:  stamp(r.now()),
		TotalRecords: total,
		Data:         data,
	}, nil
}
