// Menaxa - Security Intelligence Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/menaxa

package feeds

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/afero"

	"github.com/tomtom215/menaxa/internal/models"
)

// threatFields are the fields kept from each web3 incident.
var threatFields = []string{
	"project_name", "name_categories", "website_link", "funds_lost",
	"scam_type", "date", "root_cause", "quick_summary", "details",
	"block_data", "proof_link", "chain", "token_name", "token_address",
}

// threatsFile picks the newest timestamped rekt snapshot, falling back to
// the stable file name on fresh deployments.
func (r *Registry) threatsFile() (string, error) {
	dir := filepath.Join(r.dataDir, "rekt_db")
	matches, err := afero.Glob(r.fs, filepath.Join(dir, "rekt_db_*.json"))
	if err != nil {
		return "", fmt.Errorf("list rekt snapshots: %w", err)
	}
	if len(matches) == 0 {
		matches = []string{filepath.Join(dir, "rekt_db.json")}
	}
	return newest(r.fs, matches)
}

func (r *Registry) loadWeb3Threats(_ context.Context) (models.FeedSnapshot, error) {
	path, err := r.threatsFile()
	if err != nil {
		return models.FeedSnapshot{}, err
	}
	v, info, err := readJSON(r.fs, path)
	if err != nil {
		return models.FeedSnapshot{}, err
	}

	doc, ok := v.(map[string]interface{})
	if !ok || len(doc) == 0 {
		return models.FeedSnapshot{}, fmt.Errorf("%w: rekt file must be an object", ErrInvalidFormat)
	}
	// Older pulls use "items", normalized snapshots use "data".
	items, ok := doc["items"].([]interface{})
	if !ok {
		items, ok = doc["data"].([]interface{})
	}
	if !ok {
		return models.FeedSnapshot{}, fmt.Errorf("%w: missing 'items' or 'data' array", ErrInvalidFormat)
	}

	incidents := lo.FilterMap(items, func(item interface{}, _ int) (models.Record, bool) {
		rec, ok := item.(map[string]interface{})
		if !ok {
			return nil, false
		}
		return projectThreat(rec)
	})
	slices.SortStableFunc(incidents, func(a, b models.Record) int {
		return strings.Compare(dateOf(b), dateOf(a))
	})

	return models.FeedSnapshot{
		LastUpdated:  stamp(info.ModTime()),
		TotalRecords: len(incidents),
		Data:         incidents,
	}, nil
}

// projectThreat keeps threatFields and flattens scam_type. Honeypots are
// dropped.
func projectThreat(rec map[string]interface{}) (models.Record, bool) {
	scamType := rec["scam_type"]
	if obj, ok := scamType.(map[string]interface{}); ok {
		scamType = obj["type"]
	}
	if s, ok := scamType.(string); ok && strings.EqualFold(strings.TrimSpace(s), "honeypot") {
		return nil, false
	}

	out := make(models.Record, len(threatFields))
	for _, field := range threatFields {
		out[field] = rec[field]
	}
	out["scam_type"] = scamType
	return out, true
}

// dateOf sorts missing or non-string dates last.
func dateOf(r models.Record) string {
	s, _ := r.String("date")
	return s
}
