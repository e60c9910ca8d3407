// Menaxa - Security Intelligence Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/menaxa

// Package filter turns a raw CVE partition into the canonical sequence that
// is cached and paginated: rejected and data-less entries are dropped and the
// rest are ordered newest first.
package filter

import (
	"slices"
	"strings"

	"github.com/tomtom215/menaxa/internal/models"
)

// RejectedMarker appears in the description of entries withdrawn upstream.
const RejectedMarker = "Rejected reason"

// noDataSeverities are the upstream placeholders for "no severity assigned".
// "brak" is Polish for "none"; the mirror emits both spellings.
var noDataSeverities = []string{"brak", "none"}

// Keep reports whether a single record survives filtering.
func Keep(r models.Record) bool {
	if desc, ok := r.String(models.FieldDescription); ok && strings.Contains(desc, RejectedMarker) {
		return false
	}
	if isNoData(r, models.FieldSeverity) || isNoData(r, models.FieldSeverityEN) {
		return false
	}
	if r.IsNull(models.FieldScore) && !r.Truthy(models.FieldSeverity) {
		return false
	}
	return true
}

func isNoData(r models.Record, field string) bool {
	s, ok := r.String(field)
	return ok && slices.Contains(noDataSeverities, s)
}

// Apply drops records failing Keep and stably sorts the rest by publishedDate,
// newest first. The input slice is not modified.
func Apply(raw []models.Record) []models.Record {
	out := make([]models.Record, 0, len(raw))
	for _, r := range raw {
		if Keep(r) {
			out = append(out, r)
		}
	}
	SortByPublished(out)
	return out
}

// SortByPublished stably sorts records by publishedDate descending. Missing,
// null and non-string dates sort as "" and therefore last.
func SortByPublished(records []models.Record) {
	slices.SortStableFunc(records, func(a, b models.Record) int {
		return strings.Compare(publishedDate(b), publishedDate(a))
	})
}

func publishedDate(r models.Record) string {
	s, _ := r.String(models.FieldPublishedDate)
	return s
}
