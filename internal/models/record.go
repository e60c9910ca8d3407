// Menaxa - Security Intelligence Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/menaxa

package models

import "github.com/goccy/go-json"

// Record is one upstream vulnerability entry. Only a handful of fields are
// inspected; everything else is passed through untouched. Numbers are kept as
// json.Number so they round-trip with their original spelling.
type Record map[string]interface{}

// Fields inspected by the CVE filter and sort.
const (
	FieldPublishedDate = "publishedDate"
	FieldDescription   = "description"
	FieldSeverity      = "severity"
	FieldSeverityEN    = "severity_en"
	FieldScore         = "score"
)

// String returns the field as a string and whether it was one.
func (r Record) String(field string) (string, bool) {
	s, ok := r[field].(string)
	return s, ok
}

// IsNull reports whether the field is absent or JSON null.
func (r Record) IsNull(field string) bool {
	v, ok := r[field]
	return !ok || v == nil
}

// Truthy reports whether the field holds a value that is neither absent,
// null, false, zero nor empty.
func (r Record) Truthy(field string) bool {
	switch v := r[field].(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case json.Number:
		f, err := v.Float64()
		return err != nil || f != 0
	case float64:
		return v != 0
	case []interface{}:
		return len(v) > 0
	case map[string]interface{}:
		return len(v) > 0
	default:
		return true
	}
}
