// Menaxa - Security Intelligence Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/menaxa

package models

// PageInfo is shared by scoped and unscoped CVE pages.
type PageInfo struct {
	LastUpdated  string   `json:"last_updated"`
	TotalRecords int      `json:"total_records"`
	TotalPages   int      `json:"total_pages"`
	CurrentPage  int      `json:"current_page"`
	PageSize     int      `json:"page_size"`
	Data         []Record `json:"data"`
}

// YearPage is the response for GET /cves?year=YYYY.
type YearPage struct {
	LastUpdated  string   `json:"last_updated"`
	Year         string   `json:"year"`
	TotalRecords int      `json:"total_records"`
	TotalPages   int      `json:"total_pages"`
	CurrentPage  int      `json:"current_page"`
	PageSize     int      `json:"page_size"`
	Data         []Record `json:"data"`
}

// AllYearsPage is the response for GET /cves without a year; it also lists
// every year currently in the catalog.
type AllYearsPage struct {
	PageInfo
	AvailableYears []string `json:"available_years"`
}
