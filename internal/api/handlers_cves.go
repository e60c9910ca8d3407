// Menaxa - Security Intelligence Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/menaxa

package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/tomtom215/menaxa/internal/logging"
	"github.com/tomtom215/menaxa/internal/models"
	"github.com/tomtom215/menaxa/internal/pagination"
)

// CVEs serves one page of CVE records.
//
// With ?year= the page is cut from that year's partition; without it the
// partitions are paged as one sequence, newest year first.
//
//	GET /cves?year=2024&page=2&page_size=50
func (h *Handler) CVEs(w http.ResponseWriter, r *http.Request) {
	params, ok := h.parsePageParams(w, r)
	if !ok {
		return
	}
	req := pagination.Request{Page: params.Page, PageSize: params.PageSize}
	year := strings.TrimSpace(r.URL.Query().Get("year"))

	if year != "" {
		page, err := h.cves.YearPage(r.Context(), year, req)
		if err != nil {
			respondServiceError(w, r, err, fmt.Sprintf("No CVE data found for year %s", year))
			return
		}
		respondJSON(w, r, http.StatusOK, page)
		return
	}

	page, err := h.cves.AllYearsPage(r.Context(), req)
	if err != nil {
		respondServiceError(w, r, err, "")
		return
	}
	respondJSON(w, r, http.StatusOK, page)
}

// Refresh starts a full refresh cycle in the background.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	msg := "All cache refreshes initiated"
	if !h.refresher.TriggerRefresh() {
		msg = "Refresh already in progress"
	}
	logging.Ctx(r.Context()).Info().Str("result", msg).Msg("Refresh requested")
	respondJSON(w, r, http.StatusAccepted, models.Acknowledgement{Message: msg})
}
