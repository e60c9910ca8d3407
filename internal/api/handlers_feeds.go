// Menaxa - Security Intelligence Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/menaxa

package api

import (
	"context"
	"net/http"

	"github.com/tomtom215/menaxa/internal/feeds"
	"github.com/tomtom215/menaxa/internal/logging"
	"github.com/tomtom215/menaxa/internal/models"
	"github.com/tomtom215/menaxa/internal/validation"
)

var notLoadedMessages = map[string]string{
	feeds.Web3Threats:  "Data not yet loaded",
	feeds.EOL:          "EOL data not yet loaded",
	feeds.Leaks:        "Leaks data not yet loaded",
	feeds.News:         "News data not yet loaded",
	feeds.Web3Releases: "Web3 releases data not yet loaded",
}

// Feed returns a handler serving the named feed snapshot.
func (h *Handler) Feed(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := h.feeds.Snapshot(name)
		if err != nil {
			respondServiceError(w, r, err, notLoadedMessages[name])
			return
		}
		respondJSON(w, r, http.StatusOK, snap)
	}
}

// RefreshWeb3Threats reloads the web3 incident feed in the background.
func (h *Handler) RefreshWeb3Threats(w http.ResponseWriter, r *http.Request) {
	ctx := context.WithoutCancel(r.Context())
	go func() {
		if err := h.feeds.Load(ctx, feeds.Web3Threats); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("Web3 threats reload failed")
		}
	}()
	respondJSON(w, r, http.StatusAccepted, models.Acknowledgement{Message: "Cache refresh initiated"})
}

type scamDomainsResponse struct {
	LastUpdated  string   `json:"last_updated"`
	TotalRecords int      `json:"total_records"`
	Data         []string `json:"data"`
}

// ScamDomains returns a random sample of phishing domains.
func (h *Handler) ScamDomains(w http.ResponseWriter, r *http.Request) {
	sample, updated, err := h.domains.Sample()
	if err != nil {
		respondServiceError(w, r, err, "Phishing data not yet loaded")
		return
	}
	if sample == nil {
		sample = []string{}
	}
	// A fresh sample per request; caching headers would pin one.
	w.Header().Set("Cache-Control", "no-store")
	respondJSON(w, r, http.StatusOK, scamDomainsResponse{
		LastUpdated:  updated,
		TotalRecords: len(sample),
		Data:         sample,
	})
}

// SearchDomain reports whether ?domain= is a known phishing domain.
func (h *Handler) SearchDomain(w http.ResponseWriter, r *http.Request) {
	q := validation.DomainQuery{Domain: r.URL.Query().Get("domain")}
	if verr := validation.ValidateStruct(&q); verr != nil {
		respondValidationError(w, r, verr)
		return
	}

	exists, updated, err := h.domains.Contains(q.Domain)
	if err != nil {
		respondServiceError(w, r, err, "Phishing data not yet loaded")
		return
	}
	respondJSON(w, r, http.StatusOK, models.DomainSearchResult{
		Domain:      q.Domain,
		Exists:      exists,
		LastUpdated: updated,
	})
}
