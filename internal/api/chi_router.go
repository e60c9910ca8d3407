// Menaxa - Security Intelligence Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/menaxa

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/menaxa/internal/feeds"
	"github.com/tomtom215/menaxa/internal/middleware"
)

// Rate limits for route groups with their own budget.
const (
	healthRateLimit  = 1000
	refreshRateLimit = 10
)

// Router wires the handler into a chi mux.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router.
func NewRouter(handler *Handler, mw *ChiMiddleware) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Router{handler: handler, chiMiddleware: mw}
}

// Setup builds the full route table.
func (router *Router) Setup() http.Handler {
	h := router.handler
	mw := router.chiMiddleware

	r := chi.NewRouter()

	// Global middleware, applied in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(mw.CORS()) // global so OPTIONS preflight is answered everywhere
	r.Use(middleware.PrometheusMetrics)
	r.Use(chimiddleware.Compress(5, "application/json"))
	r.Use(APISecurityHeaders())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed", nil)
	})

	// Health and metrics get a generous budget for frequent probing.
	r.Group(func(r chi.Router) {
		r.Use(mw.RateLimitWith(healthRateLimit, time.Minute))
		r.Get("/health", h.Health)
		r.Get("/health/live", h.HealthLive)
		r.Get("/health/ready", h.HealthReady)
		r.Handle("/metrics", promhttp.Handler())
	})

	// Refresh triggers kick off disk and network work.
	r.Group(func(r chi.Router) {
		r.Use(mw.RateLimitWith(refreshRateLimit, time.Minute))
		r.Post("/refresh", h.Refresh)
		r.Post("/refresh/all", h.Refresh)
		r.Post("/web3-threats/refresh", h.RefreshWeb3Threats)
	})

	r.Group(func(r chi.Router) {
		r.Use(mw.RateLimit())

		r.Get("/cves", h.CVEs)
		r.Get("/get-cves", h.CVEs)

		r.Get("/web3-threats", h.Feed(feeds.Web3Threats))
		r.Get("/eol", h.Feed(feeds.EOL))
		r.Get("/leaks", h.Feed(feeds.Leaks))
		r.Get("/news", h.Feed(feeds.News))
		r.Get("/web3-releases", h.Feed(feeds.Web3Releases))

		r.Get("/get-web3-scam-domains", h.ScamDomains)
		r.Get("/search", h.SearchDomain)
	})

	return r
}
