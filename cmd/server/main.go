// Menaxa - Security Intelligence Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/menaxa

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/afero"

	"github.com/tomtom215/menaxa/internal/api"
	"github.com/tomtom215/menaxa/internal/cache"
	"github.com/tomtom215/menaxa/internal/config"
	"github.com/tomtom215/menaxa/internal/cve"
	"github.com/tomtom215/menaxa/internal/feeds"
	"github.com/tomtom215/menaxa/internal/logging"
	"github.com/tomtom215/menaxa/internal/metrics"
	"github.com/tomtom215/menaxa/internal/store"
	"github.com/tomtom215/menaxa/internal/supervisor"
	"github.com/tomtom215/menaxa/internal/supervisor/services"
	"github.com/tomtom215/menaxa/internal/sync"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	logging.Info().
		Str("version", version).
		Str("data_dir", cfg.Storage.DataDir).
		Bool("low_memory", cfg.Storage.LowMemory).
		Int("max_partitions", cfg.Cache.MaxPartitions).
		Bool("upstream", cfg.Upstream.BaseURL != "").
		Msg("Starting Menaxa")
	metrics.AppInfo.WithLabelValues(version, runtime.Version()).Set(1)

	fsys := afero.NewOsFs()
	upstream := sync.NewUpstreamClient(&cfg.Upstream)

	st := store.New(fsys, cfg.CVEDir(),
		store.WithFetcher(upstream),
		store.WithMaxAge(cfg.MaxAge()),
		store.WithPullTimeout(cfg.Upstream.Timeout),
	)

	counts, err := cache.NewCountIndex(cache.CountIndexType(cfg.Cache.CountIndex), cfg.Cache.CountIndexPath)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open count index")
	}
	defer func() {
		if err := counts.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing count index")
		}
	}()

	svc := cve.NewService(st, counts, cve.Options{
		LowMemory:     cfg.Storage.LowMemory,
		MaxPartitions: cfg.Cache.MaxPartitions,
	})
	synchronizer := sync.NewSynchronizer(st, svc.PartitionUpdated)
	svc.SetFreshener(synchronizer)

	registry := feeds.NewRegistry(fsys, cfg.Storage.DataDir, feeds.Options{LowMemory: cfg.Storage.LowMemory})
	manager := sync.NewManager(synchronizer, registry, svc, cfg.Sync.Interval)

	handler := api.NewHandler(api.Deps{
		CVEs:      svc,
		Feeds:     registry,
		Domains:   registry.Phishing(),
		Refresher: manager,
		Upstream:  upstream,
	}, cfg.API.DefaultPageSize, version)

	mw := api.NewChiMiddleware(&api.ChiMiddlewareConfig{
		CORSAllowedOrigins: cfg.Security.CORSOrigins,
		CORSAllowedMethods: []string{"GET", "POST", "OPTIONS"},
		CORSAllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		CORSExposedHeaders: []string{"X-Request-ID", "ETag"},
		CORSMaxAge:         86400,
		RateLimitRequests:  cfg.Security.RateLimitReqs,
		RateLimitWindow:    cfg.Security.RateLimitWindow,
		RateLimitDisabled:  cfg.Security.RateLimitDisabled,
	})
	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED")
	}

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           api.NewRouter(handler, mw).Setup(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}
	tree.AddRefreshService(services.NewRefreshService(manager, cfg.Sync.OnStartup))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	// suture sends exactly one value and never closes the channel.
	errCh := tree.ServeBackground(ctx)
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
		if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, s := range unstopped {
			logging.Warn().Str("service", s.Name).Msg("Service failed to stop within timeout")
		}
	}
	logging.Info().Msg("Menaxa stopped")
}
