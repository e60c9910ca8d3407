// Menaxa - Security Intelligence Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/menaxa

/*
Package supervisor runs Menaxa's long-lived services under a suture v4 tree.

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddRefreshService(services.NewRefreshService(manager, cfg.Sync.OnStartup))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	err = tree.Serve(ctx) // blocks until ctx is canceled

Crashed services are restarted with backoff. Supervisor events go through
sutureslog into the zerolog-backed slog adapter, so they share the process
log format.

The service adapters live in the services subpackage.
*/
package supervisor
