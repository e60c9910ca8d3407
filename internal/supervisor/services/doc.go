// Menaxa - Security Intelligence Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/menaxa

// Package services adapts Menaxa's long-running components to
// suture.Service so the supervisor tree can start, restart and stop them.
//
//   - HTTPServerService: net/http server with graceful shutdown.
//   - RefreshService: the periodic refresh manager (sync.Manager).
package services
