// Menaxa - Security Intelligence Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/menaxa

// Package models holds the data shapes shared by the store, the services and
// the HTTP layer: the pass-through CVE Record, the CVE page bodies, the feed
// snapshot bodies and the JSON envelope used for errors and health.
package models
