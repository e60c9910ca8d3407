// Menaxa - Security Intelligence Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/menaxa

/*
Command feedsync performs one-shot maintenance on a Menaxa data directory.

	feedsync cve [--from 2002] [--to <current year>] [--force]
	feedsync check

cve pulls every year file in the range from the configured upstream mirror
(UPSTREAM_DATA_BASE_URL) into <DATA_DIR>/external_feed/cve, showing a
progress bar, and exits 1 when every year failed. check loads every feed and
the CVE catalog from disk and reports what it found.

Configuration is read exactly as the server reads it.
*/
package main

import "os"

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
