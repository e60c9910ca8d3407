// Menaxa - Security Intelligence Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/menaxa

/*
Command server runs the Menaxa HTTP API.

It serves CVE records partitioned by publication year from
<DATA_DIR>/external_feed/cve/<year>.json, plus the auxiliary security feeds
(web3 incidents, end-of-life data, leaks, news, web3 releases and the
phishing domain list) from <DATA_DIR>/external_feed.

# Process layout

	menaxa
	├── refresh-layer
	│   └── refresh-manager   sync current year, reload feeds, refresh catalog
	└── api-layer
	    └── http-server

The refresh manager runs a cycle at startup (SYNC_ON_STARTUP) and then every
REFRESH_INTERVAL (default 5m). When UPSTREAM_DATA_BASE_URL is set, reads of
the current year also pull a fresh copy from the mirror once the local file
is older than CURRENT_YEAR_SYNC_MAX_AGE_HOURS.

# Configuration

Configuration is layered with koanf: built-in defaults, then an optional
config.yaml (CONFIG_PATH), then environment variables. The most useful ones:

	DATA_DIR                 data root (default ./data)
	LOW_MEMORY_MODE          load CVE years lazily through a bounded cache
	CACHE_MAX_PARTITIONS     cache capacity in low-memory mode
	COUNT_INDEX              memory or badger
	UPSTREAM_DATA_BASE_URL   CVE mirror; empty disables upstream sync
	HTTP_PORT                listen port
	LOG_LEVEL, LOG_FORMAT

SIGINT and SIGTERM trigger a graceful shutdown.
*/
package main
