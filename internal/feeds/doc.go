// Menaxa - Security Intelligence Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/menaxa

/*
Package feeds loads the auxiliary security feeds served next to the CVE data.

Every feed is a single JSON file dropped into the data directory by an
external puller:

	data/rekt_db/rekt_db_*.json            web3-threats (newest by mtime)
	data/external_feed/eol.json            eol
	data/external_feed/leak.json           leaks
	data/external_feed/newsen.json         news
	data/external_feed/web3-releases.json  web3-releases (or data/web3-releases.json)
	data/phishing-scam-db.json             phishing

A Registry loads them on startup and on every refresh cycle. Readers get the
last good snapshot; a feed that never loaded reports ErrNotLoaded, which the
HTTP layer maps to 503.

The phishing list is large. In low-memory mode PhishingDB only records the
file's modification time and reads the list from disk for each lookup.
*/
package feeds
