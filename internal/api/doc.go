// Menaxa - Security Intelligence Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/menaxa

/*
Package api is Menaxa's HTTP layer, built on the chi router.

Routes:

	GET  /cves                    CVE page, one year (?year=) or all years
	GET  /get-cves                same handler, legacy path
	POST /refresh                 trigger a background refresh cycle (202)
	POST /refresh/all             same, legacy path
	GET  /web3-threats            web3 incident feed
	POST /web3-threats/refresh    reload the web3 incident feed (202)
	GET  /eol                     end-of-life feed
	GET  /leaks                   leaks feed
	GET  /news                    news feed
	GET  /web3-releases           web3 framework releases
	GET  /get-web3-scam-domains   up to five random phishing domains
	GET  /search?domain=          phishing domain lookup
	GET  /health, /health/live, /health/ready
	GET  /metrics                 Prometheus exposition

Dataset reads return flat JSON shapes, kept stable for existing clients.
Failures always use the error envelope:

	{
	  "status": "error",
	  "error": {"code": "PAGE_OUT_OF_RANGE", "message": "...", "details": {"total_pages": 3}},
	  "metadata": {"timestamp": "...", "request_id": "..."}
	}

Every error returned by the CVE service or the feed registry goes through
classifyError, the single place where domain errors become HTTP statuses.
*/
package api
