// Menaxa - Security Intelligence Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/menaxa

package models

import "time"

// APIResponse is the envelope used for errors and operational endpoints.
// Dataset reads return their snapshot shape directly so existing dashboard
// clients keep working.
//
//	{
//	  "status": "error",
//	  "error": {"code": "PAGE_OUT_OF_RANGE", "message": "Page 9 does not exist", "details": {"total_pages": 3}},
//	  "metadata": {"timestamp": "2026-01-05T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data,omitempty"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata accompanies every APIResponse.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// APIError carries a machine-readable code plus optional details such as
// total_pages for out-of-range page requests.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Acknowledgement is returned by endpoints that start background work.
type Acknowledgement struct {
	Message string `json:"message"`
}
