// Menaxa - Security Intelligence Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/menaxa

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/menaxa/internal/logging"
	"github.com/tomtom215/menaxa/internal/models"
)

// sanitizeLogValue escapes control characters so request input cannot forge
// log lines.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// respondJSON writes v as-is. Successful GET responses carry an ETag, honour
// If-None-Match and default to a one minute public cache.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if r.Method == http.MethodGet && status == http.StatusOK {
		etag := `"` + generateETag(data) + `"`
		w.Header().Set("ETag", etag)
		if w.Header().Get("Cache-Control") == "" {
			w.Header().Set("Cache-Control", "public, max-age=60")
		}
		if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("Failed to write JSON response")
	}
}

// generateETag is FNV-1a over the body.
func generateETag(data []byte) string {
	hash := uint32(2166136261)
	for _, b := range data {
		hash ^= uint32(b)
		hash *= 16777619
	}
	return strconv.FormatUint(uint64(hash), 16)
}

// respondEnvelope writes a success envelope (operational endpoints).
func respondEnvelope(w http.ResponseWriter, r *http.Request, status int, statusText string, data interface{}) {
	respondJSON(w, r, status, &models.APIResponse{
		Status: statusText,
		Data:   data,
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
			RequestID: logging.RequestIDFromContext(r.Context()),
		},
	})
}

// respondError writes the error envelope.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, details map[string]interface{}) {
	w.Header().Set("Cache-Control", "no-store")
	respondJSON(w, r, status, &models.APIResponse{
		Status: "error",
		Metadata: models.Metadata{
			Timestamp: time.Now().UTC(),
			RequestID: logging.RequestIDFromContext(r.Context()),
		},
		Error: &models.APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// respondServiceError classifies err, logs it and writes the envelope.
// message, when set, replaces the default message for 404 and 503 errors.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error, message string) {
	f := classifyError(err)
	if message != "" && (f.status == http.StatusNotFound || f.status == http.StatusServiceUnavailable) {
		f.message = message
	}

	log := logging.Ctx(r.Context())
	if f.status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("code", f.code).Str("path", sanitizeLogValue(r.URL.Path)).Msg("API error")
	} else {
		log.Debug().Err(err).Str("code", f.code).Str("path", sanitizeLogValue(r.URL.Path)).Msg("API request rejected")
	}
	respondError(w, r, f.status, f.code, f.message, f.details)
}
