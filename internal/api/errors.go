// Menaxa - Security Intelligence Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/menaxa

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/tomtom215/menaxa/internal/cve"
	"github.com/tomtom215/menaxa/internal/feeds"
	"github.com/tomtom215/menaxa/internal/pagination"
	"github.com/tomtom215/menaxa/internal/store"
)

// Error codes used in the error envelope.
const (
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodePageOutOfRange     = "PAGE_OUT_OF_RANGE"
	ErrCodeTooManyRequests    = "TOO_MANY_REQUESTS"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// failure is an error translated for the wire.
type failure struct {
	status  int
	code    string
	message string
	details map[string]interface{}
}

// classifyError maps service and registry errors onto HTTP responses.
func classifyError(err error) failure {
	var outOfRange *pagination.PageOutOfRangeError
	switch {
	case errors.As(err, &outOfRange):
		return failure{
			status:  http.StatusBadRequest,
			code:    ErrCodePageOutOfRange,
			message: fmt.Sprintf("Page %d does not exist. Total pages: %d", outOfRange.Page, outOfRange.TotalPages),
			details: map[string]interface{}{"total_pages": outOfRange.TotalPages},
		}
	case errors.Is(err, pagination.ErrInvalidRequest):
		return failure{status: http.StatusBadRequest, code: ErrCodeValidation, message: err.Error()}
	case errors.Is(err, store.ErrStoreUnavailable), errors.Is(err, cve.ErrNoValidData):
		return failure{status: http.StatusServiceUnavailable, code: ErrCodeServiceUnavailable, message: "CVE data not yet loaded"}
	case errors.Is(err, feeds.ErrNotLoaded):
		return failure{status: http.StatusServiceUnavailable, code: ErrCodeServiceUnavailable, message: "Data not yet loaded"}
	case errors.Is(err, store.ErrPartitionNotFound), errors.Is(err, pagination.ErrEmptyPartition):
		return failure{status: http.StatusNotFound, code: ErrCodeNotFound, message: "No CVE data found"}
	case errors.Is(err, feeds.ErrUnknownFeed):
		return failure{status: http.StatusNotFound, code: ErrCodeNotFound, message: "Unknown feed"}
	case errors.Is(err, store.ErrPartitionCorrupt):
		return failure{status: http.StatusInternalServerError, code: ErrCodeInternalError, message: "CVE data file is corrupt"}
	case errors.Is(err, context.DeadlineExceeded):
		return failure{status: http.StatusServiceUnavailable, code: ErrCodeServiceUnavailable, message: "Request timed out"}
	default:
		return failure{status: http.StatusInternalServerError, code: ErrCodeInternalError, message: "Internal server error"}
	}
}
