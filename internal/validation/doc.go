// Menaxa - Security Intelligence Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/menaxa

// Package validation checks HTTP query parameters with go-playground/validator
// before any data is touched.
//
//	params := validation.PageParams{Page: page, PageSize: size}
//	if verr := validation.ValidateStruct(&params); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
//	    return
//	}
//
// Messages name the query parameter (page_size, not PageSize) so clients can
// map them back to their request.
package validation
