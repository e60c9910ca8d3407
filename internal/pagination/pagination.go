// Menaxa - Security Intelligence Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/menaxa

// Package pagination slices the CVE dataset into pages, either within one
// partition or across all partitions as if they were one sequence ordered
// newest year first.
package pagination

import (
	"errors"
	"fmt"

	"github.com/tomtom215/menaxa/internal/models"
)

// Page size bounds.
const (
	DefaultPageSize = 100
	MaxPageSize     = 1000
)

// ErrEmptyPartition is returned by Scoped when the partition has no records.
var ErrEmptyPartition = errors.New("partition has no records")

// ErrInvalidRequest is returned for page < 1 or a page size outside bounds.
var ErrInvalidRequest = errors.New("invalid page request")

// PageOutOfRangeError reports a page past the end. TotalPages is the true
// page count for the requested page size.
type PageOutOfRangeError struct {
	Page       int
	TotalPages int
}

func (e *PageOutOfRangeError) Error() string {
	return fmt.Sprintf("page %d does not exist, total pages: %d", e.Page, e.TotalPages)
}

// Request is a validated page request.
type Request struct {
	Page     int
	PageSize int
}

// Validate checks the bounds.
func (r Request) Validate() error {
	if r.Page < 1 {
		return fmt.Errorf("%w: page must be greater than 0", ErrInvalidRequest)
	}
	if r.PageSize < 1 || r.PageSize > MaxPageSize {
		return fmt.Errorf("%w: page size must be between 1 and %d", ErrInvalidRequest, MaxPageSize)
	}
	return nil
}

func (r Request) offset() int {
	return (r.Page - 1) * r.PageSize
}

// Page is one slice of records plus the totals it was cut from.
type Page struct {
	TotalRecords int
	TotalPages   int
	CurrentPage  int
	PageSize     int
	Records      []models.Record
}

// TotalPages is ceil(total/size).
func TotalPages(total, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// Scoped returns one page of a single partition's records.
func Scoped(records []models.Record, req Request) (Page, error) {
	if err := req.Validate(); err != nil {
		return Page{}, err
	}

	total := len(records)
	if total == 0 {
		return Page{}, ErrEmptyPartition
	}
	totalPages := TotalPages(total, req.PageSize)
	if req.Page > totalPages {
		return Page{}, &PageOutOfRangeError{Page: req.Page, TotalPages: totalPages}
	}

	start := req.offset()
	end := min(start+req.PageSize, total)
	return Page{
		TotalRecords: total,
		TotalPages:   totalPages,
		CurrentPage:  req.Page,
		PageSize:     req.PageSize,
		Records:      records[start:end:end],
	}, nil
}
