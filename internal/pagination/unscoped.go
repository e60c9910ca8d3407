// Menaxa - Security Intelligence Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/menaxa

package pagination

import "github.com/tomtom215/menaxa/internal/models"

// Source supplies partitions to Unscoped.
type Source interface {
	// Count returns a partition's record count if it is known without
	// loading the partition.
	Count(key string) (int, bool)

	// Load returns a partition's filtered records.
	Load(key string) ([]models.Record, error)
}

// Unscoped returns one page of the concatenation of keys' partitions, in the
// order given.
//
// Every partition contributes to the total. A partition is only loaded when
// the page still needs records from it or when its count is unknown, so a
// page near the front touches one or two partitions once counts are known.
func Unscoped(keys []string, src Source, req Request) (Page, error) {
	if err := req.Validate(); err != nil {
		return Page{}, err
	}

	skip := req.offset()
	acc := make([]models.Record, 0, req.PageSize)
	total := 0

	for _, key := range keys {
		n, known := src.Count(key)
		needed := len(acc) < req.PageSize && (!known || skip < n)

		var records []models.Record
		if needed || !known {
			var err error
			records, err = src.Load(key)
			if err != nil {
				return Page{}, err
			}
			n = len(records)
		}
		total += n

		if len(acc) >= req.PageSize {
			continue
		}
		if skip >= n {
			skip -= n
			continue
		}

		take := min(req.PageSize-len(acc), n-skip)
		acc = append(acc, records[skip:skip+take]...)
		skip = 0
	}

	totalPages := TotalPages(total, req.PageSize)
	if req.Page > max(totalPages, 1) {
		return Page{}, &PageOutOfRangeError{Page: req.Page, TotalPages: totalPages}
	}

	return Page{
		TotalRecords: total,
		TotalPages:   totalPages,
		CurrentPage:  req.Page,
		PageSize:     req.PageSize,
		Records:      acc,
	}, nil
}
