// Menaxa - Security Intelligence Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/menaxa

package store

import "errors"

var (
	// ErrStoreUnavailable means the partition directory does not exist.
	ErrStoreUnavailable = errors.New("partition store unavailable")

	// ErrPartitionNotFound means no file exists for the requested key, or the
	// key is not a partition key at all.
	ErrPartitionNotFound = errors.New("partition not found")

	// ErrPartitionCorrupt means the file exists but is not a record list.
	ErrPartitionCorrupt = errors.New("partition corrupt")

	// ErrMalformedPayload is returned when an upstream snapshot cannot be
	// decoded; the existing file is left untouched.
	ErrMalformedPayload = errors.New("malformed upstream payload")
)
