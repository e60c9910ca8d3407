// Menaxa - Security Intelligence Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/menaxa

package store

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/tomtom215/menaxa/internal/models"
)

// PayloadKind tags which shape a partition document had on the wire.
type PayloadKind int

const (
	// PayloadList is the canonical shape: a JSON array of record objects.
	PayloadList PayloadKind = iota + 1
	// PayloadObject is a single record object, served by some mirrors for
	// years with one entry.
	PayloadObject
)

func (k PayloadKind) String() string {
	switch k {
	case PayloadList:
		return "list"
	case PayloadObject:
		return "object"
	default:
		return "unknown"
	}
}

var errUnsupportedShape = errors.New("document is neither a record list nor a record object")

// Payload is a decoded partition document. Both shapes normalize to a record
// slice through Records; nothing past the store looks at Kind.
type Payload struct {
	Kind   PayloadKind
	list   []models.Record
	object models.Record
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Payload) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return errUnsupportedShape
	}

	switch trimmed[0] {
	case '[':
		var list []models.Record
		if err := decodeUseNumber(trimmed, &list); err != nil {
			return err
		}
		for i, r := range list {
			if r == nil {
				return fmt.Errorf("element %d is not an object", i)
			}
		}
		*p = Payload{Kind: PayloadList, list: list}
	case '{':
		var obj models.Record
		if err := decodeUseNumber(trimmed, &obj); err != nil {
			return err
		}
		*p = Payload{Kind: PayloadObject, object: obj}
	default:
		return errUnsupportedShape
	}
	return nil
}

// Records returns the payload as a record slice.
func (p Payload) Records() []models.Record {
	if p.Kind == PayloadObject {
		return []models.Record{p.object}
	}
	return p.list
}

// DecodePayload decodes a partition document of either shape.
func DecodePayload(data []byte) (Payload, error) {
	var p Payload
	if err := p.UnmarshalJSON(data); err != nil {
		return Payload{}, err
	}
	return p, nil
}

// normalizedBytes returns data as a JSON array document, wrapping a single
// object in brackets without re-encoding it.
func normalizedBytes(kind PayloadKind, data []byte) []byte {
	trimmed := bytes.TrimSpace(data)
	if kind == PayloadList {
		return trimmed
	}
	out := make([]byte, 0, len(trimmed)+2)
	out = append(out, '[')
	out = append(out, trimmed...)
	return append(out, ']')
}

func decodeUseNumber(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("trailing data after document")
	}
	return nil
}
