// Menaxa - Security Intelligence Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/menaxa

package feeds

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/goccy/go-json"
	"github.com/samber/lo"
	"github.com/spf13/afero"
)

// readJSON decodes path with numbers kept as json.Number and returns the
// file's info alongside.
func readJSON(fsys afero.Fs, path string) (interface{}, os.FileInfo, error) {
	info, err := fsys.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, fmt.Errorf("%w: %s", ErrSourceMissing, path)
		}
		return nil, nil, fmt.Errorf("stat %s: %w", path, err)
	}

	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}

	var v interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrInvalidFormat, path, err)
	}
	return v, info, nil
}

type candidate struct {
	path string
	info os.FileInfo
}

// newest returns the existing path with the latest modification time.
func newest(fsys afero.Fs, paths []string) (string, error) {
	existing := lo.FilterMap(paths, func(p string, _ int) (candidate, bool) {
		info, err := fsys.Stat(p)
		if err != nil || info.IsDir() {
			return candidate{}, false
		}
		return candidate{path: p, info: info}, true
	})
	if len(existing) == 0 {
		return "", ErrSourceMissing
	}
	latest := lo.MaxBy(existing, func(a, b candidate) bool {
		return a.info.ModTime().After(b.info.ModTime())
	})
	return latest.path, nil
}

// isEmpty mirrors the "nothing useful in this file" check applied to every
// feed: null, false, zero and empty containers are all rejected.
func isEmpty(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case bool:
		return !t
	case string:
		return t == ""
	case json.Number:
		f, err := t.Float64()
		return err == nil && f == 0
	case []interface{}:
		return len(t) == 0
	case map[string]interface{}:
		return len(t) == 0
	}
	return false
}
