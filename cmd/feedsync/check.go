// Menaxa - Security Intelligence Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/menaxa

package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/tomtom215/menaxa/internal/cve"
	"github.com/tomtom215/menaxa/internal/feeds"
	"github.com/tomtom215/menaxa/internal/store"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Load every feed and the CVE catalog from disk and report",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runCheck(cmd.Context(), cmd.OutOrStdout(), afero.NewOsFs(), cfg.Storage.DataDir, cfg.CVEDir())
		},
	}
}

func runCheck(ctx context.Context, out io.Writer, fsys afero.Fs, dataDir, cveDir string) error {
	registry := feeds.NewRegistry(fsys, dataDir, feeds.Options{})
	failed := registry.LoadAll(ctx)
	for _, name := range append(registry.Names(), feeds.Phishing) {
		reportFeed(out, registry, name)
	}

	svc := cve.NewService(store.New(fsys, cveDir), nil, cve.Options{})
	catalogErr := svc.RefreshCatalog(ctx)
	if catalogErr != nil {
		fmt.Fprintf(out, "%-16s FAILED: %v\n", "cve", catalogErr)
	} else {
		st := svc.Status()
		fmt.Fprintf(out, "%-16s %d years (%s)\n", "cve", len(st.AvailableYears), strings.Join(st.AvailableYears, ", "))
	}

	if len(failed) > 0 || catalogErr != nil {
		return fmt.Errorf("%d feed(s) failed to load", len(failed)+boolToInt(catalogErr != nil))
	}
	return nil
}

func reportFeed(out io.Writer, registry *feeds.Registry, name string) {
	if name == feeds.Phishing {
		if registry.Phishing().Loaded() {
			fmt.Fprintf(out, "%-16s loaded\n", name)
		} else {
			fmt.Fprintf(out, "%-16s FAILED\n", name)
		}
		return
	}
	snap, err := registry.Snapshot(name)
	if err != nil {
		fmt.Fprintf(out, "%-16s FAILED: %v\n", name, err)
		return
	}
	fmt.Fprintf(out, "%-16s %d records, last updated %s\n", name, snap.TotalRecords, snap.LastUpdated)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
