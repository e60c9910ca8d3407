// Menaxa - Security Intelligence Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/menaxa

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/samber/lo"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/tomtom215/menaxa/internal/logging"
	"github.com/tomtom215/menaxa/internal/store"
	"github.com/tomtom215/menaxa/internal/sync"
)

// firstCVEYear is the earliest year the upstream mirror publishes.
const firstCVEYear = 2002

var errAllFailed = errors.New("every year failed to sync")

// partitionRefresher is satisfied by *store.Store.
type partitionRefresher interface {
	RefreshPartition(ctx context.Context, key string, force bool) (bool, error)
}

type syncSummary struct {
	Updated   []string
	Unchanged []string
	Failed    map[string]error
}

func newCVECmd() *cobra.Command {
	var from, to int
	var force, quiet bool

	cmd := &cobra.Command{
		Use:   "cve",
		Short: "Pull CVE year files from the upstream mirror",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if to == 0 {
				to = time.Now().UTC().Year()
			}
			if from > to {
				return fmt.Errorf("--from %d is after --to %d", from, to)
			}

			upstream := sync.NewUpstreamClient(&cfg.Upstream)
			if !upstream.Enabled() {
				return errors.New("no upstream configured, set UPSTREAM_DATA_BASE_URL")
			}
			st := store.New(afero.NewOsFs(), cfg.CVEDir(),
				store.WithFetcher(upstream),
				store.WithPullTimeout(cfg.Upstream.Timeout),
			)

			var progress io.Writer = cmd.ErrOrStderr()
			if quiet {
				progress = io.Discard
			}
			summary := syncYears(cmd.Context(), st, yearRange(from, to), force, progress)
			printSummary(cmd.OutOrStdout(), summary)

			if len(summary.Updated)+len(summary.Unchanged) == 0 {
				return errAllFailed
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&from, "from", firstCVEYear, "first year to pull")
	cmd.Flags().IntVar(&to, "to", 0, "last year to pull (default current year)")
	cmd.Flags().BoolVar(&force, "force", false, "pull even when the local file is fresh")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "hide the progress bar")
	return cmd
}

func yearRange(from, to int) []string {
	years := make([]string, 0, to-from+1)
	for y := from; y <= to; y++ {
		years = append(years, strconv.Itoa(y))
	}
	return years
}

// syncYears refreshes each year in turn. A failure is recorded and the next
// year is attempted.
func syncYears(ctx context.Context, r partitionRefresher, years []string, force bool, progress io.Writer) syncSummary {
	summary := syncSummary{Failed: make(map[string]error)}

	bar := pb.New(len(years))
	bar.SetWriter(progress)
	bar.Start()
	defer bar.Finish()

	for _, year := range years {
		if ctx.Err() != nil {
			summary.Failed[year] = ctx.Err()
			bar.Increment()
			continue
		}
		updated, err := r.RefreshPartition(ctx, year, force)
		switch {
		case err != nil:
			logging.Debug().Err(err).Str("year", year).Msg("Year sync failed")
			summary.Failed[year] = err
		case updated:
			summary.Updated = append(summary.Updated, year)
		default:
			summary.Unchanged = append(summary.Unchanged, year)
		}
		bar.Increment()
	}
	return summary
}

func printSummary(w io.Writer, s syncSummary) {
	fmt.Fprintf(w, "updated: %d, unchanged: %d, failed: %d\n", len(s.Updated), len(s.Unchanged), len(s.Failed))
	years := lo.Keys(s.Failed)
	slices.Sort(years)
	for _, year := range years {
		fmt.Fprintf(w, "  %s: %v\n", year, s.Failed[year])
	}
}
