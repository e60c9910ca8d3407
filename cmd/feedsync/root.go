// Menaxa - Security Intelligence Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/menaxa

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/menaxa/internal/config"
	"github.com/tomtom215/menaxa/internal/logging"
)

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "feedsync",
		Short:         "One-shot maintenance for the Menaxa data directory",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := "warn"
			if verbose {
				level = "debug"
			}
			logging.Init(logging.Config{Level: level, Format: "console", Timestamp: true})
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log progress details")

	root.AddCommand(newCVECmd())
	root.AddCommand(newCheckCmd())
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "feedsync %s\n", version)
		},
	})
	return root
}

// loadConfig is swapped in tests.
var loadConfig = config.Load
