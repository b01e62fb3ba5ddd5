// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/review-collector/internal/stats"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print statistics over the released judgment files",
	Long: `Stats reads the abstract- and document-level judgment files and prints
a per-review table of document counts, relevant counts, and relevant
percentages, with a grand total.`,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	return stats.Run(collectionLayout(cmd), os.Stdout)
}
