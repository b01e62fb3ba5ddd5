// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/review-collector/internal/extract"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract PubMed identifiers from the downloaded exports",
	Long: `Extract reads the raw XML batches under download_pids/, keeps the
records whose creation date falls inside each review's search window, and
writes one ordered PMID list per review under pids/.`,
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	layout := collectionLayout(cmd)
	if err := layout.EnsureDirs(); err != nil {
		return fmt.Errorf("creating collection directories: %w", err)
	}

	reviews, err := loadReviewTable(layout)
	if err != nil {
		return err
	}

	return extract.Run(reviews, layout, os.Stdout)
}
