// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/review-collector/internal/trectext"
)

var formatCmd = &cobra.Command{
	Use:   "format",
	Short: "Reformat the fetched abstracts as a TRECTEXT corpus",
	Long: `Format parses the raw efetch batches under corpora/ and writes the
matching TRECTEXT files under trectext/. Citations without an abstract are
reported and emitted with an empty TEXT field.`,
	RunE: runFormat,
}

func init() {
	rootCmd.AddCommand(formatCmd)
}

func runFormat(cmd *cobra.Command, args []string) error {
	layout := collectionLayout(cmd)
	if err := layout.EnsureDirs(); err != nil {
		return fmt.Errorf("creating collection directories: %w", err)
	}

	return trectext.Run(layout, os.Stdout)
}
