// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full collection pipeline",
	Long: `Run executes every pipeline stage in order: collect, extract, titles,
release (topic, abs, doc), fetch, format, stats. Each stage uses its default
settings; run the stages individually to override them. The optional corpus
index is not built; use index afterwards if you want one.`,
	RunE: runPipeline,
}

func init() {
	runCmd.Flags().String("email", "", "contact email reported to NCBI (or .secrets/entrez-email)")
	runCmd.Flags().String("api-key", "", "NCBI API key (or .secrets/ncbi-api-key)")

	rootCmd.AddCommand(runCmd)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	layout := collectionLayout(cmd)
	if err := layout.EnsureDirs(); err != nil {
		return fmt.Errorf("creating collection directories: %w", err)
	}

	stages := []struct {
		name string
		run  func(*cobra.Command, []string) error
	}{
		{"collect", runCollect},
		{"extract", runExtract},
		{"titles", runTitles},
		{"release", runRelease},
		{"fetch", runFetch},
		{"format", runFormat},
		{"stats", runStats},
	}

	for _, stage := range stages {
		fmt.Fprintf(os.Stdout, "==> %s\n", stage.name)
		if err := stage.run(cmd, nil); err != nil {
			return fmt.Errorf("stage %s: %w", stage.name, err)
		}
	}
	return nil
}
