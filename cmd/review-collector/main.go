// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the review-collector CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/review-collector/internal/secrets"
	"github.com/pdiddy/review-collector/internal/workbook"
	"github.com/pdiddy/review-collector/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds NCBI credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns the secret value for key if it exists, or fallback otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the review-collector CLI.
var rootCmd = &cobra.Command{
	Use:   "review-collector",
	Short: "Build a systematic review retrieval collection from OVID MEDLINE",
	Long: `review-collector builds a retrieval test collection for systematic
reviews. It replays each review's curated OVID search strategy against the
portal, extracts the PubMed identifiers published inside the review's search
window, assembles topic and relevance judgment files, downloads the abstracts
from NCBI Entrez, and formats them as a TRECTEXT corpus.

Each pipeline stage is a subcommand: collect, extract, titles, release,
fetch, format, stats. Use run to execute the full pipeline in order, and
index/search to build and query an optional full-text index over the
finished corpus.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./review-collector.yaml or ~/.config/review-collector/config.yaml)")
	rootCmd.PersistentFlags().String("data-dir", ".", "base directory for the collection tree")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("review-collector")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "review-collector"))
		}
	}

	viper.SetEnvPrefix("REVIEW_COLLECTOR")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// collectionLayout resolves the collection tree from the data-dir flag.
func collectionLayout(cmd *cobra.Command) types.Layout {
	dataDir, _ := cmd.Flags().GetString("data-dir")
	if dataDir == "" {
		dataDir = "."
	}
	return types.Layout{BaseDir: dataDir}
}

// loadReviewTable loads the review table, preferring the saved YAML copy
// over the workbook so later stages can run without the spreadsheet
// present. Loading from the workbook refreshes the saved copy.
func loadReviewTable(layout types.Layout) (map[string]types.Review, error) {
	if _, err := os.Stat(layout.ReviewsFile()); err == nil {
		return workbook.ReadReviews(layout.ReviewsFile())
	}

	reviews, err := workbook.LoadReviews(layout.WorkbookFile())
	if err != nil {
		return nil, err
	}
	if err := workbook.WriteReviews(layout.ReviewsFile(), reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
