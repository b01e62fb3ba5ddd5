// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/review-collector/internal/fetch"
	"github.com/pdiddy/review-collector/pkg/types"
)

const (
	defaultTool        = "review-collector"
	defaultReviewDelay = 5 * time.Second
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download abstracts from NCBI Entrez",
	Long: `Fetch downloads the abstracts for every released PID list through NCBI
efetch and writes each response verbatim as a numbered batch under
corpora/<topic>/. The contact email is required by NCBI; an API key raises
the rate limit. Both can be provided as flags or dropped into .secrets/
(entrez-email, ncbi-api-key).`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().String("email", "", "contact email reported to NCBI (or .secrets/entrez-email)")
	fetchCmd.Flags().String("api-key", "", "NCBI API key (or .secrets/ncbi-api-key)")
	fetchCmd.Flags().Int("batch-size", 0, "PMIDs per efetch call (default 500)")
	fetchCmd.Flags().Duration("review-delay", 0, "pause between consecutive reviews (default 5s)")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	layout := collectionLayout(cmd)
	if err := layout.EnsureDirs(); err != nil {
		return fmt.Errorf("creating collection directories: %w", err)
	}

	cfg, err := fetchConfig(cmd)
	if err != nil {
		return err
	}

	fetch.Setup(cfg)
	return fetch.Run(layout, cfg, os.Stdout)
}

func fetchConfig(cmd *cobra.Command) (types.FetchConfig, error) {
	email, _ := cmd.Flags().GetString("email")
	email = secretDefault("entrez-email", email)
	if email == "" {
		return types.FetchConfig{}, fmt.Errorf("NCBI contact email required: use --email or .secrets/entrez-email")
	}

	apiKey, _ := cmd.Flags().GetString("api-key")
	apiKey = secretDefault("ncbi-api-key", apiKey)

	batchSize, _ := cmd.Flags().GetInt("batch-size")
	if batchSize == 0 {
		batchSize = defaultBatchSize
	}
	reviewDelay, _ := cmd.Flags().GetDuration("review-delay")
	if reviewDelay == 0 {
		reviewDelay = defaultReviewDelay
	}

	return types.FetchConfig{
		Tool:        defaultTool,
		Email:       email,
		APIKey:      apiKey,
		BatchSize:   batchSize,
		ReviewDelay: reviewDelay,
	}, nil
}
