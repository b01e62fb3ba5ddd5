// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/review-collector/internal/collect"
	"github.com/pdiddy/review-collector/internal/httputil"
	"github.com/pdiddy/review-collector/internal/portal"
	"github.com/pdiddy/review-collector/pkg/types"
)

const (
	defaultTimeout     = 60 * time.Second
	defaultUserAgent   = "review-collector/0.1"
	defaultDatabase    = "mesz"
	defaultBatchSize   = 500
	defaultSettleDelay = 30 * time.Second
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Harvest PubMed identifiers from the OVID portal",
	Long: `Collect replays every review's curated search strategy against the OVID
portal and saves the citation exports as raw XML batches under
download_pids/<topic>/. Queries the portal rejects are appended to the error
log for the medical expert and skipped; other failures are counted and the
run continues.`,
	RunE: runCollect,
}

func init() {
	collectCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	collectCmd.Flags().String("database", "", "OVID database segment code (default mesz)")
	collectCmd.Flags().Int("batch-size", 0, "citations per export request (default 500, the portal cap)")
	collectCmd.Flags().Duration("settle-delay", 0, "pause after the last export of a review (default 30s)")

	rootCmd.AddCommand(collectCmd)
}

func runCollect(cmd *cobra.Command, args []string) error {
	layout := collectionLayout(cmd)
	if err := layout.EnsureDirs(); err != nil {
		return fmt.Errorf("creating collection directories: %w", err)
	}

	reviews, err := loadReviewTable(layout)
	if err != nil {
		return err
	}

	cfg := portalConfig(cmd)
	result := collect.Reviews(
		context.Background(),
		portal.NewClient(cfg),
		reviews, layout, cfg,
		portal.NewErrorLog(layout.LogFile()),
		os.Stdout,
	)
	if result.HasFailures() {
		return fmt.Errorf("%d review(s) failed collection", result.Failed)
	}
	return nil
}

func portalConfig(cmd *cobra.Command) types.PortalConfig {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}
	database, _ := cmd.Flags().GetString("database")
	if database == "" {
		database = defaultDatabase
	}
	batchSize, _ := cmd.Flags().GetInt("batch-size")
	if batchSize == 0 {
		batchSize = defaultBatchSize
	}
	settleDelay, _ := cmd.Flags().GetDuration("settle-delay")
	if settleDelay == 0 {
		settleDelay = defaultSettleDelay
	}

	return types.PortalConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: defaultUserAgent,
		},
		Database:    database,
		BatchSize:   batchSize,
		SettleDelay: settleDelay,
	}
}

var titlesCmd = &cobra.Command{
	Use:   "titles",
	Short: "Scrape review titles from their publisher pages",
	Long: `Titles fetches each review's title from its publisher page and writes
the title file used by the topic release. Reviews whose page cannot be read
are reported and left out.`,
	RunE: runTitles,
}

func init() {
	titlesCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")

	rootCmd.AddCommand(titlesCmd)
}

func runTitles(cmd *cobra.Command, args []string) error {
	layout := collectionLayout(cmd)

	reviews, err := loadReviewTable(layout)
	if err != nil {
		return err
	}

	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}
	client := httputil.NewClient(types.HTTPConfig{Timeout: timeout})

	return collect.Titles(context.Background(), client, reviews, layout, defaultUserAgent, os.Stdout)
}
