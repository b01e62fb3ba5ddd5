// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/review-collector/internal/corpus"
	"github.com/pdiddy/review-collector/pkg/types"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the full-text index over the fetched corpus",
	Long: `Index ingests the fetched abstracts and their released judgments into
a SQLite database with FTS5 indexing under index/, and writes a YAML export.
Reviews whose batches have not changed since the last run are skipped.

The index is a convenience for exploring the finished collection; it is not
part of the release and can be rebuilt from corpora/ at any time.`,
	RunE: runIndex,
}

func runIndex(cmd *cobra.Command, args []string) error {
	layout := collectionLayout(cmd)
	if err := layout.EnsureDirs(); err != nil {
		return fmt.Errorf("creating collection directories: %w", err)
	}

	store, err := corpus.NewStore(layout, corpusConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Ingest(context.Background(), os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d review(s) failed indexing", summary.Failed)
	}
	return nil
}

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Query the corpus index with full-text search and filters",
	Long: `Search queries the corpus index using FTS5 full-text search over titles
and abstracts, optionally filtered by topic or relevance level.`,
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	layout := collectionLayout(cmd)

	store, err := corpus.NewStore(layout, corpusConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	topic, _ := cmd.Flags().GetString("topic")
	relevant, _ := cmd.Flags().GetString("relevant")
	limit, _ := cmd.Flags().GetInt("limit")

	opts := corpus.QueryOptions{
		Query:      strings.Join(args, " "),
		Topic:      topic,
		Relevant:   relevant,
		MaxResults: limit,
	}
	if opts.Query == "" && opts.Topic == "" && opts.Relevant == "" {
		return fmt.Errorf("query or filter required: provide search terms, --topic, or --relevant")
	}

	results, err := store.Retrieve(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatSearchOutput(results, jsonOutput)
}

func formatSearchOutput(results []corpus.QueryResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-10s  %-8s  %-60s  %-3s  %s\n",
		"Rank", "PMID", "Topic", "Title", "Abs", "Doc")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 96))

	for i, r := range results {
		title := r.Title
		if len(title) > 60 {
			title = title[:57] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-10s  %-8s  %-60s  %-3d  %d\n",
			i+1, r.PMID, r.Topic, title, r.AbsRel, r.DocRel)
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

func corpusConfig(cmd *cobra.Command) types.CorpusConfig {
	maxResults, _ := cmd.Flags().GetInt("max-results")
	return types.CorpusConfig{MaxResults: maxResults}
}

func init() {
	indexCmd.Flags().Int("max-results", 20, "maximum number of query results")

	searchCmd.Flags().String("topic", "", "filter by topic id")
	searchCmd.Flags().String("relevant", "", "restrict to relevant documents: abs or doc")
	searchCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	searchCmd.Flags().Int("max-results", 20, "maximum number of query results")
	searchCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(searchCmd)
}
