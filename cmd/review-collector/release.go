// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/review-collector/internal/release"
	"github.com/pdiddy/review-collector/pkg/types"
)

var releaseCmd = &cobra.Command{
	Use:   "release [kinds...]",
	Short: "Build the release files: topic, abs, doc",
	Long: `Release assembles the published artifacts from the extracted PID lists.
Kinds select what to build: "topic" writes the topic description files,
"abs" the abstract-level judgment files, "doc" the document-level judgment
files. With no arguments all three are built.`,
	RunE: runRelease,
}

func init() {
	rootCmd.AddCommand(releaseCmd)
}

func runRelease(cmd *cobra.Command, args []string) error {
	layout := collectionLayout(cmd)
	if err := layout.EnsureDirs(); err != nil {
		return fmt.Errorf("creating collection directories: %w", err)
	}

	reviews, err := loadReviewTable(layout)
	if err != nil {
		return err
	}

	kinds := []types.JudgmentKind{types.KindTopic, types.KindAbstract, types.KindDocument}
	if len(args) > 0 {
		kinds = kinds[:0]
		for _, arg := range args {
			switch kind := types.JudgmentKind(arg); kind {
			case types.KindTopic, types.KindAbstract, types.KindDocument:
				kinds = append(kinds, kind)
			default:
				return fmt.Errorf("unknown release kind %q: use topic, abs, or doc", arg)
			}
		}
	}

	for _, kind := range kinds {
		if err := release.Build(kind, reviews, layout, os.Stdout); err != nil {
			return err
		}
	}
	return nil
}
