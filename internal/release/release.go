// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package release assembles the published artifacts from the extracted
// PID lists: topic description files and the abstract- and
// document-level qrel files. Judgment lines follow the TREC qrels
// layout (topic, iteration, document, relevance), fixed-width padded.
package release

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hscells/trecresults"

	"github.com/pdiddy/review-collector/internal/workbook"
	"github.com/pdiddy/review-collector/pkg/types"
)

// qrelLine is the fixed-width judgment line. The trailing space before
// the newline is part of the released format.
const qrelLine = "%-12s %-2d %-12s %-2d \n"

// Build emits one release artifact kind for every review that has a PID
// list. A PID list whose topic is missing from the review table (or,
// for topic files, from the title file) is a fatal error.
func Build(kind types.JudgmentKind, reviews map[string]types.Review, layout types.Layout, w io.Writer) error {
	var (
		rel    map[string]trecresults.Qrels
		titles map[string]string
		err    error
	)
	switch kind {
	case types.KindTopic:
		titles, err = workbook.ReadTitles(layout.TitleFile())
	case types.KindAbstract, types.KindDocument:
		rel, err = workbook.LoadRelevance(layout.RelevanceFile(), kind)
	default:
		return fmt.Errorf("unknown judgment kind %q", kind)
	}
	if err != nil {
		return err
	}

	topics, err := Topics(layout.PidsDir())
	if err != nil {
		return err
	}

	for _, topic := range topics {
		review, ok := reviews[topic]
		if !ok {
			return fmt.Errorf("topic %s has a pid list but no workbook row", topic)
		}

		pids, err := ReadPids(filepath.Join(layout.PidsDir(), topic))
		if err != nil {
			return err
		}
		pids = Dedup(pids)

		switch kind {
		case types.KindTopic:
			title, ok := titles[topic]
			if !ok {
				return fmt.Errorf("topic %s has no title", topic)
			}
			err = writeTopicFile(filepath.Join(layout.TopicDir(), topic), review, title, pids)
		case types.KindAbstract:
			err = writeQrelFile(filepath.Join(layout.AbsQrelDir(), topic), review.Code, pids, rel[review.Code])
		case types.KindDocument:
			err = writeQrelFile(filepath.Join(layout.DocQrelDir(), topic), review.Code, pids, rel[review.Code])
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "released %s/%s (%d pids)\n", kind, topic, len(pids))
	}
	return nil
}

// Topics lists the per-review files in a collection directory, in
// ascending numeric order. The fetcher and the statistics report walk
// their directories through the same listing.
func Topics(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}
	var topics []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		topics = append(topics, entry.Name())
	}
	workbook.SortTopicIDs(topics)
	return topics, nil
}

// ReadPids loads a PID list, trimming each line and dropping empties.
func ReadPids(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening pid list %s: %w", path, err)
	}
	defer f.Close()

	var pids []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		pid := strings.TrimSpace(scanner.Text())
		if pid != "" {
			pids = append(pids, pid)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading pid list %s: %w", path, err)
	}
	return pids, nil
}

// Dedup removes duplicate identifiers, keeping the first occurrence and
// the original order.
func Dedup(pids []string) []string {
	seen := make(map[string]struct{}, len(pids))
	var out []string
	for _, pid := range pids {
		if _, ok := seen[pid]; ok {
			continue
		}
		seen[pid] = struct{}{}
		out = append(out, pid)
	}
	return out
}

// Judgments materializes the qrel records for one review's deduplicated
// PID list. Identifiers without a curated judgment default to 0.
func Judgments(code string, pids []string, curated trecresults.Qrels) []*trecresults.Qrel {
	judgments := make([]*trecresults.Qrel, len(pids))
	for i, pid := range pids {
		var score int64
		if q, ok := curated[pid]; ok {
			score = q.Score
		}
		judgments[i] = &trecresults.Qrel{
			Topic:     code,
			Iteration: "0",
			DocId:     pid,
			Score:     score,
		}
	}
	return judgments
}

func writeQrelFile(path, code string, pids []string, curated trecresults.Qrels) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating qrel file %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, q := range Judgments(code, pids, curated) {
		fmt.Fprintf(w, qrelLine, q.Topic, 0, q.DocId, q.Score)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing qrel file %s: %w", path, err)
	}
	return nil
}

// writeTopicFile emits the free-text topic description. The trailing
// spaces match the released collection byte-for-byte.
func writeTopicFile(path string, review types.Review, title string, pids []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating topic file %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "Topic: %s \n\n", review.Code)
	fmt.Fprintf(w, "Title: %s \n\n", title)
	fmt.Fprintf(w, "Query: \n%s \n\n", review.Query)
	fmt.Fprintf(w, "Pids: \n")
	for _, pid := range pids {
		fmt.Fprintf(w, "    %s \n", pid)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing topic file %s: %w", path, err)
	}
	return nil
}
