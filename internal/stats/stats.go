// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package stats summarizes the released judgment files: per-review
// document counts, abstract- and document-level relevant counts, and
// the relevant percentages, with a grand-total row.
package stats

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hscells/trecresults"

	"github.com/pdiddy/review-collector/internal/release"
	"github.com/pdiddy/review-collector/pkg/types"
)

const tableLine = "%-10v | %-10v | %-10v | %-10v | %-10v | %-10v | %-10v\n"

// TopicStats holds the counts for one review's judgment files.
type TopicStats struct {
	// Topic is the numeric topic id (the qrel file name).
	Topic string

	// Code is the review code the judgment lines carry.
	Code string

	// Total is the number of judged documents.
	Total int

	// AbsRel is the number of documents relevant at the abstract level.
	AbsRel int

	// DocRel is the number of documents relevant at the document level.
	DocRel int
}

// Run prints the collection statistics table. Every abstract-level qrel
// file must have a document-level counterpart with judgments; a missing
// or empty file is an error.
func Run(layout types.Layout, w io.Writer) error {
	topics, err := release.Topics(layout.AbsQrelDir())
	if err != nil {
		return err
	}

	fmt.Fprintf(w, tableLine,
		"file name", "topic", "# total doc", "# abs rel", "# doc rel", "% abs rel", "% doc rel")

	var total, absRel, docRel int
	for _, topic := range topics {
		ts, err := topicStats(topic, layout)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, tableLine,
			ts.Topic, ts.Code, ts.Total, ts.AbsRel, ts.DocRel,
			percent(ts.AbsRel, ts.Total), percent(ts.DocRel, ts.Total))

		total += ts.Total
		absRel += ts.AbsRel
		docRel += ts.DocRel
	}

	if total == 0 {
		return fmt.Errorf("no judged documents under %s", layout.AbsQrelDir())
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, tableLine,
		"total", " ", total, absRel, docRel, percent(absRel, total), percent(docRel, total))
	return nil
}

func topicStats(topic string, layout types.Layout) (TopicStats, error) {
	absCode, absQrels, err := readQrels(filepath.Join(layout.AbsQrelDir(), topic))
	if err != nil {
		return TopicStats{}, err
	}
	_, docQrels, err := readQrels(filepath.Join(layout.DocQrelDir(), topic))
	if err != nil {
		return TopicStats{}, err
	}
	if len(absQrels) == 0 {
		return TopicStats{}, fmt.Errorf("topic %s has no abstract judgments", topic)
	}

	return TopicStats{
		Topic:  topic,
		Code:   absCode,
		Total:  len(absQrels),
		AbsRel: relevantCount(absQrels),
		DocRel: relevantCount(docQrels),
	}, nil
}

// readQrels loads one qrel file. Each released file carries judgments
// for exactly one review, so the first (and only) topic key is the
// review code.
func readQrels(path string) (string, trecresults.Qrels, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", nil, fmt.Errorf("opening qrel file %s: %w", path, err)
	}
	defer f.Close()

	qf, err := trecresults.QrelsFromReader(f)
	if err != nil {
		return "", nil, fmt.Errorf("parsing qrel file %s: %w", path, err)
	}

	for code, qrels := range qf.Qrels {
		return code, qrels, nil
	}
	return "", nil, nil
}

func relevantCount(qrels trecresults.Qrels) int {
	var n int
	for _, q := range qrels {
		if q.Score == 1 {
			n++
		}
	}
	return n
}

func percent(part, total int) string {
	if total == 0 {
		return "0.00"
	}
	return fmt.Sprintf("%.2f", float64(part)/float64(total)*100)
}
