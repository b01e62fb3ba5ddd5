// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package collect harvests PubMed identifiers for every review: one
// portal search per review, paged citation exports written verbatim as
// numbered XML batches under the download tree.
package collect

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pdiddy/review-collector/internal/portal"
	"github.com/pdiddy/review-collector/internal/workbook"
	"github.com/pdiddy/review-collector/pkg/types"
)

// BatchResult holds the outcome of a collection run.
type BatchResult struct {
	Collected int
	Skipped   int
	Failed    int
}

// Total returns the number of reviews processed.
func (r BatchResult) Total() int {
	return r.Collected + r.Skipped + r.Failed
}

// HasFailures reports whether any reviews failed outright.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// Reviews collects PID exports for every review in ascending topic
// order. Portal rejections and timeouts are appended to the error log
// and the review is skipped; other failures are counted and the run
// continues with the next review.
func Reviews(ctx context.Context, p portal.Searcher, reviews map[string]types.Review, layout types.Layout, cfg types.PortalConfig, elog *portal.ErrorLog, w io.Writer) BatchResult {
	var result BatchResult
	for _, topic := range workbook.SortedTopics(reviews) {
		review := reviews[topic]
		fmt.Fprintf(w, "collecting review %s (%s)\n", topic, review.Code)

		switch err := collectReview(ctx, p, review, layout, cfg, w); {
		case err == nil:
			result.Collected++
		case isRecordable(err):
			fmt.Fprintf(w, "skipped: %s (%v)\n", topic, err)
			if logErr := elog.Append(topic, review.Query, err.Error()); logErr != nil {
				fmt.Fprintf(w, "warning: error log write failed: %v\n", logErr)
			}
			result.Skipped++
		default:
			fmt.Fprintf(w, "failed:  %s (%v)\n", topic, err)
			result.Failed++
		}
	}

	fmt.Fprintf(w, "\nCollection summary: %d collected, %d skipped, %d failed (total: %d)\n",
		result.Collected, result.Skipped, result.Failed, result.Total())
	return result
}

// isRecordable reports whether a search failure belongs in the expert's
// error log rather than the failure count: the portal rejected the query
// grammar, or the result page never loaded.
func isRecordable(err error) bool {
	var syntaxErr *portal.SyntaxError
	if errors.As(err, &syntaxErr) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err)
}

func collectReview(ctx context.Context, p portal.Searcher, review types.Review, layout types.Layout, cfg types.PortalConfig, w io.Writer) error {
	session, err := p.Search(ctx, review.Query)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "  %d results\n", session.Count())

	dir := filepath.Join(layout.DownloadDir(), review.Topic)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating download directory: %w", err)
	}

	for i, r := range Ranges(session.Count(), cfg.BatchSize) {
		if err := exportBatch(ctx, session, r[0], r[1], filepath.Join(dir, strconv.Itoa(i)+".xml")); err != nil {
			return err
		}
		fmt.Fprintf(w, "  exported %d-%d\n", r[0], r[1])
	}

	// The live portal streams exports asynchronously; give the last one
	// time to finish before the session goes away.
	if cfg.SettleDelay > 0 {
		time.Sleep(cfg.SettleDelay)
	}
	return nil
}

func exportBatch(ctx context.Context, s portal.Session, from, to int, path string) error {
	body, err := s.Export(ctx, from, to)
	if err != nil {
		return err
	}
	defer body.Close()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating batch file %s: %w", path, err)
	}

	_, copyErr := io.Copy(f, body)
	closeErr := f.Close()
	if copyErr != nil {
		os.Remove(path)
		return fmt.Errorf("writing batch file %s: %w", path, copyErr)
	}
	if closeErr != nil {
		os.Remove(path)
		return fmt.Errorf("closing batch file %s: %w", path, closeErr)
	}
	return nil
}

// Ranges splits the 1-based result range [1, count] into consecutive
// [from, to] pairs of at most size results each: Ranges(1000, 500) is
// [1,500] and [501,1000]; Ranges(501, 500) adds a final [501,501].
func Ranges(count, size int) [][2]int {
	if count <= 0 || size <= 0 {
		return nil
	}
	var ranges [][2]int
	for from := 1; from <= count; from += size {
		to := from + size - 1
		if to > count {
			to = count
		}
		ranges = append(ranges, [2]int{from, to})
	}
	return ranges
}
