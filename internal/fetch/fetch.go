// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch downloads abstracts from NCBI Entrez for every released
// PID list. Each review's deduplicated identifiers go out as efetch
// calls of at most 500 PMIDs, and every response is written verbatim as
// a numbered batch file so the formatter (and anyone re-deriving the
// corpus) works from the exact bytes NCBI returned.
package fetch

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/biogo/ncbi"
	"github.com/biogo/ncbi/entrez"

	"github.com/pdiddy/review-collector/internal/release"
	"github.com/pdiddy/review-collector/pkg/types"
)

const database = "pubmed"

// fetchBatch issues one efetch call. Declared as a var so tests can
// substitute a canned response without touching the network.
var fetchBatch = func(cfg types.FetchConfig, ids []int) (io.ReadCloser, error) {
	p := &entrez.Parameters{
		RetType: "xml",
		RetMode: "xml",
		APIKey:  cfg.APIKey,
	}
	return entrez.Fetch(database, p, cfg.Tool, cfg.Email, nil, ids...)
}

// Setup applies the NCBI client etiquette: a global request timeout,
// and with an API key the higher 10 req/s limit NCBI grants keyed
// clients.
func Setup(cfg types.FetchConfig) {
	ncbi.SetTimeout(time.Minute)
	if cfg.APIKey != "" {
		entrez.Limit = ncbi.NewLimiter(time.Second / 10)
	}
}

// Run fetches abstracts for every review with a PID list, pausing
// between reviews. A failed efetch call aborts the run: resuming a
// half-fetched corpus is not supported, and NCBI failures are rare
// enough that a clean restart is simpler than bookkeeping.
func Run(layout types.Layout, cfg types.FetchConfig, w io.Writer) error {
	topics, err := release.Topics(layout.PidsDir())
	if err != nil {
		return err
	}

	for i, topic := range topics {
		if i > 0 && cfg.ReviewDelay > 0 {
			time.Sleep(cfg.ReviewDelay)
		}
		if err := fetchReview(topic, layout, cfg, w); err != nil {
			return err
		}
	}
	return nil
}

func fetchReview(topic string, layout types.Layout, cfg types.FetchConfig, w io.Writer) error {
	fmt.Fprintf(w, "fetching abstracts for review %s\n", topic)

	pids, err := release.ReadPids(filepath.Join(layout.PidsDir(), topic))
	if err != nil {
		return err
	}
	ids, err := pmidInts(release.Dedup(pids))
	if err != nil {
		return fmt.Errorf("topic %s: %w", topic, err)
	}

	dir := filepath.Join(layout.CorporaDir(), topic)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating corpora directory: %w", err)
	}

	for block, batch := range Chunks(ids, cfg.BatchSize) {
		body, err := fetchBatch(cfg, batch)
		if err != nil {
			return fmt.Errorf("topic %s batch %d: %w", topic, block, err)
		}
		if err := writeBatch(filepath.Join(dir, strconv.Itoa(block)), body); err != nil {
			return err
		}
		fmt.Fprintf(w, "  batch %d: %d pmids\n", block, len(batch))
	}
	return nil
}

func writeBatch(path string, body io.ReadCloser) error {
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

// pmidInts converts a PID list to the integer ids efetch takes. A
// non-numeric identifier means the extractor produced garbage, which is
// fatal.
func pmidInts(pids []string) ([]int, error) {
	ids := make([]int, len(pids))
	for i, pid := range pids {
		id, err := strconv.Atoi(pid)
		if err != nil {
			return nil, fmt.Errorf("pmid %q is not numeric", pid)
		}
		ids[i] = id
	}
	return ids, nil
}

// Chunks splits ids into consecutive slices of at most size elements:
// 1000 ids chunk by 500 into two slices of 500; 501 ids into 500 and 1.
func Chunks(ids []int, size int) [][]int {
	if size <= 0 || len(ids) == 0 {
		return nil
	}
	var chunks [][]int
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}
