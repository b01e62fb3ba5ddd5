// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package workbook

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hscells/trecresults"

	"github.com/pdiddy/review-collector/pkg/types"
)

const (
	refIncluded = "included"
	refExcluded = "excluded"
)

// LoadRelevance reads the curated relevance table and returns per-review
// qrels keyed by review code. The flag mapping depends on the judgment
// kind: at the abstract level both "included" and "excluded" rows score
// 1, at the document level "excluded" scores 0. Rows with any other
// ref_type are skipped.
func LoadRelevance(path string, kind types.JudgmentKind) (map[string]trecresults.Qrels, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening relevance table %s: %w", path, err)
	}
	defer f.Close()
	return ParseRelevance(f, kind)
}

// ParseRelevance reads the curated table from r. Split out of
// LoadRelevance so tests can feed literal CSV.
func ParseRelevance(r io.Reader, kind types.JudgmentKind) (map[string]trecresults.Qrels, error) {
	if kind != types.KindAbstract && kind != types.KindDocument {
		return nil, fmt.Errorf("relevance table has no %q level", kind)
	}

	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading relevance header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	for _, name := range []string{"review_doi", "pubmed_id", "ref_type"} {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("relevance table missing column %q", name)
		}
	}

	rel := make(map[string]trecresults.Qrels)
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("relevance table line %d: %w", line, err)
		}

		code := ReviewCode(record[col["review_doi"]])
		if code == "" {
			return nil, fmt.Errorf("relevance table line %d: no review code in %q", line, record[col["review_doi"]])
		}
		pmid := strings.TrimSpace(record[col["pubmed_id"]])

		var score int64
		switch strings.TrimSpace(record[col["ref_type"]]) {
		case refIncluded:
			score = 1
		case refExcluded:
			if kind == types.KindAbstract {
				score = 1
			} else {
				score = 0
			}
		default:
			continue
		}

		if rel[code] == nil {
			rel[code] = make(trecresults.Qrels)
		}
		rel[code][pmid] = &trecresults.Qrel{
			Topic:     code,
			Iteration: "0",
			DocId:     pmid,
			Score:     score,
		}
	}
	return rel, nil
}
