// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/review-collector/pkg/types"
)

// Relevance filters for Retrieve.
const (
	RelevantAbstract = "abs"
	RelevantDocument = "doc"
)

// QueryOptions holds parameters for corpus index queries.
type QueryOptions struct {
	// Query is the FTS5 full-text search string over titles and abstracts.
	Query string

	// Topic filters by topic id.
	Topic string

	// Relevant restricts results to documents judged relevant at the
	// given level (RelevantAbstract or RelevantDocument).
	Relevant string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// QueryResult is an indexed document with its review and judgments.
type QueryResult struct {
	types.Document
	Topic  string `json:"topic" yaml:"topic"`
	Code   string `json:"code" yaml:"code"`
	AbsRel int64  `json:"abs_rel" yaml:"abs_rel"`
	DocRel int64  `json:"doc_rel" yaml:"doc_rel"`
}

// Retrieve queries the corpus index with optional full-text search and
// structured filters. Full-text queries rank by FTS relevance;
// structured-only queries sort by topic and PMID.
func (s *Store) Retrieve(ctx context.Context, opts QueryOptions) ([]QueryResult, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)

	if useFTS {
		qb.WriteString(
			`SELECT d.pmid, d.topic, d.code, d.title, d.abstract, d.abs_rel, d.doc_rel
			FROM documents_fts
			JOIN documents d ON d.rowid = documents_fts.rowid
			WHERE documents_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(
			`SELECT d.pmid, d.topic, d.code, d.title, d.abstract, d.abs_rel, d.doc_rel
			FROM documents d
			WHERE 1=1`)
	}

	if opts.Topic != "" {
		qb.WriteString(` AND d.topic = ?`)
		args = append(args, opts.Topic)
	}

	switch opts.Relevant {
	case "":
	case RelevantAbstract:
		qb.WriteString(` AND d.abs_rel = 1`)
	case RelevantDocument:
		qb.WriteString(` AND d.doc_rel = 1`)
	default:
		return nil, fmt.Errorf("unknown relevance filter %q", opts.Relevant)
	}

	if useFTS {
		qb.WriteString(` ORDER BY documents_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY d.topic, d.pmid`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying corpus index: %w", err)
	}
	defer rows.Close()

	var results []QueryResult
	for rows.Next() {
		var qr QueryResult
		if err := rows.Scan(
			&qr.PMID, &qr.Topic, &qr.Code, &qr.Title, &qr.Abstract,
			&qr.AbsRel, &qr.DocRel,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		results = append(results, qr)
	}

	return results, rows.Err()
}
