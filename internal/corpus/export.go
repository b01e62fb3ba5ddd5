// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// ExportEntry holds one indexed document for the YAML export. The
// abstract is omitted to keep the export skimmable; the full text stays
// in the index and the TRECTEXT corpus.
type ExportEntry struct {
	PMID   string `yaml:"pmid"`
	Topic  string `yaml:"topic"`
	Code   string `yaml:"code"`
	Title  string `yaml:"title"`
	AbsRel int64  `yaml:"abs_rel"`
	DocRel int64  `yaml:"doc_rel"`
}

const exportLimit = 1000000

// ExportYAML writes the corpus index to index/export.yaml. It supports
// the same filters as Retrieve.
func (s *Store) ExportYAML(ctx context.Context, opts QueryOptions) error {
	opts.MaxResults = exportLimit
	results, err := s.Retrieve(ctx, opts)
	if err != nil {
		return fmt.Errorf("querying for export: %w", err)
	}

	entries := make([]ExportEntry, len(results))
	for i, r := range results {
		entries[i] = ExportEntry{
			PMID:   r.PMID,
			Topic:  r.Topic,
			Code:   r.Code,
			Title:  r.Title,
			AbsRel: r.AbsRel,
			DocRel: r.DocRel,
		}
	}

	path := filepath.Join(s.layout.IndexDir(), "export.yaml")
	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
