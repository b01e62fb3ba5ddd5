// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package trectext reformats raw efetch responses into the TRECTEXT
// corpus: one four-tag block per citation, blank-line separated.
package trectext

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdiddy/review-collector/pkg/types"
)

// PubMed efetch XML structures. Abstracts arrive as one or more
// AbstractText sections (structured abstracts label them Background,
// Methods, and so on); a string field flattens each section's inline
// markup to its text.
type articleSet struct {
	Articles []pubmedArticle `xml:"PubmedArticle"`
}

type pubmedArticle struct {
	Citation medlineCitation `xml:"MedlineCitation"`
}

type medlineCitation struct {
	PMID    string        `xml:"PMID"`
	Article articleRecord `xml:"Article"`
}

type articleRecord struct {
	Title    string         `xml:"ArticleTitle"`
	Abstract abstractRecord `xml:"Abstract"`
}

type abstractRecord struct {
	Sections []string `xml:"AbstractText"`
}

// Parse decodes one efetch response into document records. Abstract
// sections are newline-joined; a citation without an abstract yields an
// empty Abstract field.
func Parse(r io.Reader) ([]types.Document, error) {
	var set articleSet
	if err := xml.NewDecoder(r).Decode(&set); err != nil {
		return nil, fmt.Errorf("parsing efetch response: %w", err)
	}

	docs := make([]types.Document, len(set.Articles))
	for i, article := range set.Articles {
		docs[i] = types.Document{
			PMID:     strings.TrimSpace(article.Citation.PMID),
			Title:    strings.TrimSpace(article.Citation.Article.Title),
			Abstract: strings.Join(article.Citation.Article.Abstract.Sections, "\n"),
		}
	}
	return docs, nil
}

// Write emits the TRECTEXT blocks for a batch of documents.
func Write(w io.Writer, docs []types.Document) error {
	for _, doc := range docs {
		if _, err := fmt.Fprintf(w, "<DOC>\n<DOCNO>%s</DOCNO>\n<TITLE>%s</TITLE>\n<TEXT>%s</TEXT>\n</DOC>\n\n",
			doc.PMID, doc.Title, doc.Abstract); err != nil {
			return err
		}
	}
	return nil
}

// Run reformats every batch under the corpora tree into a matching file
// under the trectext tree. Citations without an abstract are reported
// and emitted with an empty TEXT field.
func Run(layout types.Layout, w io.Writer) error {
	entries, err := os.ReadDir(layout.CorporaDir())
	if err != nil {
		return fmt.Errorf("reading corpora directory: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		topic := entry.Name()

		outDir := filepath.Join(layout.TrecTextDir(), topic)
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return fmt.Errorf("creating trectext directory: %w", err)
		}

		batches, err := batchNames(filepath.Join(layout.CorporaDir(), topic))
		if err != nil {
			return err
		}
		for _, name := range batches {
			if err := formatBatch(topic, name, layout, w); err != nil {
				return err
			}
		}
	}
	return nil
}

func formatBatch(topic, name string, layout types.Layout, w io.Writer) error {
	inPath := filepath.Join(layout.CorporaDir(), topic, name)
	f, err := os.Open(inPath)
	if err != nil {
		return fmt.Errorf("opening batch %s: %w", inPath, err)
	}
	defer f.Close()

	docs, err := Parse(f)
	if err != nil {
		return fmt.Errorf("batch %s: %w", inPath, err)
	}
	for _, doc := range docs {
		if doc.Abstract == "" {
			fmt.Fprintf(w, "no AbstractText field for %s\n", doc.PMID)
		}
	}

	outPath := filepath.Join(layout.TrecTextDir(), topic, name)
	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating trectext file %s: %w", outPath, err)
	}
	defer out.Close()

	if err := Write(out, docs); err != nil {
		return fmt.Errorf("writing trectext file %s: %w", outPath, err)
	}
	fmt.Fprintf(w, "formatted %s/%s (%d documents)\n", topic, name, len(docs))
	return nil
}

func batchNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading batch directory %s: %w", dir, err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}
