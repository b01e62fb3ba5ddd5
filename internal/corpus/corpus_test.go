// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/review-collector/pkg/types"
)

const sampleEfetchXML = `<?xml version="1.0"?>
<PubmedArticleSet>
  <PubmedArticle>
    <MedlineCitation>
      <PMID>10000001</PMID>
      <Article>
        <ArticleTitle>Antibiotics for sore throat.</ArticleTitle>
        <Abstract>
          <AbstractText>Penicillin shortens symptom duration.</AbstractText>
        </Abstract>
      </Article>
    </MedlineCitation>
  </PubmedArticle>
  <PubmedArticle>
    <MedlineCitation>
      <PMID>10000002</PMID>
      <Article>
        <ArticleTitle>Exercise for depression.</ArticleTitle>
        <Abstract>
          <AbstractText>Exercise improves mood in trials.</AbstractText>
        </Abstract>
      </Article>
    </MedlineCitation>
  </PubmedArticle>
</PubmedArticleSet>`

func setupCollection(t *testing.T) types.Layout {
	t.Helper()
	layout := types.Layout{BaseDir: t.TempDir()}
	if err := layout.EnsureDirs(); err != nil {
		t.Fatal(err)
	}

	topicDir := filepath.Join(layout.CorporaDir(), "1")
	if err := os.MkdirAll(topicDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(topicDir, "0"), []byte(sampleEfetchXML), 0o644); err != nil {
		t.Fatal(err)
	}

	absQrel := fmt.Sprintf("%-12s %-2d %-12s %-2d \n%-12s %-2d %-12s %-2d \n",
		"CD010705", 0, "10000001", 1, "CD010705", 0, "10000002", 0)
	if err := os.WriteFile(filepath.Join(layout.AbsQrelDir(), "1"), []byte(absQrel), 0o644); err != nil {
		t.Fatal(err)
	}
	docQrel := fmt.Sprintf("%-12s %-2d %-12s %-2d \n", "CD010705", 0, "10000001", 1)
	if err := os.WriteFile(filepath.Join(layout.DocQrelDir(), "1"), []byte(docQrel), 0o644); err != nil {
		t.Fatal(err)
	}

	return layout
}

func newTestStore(t *testing.T, layout types.Layout) *Store {
	t.Helper()
	store, err := NewStore(layout, types.CorpusConfig{MaxResults: 10})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestIngestAndRetrieve(t *testing.T) {
	layout := setupCollection(t)
	store := newTestStore(t, layout)

	var out bytes.Buffer
	summary, err := store.Ingest(context.Background(), &out)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if summary.Indexed != 1 || summary.Failed != 0 {
		t.Fatalf("summary = %+v, want 1 indexed", summary)
	}

	results, err := store.Retrieve(context.Background(), QueryOptions{Query: "penicillin"})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	r := results[0]
	if r.PMID != "10000001" || r.Topic != "1" || r.Code != "CD010705" {
		t.Errorf("result = %+v", r)
	}
	if r.AbsRel != 1 || r.DocRel != 1 {
		t.Errorf("judgments = abs %d, doc %d, want 1, 1", r.AbsRel, r.DocRel)
	}

	// export.yaml is written after a successful ingest.
	data, err := os.ReadFile(filepath.Join(layout.IndexDir(), "export.yaml"))
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	if !strings.Contains(string(data), "10000001") {
		t.Errorf("export.yaml missing document:\n%s", data)
	}
}

func TestIngestSkipsUnchanged(t *testing.T) {
	layout := setupCollection(t)
	store := newTestStore(t, layout)

	var out bytes.Buffer
	if _, err := store.Ingest(context.Background(), &out); err != nil {
		t.Fatalf("first Ingest: %v", err)
	}

	summary, err := store.Ingest(context.Background(), &out)
	if err != nil {
		t.Fatalf("second Ingest: %v", err)
	}
	if summary.Skipped != 1 || summary.Indexed != 0 {
		t.Errorf("summary = %+v, want 1 skipped", summary)
	}
}

func TestRetrieveFilters(t *testing.T) {
	layout := setupCollection(t)
	store := newTestStore(t, layout)

	var out bytes.Buffer
	if _, err := store.Ingest(context.Background(), &out); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	// Structured-only query with a relevance filter.
	results, err := store.Retrieve(context.Background(), QueryOptions{Topic: "1", Relevant: RelevantDocument})
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(results) != 1 || results[0].PMID != "10000001" {
		t.Errorf("results = %+v, want only the document-relevant pmid", results)
	}

	if _, err := store.Retrieve(context.Background(), QueryOptions{Relevant: "bogus"}); err == nil {
		t.Fatal("Retrieve accepted an unknown relevance filter, want error")
	}
}
