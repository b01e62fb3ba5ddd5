// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package stats

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/review-collector/pkg/types"
)

func testLayout(t *testing.T) types.Layout {
	t.Helper()
	layout := types.Layout{BaseDir: t.TempDir()}
	if err := layout.EnsureDirs(); err != nil {
		t.Fatal(err)
	}
	return layout
}

func writeQrels(t *testing.T, path, code string, scores map[string]int) {
	t.Helper()
	var b strings.Builder
	for pmid, score := range scores {
		fmt.Fprintf(&b, "%-12s %-2d %-12s %-2d \n", code, 0, pmid, score)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRun(t *testing.T) {
	layout := testLayout(t)

	writeQrels(t, filepath.Join(layout.AbsQrelDir(), "1"), "CD010705", map[string]int{
		"10000001": 1,
		"10000002": 1,
		"10000003": 0,
		"10000004": 0,
	})
	writeQrels(t, filepath.Join(layout.DocQrelDir(), "1"), "CD010705", map[string]int{
		"10000001": 1,
		"10000002": 0,
		"10000003": 0,
		"10000004": 0,
	})

	var out bytes.Buffer
	if err := Run(layout, &out); err != nil {
		t.Fatalf("Run: %v", err)
	}

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d output lines, want 4 (header, topic, blank, total):\n%s", len(lines), out.String())
	}

	topicLine := strings.Join(strings.Fields(lines[1]), " ")
	if topicLine != "1 | CD010705 | 4 | 2 | 1 | 50.00 | 25.00" {
		t.Errorf("topic line = %q", topicLine)
	}

	totalLine := strings.Join(strings.Fields(lines[3]), " ")
	if totalLine != "total | | 4 | 2 | 1 | 50.00 | 25.00" {
		t.Errorf("total line = %q", totalLine)
	}
}

func TestRunMissingDocCounterpart(t *testing.T) {
	layout := testLayout(t)
	writeQrels(t, filepath.Join(layout.AbsQrelDir(), "1"), "CD010705", map[string]int{"10000001": 1})

	var out bytes.Buffer
	if err := Run(layout, &out); err == nil {
		t.Fatal("Run accepted a topic without a document-level file, want error")
	}
}

func TestRunEmptyQrelFile(t *testing.T) {
	layout := testLayout(t)
	if err := os.WriteFile(filepath.Join(layout.AbsQrelDir(), "1"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(layout.DocQrelDir(), "1"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := Run(layout, &out); err == nil {
		t.Fatal("Run accepted an empty judgment file, want error")
	}
}
