// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/review-collector/pkg/types"
)

func record(index int, pmid, date string) string {
	return fmt.Sprintf(`<record index="%d">
		<F L="Unique Identifier"><D>%s</D></F>
		<F L="Date Created"><D>%s</D></F>
		<F L="Source"><D>Some Journal</D></F>
	</record>`, index, pmid, date)
}

func writeBatch(t *testing.T, dir, name string, records ...string) {
	t.Helper()
	body := "<records>" + strings.Join(records, "\n") + "</records>"
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func testReview() types.Review {
	return types.Review{
		Topic:     "1",
		Code:      "CD010705",
		DateStart: time.Date(2016, 12, 31, 0, 0, 0, 0, time.UTC),
		DateEnd:   time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestReviewWindowBoundaries(t *testing.T) {
	dir := t.TempDir()
	// Both window boundaries are exclusive: the start and end stamps
	// themselves are outside.
	writeBatch(t, dir, "0.xml",
		record(1, "10000001", "20161231"),
		record(2, "10000002", "20170101"),
		record(3, "10000003", "20170615"),
		record(4, "10000004", "20171231"),
		record(5, "10000005", "20180101"),
	)

	var out bytes.Buffer
	pids, err := Review(testReview(), dir, &out)
	if err != nil {
		t.Fatalf("Review: %v", err)
	}

	want := []string{"10000002", "10000003", "10000004"}
	if !reflect.DeepEqual(pids, want) {
		t.Errorf("pids = %v, want %v", pids, want)
	}

	for _, dropped := range []int{1, 5} {
		if !strings.Contains(out.String(), fmt.Sprintf("document %d in file 0.xml", dropped)) {
			t.Errorf("status output does not report dropped document %d:\n%s", dropped, out.String())
		}
	}
}

func TestReviewOrdersByIndexAcrossBatches(t *testing.T) {
	dir := t.TempDir()
	// Batch files list records out of index order; the released list is
	// ordered by the portal's record index regardless.
	writeBatch(t, dir, "0.xml",
		record(501, "10000501", "20170601"),
		record(502, "10000502", "20170601"),
	)
	writeBatch(t, dir, "1.xml",
		record(2, "10000002", "20170601"),
		record(1, "10000001", "20170601"),
	)

	var out bytes.Buffer
	pids, err := Review(testReview(), dir, &out)
	if err != nil {
		t.Fatalf("Review: %v", err)
	}

	want := []string{"10000001", "10000002", "10000501", "10000502"}
	if !reflect.DeepEqual(pids, want) {
		t.Errorf("pids = %v, want %v", pids, want)
	}
}

func TestReviewKeepsDuplicates(t *testing.T) {
	dir := t.TempDir()
	writeBatch(t, dir, "0.xml",
		record(1, "10000001", "20170601"),
		record(2, "10000001", "20170601"),
	)

	var out bytes.Buffer
	pids, err := Review(testReview(), dir, &out)
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	// Deduplication belongs to the release builder, not the extractor.
	if len(pids) != 2 {
		t.Errorf("pids = %v, want the duplicate kept", pids)
	}
}

func TestReviewMalformedRecords(t *testing.T) {
	tests := []struct {
		name   string
		record string
	}{
		{"no pmid", `<record index="1"><F L="Date Created"><D>20170601</D></F></record>`},
		{"no date", `<record index="1"><F L="Unique Identifier"><D>10000001</D></F></record>`},
		{"no numeric index", `<record index="abc"><F L="Unique Identifier"><D>1</D></F><F L="Date Created"><D>20170601</D></F></record>`},
		{"bad date", record(1, "10000001", "not-a-date")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeBatch(t, dir, "0.xml", tt.record)

			var out bytes.Buffer
			if _, err := Review(testReview(), dir, &out); err == nil {
				t.Fatal("Review succeeded on a malformed record, want error")
			}
		})
	}
}

func TestRun(t *testing.T) {
	base := t.TempDir()
	layout := types.Layout{BaseDir: base}
	if err := layout.EnsureDirs(); err != nil {
		t.Fatal(err)
	}

	topicDir := filepath.Join(layout.DownloadDir(), "1")
	if err := os.MkdirAll(topicDir, 0o755); err != nil {
		t.Fatal(err)
	}
	writeBatch(t, topicDir, "0.xml", record(1, "10000001", "20170601"))

	reviews := map[string]types.Review{"1": testReview()}

	var out bytes.Buffer
	if err := Run(reviews, layout, &out); err != nil {
		t.Fatalf("Run: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(layout.PidsDir(), "1"))
	if err != nil {
		t.Fatalf("reading pid list: %v", err)
	}
	if string(data) != "10000001\n" {
		t.Errorf("pid list = %q, want %q", string(data), "10000001\n")
	}
}

func TestRunUnknownTopic(t *testing.T) {
	base := t.TempDir()
	layout := types.Layout{BaseDir: base}
	if err := layout.EnsureDirs(); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(layout.DownloadDir(), "99"), 0o755); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := Run(map[string]types.Review{}, layout, &out); err == nil {
		t.Fatal("Run accepted a download directory with no workbook row, want error")
	}
}
