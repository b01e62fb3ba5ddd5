// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collect

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/pdiddy/review-collector/internal/portal"
	"github.com/pdiddy/review-collector/pkg/types"
)

// fakeSession serves a fixed result count and canned export bodies.
type fakeSession struct {
	count   int
	exports [][2]int
}

func (s *fakeSession) Count() int { return s.count }

func (s *fakeSession) Export(ctx context.Context, from, to int) (io.ReadCloser, error) {
	s.exports = append(s.exports, [2]int{from, to})
	return io.NopCloser(strings.NewReader(fmt.Sprintf("<records>%d-%d</records>", from, to))), nil
}

// fakeSearcher maps queries to sessions or errors.
type fakeSearcher struct {
	sessions map[string]*fakeSession
	errs     map[string]error
}

func (f *fakeSearcher) Search(ctx context.Context, query string) (portal.Session, error) {
	if err, ok := f.errs[query]; ok {
		return nil, err
	}
	s, ok := f.sessions[query]
	if !ok {
		return nil, fmt.Errorf("unexpected query %q", query)
	}
	return s, nil
}

func testReviews(topics ...string) map[string]types.Review {
	reviews := make(map[string]types.Review, len(topics))
	for _, topic := range topics {
		reviews[topic] = types.Review{
			Topic: topic,
			Code:  "CD0107" + topic,
			Query: "query " + topic,
		}
	}
	return reviews
}

func TestReviews(t *testing.T) {
	dir := t.TempDir()
	layout := types.Layout{BaseDir: dir}

	session := &fakeSession{count: 1200}
	searcher := &fakeSearcher{
		sessions: map[string]*fakeSession{"query 1": session},
		errs: map[string]error{
			"query 2": &portal.SyntaxError{Message: "bad grammar"},
			"query 3": fmt.Errorf("connection reset"),
		},
	}

	var out bytes.Buffer
	elog := portal.NewErrorLog(filepath.Join(dir, "log.txt"))
	cfg := types.PortalConfig{BatchSize: 500}

	result := Reviews(context.Background(), searcher, testReviews("1", "2", "3"), layout, cfg, elog, &out)

	if result.Collected != 1 || result.Skipped != 1 || result.Failed != 1 {
		t.Fatalf("result = %+v, want 1 collected, 1 skipped, 1 failed", result)
	}
	if result.Total() != 3 {
		t.Errorf("Total = %d, want 3", result.Total())
	}
	if !result.HasFailures() {
		t.Error("HasFailures = false, want true")
	}

	// 1200 results export as 1-500, 501-1000, 1001-1200.
	wantExports := [][2]int{{1, 500}, {501, 1000}, {1001, 1200}}
	if !reflect.DeepEqual(session.exports, wantExports) {
		t.Errorf("exports = %v, want %v", session.exports, wantExports)
	}

	for i := range wantExports {
		path := filepath.Join(layout.DownloadDir(), "1", fmt.Sprintf("%d.xml", i))
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("reading batch %d: %v", i, err)
		}
		want := fmt.Sprintf("<records>%d-%d</records>", wantExports[i][0], wantExports[i][1])
		if string(data) != want {
			t.Errorf("batch %d = %q, want %q", i, string(data), want)
		}
	}

	// The rejected query lands in the expert's error log.
	logData, err := os.ReadFile(filepath.Join(dir, "log.txt"))
	if err != nil {
		t.Fatalf("reading error log: %v", err)
	}
	if !strings.Contains(string(logData), "bad grammar") {
		t.Errorf("error log %q does not mention the rejected query", string(logData))
	}
	if strings.Contains(string(logData), "connection reset") {
		t.Error("plain failure leaked into the expert's error log")
	}
}

func TestIsRecordable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"syntax error", &portal.SyntaxError{Message: "x"}, true},
		{"wrapped syntax error", fmt.Errorf("submitting: %w", &portal.SyntaxError{Message: "x"}), true},
		{"deadline", context.DeadlineExceeded, true},
		{"plain error", fmt.Errorf("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRecordable(tt.err); got != tt.want {
				t.Errorf("isRecordable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestRanges(t *testing.T) {
	tests := []struct {
		name  string
		count int
		size  int
		want  [][2]int
	}{
		{"even split", 1000, 500, [][2]int{{1, 500}, {501, 1000}}},
		{"remainder of one", 501, 500, [][2]int{{1, 500}, {501, 501}}},
		{"single partial batch", 20, 500, [][2]int{{1, 20}}},
		{"zero results", 0, 500, nil},
		{"zero size", 100, 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Ranges(tt.count, tt.size); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Ranges(%d, %d) = %v, want %v", tt.count, tt.size, got, tt.want)
			}
		})
	}
}
