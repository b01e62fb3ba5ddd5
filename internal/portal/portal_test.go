// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package portal

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pdiddy/review-collector/pkg/types"
)

const resultPage = `<html><body>
<div id="searchaid-numbers">1 - 20 of 1234 results</div>
<form id="export-citation" action="/export" method="post"></form>
</body></html>`

const syntaxErrorPage = `<html><body>
<div id="msp-error-easy">
  Your search contains a syntax error near line 3.
</div>
<div id="searchaid-numbers">0</div>
</body></html>`

const exportXML = `<records><record index="1"></record></records>`

func newPortalServer(t *testing.T, searchPage string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/launcher.htm", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "POST only", http.StatusMethodNotAllowed)
			return
		}
		if r.FormValue("D") == "" || r.FormValue("SEARCH") == "" {
			http.Error(w, "missing form fields", http.StatusBadRequest)
			return
		}
		fmt.Fprint(w, searchPage)
	})
	mux.HandleFunc("/export", func(w http.ResponseWriter, r *http.Request) {
		if r.FormValue("Range") == "" || r.FormValue("exportTo") != "xml" {
			http.Error(w, "bad export form", http.StatusBadRequest)
			return
		}
		fmt.Fprint(w, exportXML)
	})
	return httptest.NewServer(mux)
}

func newClient() *Client {
	return NewClient(types.PortalConfig{
		HTTPConfig: types.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "test/1"},
		Database:   "mesz",
	})
}

func TestSearchAndExport(t *testing.T) {
	srv := newPortalServer(t, resultPage)
	defer srv.Close()

	oldURL := LauncherURL
	LauncherURL = srv.URL + "/launcher.htm"
	defer func() { LauncherURL = oldURL }()

	session, err := newClient().Search(context.Background(), "exp Headache/")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if session.Count() != 1234 {
		t.Errorf("Count = %d, want 1234", session.Count())
	}

	body, err := session.Export(context.Background(), 1, 500)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != exportXML {
		t.Errorf("export body = %q, want %q", string(data), exportXML)
	}
}

func TestSearchSyntaxError(t *testing.T) {
	srv := newPortalServer(t, syntaxErrorPage)
	defer srv.Close()

	oldURL := LauncherURL
	LauncherURL = srv.URL + "/launcher.htm"
	defer func() { LauncherURL = oldURL }()

	_, err := newClient().Search(context.Background(), "exp Headache/ and and")
	syntaxErr, ok := err.(*SyntaxError)
	if !ok {
		t.Fatalf("Search error = %v (%T), want *SyntaxError", err, err)
	}
	if syntaxErr.Message != "Your search contains a syntax error near line 3." {
		t.Errorf("message = %q", syntaxErr.Message)
	}
}

func TestSearchNoResultCount(t *testing.T) {
	srv := newPortalServer(t, `<html><body>still loading</body></html>`)
	defer srv.Close()

	oldURL := LauncherURL
	LauncherURL = srv.URL + "/launcher.htm"
	defer func() { LauncherURL = oldURL }()

	if _, err := newClient().Search(context.Background(), "exp Headache/"); err == nil {
		t.Fatal("Search succeeded on a page without a result count, want error")
	}
}

func TestFetchTitle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
			<h1 class="article-header__title">
				Antibiotics   for sore throat
			</h1>
		</body></html>`)
	}))
	defer srv.Close()

	client := &http.Client{Timeout: 5 * time.Second}
	title, err := FetchTitle(context.Background(), client, srv.URL, "test/1")
	if err != nil {
		t.Fatalf("FetchTitle: %v", err)
	}
	if title != "Antibiotics for sore throat" {
		t.Errorf("title = %q, want %q", title, "Antibiotics for sore throat")
	}
}

func TestFetchTitleMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><h1>wrong heading</h1></body></html>`)
	}))
	defer srv.Close()

	client := &http.Client{Timeout: 5 * time.Second}
	if _, err := FetchTitle(context.Background(), client, srv.URL, "test/1"); err == nil {
		t.Fatal("FetchTitle succeeded without a title element, want error")
	}
}

func TestErrorLogAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.txt")
	elog := NewErrorLog(path)
	elog.now = func() time.Time {
		return time.Date(2018, 1, 15, 10, 30, 0, 0, time.UTC)
	}

	if err := elog.Append("7", "exp Headache/\n1 and 2", "portal rejected query: bad grammar"); err != nil {
		t.Fatalf("Append: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "2018-01-15 10:30:00\n\n\ntopic id: 7 \n\nsearch query:\n exp Headache/\n1 and 2 \n\nerror msg: \n portal rejected query: bad grammar \n\n"
	if string(data) != want {
		t.Errorf("log entry = %q, want %q", string(data), want)
	}

	// Entries accumulate.
	if err := elog.Append("8", "q", "m"); err != nil {
		t.Fatalf("second Append: %v", err)
	}
	data, _ = os.ReadFile(path)
	if len(data) <= len(want) {
		t.Error("second entry was not appended")
	}
}
