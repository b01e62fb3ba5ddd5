// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package portal talks to the OVID search portal. The portal is a live
// website with no API contract, so everything fragile about it lives
// behind this package's narrow surface: submit a search strategy, read
// the result count, export citation batches as XML. Collection code
// depends on the Searcher interface, never on page structure.
package portal

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/review-collector/internal/httputil"
	"github.com/pdiddy/review-collector/pkg/types"
)

// LauncherURL is the portal's search launcher page. Declared as a var so
// tests can substitute an httptest server.
var LauncherURL = "http://demo.ovid.com/demo/ovidsptools/launcher.htm"

// Launcher form field names and result page element ids. These mirror
// the live portal and break when it changes; keeping them in one place
// is the point of this package.
const (
	fieldDatabase = "D"
	fieldSearch   = "SEARCH"
	fieldSubmit   = "ovid"

	idResultCount = "searchaid-numbers"
	idSyntaxError = "msp-error-easy"

	exportFormSelector = "form#export-citation"
)

// Export form parameters. The citation content "SUBJECT" selects the
// part-reference record that carries the Unique Identifier and Date
// Created fields the extractor needs.
const (
	exportFieldRange   = "Range"
	exportFieldFormat  = "exportTo"
	exportFieldContent = "citationContent"

	exportFormatXML      = "xml"
	exportContentSubject = "SUBJECT"
)

var firstInt = regexp.MustCompile(`\d+`)

// SyntaxError reports that the portal rejected a search strategy. The
// message is recorded for the medical expert to analyze; the topic is
// skipped, not the run.
type SyntaxError struct {
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("portal rejected query: %s", e.Message)
}

// Searcher is the collector's view of the portal.
type Searcher interface {
	Search(ctx context.Context, query string) (Session, error)
}

// Session is one submitted search: its result count and the means to
// export citation ranges from it.
type Session interface {
	// Count is the number of results the portal reported.
	Count() int

	// Export returns the raw XML for the 1-based result range [from, to].
	Export(ctx context.Context, from, to int) (io.ReadCloser, error)
}

// Client drives the portal over HTTP.
type Client struct {
	client    *http.Client
	database  string
	userAgent string
}

// NewClient builds a portal client for the configured database segment.
func NewClient(cfg types.PortalConfig) *Client {
	return &Client{
		client:    httputil.NewClient(cfg.HTTPConfig),
		database:  cfg.Database,
		userAgent: cfg.UserAgent,
	}
}

// Search submits the query through the launcher form and parses the
// result page. A portal-reported grammar problem comes back as
// *SyntaxError; a missing result count (the page never finished
// loading) comes back as a plain error.
func (c *Client) Search(ctx context.Context, query string) (Session, error) {
	form := url.Values{
		fieldDatabase: {c.database},
		fieldSearch:   {query},
		fieldSubmit:   {"Search"},
	}

	resp, err := httputil.PostForm(ctx, c.client, LauncherURL, c.userAgent, form)
	if err != nil {
		return nil, fmt.Errorf("submitting search: %w", err)
	}
	defer httputil.DrainClose(resp.Body)

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing result page: %w", err)
	}

	// The grammar check must come first: an error page may still carry a
	// stale result counter.
	if sel := doc.Find("#" + idSyntaxError); sel.Length() > 0 {
		return nil, &SyntaxError{Message: trimmedText(sel)}
	}

	countText := trimmedText(doc.Find("#" + idResultCount))
	m := firstInt.FindString(countText)
	if m == "" {
		return nil, fmt.Errorf("result page has no result count")
	}
	count, err := strconv.Atoi(m)
	if err != nil {
		return nil, fmt.Errorf("result count %q: %w", countText, err)
	}

	exportURL, err := c.exportAction(doc, resp.Request.URL)
	if err != nil {
		return nil, err
	}

	return &session{client: c, count: count, exportURL: exportURL}, nil
}

// exportAction resolves the export form's action against the page URL.
func (c *Client) exportAction(doc *goquery.Document, page *url.URL) (string, error) {
	action, ok := doc.Find(exportFormSelector).Attr("action")
	if !ok {
		return "", fmt.Errorf("result page has no export form")
	}
	u, err := url.Parse(action)
	if err != nil {
		return "", fmt.Errorf("export action %q: %w", action, err)
	}
	return page.ResolveReference(u).String(), nil
}

type session struct {
	client    *Client
	count     int
	exportURL string
}

func (s *session) Count() int { return s.count }

// Export posts the export controls for one result range and hands back
// the body stream. The resolver-link, jumpstart-link, and search-history
// include boxes stay unchecked so the export carries citations only.
func (s *session) Export(ctx context.Context, from, to int) (io.ReadCloser, error) {
	form := url.Values{
		exportFieldRange:   {fmt.Sprintf("%d-%d", from, to)},
		exportFieldFormat:  {exportFormatXML},
		exportFieldContent: {exportContentSubject},
	}

	resp, err := httputil.PostForm(ctx, s.client.client, s.exportURL, s.client.userAgent, form)
	if err != nil {
		return nil, fmt.Errorf("exporting range %d-%d: %w", from, to, err)
	}
	return resp.Body, nil
}

// trimmedText collapses the page's whitespace to single spaces.
func trimmedText(sel *goquery.Selection) string {
	return strings.Join(strings.Fields(sel.Text()), " ")
}
