// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages.
package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/review-collector/pkg/types"
)

// NewClient builds the HTTP client a stage uses for all of its requests.
func NewClient(cfg types.HTTPConfig) *http.Client {
	return &http.Client{Timeout: cfg.Timeout}
}

// Get issues a GET with the configured User-Agent and returns the
// response. Non-200 responses are drained, closed, and returned as an
// error so callers never handle a half-read body.
func Get(ctx context.Context, client *http.Client, rawURL, userAgent string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		DrainClose(resp.Body)
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, rawURL)
	}
	return resp, nil
}

// PostForm issues a form POST with the configured User-Agent. Error
// handling matches Get.
func PostForm(ctx context.Context, client *http.Client, rawURL, userAgent string, form url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		DrainClose(resp.Body)
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, rawURL)
	}
	return resp, nil
}

// Document fetches rawURL and parses the body as HTML.
func Document(ctx context.Context, client *http.Client, rawURL, userAgent string) (*goquery.Document, error) {
	resp, err := Get(ctx, client, rawURL, userAgent)
	if err != nil {
		return nil, err
	}
	defer DrainClose(resp.Body)

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", rawURL, err)
	}
	return doc, nil
}

// DrainClose empties and closes a response body so the underlying
// connection can be reused.
func DrainClose(body io.ReadCloser) {
	io.Copy(io.Discard, body)
	body.Close()
}
