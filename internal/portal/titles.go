// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package portal

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pdiddy/review-collector/internal/httputil"
)

// titleSelector locates the review title on its publisher page.
const titleSelector = "h1.article-header__title"

// FetchTitle scrapes the title from a review's publisher page.
func FetchTitle(ctx context.Context, client *http.Client, reviewURL, userAgent string) (string, error) {
	doc, err := httputil.Document(ctx, client, reviewURL, userAgent)
	if err != nil {
		return "", err
	}

	title := trimmedText(doc.Find(titleSelector))
	if title == "" {
		return "", fmt.Errorf("no %s element on %s", titleSelector, reviewURL)
	}
	return title, nil
}
