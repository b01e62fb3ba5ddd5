// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collect

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/pdiddy/review-collector/internal/portal"
	"github.com/pdiddy/review-collector/internal/workbook"
	"github.com/pdiddy/review-collector/pkg/types"
)

// Titles scrapes every review's title from its publisher page and
// rewrites the title file. Reviews whose page cannot be read are
// reported and left out; the release builder will refuse to emit a
// topic file for them later.
func Titles(ctx context.Context, client *http.Client, reviews map[string]types.Review, layout types.Layout, userAgent string, w io.Writer) error {
	order := workbook.SortedTopics(reviews)
	titles := make(map[string]string, len(reviews))

	var failed int
	for _, topic := range order {
		review := reviews[topic]
		fmt.Fprintf(w, "fetching title for review %s (%s)\n", topic, review.URL)

		title, err := portal.FetchTitle(ctx, client, review.URL, userAgent)
		if err != nil {
			fmt.Fprintf(w, "warning: review %s: %v\n", topic, err)
			failed++
			continue
		}
		titles[topic] = title
	}

	if err := workbook.WriteTitles(layout.TitleFile(), titles, order); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d review title(s) could not be fetched", failed)
	}
	return nil
}
