// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package workbook loads the curated inputs of the collection: the OVID
// search workbook prepared by the medical expert, the curated relevance
// table, and the scraped review titles. Every downstream stage consumes
// the one review table this package produces.
package workbook

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/pdiddy/review-collector/pkg/types"
)

const (
	sheetName = "Sheet1"

	// Rows 2-52 are the valid review rows; row 1 is the header.
	firstRow = 2
	lastRow  = 52
)

// codePattern matches the Cochrane review code inside a review URL or
// the curated table's review_doi column (e.g. "CD010705").
var codePattern = regexp.MustCompile(`CD\d+`)

// numberPattern extracts the two YYYYMMDD stamps from a date-range cell
// like "20150101 ... 20171230".
var numberPattern = regexp.MustCompile(`\d+`)

const dateFmt = "20060102"

// LoadReviews reads the search workbook and returns one Review per row,
// keyed by topic id. A malformed row is a fatal error: the pipeline must
// not run against a partially loaded table.
func LoadReviews(path string) (map[string]types.Review, error) {
	wb, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook %s: %w", path, err)
	}
	defer wb.Close()

	reviews := make(map[string]types.Review)
	for row := firstRow; row <= lastRow; row++ {
		r, err := loadRow(wb, row)
		if err != nil {
			return nil, fmt.Errorf("workbook row %d: %w", row, err)
		}
		reviews[r.Topic] = r
	}
	return reviews, nil
}

func loadRow(wb *excelize.File, row int) (types.Review, error) {
	cell := func(col string) (string, error) {
		v, err := wb.GetCellValue(sheetName, fmt.Sprintf("%s%d", col, row))
		if err != nil {
			return "", fmt.Errorf("reading cell %s%d: %w", col, row, err)
		}
		return strings.TrimSpace(v), nil
	}

	rawTopic, err := cell("A")
	if err != nil {
		return types.Review{}, err
	}
	link, err := cell("B")
	if err != nil {
		return types.Review{}, err
	}
	rawQuery, err := cell("D")
	if err != nil {
		return types.Review{}, err
	}
	dateRange, err := cell("F")
	if err != nil {
		return types.Review{}, err
	}

	topic, err := strconv.Atoi(rawTopic)
	if err != nil {
		return types.Review{}, fmt.Errorf("topic id %q is not numeric", rawTopic)
	}

	code := codePattern.FindString(link)
	if code == "" {
		return types.Review{}, fmt.Errorf("no review code in URL %q", link)
	}

	query := StripBlankLines(rawQuery)
	if query == "" {
		return types.Review{}, fmt.Errorf("empty search query")
	}

	start, end, err := ParseDateRange(dateRange)
	if err != nil {
		return types.Review{}, err
	}

	return types.Review{
		Topic:     strconv.Itoa(topic),
		Code:      code,
		URL:       link,
		Query:     query,
		DateStart: start,
		DateEnd:   end,
	}, nil
}

// StripBlankLines trims every line of a multi-line query and removes the
// blank ones, preserving line order.
func StripBlankLines(s string) string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// ParseDateRange extracts the start and end stamps from a date-range
// cell. Exactly two YYYYMMDD numbers must be present.
func ParseDateRange(s string) (start, end time.Time, err error) {
	stamps := numberPattern.FindAllString(s, -1)
	if len(stamps) != 2 {
		return start, end, fmt.Errorf("date range %q: want two YYYYMMDD stamps, got %d", s, len(stamps))
	}
	start, err = time.Parse(dateFmt, stamps[0])
	if err != nil {
		return start, end, fmt.Errorf("date range %q: %w", s, err)
	}
	end, err = time.Parse(dateFmt, stamps[1])
	if err != nil {
		return start, end, fmt.Errorf("date range %q: %w", s, err)
	}
	return start, end, nil
}

// ReviewCode extracts the Cochrane review code from a free-form string.
// It returns "" when no code is present.
func ReviewCode(s string) string {
	return codePattern.FindString(s)
}

// ParseCreationDate parses the YYYYMMDD creation stamp carried by portal
// export records.
func ParseCreationDate(s string) (time.Time, error) {
	return time.Parse(dateFmt, strings.TrimSpace(s))
}
