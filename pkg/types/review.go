// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the review-collector
// pipeline: the review table loaded from the curated workbook, judgment
// kinds, and the document records emitted into the corpus.
package types

import "time"

// JudgmentKind selects which release artifact the builder emits.
type JudgmentKind string

const (
	// KindTopic emits the free-text topic description files.
	KindTopic JudgmentKind = "topic"

	// KindAbstract emits abstract-level judgments. At this level both
	// "included" and "excluded" curated rows count as relevant: an
	// assessor who read the abstract marked the document either way.
	KindAbstract JudgmentKind = "abs"

	// KindDocument emits document-level judgments: "included" is
	// relevant, "excluded" is not.
	KindDocument JudgmentKind = "doc"
)

// Review is one systematic review from the curated search workbook.
// Loaded once; immutable thereafter.
type Review struct {
	// Topic is the numeric topic identifier, kept as a string because it
	// names files and directories throughout the collection tree.
	Topic string `json:"topic" yaml:"topic"`

	// Code is the Cochrane review code (e.g. "CD010705") extracted from
	// the review URL. The curated relevance table keys on it.
	Code string `json:"code" yaml:"code"`

	// URL is the review's page, used to scrape its title.
	URL string `json:"url" yaml:"url"`

	// Query is the expert's multi-line OVID search strategy with blank
	// lines removed and every line trimmed.
	Query string `json:"query" yaml:"query"`

	// DateStart and DateEnd bound the publication window. Both bounds
	// are exclusive: a record created exactly on either date is dropped.
	DateStart time.Time `json:"date_start" yaml:"-"`
	DateEnd   time.Time `json:"date_end" yaml:"-"`
}

// InWindow reports whether a record creation date falls strictly inside
// the review's date window.
func (r Review) InWindow(d time.Time) bool {
	return d.After(r.DateStart) && d.Before(r.DateEnd)
}

// Document is one citation extracted from an efetch response: the PMID,
// the article title, and the abstract (empty when the source record has
// no AbstractText).
type Document struct {
	PMID     string `json:"pmid" yaml:"pmid"`
	Title    string `json:"title" yaml:"title"`
	Abstract string `json:"abstract" yaml:"abstract"`
}
