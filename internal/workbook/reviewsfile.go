// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package workbook

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/review-collector/pkg/types"
)

// reviewRecord is the on-disk form of a Review. Dates are stored as
// YYYYMMDD strings so the saved table reads the same as the workbook.
type reviewRecord struct {
	Topic     string `yaml:"topic"`
	Code      string `yaml:"code"`
	URL       string `yaml:"url"`
	Query     string `yaml:"query"`
	DateStart string `yaml:"date_start"`
	DateEnd   string `yaml:"date_end"`
}

// WriteReviews saves the loaded review table to a YAML file so later
// stages can run on a machine without the workbook (or after the
// workbook has been revised).
func WriteReviews(path string, reviews map[string]types.Review) error {
	records := make([]reviewRecord, 0, len(reviews))
	for _, topic := range SortedTopics(reviews) {
		r := reviews[topic]
		records = append(records, reviewRecord{
			Topic:     r.Topic,
			Code:      r.Code,
			URL:       r.URL,
			Query:     r.Query,
			DateStart: r.DateStart.Format(dateFmt),
			DateEnd:   r.DateEnd.Format(dateFmt),
		})
	}

	data, err := yaml.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshaling reviews: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadReviews loads a previously saved review table.
func ReadReviews(path string) (map[string]types.Review, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading reviews file %s: %w", path, err)
	}

	var records []reviewRecord
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing reviews file %s: %w", path, err)
	}

	reviews := make(map[string]types.Review, len(records))
	for _, rec := range records {
		start, err := ParseCreationDate(rec.DateStart)
		if err != nil {
			return nil, fmt.Errorf("reviews file topic %s: %w", rec.Topic, err)
		}
		end, err := ParseCreationDate(rec.DateEnd)
		if err != nil {
			return nil, fmt.Errorf("reviews file topic %s: %w", rec.Topic, err)
		}
		reviews[rec.Topic] = types.Review{
			Topic:     rec.Topic,
			Code:      rec.Code,
			URL:       rec.URL,
			Query:     rec.Query,
			DateStart: start,
			DateEnd:   end,
		}
	}
	return reviews, nil
}

// SortedTopics returns the topic ids of a review table in ascending
// numeric order.
func SortedTopics(reviews map[string]types.Review) []string {
	topics := make([]string, 0, len(reviews))
	for topic := range reviews {
		topics = append(topics, topic)
	}
	SortTopicIDs(topics)
	return topics
}

// SortTopicIDs sorts topic ids in ascending numeric order. Non-numeric
// ids sort after numeric ones, by string.
func SortTopicIDs(topics []string) {
	sort.Slice(topics, func(i, j int) bool {
		a, aerr := strconv.Atoi(topics[i])
		b, berr := strconv.Atoi(topics[j])
		if aerr == nil && berr == nil {
			return a < b
		}
		if aerr == nil {
			return true
		}
		if berr == nil {
			return false
		}
		return topics[i] < topics[j]
	})
}
