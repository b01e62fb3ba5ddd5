// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package workbook

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// titleSep separates the topic id from the title in title.txt.
const titleSep = "|||"

// ReadTitles loads the scraped review titles, one "topic ||| title" line
// per review.
func ReadTitles(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening title file %s: %w", path, err)
	}
	defer f.Close()

	titles := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		topic, title, ok := strings.Cut(line, titleSep)
		if !ok {
			return nil, fmt.Errorf("title file %s: malformed line %q", path, line)
		}
		titles[strings.TrimSpace(topic)] = strings.TrimSpace(title)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading title file %s: %w", path, err)
	}
	return titles, nil
}

// WriteTitles rewrites the title file in the given topic order.
func WriteTitles(path string, titles map[string]string, order []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating title file %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, topic := range order {
		title, ok := titles[topic]
		if !ok {
			continue
		}
		fmt.Fprintf(w, "%s %s %s \n", topic, titleSep, title)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing title file %s: %w", path, err)
	}
	return nil
}
