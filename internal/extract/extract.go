// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract turns raw portal export batches into released PID
// lists: it reads each review's XML batches, keeps the records whose
// creation date falls strictly inside the review's window, orders them
// by the portal's record index, and writes one PMID per line.
//
// Duplicate PMIDs across batches pass through untouched — deduplication
// is the release builder's and the fetcher's job, and the asymmetry is
// part of the released-data contract.
package extract

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/review-collector/internal/workbook"
	"github.com/pdiddy/review-collector/pkg/types"
)

// Field labels inside a portal export record.
const (
	labelUID         = "Unique Identifier"
	labelDateCreated = "Date Created"
)

var firstInt = regexp.MustCompile(`\d+`)

// Portal export XML structures. Each <record> carries a 1-based index
// attribute and a list of labeled <F> fields whose <D> children hold the
// values.
type exportFile struct {
	Records []exportRecord `xml:"record"`
}

type exportRecord struct {
	Index  string        `xml:"index,attr"`
	Fields []exportField `xml:"F"`
}

type exportField struct {
	Label  string   `xml:"L,attr"`
	Values []string `xml:"D"`
}

// pidEntry pairs a PMID with the portal's record index so the released
// list can be ordered the way the portal returned it.
type pidEntry struct {
	index int
	pmid  string
}

// Run extracts PID lists for every review directory under the download
// tree. A directory whose topic id is missing from the review table is a
// fatal error: it means the workbook and the downloads disagree.
func Run(reviews map[string]types.Review, layout types.Layout, w io.Writer) error {
	entries, err := os.ReadDir(layout.DownloadDir())
	if err != nil {
		return fmt.Errorf("reading download directory: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		topic := entry.Name()

		review, ok := reviews[topic]
		if !ok {
			return fmt.Errorf("topic %s has downloads but no workbook row", topic)
		}

		pids, err := Review(review, filepath.Join(layout.DownloadDir(), topic), w)
		if err != nil {
			return err
		}

		if err := WritePids(filepath.Join(layout.PidsDir(), topic), pids); err != nil {
			return err
		}
		fmt.Fprintf(w, "topic %s: %d pids\n", topic, len(pids))
	}
	return nil
}

// Review extracts the ordered PID list for one review from its batch
// directory. Records outside the date window are reported to w and
// dropped.
func Review(review types.Review, batchDir string, w io.Writer) ([]string, error) {
	files, err := batchFiles(batchDir)
	if err != nil {
		return nil, err
	}

	var entries []pidEntry
	for _, file := range files {
		fmt.Fprintf(w, "processing topic %s file %s\n", review.Topic, filepath.Base(file))

		batch, err := parseBatch(file)
		if err != nil {
			return nil, err
		}

		for _, record := range batch.Records {
			entry, date, err := readRecord(record)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", file, err)
			}
			if !review.InWindow(date) {
				fmt.Fprintf(w, "document %d in file %s in topic %s is outside the date window\n",
					entry.index, filepath.Base(file), review.Topic)
				continue
			}
			entries = append(entries, entry)
		}
	}

	// Order by the portal's record index; ties keep file order so
	// re-runs over the same batches produce identical lists.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].index < entries[j].index
	})

	pids := make([]string, len(entries))
	for i, e := range entries {
		pids[i] = e.pmid
	}
	return pids, nil
}

// batchFiles lists a review's batch files in name order, skipping
// dotfiles left behind by the portal's download machinery.
func batchFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading batch directory %s: %w", dir, err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func parseBatch(path string) (exportFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return exportFile{}, fmt.Errorf("opening batch %s: %w", path, err)
	}
	defer f.Close()

	var batch exportFile
	if err := xml.NewDecoder(f).Decode(&batch); err != nil {
		return exportFile{}, fmt.Errorf("parsing batch %s: %w", path, err)
	}
	return batch, nil
}

// readRecord pulls the index, PMID, and creation date out of one export
// record. A record missing any of the three is malformed.
func readRecord(record exportRecord) (pidEntry, time.Time, error) {
	m := firstInt.FindString(record.Index)
	if m == "" {
		return pidEntry{}, time.Time{}, fmt.Errorf("record has no numeric index (%q)", record.Index)
	}
	index, err := strconv.Atoi(m)
	if err != nil {
		return pidEntry{}, time.Time{}, fmt.Errorf("record index %q: %w", record.Index, err)
	}

	var pmid, rawDate string
	for _, field := range record.Fields {
		if len(field.Values) == 0 {
			continue
		}
		switch field.Label {
		case labelUID:
			pmid = strings.TrimSpace(field.Values[0])
		case labelDateCreated:
			rawDate = field.Values[0]
		}
	}
	if pmid == "" {
		return pidEntry{}, time.Time{}, fmt.Errorf("record %d has no unique identifier", index)
	}
	if rawDate == "" {
		return pidEntry{}, time.Time{}, fmt.Errorf("record %d has no creation date", index)
	}

	date, err := workbook.ParseCreationDate(rawDate)
	if err != nil {
		return pidEntry{}, time.Time{}, fmt.Errorf("record %d creation date: %w", index, err)
	}
	return pidEntry{index: index, pmid: pmid}, date, nil
}

// WritePids writes a PID list one identifier per line.
func WritePids(path string, pids []string) error {
	var b strings.Builder
	for _, pid := range pids {
		b.WriteString(pid)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing pid list %s: %w", path, err)
	}
	return nil
}
