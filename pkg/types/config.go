// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"os"
	"path/filepath"
	"time"
)

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "review-collector/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// PortalConfig holds settings for the PID collection stage.
type PortalConfig struct {
	HTTPConfig `yaml:",inline"`

	// Database is the OVID database code submitted with each search
	// (default "mesz", the MEDLINE segment used by the collection).
	Database string `json:"database" yaml:"database"`

	// BatchSize is the number of citations requested per export.
	// The portal caps exports at 500 documents (default 500).
	BatchSize int `json:"batch_size" yaml:"batch_size"`

	// SettleDelay is the pause after the last export of a review, giving
	// the portal time to finish streaming the file (default 30s).
	SettleDelay time.Duration `json:"settle_delay" yaml:"settle_delay"`
}

// FetchConfig holds settings for the abstract fetch stage.
type FetchConfig struct {
	// Tool is the client name reported to NCBI Entrez.
	Tool string `json:"tool" yaml:"tool"`

	// Email is the contact address reported to NCBI Entrez.
	Email string `json:"email" yaml:"email"`

	// APIKey is an optional NCBI API key for higher rate limits.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BatchSize is the number of PMIDs joined into one efetch call
	// (default 500).
	BatchSize int `json:"batch_size" yaml:"batch_size"`

	// ReviewDelay is the pause between consecutive reviews (default 5s).
	ReviewDelay time.Duration `json:"review_delay" yaml:"review_delay"`
}

// CorpusConfig holds settings for the corpus index.
type CorpusConfig struct {
	// MaxResults is the default maximum number of search results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// Layout resolves the collection directory tree under a base directory.
// The names match the released CLEF collection so output is drop-in
// comparable with data produced by earlier collection runs.
type Layout struct {
	// BaseDir is the root of the collection tree.
	BaseDir string `json:"base_dir" yaml:"base_dir"`
}

// WorkbookFile is the curated OVID search workbook.
func (l Layout) WorkbookFile() string { return filepath.Join(l.BaseDir, "medline_ovid_search.xlsx") }

// RelevanceFile is the curated relevance table.
func (l Layout) RelevanceFile() string { return filepath.Join(l.BaseDir, "relevance_index.csv") }

// ReviewsFile is the saved copy of the loaded review table.
func (l Layout) ReviewsFile() string { return filepath.Join(l.BaseDir, "reviews.yaml") }

// DownloadDir holds one subdirectory of raw portal export XML per review.
func (l Layout) DownloadDir() string { return filepath.Join(l.BaseDir, "download_pids") }

// PidsDir holds one PMID-list file per review.
func (l Layout) PidsDir() string { return filepath.Join(l.BaseDir, "pids") }

// TitleFile holds one "topic ||| title" line per review.
func (l Layout) TitleFile() string { return filepath.Join(l.BaseDir, "title.txt") }

// TopicDir holds the released topic description files.
func (l Layout) TopicDir() string { return filepath.Join(l.BaseDir, "topic") }

// AbsQrelDir holds the abstract-level judgment files.
func (l Layout) AbsQrelDir() string { return filepath.Join(l.BaseDir, "abs_qrel") }

// DocQrelDir holds the document-level judgment files.
func (l Layout) DocQrelDir() string { return filepath.Join(l.BaseDir, "doc_qrel") }

// CorporaDir holds one subdirectory of raw efetch XML per review.
func (l Layout) CorporaDir() string { return filepath.Join(l.BaseDir, "corpora") }

// TrecTextDir holds the TRECTEXT corpus files.
func (l Layout) TrecTextDir() string { return filepath.Join(l.BaseDir, "trectext") }

// IndexDir holds the SQLite corpus index.
func (l Layout) IndexDir() string { return filepath.Join(l.BaseDir, "index") }

// LogFile is the shared append-only portal error log.
func (l Layout) LogFile() string { return filepath.Join(l.BaseDir, "log.txt") }

// EnsureDirs creates the output directories the pipeline writes into.
func (l Layout) EnsureDirs() error {
	for _, dir := range []string{
		l.DownloadDir(),
		l.PidsDir(),
		l.TopicDir(),
		l.AbsQrelDir(),
		l.DocQrelDir(),
		l.CorporaDir(),
		l.TrecTextDir(),
		l.IndexDir(),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}
