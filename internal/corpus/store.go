// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package corpus maintains a searchable SQLite index over the fetched
// abstracts and their released judgments. The index is a convenience
// layer over the released files, not part of the release itself; it can
// be rebuilt from corpora/ and the qrel directories at any time.
package corpus

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hscells/trecresults"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/review-collector/internal/trectext"
	"github.com/pdiddy/review-collector/pkg/types"
)

const dbFile = "corpus.db"

// Store manages the corpus index SQLite database.
type Store struct {
	db         *sql.DB
	layout     types.Layout
	maxResults int
}

// NewStore opens or creates the corpus index at index/corpus.db under
// the collection base directory, creating the schema if needed.
func NewStore(layout types.Layout, cfg types.CorpusConfig) (*Store, error) {
	if err := os.MkdirAll(layout.IndexDir(), 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(layout.IndexDir(), dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:         db,
		layout:     layout,
		maxResults: maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			pmid TEXT NOT NULL,
			topic TEXT NOT NULL,
			code TEXT,
			title TEXT,
			abstract TEXT,
			abs_rel INTEGER NOT NULL DEFAULT 0,
			doc_rel INTEGER NOT NULL DEFAULT 0,
			UNIQUE(topic, pmid)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_topic ON documents(topic)`,
		`CREATE TABLE IF NOT EXISTS ingest_status (
			topic TEXT PRIMARY KEY,
			mod_time TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='documents_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE documents_fts USING fts5(title, abstract, content=documents, content_rowid=rowid)`,
			`CREATE TRIGGER documents_ai AFTER INSERT ON documents BEGIN
				INSERT INTO documents_fts(rowid, title, abstract) VALUES (new.rowid, new.title, new.abstract);
			END`,
			`CREATE TRIGGER documents_ad AFTER DELETE ON documents BEGIN
				INSERT INTO documents_fts(documents_fts, rowid, title, abstract) VALUES('delete', old.rowid, old.title, old.abstract);
			END`,
			`CREATE TRIGGER documents_au AFTER UPDATE ON documents BEGIN
				INSERT INTO documents_fts(documents_fts, rowid, title, abstract) VALUES('delete', old.rowid, old.title, old.abstract);
				INSERT INTO documents_fts(rowid, title, abstract) VALUES (new.rowid, new.title, new.abstract);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// IngestSummary holds counts from a corpus indexing run.
type IngestSummary struct {
	Indexed int
	Updated int
	Skipped int
	Failed  int
}

// Total returns the number of reviews processed.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// Ingest indexes every review under the corpora tree, together with its
// released judgments. A review whose batch files have not changed since
// the last run is skipped. On success it writes export.yaml.
func (s *Store) Ingest(ctx context.Context, w io.Writer) (IngestSummary, error) {
	entries, err := os.ReadDir(s.layout.CorporaDir())
	if err != nil {
		return IngestSummary{}, fmt.Errorf("reading corpora directory: %w", err)
	}

	var summary IngestSummary

	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		topic := entry.Name()
		topicDir := filepath.Join(s.layout.CorporaDir(), topic)

		modTime, err := newestModTime(topicDir)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", topic, err)
			summary.Failed++
			continue
		}

		var storedModTime string
		err = s.db.QueryRowContext(ctx,
			`SELECT mod_time FROM ingest_status WHERE topic = ?`, topic,
		).Scan(&storedModTime)

		if err == nil && storedModTime == modTime {
			fmt.Fprintf(w, "skipped %s\n", topic)
			summary.Skipped++
			continue
		}

		isUpdate := err == nil

		docs, err := loadTopicDocuments(topicDir)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", topic, err)
			summary.Failed++
			continue
		}

		code, absRel := loadJudgments(filepath.Join(s.layout.AbsQrelDir(), topic))
		_, docRel := loadJudgments(filepath.Join(s.layout.DocQrelDir(), topic))

		if err := s.ingestTopic(ctx, topic, code, docs, absRel, docRel, modTime, isUpdate); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", topic, err)
			summary.Failed++
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s (%d documents)\n", topic, len(docs))
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexing %s (%d documents)\n", topic, len(docs))
			summary.Indexed++
		}
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed)

	if summary.Indexed > 0 || summary.Updated > 0 {
		if err := s.ExportYAML(ctx, QueryOptions{}); err != nil {
			fmt.Fprintf(w, "warning: export.yaml write failed: %v\n", err)
		}
	}

	return summary, nil
}

func (s *Store) ingestTopic(ctx context.Context, topic, code string, docs []types.Document, absRel, docRel trecresults.Qrels, modTime string, isUpdate bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if isUpdate {
		if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE topic = ?`, topic); err != nil {
			return fmt.Errorf("deleting old documents: %w", err)
		}
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO documents (pmid, topic, code, title, abstract, abs_rel, doc_rel)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, doc := range docs {
		_, err := stmt.ExecContext(ctx,
			doc.PMID, topic, code, doc.Title, doc.Abstract,
			score(absRel, doc.PMID), score(docRel, doc.PMID),
		)
		if err != nil {
			return fmt.Errorf("inserting document %s: %w", doc.PMID, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO ingest_status (topic, mod_time) VALUES (?, ?)
		 ON CONFLICT(topic) DO UPDATE SET mod_time=excluded.mod_time`,
		topic, modTime,
	)
	if err != nil {
		return fmt.Errorf("updating ingest status: %w", err)
	}

	return tx.Commit()
}

// loadTopicDocuments parses every batch file in one review's corpora
// directory.
func loadTopicDocuments(dir string) ([]types.Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading batch directory: %w", err)
	}

	var docs []types.Document
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		f, err := os.Open(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("opening batch %s: %w", entry.Name(), err)
		}
		batch, err := trectext.Parse(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("batch %s: %w", entry.Name(), err)
		}
		docs = append(docs, batch...)
	}
	return docs, nil
}

// loadJudgments reads a released qrel file. A missing or unreadable file
// yields no judgments: the index can be built before the release step
// has run, in which case every document scores 0.
func loadJudgments(path string) (string, trecresults.Qrels) {
	f, err := os.Open(path)
	if err != nil {
		return "", nil
	}
	defer f.Close()

	qf, err := trecresults.QrelsFromReader(f)
	if err != nil {
		return "", nil
	}
	for code, qrels := range qf.Qrels {
		return code, qrels
	}
	return "", nil
}

func score(qrels trecresults.Qrels, pmid string) int64 {
	if q, ok := qrels[pmid]; ok {
		return q.Score
	}
	return 0
}

// newestModTime returns the most recent modification time among a
// review's batch files, in a form stable across runs.
func newestModTime(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("reading batch directory: %w", err)
	}

	var newest time.Time
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return "", err
		}
		if info.ModTime().After(newest) {
			newest = info.ModTime()
		}
	}
	return newest.UTC().Format(time.RFC3339Nano), nil
}
