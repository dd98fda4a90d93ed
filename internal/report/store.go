// Package report keeps a SQLite history of comparison runs.
package report

import (
	"database/sql"
	"fmt"
	"sort"
	"time"

	_ "modernc.org/sqlite"

	"github.com/pyhub-apps/pdfdiff-golang/pkg/batch"
	"github.com/pyhub-apps/pdfdiff-golang/pkg/compare"
	"github.com/pyhub-apps/pdfdiff-golang/pkg/textdiff"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id      TEXT PRIMARY KEY,
	finished_at INTEGER NOT NULL,
	elapsed_ms  INTEGER NOT NULL,
	attempted   INTEGER NOT NULL,
	completed   INTEGER NOT NULL,
	skipped     INTEGER NOT NULL,
	failed      INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS documents (
	run_id         TEXT NOT NULL REFERENCES runs(run_id),
	doc_id         TEXT NOT NULL,
	status         TEXT NOT NULL,
	has_difference INTEGER NOT NULL DEFAULT 0,
	pages          INTEGER NOT NULL DEFAULT 0,
	elapsed_ms     INTEGER NOT NULL DEFAULT 0,
	error          TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (run_id, doc_id)
);
CREATE TABLE IF NOT EXISTS pages (
	run_id      TEXT NOT NULL,
	doc_id      TEXT NOT NULL,
	page_index  INTEGER NOT NULL,
	status      TEXT NOT NULL,
	reason      TEXT NOT NULL DEFAULT '',
	diff_pixels INTEGER NOT NULL DEFAULT 0,
	added       INTEGER NOT NULL DEFAULT 0,
	removed     INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (run_id, doc_id, page_index)
);`

// Store writes run results to a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and ensures the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open report db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create report schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun stores a run with its documents and pages in one transaction.
func (s *Store) SaveRun(res *batch.Result) (err error) {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	runID := res.RunID.String()
	if _, err = tx.Exec(
		`INSERT INTO runs (run_id, finished_at, elapsed_ms, attempted, completed, skipped, failed)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, time.Now().Unix(), res.Elapsed.Milliseconds(),
		res.Attempted, res.Completed, len(res.Skipped), len(res.Failed),
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	ids := make([]string, 0, len(res.Documents))
	for id := range res.Documents {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if err = saveDocument(tx, runID, res.Documents[id]); err != nil {
			return err
		}
	}

	for _, group := range []struct {
		status string
		errs   []batch.PairError
	}{{"skipped", res.Skipped}, {"failed", res.Failed}} {
		for _, pe := range group.errs {
			if _, err = tx.Exec(
				`INSERT INTO documents (run_id, doc_id, status, error) VALUES (?, ?, ?, ?)`,
				runID, pe.Pair.ID, group.status, pe.Err.Error(),
			); err != nil {
				return fmt.Errorf("insert %s document %s: %w", group.status, pe.Pair.ID, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func saveDocument(tx *sql.Tx, runID string, doc compare.DocumentResult) error {
	if _, err := tx.Exec(
		`INSERT INTO documents (run_id, doc_id, status, has_difference, pages, elapsed_ms)
		 VALUES (?, ?, 'completed', ?, ?, ?)`,
		runID, doc.ID, doc.HasDifference, len(doc.Pages), doc.Elapsed.Milliseconds(),
	); err != nil {
		return fmt.Errorf("insert document %s: %w", doc.ID, err)
	}

	for _, p := range doc.Pages {
		var added, removed int
		for _, op := range p.Ops {
			switch op.Kind {
			case textdiff.Add:
				added++
			case textdiff.Remove:
				removed++
			}
		}
		if _, err := tx.Exec(
			`INSERT INTO pages (run_id, doc_id, page_index, status, reason, diff_pixels, added, removed)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, doc.ID, p.Index, p.Status.String(), p.Reason, p.DiffPixels, added, removed,
		); err != nil {
			return fmt.Errorf("insert page %s/%d: %w", doc.ID, p.Index, err)
		}
	}
	return nil
}

// RunSummary is a stored run as read back from the database.
type RunSummary struct {
	RunID     string
	Attempted int
	Completed int
	Skipped   int
	Failed    int
	Changed   int
}

// LoadRun reads back the totals of a run.
func (s *Store) LoadRun(runID string) (RunSummary, error) {
	r := RunSummary{RunID: runID}
	err := s.db.QueryRow(
		`SELECT attempted, completed, skipped, failed,
		        (SELECT COUNT(*) FROM documents WHERE run_id = ? AND has_difference = 1)
		 FROM runs WHERE run_id = ?`,
		runID, runID,
	).Scan(&r.Attempted, &r.Completed, &r.Skipped, &r.Failed, &r.Changed)
	if err != nil {
		return RunSummary{}, fmt.Errorf("load run %s: %w", runID, err)
	}
	return r, nil
}
