package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"github.com/pfrederiksen/aqua-events/internal/pipeline"
	"github.com/pfrederiksen/aqua-events/internal/storage"
)

const table = "deleted_events"

// batchSize bounds the rows of one INSERT so the statement stays under
// SQLite's bound-parameter limit.
const batchSize = 150

var schema = []string{`
CREATE TABLE IF NOT EXISTS deleted_events (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id      TEXT NOT NULL,
	event_id    TEXT NOT NULL,
	title       TEXT NOT NULL DEFAULT '',
	reasons     TEXT NOT NULL DEFAULT '',
	document    TEXT NOT NULL,
	archived_at TEXT NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_deleted_events_run ON deleted_events(run_id)`,
}

// Archive stores deleted documents in SQLite
type Archive struct {
	db  *sql.DB
	now func() time.Time
}

// Run summarizes one archived run
type Run struct {
	RunID      string    `json:"run_id"`
	Count      int       `json:"count"`
	ArchivedAt time.Time `json:"archived_at"`
}

// Entry is one archived document
type Entry struct {
	RunID      string                 `json:"run_id"`
	EventID    string                 `json:"event_id"`
	Title      string                 `json:"title"`
	Reasons    []string               `json:"reasons"`
	Document   map[string]interface{} `json:"document"`
	ArchivedAt time.Time              `json:"archived_at"`
}

// Open opens or creates the archive at path.
func Open(path string) (*Archive, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating archive directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close() // nolint:errcheck
			return nil, fmt.Errorf("creating archive schema: %w", err)
		}
	}

	return &Archive{db: db, now: time.Now}, nil
}

// Close closes the database.
func (a *Archive) Close() error {
	return a.db.Close()
}

// Archive stores deletions under runID in one transaction.
func (a *Archive) Archive(ctx context.Context, runID string, deletions []pipeline.Deletion) error {
	if len(deletions) == 0 {
		return nil
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning archive transaction: %w", err)
	}
	defer tx.Rollback() // nolint:errcheck

	archivedAt := a.now().UTC().Format(time.RFC3339)
	for start := 0; start < len(deletions); start += batchSize {
		end := start + batchSize
		if end > len(deletions) {
			end = len(deletions)
		}

		insert := sq.Insert(table).Columns("run_id", "event_id", "title", "reasons", "document", "archived_at")
		for _, d := range deletions[start:end] {
			doc, err := json.Marshal(storage.JSONDocument(d.Record.Doc))
			if err != nil {
				return fmt.Errorf("encoding event %s: %w", d.Record.ID, err)
			}
			reasons := make([]string, len(d.Reasons))
			for i, c := range d.Reasons {
				reasons[i] = string(c)
			}
			insert = insert.Values(runID, d.Record.ID, d.Record.Title.Es(), strings.Join(reasons, ","), string(doc), archivedAt)
		}

		query, args, err := insert.ToSql()
		if err != nil {
			return fmt.Errorf("building archive insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("inserting archive rows: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing archive: %w", err)
	}
	return nil
}

// Runs lists archived runs, most recent first.
func (a *Archive) Runs(ctx context.Context) ([]Run, error) {
	query, args, err := sq.Select("run_id", "COUNT(*)", "MIN(archived_at)").
		From(table).
		GroupBy("run_id").
		OrderBy("MIN(archived_at) DESC", "run_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building runs query: %w", err)
	}

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close() // nolint:errcheck

	var runs []Run
	for rows.Next() {
		var r Run
		var archivedAt string
		if err := rows.Scan(&r.RunID, &r.Count, &archivedAt); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if r.ArchivedAt, err = time.Parse(time.RFC3339, archivedAt); err != nil {
			return nil, fmt.Errorf("parsing archive time of run %s: %w", r.RunID, err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Entries returns the documents archived by runID in insertion order.
func (a *Archive) Entries(ctx context.Context, runID string) ([]Entry, error) {
	query, args, err := sq.Select("run_id", "event_id", "title", "reasons", "document", "archived_at").
		From(table).
		Where(sq.Eq{"run_id": runID}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building entries query: %w", err)
	}

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close() // nolint:errcheck

	var entries []Entry
	for rows.Next() {
		var e Entry
		var reasons, doc, archivedAt string
		if err := rows.Scan(&e.RunID, &e.EventID, &e.Title, &reasons, &doc, &archivedAt); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		if reasons != "" {
			e.Reasons = strings.Split(reasons, ",")
		}
		if err := json.Unmarshal([]byte(doc), &e.Document); err != nil {
			return nil, fmt.Errorf("decoding archived event %s: %w", e.EventID, err)
		}
		if e.ArchivedAt, err = time.Parse(time.RFC3339, archivedAt); err != nil {
			return nil, fmt.Errorf("parsing archive time of event %s: %w", e.EventID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
