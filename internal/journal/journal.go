// Package journal keeps a best-effort SQLite record of pipeline runs. The
// archive tree stays the source of truth; the journal only exists so
// operators can see when a date was re-run or a post failed. Journal errors
// never gate the pipeline.
package journal

import (
	"context"
	"database/sql"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	run_date     TEXT    NOT NULL,
	started_at   TEXT    NOT NULL,
	archive_path TEXT    NOT NULL,
	had_previous INTEGER NOT NULL,
	posted       INTEGER NOT NULL,
	post_error   TEXT    NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_runs_date ON runs(run_date);
`

// Run is one recorded pipeline invocation.
type Run struct {
	Date        string // UTC calendar date, YYYY-MM-DD
	StartedAt   time.Time
	ArchivePath string
	HadPrevious bool
	Posted      bool
	PostError   string
}

// Store records runs in a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the journal database at dbPath and ensures the
// schema exists.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts one run row.
func (s *Store) Record(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (run_date, started_at, archive_path, had_previous, posted, post_error)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.Date,
		run.StartedAt.UTC().Format(time.RFC3339),
		run.ArchivePath,
		boolToInt(run.HadPrevious),
		boolToInt(run.Posted),
		run.PostError,
	)
	return err
}

// Posted reports whether any earlier run for the given date already
// published a post.
func (s *Store) Posted(ctx context.Context, date string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM runs WHERE run_date = ? AND posted = 1`, date,
	).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Runs returns all recorded runs for a date, oldest first.
func (s *Store) Runs(ctx context.Context, date string) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_date, started_at, archive_path, had_previous, posted, post_error
		 FROM runs WHERE run_date = ? ORDER BY id`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var startedAt string
		var hadPrev, posted int
		if err := rows.Scan(&r.Date, &startedAt, &r.ArchivePath, &hadPrev, &posted, &r.PostError); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339, startedAt); err == nil {
			r.StartedAt = t
		}
		r.HadPrevious = hadPrev != 0
		r.Posted = posted != 0
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
