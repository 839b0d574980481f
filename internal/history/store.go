// Package history persists run reports to a SQLite database so past builds
// can be inspected after the fact.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/syy321818/blogbuilder/internal/site"
)

// Store is a SQLite-backed run history.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens (and creates, if needed) the history database at path. Use
// ":memory:" for an in-memory store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize history schema: %w", err)
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL UNIQUE,
		started_at INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		units_parsed INTEGER NOT NULL,
		units_excluded INTEGER NOT NULL,
		pages_planned INTEGER NOT NULL,
		pages_rendered INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		report BLOB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
	CREATE INDEX IF NOT EXISTS idx_runs_outcome ON runs(outcome);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append stores one finished run. Appending the same run ID twice is an
// error, runs are immutable once recorded.
func (s *Store) Append(ctx context.Context, report *site.RunReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal run report: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs
			(run_id, started_at, outcome, units_parsed, units_excluded,
			 pages_planned, pages_rendered, duration_ms, report)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.RunID,
		report.StartedAt.Unix(),
		string(report.Outcome),
		report.UnitsParsed,
		len(report.Excluded),
		report.PagesPlanned,
		report.PagesRendered,
		report.Duration.Milliseconds(),
		payload,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// RunSummary is the listing view of one recorded run.
type RunSummary struct {
	RunID         string
	StartedAt     time.Time
	Outcome       site.RunOutcome
	UnitsParsed   int
	UnitsExcluded int
	PagesPlanned  int
	PagesRendered int
	Duration      time.Duration
}

// Recent returns up to limit run summaries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]RunSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, started_at, outcome, units_parsed, units_excluded,
			pages_planned, pages_rendered, duration_ms
		 FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var rs RunSummary
		var startedUnix, durationMS int64
		var outcome string
		if err := rows.Scan(&rs.RunID, &startedUnix, &outcome, &rs.UnitsParsed,
			&rs.UnitsExcluded, &rs.PagesPlanned, &rs.PagesRendered, &durationMS); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		rs.StartedAt = time.Unix(startedUnix, 0).UTC()
		rs.Outcome = site.RunOutcome(outcome)
		rs.Duration = time.Duration(durationMS) * time.Millisecond
		out = append(out, rs)
	}
	return out, rows.Err()
}

// Get retrieves the full stored report for one run ID.
func (s *Store) Get(ctx context.Context, runID string) (*site.RunReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var payload []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT report FROM runs WHERE run_id = ?", runID,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s not found", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}

	var report site.RunReport
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, fmt.Errorf("unmarshal run report: %w", err)
	}
	return &report, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
