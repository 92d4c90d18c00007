// Package history keeps a local sqlite log of payout runs.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	// registers the "sqlite" driver
	_ "modernc.org/sqlite"
)

// Run is one account's result from one invocation of the total command.
type Run struct {
	ID         int64     `json:"id"`
	RecordedAt time.Time `json:"recordedAt"`
	Chain      string    `json:"chain"`
	Account    string    `json:"account"`
	Depth      uint      `json:"depth"`
	Policy     string    `json:"policy"`
	Outcome    string    `json:"outcome"`
	Total      float64   `json:"total"`
}

// Store wraps the sqlite connection.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates the database file (and its directory) if needed and applies
// the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Path() string { return s.path }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		`CREATE TABLE IF NOT EXISTS payout_runs (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			recorded_at TEXT    NOT NULL,
			chain       TEXT    NOT NULL,
			account     TEXT    NOT NULL,
			depth       INTEGER NOT NULL,
			policy      TEXT    NOT NULL,
			outcome     TEXT    NOT NULL,
			total       REAL    NOT NULL
		)`,
		"CREATE INDEX IF NOT EXISTS idx_payout_runs_account ON payout_runs(account, id)",
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate history database: %w", err)
		}
	}
	return nil
}

// Record inserts run and returns its id.
func (s *Store) Record(ctx context.Context, run Run) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO payout_runs (recorded_at, chain, account, depth, policy, outcome, total)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.RecordedAt.UTC().Format(time.RFC3339Nano),
		run.Chain, run.Account, int64(run.Depth), run.Policy, run.Outcome, run.Total,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to record run: %w", err)
	}
	return res.LastInsertId()
}

// List returns up to limit runs, newest first. An empty account lists every
// account. limit <= 0 means no limit.
func (s *Store) List(ctx context.Context, account string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, recorded_at, chain, account, depth, policy, outcome, total
		 FROM payout_runs
		 WHERE ? = '' OR account = ?
		 ORDER BY id DESC
		 LIMIT ?`,
		account, account, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r          Run
			recordedAt string
			depth      int64
		)
		if err := rows.Scan(&r.ID, &recordedAt, &r.Chain, &r.Account, &depth, &r.Policy, &r.Outcome, &r.Total); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.RecordedAt, err = time.Parse(time.RFC3339Nano, recordedAt)
		if err != nil {
			return nil, fmt.Errorf("run %d: bad recorded_at %q: %w", r.ID, recordedAt, err)
		}
		r.Depth = uint(depth)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
