// Package store persists planner state between sessions: the versioned
// backlog payload, the completed set, and simulation run history. It is
// backed by a local SQLite database in WAL mode. The core never touches
// the store itself; commands read, transform through the pure planner
// functions, and write the new value back.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"github.com/ashpool/techplan/internal/planner"
)

// schema contains the DDL executed on open. IF NOT EXISTS makes it safe to
// run on every startup.
const schema = `
CREATE TABLE IF NOT EXISTS backlog (
    profile    TEXT PRIMARY KEY,
    version    INTEGER NOT NULL,
    order_json TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS completed (
    profile TEXT NOT NULL,
    node_id TEXT NOT NULL,
    PRIMARY KEY (profile, node_id)
);

CREATE TABLE IF NOT EXISTS runs (
    id         TEXT PRIMARY KEY,
    profile    TEXT NOT NULL,
    started_at TIMESTAMP NOT NULL,
    turns      INTEGER NOT NULL,
    researched INTEGER NOT NULL
);
`

// RunRecord summarizes one completed simulation run.
type RunRecord struct {
	ID         string // uuid assigned by the caller
	Profile    string
	StartedAt  time.Time
	Turns      int
	Researched int
}

// Store wraps the SQLite database holding planner state.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path, enables WAL mode and a busy
// timeout, and creates the schema tables if they do not exist.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	// One connection: SQLite supports a single writer, and a single pooled
	// connection avoids SQLITE_BUSY contention between connections that
	// each need their own PRAGMA setup.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: set busy timeout: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveBacklog upserts the profile's backlog payload.
func (s *Store) SaveBacklog(ctx context.Context, profile string, payload planner.Payload) error {
	orderJSON, err := json.Marshal(payload.Order)
	if err != nil {
		return fmt.Errorf("store: encode backlog order: %w", err)
	}
	const q = `
		INSERT INTO backlog (profile, version, order_json, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(profile) DO UPDATE SET
			version = excluded.version,
			order_json = excluded.order_json,
			updated_at = CURRENT_TIMESTAMP`
	if _, err := s.db.ExecContext(ctx, q, profile, payload.Version, string(orderJSON)); err != nil {
		return fmt.Errorf("store: save backlog for %q: %w", profile, err)
	}
	return nil
}

// LoadBacklog returns the raw payload bytes for a profile. ok is false when
// no payload is stored. Malformed rows are returned as-is; decoding them
// defensively is planner.DecodeBacklog's job.
func (s *Store) LoadBacklog(ctx context.Context, profile string) ([]byte, bool, error) {
	var version int
	var orderJSON string
	err := s.db.QueryRowContext(ctx,
		"SELECT version, order_json FROM backlog WHERE profile = ?", profile).
		Scan(&version, &orderJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("store: load backlog for %q: %w", profile, err)
	}

	payload, err := json.Marshal(map[string]json.RawMessage{
		"version": json.RawMessage(fmt.Sprintf("%d", version)),
		"order":   json.RawMessage(orderJSON),
	})
	if err != nil {
		return nil, false, fmt.Errorf("store: assemble backlog payload: %w", err)
	}
	return payload, true, nil
}

// SaveCompleted replaces the profile's completed set in one transaction.
func (s *Store) SaveCompleted(ctx context.Context, profile string, ids []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin completed update: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM completed WHERE profile = ?", profile); err != nil {
		return fmt.Errorf("store: clear completed for %q: %w", profile, err)
	}
	for _, id := range ids {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO completed (profile, node_id) VALUES (?, ?)", profile, id); err != nil {
			return fmt.Errorf("store: insert completed %q: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit completed update: %w", err)
	}
	return nil
}

// LoadCompleted returns the profile's completed node ids in insertion-stable
// (sorted) order.
func (s *Store) LoadCompleted(ctx context.Context, profile string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT node_id FROM completed WHERE profile = ? ORDER BY node_id", profile)
	if err != nil {
		return nil, fmt.Errorf("store: load completed for %q: %w", profile, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("store: scan completed row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate completed rows: %w", err)
	}
	return ids, nil
}

// RecordRun inserts one simulation run summary.
func (s *Store) RecordRun(ctx context.Context, run RunRecord) error {
	const q = `
		INSERT INTO runs (id, profile, started_at, turns, researched)
		VALUES (?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, q,
		run.ID, run.Profile, run.StartedAt.UTC(), run.Turns, run.Researched); err != nil {
		return fmt.Errorf("store: record run %s: %w", run.ID, err)
	}
	return nil
}

// Runs lists the most recent runs for a profile, newest first.
func (s *Store) Runs(ctx context.Context, profile string, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, profile, started_at, turns, researched
		FROM runs WHERE profile = ?
		ORDER BY started_at DESC LIMIT ?`, profile, limit)
	if err != nil {
		return nil, fmt.Errorf("store: list runs for %q: %w", profile, err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var run RunRecord
		if err := rows.Scan(&run.ID, &run.Profile, &run.StartedAt, &run.Turns, &run.Researched); err != nil {
			return nil, fmt.Errorf("store: scan run row: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate run rows: %w", err)
	}
	return runs, nil
}
