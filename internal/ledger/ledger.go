// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger records compiled runs and published posts in SQLite so a
// restarted publisher never posts the same entry twice.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/jwst-live/pkg/types"
)

// DefaultPath is used when no ledger path is configured.
const DefaultPath = "output/ledger.db"

// Ledger wraps the SQLite database.
type Ledger struct {
	db *sql.DB
}

// Entry is one published post.
type Entry struct {
	Key         string
	Title       string
	PostTime    time.Time
	RunDir      string
	RemoteID    string
	PublishedAt time.Time
}

// RunSummary counts what a compile run produced and what was published.
type RunSummary struct {
	RunDir       string
	Observations int
	Published    int
}

// Open opens or creates the ledger at path and ensures the schema exists.
func Open(path string) (*Ledger, error) {
	if path == "" {
		path = DefaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating ledger directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}

	l := &Ledger{db: db}
	if err := l.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return l, nil
}

// Close releases the database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

func (l *Ledger) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS posts (
			key TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			post_time TEXT NOT NULL,
			run_dir TEXT,
			remote_id TEXT,
			published_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_posts_run_dir ON posts(run_dir)`,
		`CREATE TABLE IF NOT EXISTS observations (
			run_dir TEXT NOT NULL,
			visit_id TEXT NOT NULL,
			title TEXT,
			start_date TEXT,
			start_time TEXT,
			image TEXT,
			PRIMARY KEY (run_dir, visit_id)
		)`,
	}
	for _, stmt := range statements {
		if _, err := l.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Published reports whether a post with this key was already published.
func (l *Ledger) Published(ctx context.Context, key string) (bool, error) {
	var one int
	err := l.db.QueryRowContext(ctx, `SELECT 1 FROM posts WHERE key = ?`, key).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("querying ledger: %w", err)
	}
	return true, nil
}

// Record marks a post as published.
func (l *Ledger) Record(ctx context.Context, post types.Post, runDir, remoteID string, at time.Time) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO posts (key, title, post_time, run_dir, remote_id, published_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET remote_id = excluded.remote_id, published_at = excluded.published_at`,
		post.Key(), post.Title, post.PostTime.UTC().Format(time.RFC3339),
		runDir, remoteID, at.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("recording post %q: %w", post.Title, err)
	}
	return nil
}

// Entries returns every published post ordered by post time.
func (l *Ledger) Entries(ctx context.Context) ([]Entry, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT key, title, post_time, COALESCE(run_dir, ''), COALESCE(remote_id, ''), published_at
		 FROM posts ORDER BY post_time, key`)
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var postTime, publishedAt string
		if err := rows.Scan(&e.Key, &e.Title, &postTime, &e.RunDir, &e.RemoteID, &publishedAt); err != nil {
			return nil, fmt.Errorf("scanning post: %w", err)
		}
		e.PostTime, _ = time.Parse(time.RFC3339, postTime)
		e.PublishedAt, _ = time.Parse(time.RFC3339, publishedAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// RecordRun replaces the observation index of a compile run.
func (l *Ledger) RecordRun(ctx context.Context, runDir string, records []types.ObservationMetadata) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM observations WHERE run_dir = ?`, runDir); err != nil {
		return fmt.Errorf("clearing run %s: %w", runDir, err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO observations (run_dir, visit_id, title, start_date, start_time, image)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, runDir, r.VisitID, r.Title, r.StartDate, r.StartTime, r.Image); err != nil {
			return fmt.Errorf("indexing %s: %w", r.VisitID, err)
		}
	}
	return tx.Commit()
}

// Runs summarises every compile run known to the ledger, newest first.
func (l *Ledger) Runs(ctx context.Context) ([]RunSummary, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT r.run_dir,
		       (SELECT count(*) FROM observations o WHERE o.run_dir = r.run_dir),
		       (SELECT count(*) FROM posts p WHERE p.run_dir = r.run_dir)
		FROM (SELECT run_dir FROM observations UNION SELECT run_dir FROM posts WHERE run_dir <> '') r
		ORDER BY r.run_dir DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.RunDir, &r.Observations, &r.Published); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
