package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/cwygoda/shopsearch/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS searches (
    session      TEXT PRIMARY KEY,
    job_id       TEXT NOT NULL,
    query        TEXT NOT NULL,
    filters      TEXT,
    phase        TEXT NOT NULL DEFAULT 'submitted',
    error        TEXT,
    result_count INTEGER NOT NULL DEFAULT 0,
    created_at   DATETIME DEFAULT CURRENT_TIMESTAMP,
    finished_at  DATETIME
);
CREATE INDEX IF NOT EXISTS idx_searches_created_at ON searches(created_at);
CREATE TABLE IF NOT EXISTS settings (
    key        TEXT PRIMARY KEY,
    value      TEXT NOT NULL,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

const keyDemoMode = "demo_mode"

// Repository implements domain.HistoryRepository and domain.ModeStore using SQLite.
type Repository struct {
	db *sql.DB
}

// New creates a new SQLite repository, initializing the schema if needed.
func New(dbPath string) (*Repository, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &Repository{db: db}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Record inserts a new history entry.
func (r *Repository) Record(ctx context.Context, e domain.HistoryEntry) error {
	created := e.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	phase := e.Phase
	if phase == "" {
		phase = domain.PhaseSubmitted
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO searches (session, job_id, query, filters, phase, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		e.Session, e.JobID, e.Query, nullString(e.Filters), phase, created.UTC(),
	)
	return err
}

// Finish stores the terminal outcome of a session.
func (r *Repository) Finish(ctx context.Context, session string, phase domain.Phase, errMsg string, resultCount int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE searches SET phase = ?, error = ?, result_count = ?, finished_at = ?
		 WHERE session = ? AND finished_at IS NULL`,
		phase, nullString(errMsg), resultCount, time.Now().UTC(), session,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrHistoryNotFound
	}
	return nil
}

// Get retrieves a history entry by session token.
func (r *Repository) Get(ctx context.Context, session string) (*domain.HistoryEntry, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT session, job_id, query, COALESCE(filters, ''), phase, COALESCE(error, ''), result_count, created_at, finished_at
		 FROM searches WHERE session = ?`, session,
	)
	return scanEntry(row)
}

// List returns the latest entries, newest first.
func (r *Repository) List(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT session, job_id, query, COALESCE(filters, ''), phase, COALESCE(error, ''), result_count, created_at, finished_at
		 FROM searches ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.HistoryEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// DemoMode reads the persisted demo-mode flag. It defaults to off.
func (r *Repository) DemoMode(ctx context.Context) (bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, keyDemoMode).Scan(&value)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return value == "true", nil
}

// SetDemoMode persists the demo-mode flag.
func (r *Repository) SetDemoMode(ctx context.Context, on bool) error {
	value := "false"
	if on {
		value = "true"
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		keyDemoMode, value, time.Now().UTC(),
	)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*domain.HistoryEntry, error) {
	var e domain.HistoryEntry
	var phase string
	var finished sql.NullTime
	err := row.Scan(&e.Session, &e.JobID, &e.Query, &e.Filters, &phase, &e.Error, &e.ResultCount, &e.CreatedAt, &finished)
	if err == sql.ErrNoRows {
		return nil, domain.ErrHistoryNotFound
	}
	if err != nil {
		return nil, err
	}
	e.Phase = domain.Phase(phase)
	if finished.Valid {
		t := finished.Time
		e.FinishedAt = &t
	}
	return &e, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
