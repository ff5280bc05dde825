// Package store persists analysis reports in SQLite (pure Go driver).
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dgallion1/cohere/internal/doctree"
)

// ErrNotFound is returned when a requested report doesn't exist.
var ErrNotFound = errors.New("not found")

const schema = `
CREATE TABLE IF NOT EXISTS reports (
	id           TEXT PRIMARY KEY,
	job_id       TEXT NOT NULL,
	filename     TEXT NOT NULL,
	content_hash TEXT NOT NULL,
	mode         TEXT NOT NULL,
	unit_count   INTEGER NOT NULL,
	mean_score   REAL NOT NULL,
	created_at   INTEGER NOT NULL,
	report_json  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reports_hash ON reports(content_hash, mode);
CREATE INDEX IF NOT EXISTS idx_reports_created ON reports(created_at DESC);
`

// Summary is a report row without its units.
type Summary struct {
	ID          string    `json:"report_id"`
	JobID       string    `json:"job_id"`
	Filename    string    `json:"filename"`
	ContentHash string    `json:"content_hash"`
	Mode        string    `json:"mode"`
	UnitCount   int       `json:"unit_count"`
	MeanScore   float64   `json:"mean_score"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store is a report store backed by a single SQLite file.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save inserts a report. The report must carry an ID.
func (s *Store) Save(ctx context.Context, jobID, contentHash string, rep *doctree.Report) error {
	if rep.ID == "" {
		return errors.New("report has no id")
	}
	data, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO reports (id, job_id, filename, content_hash, mode, unit_count, mean_score, created_at, report_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rep.ID, jobID, rep.Filename, contentHash, rep.Mode, rep.UnitCount, rep.MeanScore,
		rep.CreatedAt.UnixNano(), string(data))
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

// Get returns the full report with the given id.
func (s *Store) Get(ctx context.Context, id string) (*doctree.Report, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT report_json FROM reports WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get report: %w", err)
	}
	var rep doctree.Report
	if err := json.Unmarshal([]byte(data), &rep); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", id, err)
	}
	return &rep, nil
}

// List returns the newest reports first, at most limit of them.
func (s *Store) List(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, job_id, filename, content_hash, mode, unit_count, mean_score, created_at
		FROM reports ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		sum, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// FindByHash returns the newest report for the same content and mode.
func (s *Store) FindByHash(ctx context.Context, contentHash, mode string) (*Summary, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, job_id, filename, content_hash, mode, unit_count, mean_score, created_at
		FROM reports WHERE content_hash = ? AND mode = ?
		ORDER BY created_at DESC LIMIT 1`, contentHash, mode)
	sum, err := scanSummary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sum, nil
}

// Delete removes a report.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM reports WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSummary(row scanner) (Summary, error) {
	var (
		sum     Summary
		created int64
	)
	err := row.Scan(&sum.ID, &sum.JobID, &sum.Filename, &sum.ContentHash, &sum.Mode,
		&sum.UnitCount, &sum.MeanScore, &created)
	if err != nil {
		return Summary{}, err
	}
	sum.CreatedAt = time.Unix(0, created).UTC()
	return sum, nil
}
