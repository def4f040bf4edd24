// Package scratch stages prediction result files for download. Files live
// in a scratch directory keyed by id; a sqlite index carries the display
// name and row count so the UI can list recent runs.
package scratch

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	log "github.com/sirupsen/logrus"

	"merch-forecast/internal/csvio"
	"merch-forecast/internal/domain"
)

var ErrNotFound = errors.New("result not found")

// Entry is one staged result file.
type Entry struct {
	ID        string
	Filename  string
	Rows      int
	CreatedAt time.Time
}

type Store struct {
	dir string
	db  *sql.DB
}

// New opens the scratch directory and its index, creating both when
// missing.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}

	dsn := filepath.Join(dir, "index.db") + "?_busy_timeout=5000"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open scratch index: %w", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS results (
		id         TEXT PRIMARY KEY,
		filename   TEXT NOT NULL,
		row_count  INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create scratch index: %w", err)
	}

	return &Store{dir: dir, db: db}, nil
}

// Put writes the table as a CSV file under a fresh id and records it in
// the index. filename is the name offered to the browser, not the name
// on disk.
func (s *Store) Put(ctx context.Context, filename string, table *domain.Table) (*Entry, error) {
	entry := &Entry{
		ID:        uuid.New().String(),
		Filename:  filename,
		Rows:      table.Len(),
		CreatedAt: time.Now().UTC(),
	}

	f, err := os.Create(s.path(entry.ID))
	if err != nil {
		return nil, fmt.Errorf("stage result file: %w", err)
	}
	if err := csvio.Write(f, table); err != nil {
		f.Close()
		os.Remove(s.path(entry.ID))
		return nil, fmt.Errorf("write result file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("write result file: %w", err)
	}

	query := `INSERT INTO results (id, filename, row_count, created_at) VALUES (?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, query, entry.ID, entry.Filename, entry.Rows, entry.CreatedAt); err != nil {
		os.Remove(s.path(entry.ID))
		return nil, fmt.Errorf("index result file: %w", err)
	}

	return entry, nil
}

// Open returns the index entry and an open reader for a staged file.
func (s *Store) Open(ctx context.Context, id string) (*Entry, io.ReadCloser, error) {
	query := `SELECT id, filename, row_count, created_at FROM results WHERE id = ?`

	var entry Entry
	err := s.db.QueryRowContext(ctx, query, id).
		Scan(&entry.ID, &entry.Filename, &entry.Rows, &entry.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("look up result: %w", err)
	}

	f, err := os.Open(s.path(entry.ID))
	if os.IsNotExist(err) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open result file: %w", err)
	}
	return &entry, f, nil
}

// Recent lists staged results, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	query := `SELECT id, filename, row_count, created_at FROM results
		ORDER BY created_at DESC LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		if err := rows.Scan(&entry.ID, &entry.Filename, &entry.Rows, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Sweep removes staged files older than maxAge along with their index
// rows. Called once at startup so the scratch area does not grow without
// bound across restarts.
func (s *Store) Sweep(ctx context.Context, maxAge time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-maxAge)

	rows, err := s.db.QueryContext(ctx, `SELECT id FROM results WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("list stale results: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scan stale result: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}

	for _, id := range ids {
		if err := os.Remove(s.path(id)); err != nil && !os.IsNotExist(err) {
			log.WithError(err).WithField("id", id).Warn("sweep: remove staged file")
		}
	}
	if len(ids) > 0 {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM results WHERE created_at < ?`, cutoff); err != nil {
			return 0, fmt.Errorf("delete stale results: %w", err)
		}
	}
	return len(ids), nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+".csv")
}
