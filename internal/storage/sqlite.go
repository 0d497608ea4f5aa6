package storage

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// SQLiteStore implements Store on a local SQLite file.
type SQLiteStore struct {
	db      *sql.DB
	entropy *ulid.MonotonicEntropy
}

// openDatabase opens the catalog file with the settings SQLite wants for a
// single-process tool.
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	// Single writer; SQLite contends on anything more.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return db, nil
}

// NewSQLiteStore opens (creating if needed) the catalog at dbPath and
// applies pending migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	return &SQLiteStore{
		db:      db,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// NewID mints a ULID; IDs sort by creation time.
func (s *SQLiteStore) NewID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

// RecordScan inserts one scan run. A missing ID or timestamp is filled in.
func (s *SQLiteStore) RecordScan(ctx context.Context, run *ScanRun) error {
	if run.ID == "" {
		run.ID = s.NewID()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	if run.SkippedJSON == "" {
		run.SkippedJSON = "{}"
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scan_runs (id, root, label, snapshot_path, files, tokens, skipped_json, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Root, run.Label, run.SnapshotPath,
		run.Files, run.Tokens, run.SkippedJSON, run.DurationMS, run.CreatedAt)
	if err != nil {
		return fmt.Errorf("record scan: %w", err)
	}
	return nil
}

// RecordDiff inserts one diff run.
func (s *SQLiteStore) RecordDiff(ctx context.Context, run *DiffRun) error {
	if run.ID == "" {
		run.ID = s.NewID()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO diff_runs (id, root, old_label, new_label, added, removed, modified, renamed, report_path, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Root, run.OldLabel, run.NewLabel,
		run.Added, run.Removed, run.Modified, run.Renamed, run.ReportPath, run.CreatedAt)
	if err != nil {
		return fmt.Errorf("record diff: %w", err)
	}
	return nil
}

// ListScans returns the most recent scan runs for root, newest first.
func (s *SQLiteStore) ListScans(ctx context.Context, root string, limit int) ([]ScanRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, root, label, snapshot_path, files, tokens, skipped_json, duration_ms, created_at
		FROM scan_runs WHERE root = ? ORDER BY created_at DESC, id DESC LIMIT ?`, root, limit)
	if err != nil {
		return nil, fmt.Errorf("list scans: %w", err)
	}
	defer rows.Close()

	var out []ScanRun
	for rows.Next() {
		var r ScanRun
		if err := rows.Scan(&r.ID, &r.Root, &r.Label, &r.SnapshotPath,
			&r.Files, &r.Tokens, &r.SkippedJSON, &r.DurationMS, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListDiffs returns the most recent diff runs for root, newest first.
func (s *SQLiteStore) ListDiffs(ctx context.Context, root string, limit int) ([]DiffRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, root, old_label, new_label, added, removed, modified, renamed, report_path, created_at
		FROM diff_runs WHERE root = ? ORDER BY created_at DESC, id DESC LIMIT ?`, root, limit)
	if err != nil {
		return nil, fmt.Errorf("list diffs: %w", err)
	}
	defer rows.Close()

	var out []DiffRun
	for rows.Next() {
		var r DiffRun
		if err := rows.Scan(&r.ID, &r.Root, &r.OldLabel, &r.NewLabel,
			&r.Added, &r.Removed, &r.Modified, &r.Renamed, &r.ReportPath, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("diff row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetScan fetches one scan run by ID.
func (s *SQLiteStore) GetScan(ctx context.Context, id string) (*ScanRun, error) {
	var r ScanRun
	err := s.db.QueryRowContext(ctx, `
		SELECT id, root, label, snapshot_path, files, tokens, skipped_json, duration_ms, created_at
		FROM scan_runs WHERE id = ?`, id).
		Scan(&r.ID, &r.Root, &r.Label, &r.SnapshotPath,
			&r.Files, &r.Tokens, &r.SkippedJSON, &r.DurationMS, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get scan: %w", err)
	}
	return &r, nil
}
