// Package storage keeps the run catalog: one row per scan and per diff, so
// history commands can answer "what ran, when, against what" without
// re-reading archived snapshots. Snapshot content itself lives in JSONL
// files; the catalog only points at them.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested run doesn't exist.
var ErrNotFound = errors.New("not found")

// ScanRun is one recorded scan.
type ScanRun struct {
	ID           string // ULID, sorts by creation time
	Root         string
	Label        string // archive label, empty for the current snapshot
	SnapshotPath string
	Files        int
	Tokens       int
	SkippedJSON  string // skip counts keyed by reason
	DurationMS   int64
	CreatedAt    time.Time
}

// DiffRun is one recorded diff between two snapshots.
type DiffRun struct {
	ID         string
	Root       string
	OldLabel   string
	NewLabel   string
	Added      int
	Removed    int
	Modified   int
	Renamed    int
	ReportPath string
	CreatedAt  time.Time
}

// Store records and lists runs.
type Store interface {
	RecordScan(ctx context.Context, run *ScanRun) error
	RecordDiff(ctx context.Context, run *DiffRun) error
	ListScans(ctx context.Context, root string, limit int) ([]ScanRun, error)
	ListDiffs(ctx context.Context, root string, limit int) ([]DiffRun, error)
	GetScan(ctx context.Context, id string) (*ScanRun, error)
	Close() error
}
