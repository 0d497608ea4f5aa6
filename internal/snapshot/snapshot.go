// Package snapshot persists record sequences as JSON Lines: one record per
// line, path-sorted, written atomically via a temp file rename. Reads are
// tolerant: malformed lines are counted and skipped, never fatal.
package snapshot

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/repolens/repolens/pkg/types"
)

// maxLineBytes bounds a single JSONL line; a snapshot line holds a bounded
// snippet, so anything past this is corruption.
const maxLineBytes = 4 * 1024 * 1024

// ReadStats reports what a tolerant read encountered.
type ReadStats struct {
	RecordsRead  int
	LinesSkipped int
}

// Write serializes the snapshot to path. Records are sorted first so the
// file is canonical for its content, and the write goes through a temp file
// in the destination directory followed by a rename.
func Write(path string, snap *types.Snapshot) error {
	snap.Sort()
	if _, err := snap.ByPath(); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: %s", types.ErrUnwritableDestination, dir)
	}

	tmp, err := os.CreateTemp(dir, ".snapshot-*.jsonl.tmp")
	if err != nil {
		return fmt.Errorf("%w: %s", types.ErrUnwritableDestination, dir)
	}
	tmpName := tmp.Name()
	defer func() {
		tmp.Close()
		os.Remove(tmpName)
	}()

	w := bufio.NewWriter(tmp)
	enc := json.NewEncoder(w)
	for i := range snap.Records {
		if err := enc.Encode(&snap.Records[i]); err != nil {
			return fmt.Errorf("encode record %s: %w", snap.Records[i].Path, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("%w: %s", types.ErrUnwritableDestination, path)
	}
	return nil
}

// Read loads a snapshot from path. Lines that fail to decode are skipped and
// counted; decoded records get version defaults applied and the result is
// re-sorted in case the file was hand-edited.
func Read(path string) (*types.Snapshot, *ReadStats, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, fmt.Errorf("%w: %s", types.ErrSnapshotNotFound, path)
		}
		return nil, nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	snap, stats, err := Decode(f)
	if err != nil {
		return nil, nil, fmt.Errorf("read snapshot %s: %w", path, err)
	}
	if stats.LinesSkipped > 0 {
		slog.Warn("snapshot contained malformed lines",
			"path", path, "skipped", stats.LinesSkipped)
	}
	return snap, stats, nil
}

// Decode reads JSONL records from r. Exported separately so history tooling
// can decode archived snapshots without touching the filesystem layout.
func Decode(r io.Reader) (*types.Snapshot, *ReadStats, error) {
	stats := &ReadStats{}
	snap := &types.Snapshot{}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var rec types.Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil || rec.Path == "" {
			stats.LinesSkipped++
			continue
		}
		rec.ApplyDefaults()
		snap.Records = append(snap.Records, rec)
		stats.RecordsRead++
	}
	if err := sc.Err(); err != nil {
		return nil, nil, err
	}

	snap.Sort()
	if _, err := snap.ByPath(); err != nil {
		return nil, nil, err
	}
	return snap, stats, nil
}
