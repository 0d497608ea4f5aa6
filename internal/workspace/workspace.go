// Package workspace owns the .repolens/ directory layout inside a scanned
// repository: current snapshot, rendered views, chunk output, archived
// history, and the run catalog database.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/repolens/repolens/pkg/types"
)

// DirName is the workspace directory created under the scan root.
const DirName = ".repolens"

// Paths resolves every location the tool writes under one root.
type Paths struct {
	Root      string // repository root
	Workspace string // root/.repolens
	Indexes   string // current snapshot
	Chunks    string // packed bundles
	Trees     string // tree views
	Maps      string // catalog views
	HistFull  string // archived full snapshots
	HistDiffs string // archived diff reports
	Database  string // run catalog sqlite file
}

// Resolve builds the Paths for a repository root without touching the disk.
func Resolve(root string) Paths {
	ws := filepath.Join(root, DirName)
	return Paths{
		Root:      root,
		Workspace: ws,
		Indexes:   filepath.Join(ws, "indexes"),
		Chunks:    filepath.Join(ws, "chunks"),
		Trees:     filepath.Join(ws, "trees"),
		Maps:      filepath.Join(ws, "maps"),
		HistFull:  filepath.Join(ws, "history", "full"),
		HistDiffs: filepath.Join(ws, "history", "diffs"),
		Database:  filepath.Join(ws, "repolens.db"),
	}
}

// EnsureDirs creates the workspace tree.
func (p Paths) EnsureDirs() error {
	for _, dir := range []string{p.Indexes, p.Chunks, p.Trees, p.Maps, p.HistFull, p.HistDiffs} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("%w: %s", types.ErrUnwritableDestination, dir)
		}
	}
	return nil
}

// SnapshotPath is the current full snapshot location.
func (p Paths) SnapshotPath() string {
	return filepath.Join(p.Indexes, "full.jsonl")
}

// ArchivePath names an archived snapshot for a timestamped label.
func (p Paths) ArchivePath(label string) string {
	return filepath.Join(p.HistFull, label+".jsonl")
}

// DiffReportPath names an archived diff report.
func (p Paths) DiffReportPath(label string) string {
	return filepath.Join(p.HistDiffs, label+".json")
}

// TreePath and MapPath name the rendered views.
func (p Paths) TreePath() string { return filepath.Join(p.Trees, "tree.md") }
func (p Paths) MapPath() string  { return filepath.Join(p.Maps, "catalog.md") }

// DeclsPath names the Go declarations view.
func (p Paths) DeclsPath() string { return filepath.Join(p.Maps, "declarations.md") }

// HistoryLabel builds a sortable timestamp label for archives.
func HistoryLabel(t time.Time) string {
	return t.UTC().Format("20060102-150405")
}

// ArchiveSnapshot moves the current snapshot into history under label.
// Missing current snapshot is not an error; there is nothing to archive on
// a first run.
func (p Paths) ArchiveSnapshot(label string) (string, error) {
	src := p.SnapshotPath()
	if _, err := os.Stat(src); err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	dst := p.ArchivePath(label)
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", fmt.Errorf("%w: %s", types.ErrUnwritableDestination, filepath.Dir(dst))
	}
	if err := os.Rename(src, dst); err != nil {
		return "", fmt.Errorf("archive snapshot: %w", err)
	}
	return dst, nil
}
