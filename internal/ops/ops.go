// Package ops ties the pipeline together: scan a root, persist the
// snapshot, archive and diff on rescan, pack bundles, render views, and
// record every run in the catalog. The CLI and the MCP server are both thin
// layers over these operations.
package ops

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/repolens/repolens/internal/chunker"
	"github.com/repolens/repolens/internal/diffengine"
	"github.com/repolens/repolens/internal/scanner"
	"github.com/repolens/repolens/internal/snapshot"
	"github.com/repolens/repolens/internal/storage"
	"github.com/repolens/repolens/internal/views"
	"github.com/repolens/repolens/internal/workspace"
	"github.com/repolens/repolens/pkg/types"
)

// DefaultTokenBudget is the bundle budget when the caller does not choose.
const DefaultTokenBudget = 8000

// ScanOutcome reports one completed scan.
type ScanOutcome struct {
	Snapshot     *types.Snapshot
	Stats        *scanner.Stats
	SnapshotPath string
	RunID        string
}

// RescanOutcome reports an archive-then-scan-then-diff cycle.
type RescanOutcome struct {
	Scan         *ScanOutcome
	ArchiveLabel string // empty on a first scan
	Diff         *types.DiffResult
	ReportPath   string
}

// PackOutcome reports written bundles.
type PackOutcome struct {
	Bundles     []*types.Bundle
	BundlePaths []string
}

// History pairs the recorded runs for one root.
type History struct {
	Scans []storage.ScanRun
	Diffs []storage.DiffRun
}

// openStore opens the run catalog for root, creating the workspace first.
func openStore(paths workspace.Paths) (*storage.SQLiteStore, error) {
	if err := paths.EnsureDirs(); err != nil {
		return nil, err
	}
	return storage.NewSQLiteStore(paths.Database)
}

// Scan inventories root, writes the current snapshot, and records the run.
func Scan(ctx context.Context, root string, opts scanner.Options) (*ScanOutcome, error) {
	paths := workspace.Resolve(root)
	store, err := openStore(paths)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	snap, stats, err := scanner.Scan(ctx, root, opts)
	if err != nil {
		return nil, err
	}
	if err := snapshot.Write(paths.SnapshotPath(), snap); err != nil {
		return nil, err
	}

	run := &storage.ScanRun{
		Root:         paths.Root,
		SnapshotPath: paths.SnapshotPath(),
		Files:        snap.Len(),
		Tokens:       snap.TokenTotal(),
		SkippedJSON:  skippedJSON(stats),
		DurationMS:   stats.Duration.Milliseconds(),
	}
	if err := store.RecordScan(ctx, run); err != nil {
		return nil, err
	}
	slog.Info("scan complete", "root", root, "files", snap.Len(),
		"tokens", snap.TokenTotal(), "duration", stats.Duration)

	return &ScanOutcome{
		Snapshot:     snap,
		Stats:        stats,
		SnapshotPath: paths.SnapshotPath(),
		RunID:        run.ID,
	}, nil
}

// Rescan archives the current snapshot, scans again, and diffs the two. On
// a first scan there is nothing to archive and the diff is nil.
func Rescan(ctx context.Context, root string, opts scanner.Options) (*RescanOutcome, error) {
	paths := workspace.Resolve(root)
	if err := paths.EnsureDirs(); err != nil {
		return nil, err
	}

	label := workspace.HistoryLabel(time.Now())
	archived, err := paths.ArchiveSnapshot(label)
	if err != nil {
		return nil, err
	}

	scanOut, err := Scan(ctx, root, opts)
	if err != nil {
		return nil, err
	}
	out := &RescanOutcome{Scan: scanOut}
	if archived == "" {
		return out, nil
	}
	out.ArchiveLabel = label

	oldSnap, _, err := snapshot.Read(archived)
	if err != nil {
		return nil, fmt.Errorf("read archived snapshot: %w", err)
	}
	res, err := diffengine.Diff(oldSnap, scanOut.Snapshot)
	if err != nil {
		return nil, err
	}
	if err := diffengine.AttachPatches(res, oldSnap, scanOut.Snapshot); err != nil {
		return nil, err
	}
	out.Diff = res

	reportPath := paths.DiffReportPath(label)
	report := &diffengine.Report{
		GeneratedAt: time.Now().UTC(),
		OldLabel:    label,
		NewLabel:    "current",
		Result:      *res,
	}
	if err := diffengine.WriteReport(reportPath, report); err != nil {
		return nil, err
	}
	out.ReportPath = reportPath

	store, err := openStore(paths)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	err = store.RecordDiff(ctx, &storage.DiffRun{
		Root:       paths.Root,
		OldLabel:   label,
		NewLabel:   "current",
		Added:      res.Summary.Added,
		Removed:    res.Summary.Removed,
		Modified:   res.Summary.Modified,
		Renamed:    res.Summary.Renamed,
		ReportPath: reportPath,
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DiffAgainst diffs an archived snapshot against the current one. An empty
// oldLabel picks the most recent archive.
func DiffAgainst(ctx context.Context, root, oldLabel string) (*types.DiffResult, string, error) {
	paths := workspace.Resolve(root)

	if oldLabel == "" {
		var err error
		oldLabel, err = latestArchiveLabel(paths)
		if err != nil {
			return nil, "", err
		}
	}
	oldSnap, _, err := snapshot.Read(paths.ArchivePath(oldLabel))
	if err != nil {
		return nil, "", err
	}
	newSnap, _, err := snapshot.Read(paths.SnapshotPath())
	if err != nil {
		return nil, "", err
	}

	res, err := diffengine.Diff(oldSnap, newSnap)
	if err != nil {
		return nil, "", err
	}
	if err := diffengine.AttachPatches(res, oldSnap, newSnap); err != nil {
		return nil, "", err
	}
	return res, oldLabel, nil
}

// PackCurrent packs the current snapshot into bundles under the workspace
// chunks directory.
func PackCurrent(ctx context.Context, root string, tokenBudget int) (*PackOutcome, error) {
	paths := workspace.Resolve(root)
	if tokenBudget <= 0 {
		tokenBudget = DefaultTokenBudget
	}

	snap, _, err := snapshot.Read(paths.SnapshotPath())
	if err != nil {
		return nil, err
	}
	bundles := chunker.Pack(snap, tokenBudget)
	written, err := chunker.WriteBundles(paths.Chunks, bundles)
	if err != nil {
		return nil, err
	}
	slog.Info("pack complete", "root", root, "bundles", len(bundles), "budget", tokenBudget)
	return &PackOutcome{Bundles: bundles, BundlePaths: written}, nil
}

// WriteViews renders the tree, catalog, and declarations views for the
// current snapshot and returns the written paths.
func WriteViews(root string) ([]string, error) {
	paths := workspace.Resolve(root)
	if err := paths.EnsureDirs(); err != nil {
		return nil, err
	}
	snap, _, err := snapshot.Read(paths.SnapshotPath())
	if err != nil {
		return nil, err
	}

	outputs := []struct {
		path    string
		content string
	}{
		{paths.TreePath(), views.Tree(snap)},
		{paths.MapPath(), views.Catalog(snap)},
		{paths.DeclsPath(), views.Declarations(root, snap)},
	}
	var written []string
	for _, o := range outputs {
		if err := writeText(o.path, o.content); err != nil {
			return nil, err
		}
		written = append(written, o.path)
	}
	return written, nil
}

// GetHistory lists recorded runs for root.
func GetHistory(ctx context.Context, root string, limit int) (*History, error) {
	paths := workspace.Resolve(root)
	store, err := openStore(paths)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	scans, err := store.ListScans(ctx, paths.Root, limit)
	if err != nil {
		return nil, err
	}
	diffs, err := store.ListDiffs(ctx, paths.Root, limit)
	if err != nil {
		return nil, err
	}
	return &History{Scans: scans, Diffs: diffs}, nil
}

func skippedJSON(stats *scanner.Stats) string {
	if len(stats.Skipped) == 0 {
		return "{}"
	}
	data, err := json.Marshal(stats.Skipped)
	if err != nil {
		return "{}"
	}
	return string(data)
}
