// Package scanner walks a repository root and produces the canonical record
// sequence for one snapshot. Discovery is a single sequential walk; file
// reading, fingerprinting, and enrichment fan out across a bounded worker
// pool and the results are re-sorted by path so output order never depends
// on scheduling.
package scanner

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/repolens/repolens/internal/fingerprint"
	"github.com/repolens/repolens/internal/snippet"
	"github.com/repolens/repolens/internal/summary"
	"github.com/repolens/repolens/pkg/types"
)

const (
	// DefaultMaxFileBytes caps how large a file may be and still be
	// inventoried with content.
	DefaultMaxFileBytes = 512_000
	// sniffBytes is the window inspected for NUL bytes when deciding
	// whether a file is binary.
	sniffBytes = 4096
)

// Options configures one scan.
type Options struct {
	MaxFileBytes   int64 // content cap per file (default DefaultMaxFileBytes)
	FollowSymlinks bool  // descend into symlinked files/dirs (default off)
	Workers        int   // worker pool size (default runtime.NumCPU())
	SkipEnrichment bool  // omit snippet/summary/tags, keep identity fields
}

// Stats reports what a scan visited and why entries were left out.
type Stats struct {
	FilesScanned int
	Skipped      map[types.SkipReason]int
	Duration     time.Duration
}

func newStats() *Stats {
	return &Stats{Skipped: map[types.SkipReason]int{}}
}

type candidate struct {
	abs string
	rel string
}

// Scan inventories root and returns a path-sorted snapshot. The same tree
// always yields the same snapshot apart from mtimes.
func Scan(ctx context.Context, root string, opts Options) (*types.Snapshot, *Stats, error) {
	start := time.Now()

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve root: %w", err)
	}
	info, err := os.Stat(absRoot)
	if err != nil || !info.IsDir() {
		return nil, nil, fmt.Errorf("%w: %s", types.ErrRootNotFound, root)
	}

	if opts.MaxFileBytes <= 0 {
		opts.MaxFileBytes = DefaultMaxFileBytes
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}

	stats := newStats()
	ignores := loadIgnoreSet(absRoot)

	candidates, err := discover(absRoot, opts, ignores, stats)
	if err != nil {
		return nil, nil, fmt.Errorf("discover files: %w", err)
	}

	records, err := process(ctx, candidates, opts, stats)
	if err != nil {
		return nil, nil, err
	}

	snap := &types.Snapshot{Records: records}
	snap.Sort()
	if _, err := snap.ByPath(); err != nil {
		return nil, nil, err
	}

	stats.FilesScanned = len(records)
	stats.Duration = time.Since(start)
	return snap, stats, nil
}

// discover walks the tree sequentially and collects candidate files. It
// applies the deny list and ignore rules but does not read file contents.
func discover(root string, opts Options, ignores *ignoreSet, stats *Stats) ([]candidate, error) {
	var out []candidate
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			slog.Warn("walk error, skipping entry", "path", path, "error", err)
			stats.Skipped[types.SkipUnreadable]++
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		rel, rerr := filepath.Rel(root, path)
		if rerr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}

		if d.IsDir() {
			if _, deny := denyDirs[strings.ToLower(d.Name())]; deny {
				return filepath.SkipDir
			}
			if !opts.FollowSymlinks && d.Type()&fs.ModeSymlink != 0 {
				return filepath.SkipDir
			}
			if ignores.Match(rel, true) {
				stats.Skipped[types.SkipIgnored]++
				return filepath.SkipDir
			}
			return nil
		}

		if !opts.FollowSymlinks && d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		if ignores.Match(rel, false) {
			stats.Skipped[types.SkipIgnored]++
			return nil
		}
		out = append(out, candidate{abs: path, rel: rel})
		return nil
	})
	return out, err
}

// process fans candidates out over the worker pool and re-sorts results.
func process(ctx context.Context, candidates []candidate, opts Options, stats *Stats) ([]types.Record, error) {
	var (
		mu      sync.Mutex
		records = make([]types.Record, 0, len(candidates))
	)

	g, gctx := errgroup.WithContext(ctx)
	semaphore := make(chan struct{}, opts.Workers)

	for _, c := range candidates {
		g.Go(func() error {
			select {
			case semaphore <- struct{}{}:
				defer func() { <-semaphore }()
			case <-gctx.Done():
				return gctx.Err()
			}

			rec, skip, err := buildRecord(c, opts)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				slog.Warn("unreadable file, skipping", "path", c.rel, "error", err)
				stats.Skipped[types.SkipUnreadable]++
				return nil
			}
			if skip != "" {
				stats.Skipped[skip]++
				return nil
			}
			records = append(records, *rec)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Path < records[j].Path })
	return records, nil
}

// buildRecord reads one candidate and produces its record, or a skip reason.
// Empty files are kept; the digest of zero bytes is still a digest.
func buildRecord(c candidate, opts Options) (*types.Record, types.SkipReason, error) {
	info, err := os.Stat(c.abs)
	if err != nil {
		return nil, "", err
	}
	if !info.Mode().IsRegular() {
		return nil, types.SkipUnreadable, nil
	}
	if info.Size() > opts.MaxFileBytes {
		return nil, types.SkipOversize, nil
	}

	data, err := os.ReadFile(c.abs)
	if err != nil {
		return nil, "", err
	}
	if isBinary(data) {
		return nil, types.SkipBinary, nil
	}

	content := string(data)
	lang := DetectLanguage(c.rel, headOf(data, sniffBytes))

	rec := types.Record{
		SchemaVersion: types.CurrentSchemaVersion,
		Path:          c.rel,
		Language:      lang,
		Digest:        fingerprint.Digest(data),
		ByteSize:      info.Size(),
		LastModified:  info.ModTime().Unix(),
		LinesTotal:    countLines(content),
		LinesNonBlank: countNonBlank(content),
		TopDir:        types.TopLevelDir(c.rel),
		Noise:         IsNoisePath(c.rel),
	}

	if !opts.SkipEnrichment {
		rec.Snippet = snippet.Extract(content, lang)
		sum := summary.Summarize(c.rel, rec.Snippet, lang)
		rec.Summary = sum.Text
		rec.Role = sum.Role
		rec.Module = sum.Module
		rec.Imports = sum.Imports
		rec.Exports = sum.Exports
		rec.Tags = summary.InferTags(c.rel, lang)
	}
	rec.TokenEstimate = types.EstimateTokens(rec.Snippet)
	return &rec, "", nil
}

// isBinary sniffs the head window for NUL bytes.
func isBinary(data []byte) bool {
	return bytes.IndexByte(headOf(data, sniffBytes), 0) >= 0
}

func headOf(data []byte, n int) []byte {
	if len(data) > n {
		return data[:n]
	}
	return data
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	n := strings.Count(s, "\n")
	if !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}

func countNonBlank(s string) int {
	n := 0
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}
