package types

import (
	"sort"
	"strings"
)

const (
	// CurrentSchemaVersion is written into every serialized Record.
	// Older snapshot lines carry a smaller (or missing) version and are
	// upgraded with defaults on read.
	CurrentSchemaVersion = 2

	// LanguageUnknown is the label for files whose language could not be
	// detected from extension or shebang.
	LanguageUnknown = "unknown"

	// RootDir is the topLevelDir sentinel for files living at the
	// repository root.
	RootDir = "."

	// tokensPerChar is the heuristic for estimating tokens (chars/4),
	// rounded up so downstream budgets stay conservative.
	tokensPerChar = 4

	// MinTokenEstimate is the floor applied to every Record, including
	// records for empty files.
	MinTokenEstimate = 1
)

// Record is the per-file fact sheet produced by the scanner. One Record per
// discovered file; the atomic unit consumed by the diff engine, the chunk
// packer, and the render views.
type Record struct {
	SchemaVersion int      `json:"v"`
	Path          string   `json:"path"`
	Language      string   `json:"language"`
	Digest        string   `json:"digest"`
	ByteSize      int64    `json:"size_bytes"`
	LastModified  int64    `json:"mtime"`
	LinesTotal    int      `json:"lines_total"`
	LinesNonBlank int      `json:"lines_nonblank"`
	Snippet       string   `json:"snippet"`
	Summary       string   `json:"summary,omitempty"`
	TokenEstimate int      `json:"token_estimate"`
	Tags          []string `json:"tags,omitempty"`
	TopDir        string   `json:"top_dir"`
	Noise         bool     `json:"noise,omitempty"`

	// Advisory enrichment. Never required for diff or packing correctness.
	Role    string   `json:"role,omitempty"`
	Module  string   `json:"module,omitempty"`
	Imports []string `json:"imports,omitempty"`
	Exports []string `json:"exports,omitempty"`
}

// Content returns the text the chunk packer places into bundles.
func (r *Record) Content() string {
	return r.Snippet
}

// TagSet returns the record's tags as a set for order-insensitive comparison.
func (r *Record) TagSet() map[string]struct{} {
	set := make(map[string]struct{}, len(r.Tags))
	for _, t := range r.Tags {
		set[t] = struct{}{}
	}
	return set
}

// ApplyDefaults upgrades a Record decoded from an older snapshot line.
// Missing fields default to empty/zero/false; the few fields with non-zero
// defaults are normalized here so every consumer sees a well-formed Record.
func (r *Record) ApplyDefaults() {
	if r.Language == "" {
		r.Language = LanguageUnknown
	}
	if r.TopDir == "" {
		r.TopDir = TopLevelDir(r.Path)
	}
	if r.TokenEstimate < MinTokenEstimate {
		r.TokenEstimate = EstimateTokens(r.Snippet)
	}
	if r.SchemaVersion == 0 || r.SchemaVersion > CurrentSchemaVersion {
		r.SchemaVersion = CurrentSchemaVersion
	}
}

// EstimateTokens is the cheap length-based token approximation used for
// bundle budgets: ceil(len/4) with a floor of MinTokenEstimate. The ceiling
// biases the estimate slightly high on purpose.
func EstimateTokens(s string) int {
	est := (len(s) + tokensPerChar - 1) / tokensPerChar
	if est < MinTokenEstimate {
		est = MinTokenEstimate
	}
	return est
}

// TopLevelDir returns the first path segment of a forward-slash relative
// path, or RootDir for root-level files.
func TopLevelDir(path string) string {
	if i := strings.IndexByte(path, '/'); i > 0 {
		return path[:i]
	}
	return RootDir
}

// Snapshot is an ordered, immutable sequence of Records representing one
// scan of a repository. Snapshots are produced whole by the scanner and only
// ever read afterwards, never patched in place.
type Snapshot struct {
	Records []Record
}

// Len returns the number of records.
func (s *Snapshot) Len() int { return len(s.Records) }

// Sort orders records lexicographically by path. The scanner sorts before
// serializing so re-scans of an unchanged tree are byte-identical modulo
// timestamps, regardless of filesystem enumeration order.
func (s *Snapshot) Sort() {
	sort.Slice(s.Records, func(i, j int) bool {
		return s.Records[i].Path < s.Records[j].Path
	})
}

// ByPath indexes records by path. A duplicate path is a producer bug and is
// surfaced as an InvariantViolationError rather than silently deduplicated.
func (s *Snapshot) ByPath() (map[string]*Record, error) {
	m := make(map[string]*Record, len(s.Records))
	for i := range s.Records {
		r := &s.Records[i]
		if _, dup := m[r.Path]; dup {
			return nil, &InvariantViolationError{Path: r.Path, Reason: "duplicate path in snapshot"}
		}
		m[r.Path] = r
	}
	return m, nil
}

// TokenTotal sums token estimates across all records.
func (s *Snapshot) TokenTotal() int {
	total := 0
	for i := range s.Records {
		total += s.Records[i].TokenEstimate
	}
	return total
}
