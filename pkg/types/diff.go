package types

// FieldChange describes one changed field on a modified path.
type FieldChange struct {
	Field  string `json:"field"`
	Before any    `json:"before"`
	After  any    `json:"after"`
}

// PathEntry is the minimal per-file payload used for added and removed
// classifications, keeping diff results lean.
type PathEntry struct {
	Path     string `json:"path"`
	Digest   string `json:"digest"`
	ByteSize int64  `json:"size_bytes"`
	Language string `json:"language"`
}

// ModifiedEntry describes a path present in both snapshots whose content
// digest or signal fields changed. ReclassifiedOnly is true when the digest
// is identical and only heuristic signals drifted (language, role, line
// counts, tag set), so consumers can separate edits from re-classification.
type ModifiedEntry struct {
	Path             string        `json:"path"`
	ChangedFields    []FieldChange `json:"changed_fields"`
	ReclassifiedOnly bool          `json:"reclassified_only,omitempty"`
	TagsAdded        []string      `json:"tags_added,omitempty"`
	TagsRemoved      []string      `json:"tags_removed,omitempty"`

	// Patch is an optional unified diff of the before/after snippets,
	// filled by the report writer, never by the diff engine itself.
	Patch string `json:"patch,omitempty"`
}

// RenamedEntry is an unambiguous one-to-one content match between a removed
// and an added path.
type RenamedEntry struct {
	OldPath string `json:"from"`
	NewPath string `json:"to"`
	Digest  string `json:"digest"`
}

// DiffSummary carries per-category counts for quick scanning.
type DiffSummary struct {
	TotalOld  int `json:"total_old"`
	TotalNew  int `json:"total_new"`
	Added     int `json:"added"`
	Removed   int `json:"removed"`
	Modified  int `json:"modified"`
	Renamed   int `json:"renamed"`
	Unchanged int `json:"unchanged"`
}

// DiffResult classifies every changed path between two snapshots. The four
// lists are disjoint and each is sorted by path, so diffing two diffs is
// itself a stable operation. Unchanged paths are omitted entirely.
type DiffResult struct {
	Summary  DiffSummary     `json:"summary"`
	Added    []PathEntry     `json:"added"`
	Removed  []PathEntry     `json:"removed"`
	Modified []ModifiedEntry `json:"modified"`
	Renamed  []RenamedEntry  `json:"renamed"`
}

// Empty reports whether the diff contains no entries in any category.
func (d *DiffResult) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 &&
		len(d.Modified) == 0 && len(d.Renamed) == 0
}
