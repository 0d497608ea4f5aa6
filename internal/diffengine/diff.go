// Package diffengine classifies the paths of two snapshots into added,
// removed, modified, and renamed sets. Classification is pure: same inputs,
// same result, in path-sorted order.
package diffengine

import (
	"fmt"
	"sort"

	"github.com/repolens/repolens/pkg/types"
)

// Diff compares old and new snapshots. Renames are claimed only when exactly
// one removed path and exactly one added path share a digest; any ambiguity
// leaves the entries as plain adds and removes.
func Diff(oldSnap, newSnap *types.Snapshot) (*types.DiffResult, error) {
	oldByPath, err := oldSnap.ByPath()
	if err != nil {
		return nil, fmt.Errorf("old snapshot: %w", err)
	}
	newByPath, err := newSnap.ByPath()
	if err != nil {
		return nil, fmt.Errorf("new snapshot: %w", err)
	}

	res := &types.DiffResult{}
	res.Summary.TotalOld = len(oldByPath)
	res.Summary.TotalNew = len(newByPath)

	var added []*types.Record
	var removed []*types.Record

	for path, newRec := range newByPath {
		oldRec, ok := oldByPath[path]
		if !ok {
			added = append(added, newRec)
			continue
		}
		if entry := compareRecords(oldRec, newRec); entry != nil {
			res.Modified = append(res.Modified, *entry)
		} else {
			res.Summary.Unchanged++
		}
	}
	for path, oldRec := range oldByPath {
		if _, ok := newByPath[path]; !ok {
			removed = append(removed, oldRec)
		}
	}

	added, removed, renamed := matchExactRenames(added, removed)
	res.Renamed = renamed

	for _, r := range added {
		res.Added = append(res.Added, pathEntry(r))
	}
	for _, r := range removed {
		res.Removed = append(res.Removed, pathEntry(r))
	}

	sort.Slice(res.Added, func(i, j int) bool { return res.Added[i].Path < res.Added[j].Path })
	sort.Slice(res.Removed, func(i, j int) bool { return res.Removed[i].Path < res.Removed[j].Path })
	sort.Slice(res.Modified, func(i, j int) bool { return res.Modified[i].Path < res.Modified[j].Path })
	sort.Slice(res.Renamed, func(i, j int) bool { return res.Renamed[i].OldPath < res.Renamed[j].OldPath })

	res.Summary.Added = len(res.Added)
	res.Summary.Removed = len(res.Removed)
	res.Summary.Modified = len(res.Modified)
	res.Summary.Renamed = len(res.Renamed)
	return res, nil
}

// compareRecords returns a ModifiedEntry when the path changed in content or
// in any tracked classification signal, or nil when it is unchanged. Mtime
// alone never counts as a change.
func compareRecords(oldRec, newRec *types.Record) *types.ModifiedEntry {
	entry := &types.ModifiedEntry{Path: newRec.Path}
	contentChanged := oldRec.Digest != newRec.Digest

	if contentChanged {
		entry.ChangedFields = append(entry.ChangedFields,
			types.FieldChange{Field: "digest", Before: oldRec.Digest, After: newRec.Digest})
		if oldRec.ByteSize != newRec.ByteSize {
			entry.ChangedFields = append(entry.ChangedFields,
				types.FieldChange{Field: "size_bytes", Before: oldRec.ByteSize, After: newRec.ByteSize})
		}
		if oldRec.TokenEstimate != newRec.TokenEstimate {
			entry.ChangedFields = append(entry.ChangedFields,
				types.FieldChange{Field: "token_estimate", Before: oldRec.TokenEstimate, After: newRec.TokenEstimate})
		}
	}
	if oldRec.Language != newRec.Language {
		entry.ChangedFields = append(entry.ChangedFields,
			types.FieldChange{Field: "language", Before: oldRec.Language, After: newRec.Language})
	}
	if oldRec.Role != newRec.Role {
		entry.ChangedFields = append(entry.ChangedFields,
			types.FieldChange{Field: "role", Before: oldRec.Role, After: newRec.Role})
	}
	if oldRec.LinesTotal != newRec.LinesTotal {
		entry.ChangedFields = append(entry.ChangedFields,
			types.FieldChange{Field: "lines_total", Before: oldRec.LinesTotal, After: newRec.LinesTotal})
	}
	if oldRec.LinesNonBlank != newRec.LinesNonBlank {
		entry.ChangedFields = append(entry.ChangedFields,
			types.FieldChange{Field: "lines_nonblank", Before: oldRec.LinesNonBlank, After: newRec.LinesNonBlank})
	}

	tagsAdded, tagsRemoved := tagDelta(oldRec.Tags, newRec.Tags)
	if len(tagsAdded) > 0 || len(tagsRemoved) > 0 {
		entry.TagsAdded = tagsAdded
		entry.TagsRemoved = tagsRemoved
		entry.ChangedFields = append(entry.ChangedFields,
			types.FieldChange{Field: "tags", Before: oldRec.Tags, After: newRec.Tags})
	}

	if len(entry.ChangedFields) == 0 {
		return nil
	}
	entry.ReclassifiedOnly = !contentChanged
	return entry
}

// matchExactRenames moves unambiguous digest matches from the added and
// removed sets into renames. A digest shared by multiple adds or multiple
// removes is ambiguous and matches nothing.
func matchExactRenames(added, removed []*types.Record) (restAdded, restRemoved []*types.Record, renamed []types.RenamedEntry) {
	addedByDigest := groupByDigest(added)
	removedByDigest := groupByDigest(removed)

	matched := map[string]bool{}
	for digest, adds := range addedByDigest {
		removes, ok := removedByDigest[digest]
		if !ok || len(adds) != 1 || len(removes) != 1 {
			continue
		}
		matched[digest] = true
		renamed = append(renamed, types.RenamedEntry{
			OldPath: removes[0].Path,
			NewPath: adds[0].Path,
			Digest:  digest,
		})
	}

	for _, r := range added {
		if !matched[r.Digest] {
			restAdded = append(restAdded, r)
		}
	}
	for _, r := range removed {
		if !matched[r.Digest] {
			restRemoved = append(restRemoved, r)
		}
	}
	return restAdded, restRemoved, renamed
}

func groupByDigest(records []*types.Record) map[string][]*types.Record {
	out := make(map[string][]*types.Record, len(records))
	for _, r := range records {
		out[r.Digest] = append(out[r.Digest], r)
	}
	return out
}

func tagDelta(oldTags, newTags []string) (added, removed []string) {
	oldSet := make(map[string]struct{}, len(oldTags))
	for _, t := range oldTags {
		oldSet[t] = struct{}{}
	}
	newSet := make(map[string]struct{}, len(newTags))
	for _, t := range newTags {
		newSet[t] = struct{}{}
	}
	for _, t := range newTags {
		if _, ok := oldSet[t]; !ok {
			added = append(added, t)
		}
	}
	for _, t := range oldTags {
		if _, ok := newSet[t]; !ok {
			removed = append(removed, t)
		}
	}
	sort.Strings(added)
	sort.Strings(removed)
	return added, removed
}

func pathEntry(r *types.Record) types.PathEntry {
	return types.PathEntry{
		Path:     r.Path,
		Digest:   r.Digest,
		ByteSize: r.ByteSize,
		Language: r.Language,
	}
}
