package diffengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repolens/repolens/pkg/types"
)

func rec(path, digest string) types.Record {
	return types.Record{
		SchemaVersion: types.CurrentSchemaVersion,
		Path:          path,
		Language:      "go",
		Digest:        digest,
		ByteSize:      int64(len(digest)) * 10,
		LinesTotal:    5,
		LinesNonBlank: 4,
		TokenEstimate: 2,
	}
}

func snapOf(records ...types.Record) *types.Snapshot {
	return &types.Snapshot{Records: records}
}

func TestDiffSelfIsEmpty(t *testing.T) {
	snap := snapOf(rec("a.go", "d1"), rec("b.go", "d2"))
	res, err := Diff(snap, snap)
	require.NoError(t, err)
	assert.True(t, res.Empty())
	assert.Equal(t, 2, res.Summary.Unchanged)
	assert.Equal(t, 2, res.Summary.TotalOld)
	assert.Equal(t, 2, res.Summary.TotalNew)
}

func TestDiffAddedAndRemoved(t *testing.T) {
	oldSnap := snapOf(rec("gone.go", "d1"), rec("stay.go", "d2"))
	newSnap := snapOf(rec("stay.go", "d2"), rec("fresh.go", "d3"))

	res, err := Diff(oldSnap, newSnap)
	require.NoError(t, err)
	require.Len(t, res.Added, 1)
	require.Len(t, res.Removed, 1)
	assert.Equal(t, "fresh.go", res.Added[0].Path)
	assert.Equal(t, "gone.go", res.Removed[0].Path)
	assert.Empty(t, res.Renamed)
	assert.Equal(t, 1, res.Summary.Unchanged)
}

func TestDiffExactRename(t *testing.T) {
	// a.txt removed and b.txt added with the same digest is one rename.
	oldSnap := snapOf(rec("a.txt", "same"), rec("other.go", "x"))
	newSnap := snapOf(rec("b.txt", "same"), rec("other.go", "x"))

	res, err := Diff(oldSnap, newSnap)
	require.NoError(t, err)
	require.Len(t, res.Renamed, 1)
	assert.Equal(t, "a.txt", res.Renamed[0].OldPath)
	assert.Equal(t, "b.txt", res.Renamed[0].NewPath)
	assert.Equal(t, "same", res.Renamed[0].Digest)
	assert.Empty(t, res.Added)
	assert.Empty(t, res.Removed)
	assert.Equal(t, 1, res.Summary.Renamed)
}

func TestDiffAmbiguousRenameNotClaimed(t *testing.T) {
	// Two adds share the digest of one remove: no rename is guessed.
	oldSnap := snapOf(rec("orig.txt", "dup"))
	newSnap := snapOf(rec("copy1.txt", "dup"), rec("copy2.txt", "dup"))

	res, err := Diff(oldSnap, newSnap)
	require.NoError(t, err)
	assert.Empty(t, res.Renamed)
	assert.Len(t, res.Added, 2)
	assert.Len(t, res.Removed, 1)
}

func TestDiffModifiedDigest(t *testing.T) {
	oldRec := rec("x.go", "before")
	newRec := rec("x.go", "after")
	newRec.ByteSize = oldRec.ByteSize + 7
	newRec.TokenEstimate = oldRec.TokenEstimate + 1

	res, err := Diff(snapOf(oldRec), snapOf(newRec))
	require.NoError(t, err)
	require.Len(t, res.Modified, 1)
	m := res.Modified[0]
	assert.Equal(t, "x.go", m.Path)
	assert.False(t, m.ReclassifiedOnly)

	fields := map[string]bool{}
	for _, fc := range m.ChangedFields {
		fields[fc.Field] = true
	}
	assert.True(t, fields["digest"])
	assert.True(t, fields["size_bytes"])
	assert.True(t, fields["token_estimate"])
}

func TestDiffReclassifiedOnly(t *testing.T) {
	// Same bytes, different heuristic labels: modified, flagged as
	// reclassification.
	oldRec := rec("x.py", "same")
	oldRec.Role = "lib"
	newRec := rec("x.py", "same")
	newRec.Role = "bin"

	res, err := Diff(snapOf(oldRec), snapOf(newRec))
	require.NoError(t, err)
	require.Len(t, res.Modified, 1)
	assert.True(t, res.Modified[0].ReclassifiedOnly)
	require.Len(t, res.Modified[0].ChangedFields, 1)
	assert.Equal(t, "role", res.Modified[0].ChangedFields[0].Field)
}

func TestDiffMtimeOnlyIsUnchanged(t *testing.T) {
	oldRec := rec("x.go", "same")
	oldRec.LastModified = 100
	newRec := rec("x.go", "same")
	newRec.LastModified = 200

	res, err := Diff(snapOf(oldRec), snapOf(newRec))
	require.NoError(t, err)
	assert.True(t, res.Empty())
	assert.Equal(t, 1, res.Summary.Unchanged)
}

func TestDiffTagDelta(t *testing.T) {
	oldRec := rec("x.go", "same")
	oldRec.Tags = []string{"dir:internal", "lang:go", "old"}
	newRec := rec("x.go", "same")
	newRec.Tags = []string{"dir:internal", "lang:go", "fresh"}

	res, err := Diff(snapOf(oldRec), snapOf(newRec))
	require.NoError(t, err)
	require.Len(t, res.Modified, 1)
	m := res.Modified[0]
	assert.Equal(t, []string{"fresh"}, m.TagsAdded)
	assert.Equal(t, []string{"old"}, m.TagsRemoved)
	assert.True(t, m.ReclassifiedOnly)
}

func TestDiffDuplicatePathRejected(t *testing.T) {
	bad := snapOf(rec("x.go", "d1"), rec("x.go", "d2"))
	good := snapOf(rec("x.go", "d1"))

	_, err := Diff(bad, good)
	var iv *types.InvariantViolationError
	require.ErrorAs(t, err, &iv)

	_, err = Diff(good, bad)
	require.ErrorAs(t, err, &iv)
}

func TestDiffOutputSorted(t *testing.T) {
	oldSnap := snapOf(rec("keep.go", "k"))
	newSnap := snapOf(rec("keep.go", "k"), rec("z.go", "dz"), rec("a.go", "da"), rec("m.go", "dm"))

	res, err := Diff(oldSnap, newSnap)
	require.NoError(t, err)
	require.Len(t, res.Added, 3)
	assert.Equal(t, "a.go", res.Added[0].Path)
	assert.Equal(t, "m.go", res.Added[1].Path)
	assert.Equal(t, "z.go", res.Added[2].Path)
}

func TestDiffRenameAndModifyTogether(t *testing.T) {
	oldSnap := snapOf(rec("moved_from.go", "stable"), rec("edited.go", "v1"))
	newSnap := snapOf(rec("moved_to.go", "stable"), rec("edited.go", "v2"))

	res, err := Diff(oldSnap, newSnap)
	require.NoError(t, err)
	require.Len(t, res.Renamed, 1)
	require.Len(t, res.Modified, 1)
	assert.Equal(t, "moved_from.go", res.Renamed[0].OldPath)
	assert.Equal(t, "edited.go", res.Modified[0].Path)
	assert.Empty(t, res.Added)
	assert.Empty(t, res.Removed)
}
