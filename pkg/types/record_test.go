package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 1, EstimateTokens(""), "empty content still gets the floor")
	assert.Equal(t, 1, EstimateTokens("ab"))
	assert.Equal(t, 1, EstimateTokens("abcd"))
	assert.Equal(t, 2, EstimateTokens("abcde"), "estimate rounds up")

	// Monotonic in content length.
	prev := 0
	for n := 0; n <= 64; n++ {
		cur := EstimateTokens(string(make([]byte, n)))
		assert.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
}

func TestTopLevelDir(t *testing.T) {
	assert.Equal(t, "src", TopLevelDir("src/scan.go"))
	assert.Equal(t, "internal", TopLevelDir("internal/a/b/c.go"))
	assert.Equal(t, RootDir, TopLevelDir("README.md"))
}

func TestApplyDefaults(t *testing.T) {
	r := Record{Path: "docs/guide.md", Snippet: "hello world"}
	r.ApplyDefaults()

	assert.Equal(t, LanguageUnknown, r.Language)
	assert.Equal(t, "docs", r.TopDir)
	assert.Equal(t, CurrentSchemaVersion, r.SchemaVersion)
	assert.GreaterOrEqual(t, r.TokenEstimate, MinTokenEstimate)
}

func TestSnapshotSortAndIndex(t *testing.T) {
	snap := &Snapshot{Records: []Record{
		{Path: "b.go"},
		{Path: "a.go"},
	}}
	snap.Sort()
	assert.Equal(t, "a.go", snap.Records[0].Path)

	byPath, err := snap.ByPath()
	require.NoError(t, err)
	assert.Len(t, byPath, 2)
}

func TestSnapshotByPathDuplicate(t *testing.T) {
	snap := &Snapshot{Records: []Record{
		{Path: "a.go"},
		{Path: "a.go"},
	}}
	_, err := snap.ByPath()
	require.Error(t, err)

	var iv *InvariantViolationError
	require.ErrorAs(t, err, &iv)
	assert.Equal(t, "a.go", iv.Path)
}

func TestBundleDerivedTotals(t *testing.T) {
	b := Bundle{Parts: []Part{
		{Path: "a.go", TokenEstimate: 10, Index: 1, Total: 2},
		{Path: "a.go", TokenEstimate: 8, Index: 2, Total: 2},
		{Path: "b.go", TokenEstimate: 5, Index: 1, Total: 1},
	}}
	assert.Equal(t, 2, b.FileCount())
	assert.Equal(t, 23, b.TokenEstimate())
	assert.True(t, b.Parts[0].Split())
	assert.False(t, b.Parts[2].Split())
}
