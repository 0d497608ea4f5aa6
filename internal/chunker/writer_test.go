package chunker

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repolens/repolens/pkg/types"
)

func TestWriteBundles(t *testing.T) {
	snap := &types.Snapshot{Records: []types.Record{
		recWithSnippet("a.go", "package a\n"),
		recWithSnippet("b.md", "# Title\n"),
	}}
	snap.Records[0].Summary = "Library package a."
	bundles := Pack(snap, 4096)
	require.Len(t, bundles, 1)
	bundles[0].GeneratedAt = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	dir := t.TempDir()
	paths, err := WriteBundles(dir, bundles)
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, filepath.Join(dir, "paste_1.md"), paths[0])

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "# Bundle 1")
	assert.Contains(t, out, "- Generated: 2026-01-02T03:04:05Z")
	assert.Contains(t, out, "- Files: 2")
	assert.Contains(t, out, "## `a.go` [go]")
	assert.Contains(t, out, "**Summary:** Library package a.")
	assert.Contains(t, out, "```go\npackage a\n```")
}

func TestWritePartMarksSplit(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 500; i++ {
		sb.WriteString("some reasonably long generated line\n")
	}
	snap := &types.Snapshot{Records: []types.Record{recWithSnippet("big.go", sb.String())}}
	bundles := Pack(snap, MinTokenBudget)
	require.NotEmpty(t, bundles)

	dir := t.TempDir()
	paths, err := WriteBundles(dir, bundles)
	require.NoError(t, err)

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "(part 1/")
}

func TestFenceOutgrowsEmbeddedFences(t *testing.T) {
	content := "docs\n````\ninner fence\n````\n"
	snap := &types.Snapshot{Records: []types.Record{recWithSnippet("doc.md", content)}}
	snap.Records[0].Language = "markdown"
	bundles := Pack(snap, 4096)

	dir := t.TempDir()
	paths, err := WriteBundles(dir, bundles)
	require.NoError(t, err)

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "`````markdown\n")
	assert.Contains(t, string(data), "\n`````\n")
}

func TestFenceFor(t *testing.T) {
	assert.Equal(t, "```", fenceFor("no backticks"))
	assert.Equal(t, "```", fenceFor("inline `code` only"))
	assert.Equal(t, "````", fenceFor("```\nfence\n```"))
	assert.Equal(t, strings.Repeat("`", 7), fenceFor(strings.Repeat("`", 6)))
}

func TestSanitizeContent(t *testing.T) {
	assert.Equal(t, "a\tb\nc", sanitizeContent("a\tb\nc"))
	assert.Equal(t, "abc", sanitizeContent("a\x00b\x07c"))
	assert.Equal(t, "héllo", sanitizeContent("héllo"))
}
