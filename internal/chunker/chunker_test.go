package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repolens/repolens/pkg/types"
)

func recWithSnippet(path, snip string) types.Record {
	return types.Record{
		SchemaVersion: types.CurrentSchemaVersion,
		Path:          path,
		Language:      "go",
		Digest:        "digest-" + path,
		ByteSize:      int64(len(snip)),
		Snippet:       snip,
		TokenEstimate: types.EstimateTokens(snip),
	}
}

func TestPackRespectsBudget(t *testing.T) {
	snap := &types.Snapshot{}
	for i := 0; i < 20; i++ {
		snap.Records = append(snap.Records,
			recWithSnippet(fmt.Sprintf("f%02d.go", i), strings.Repeat("line of code\n", 30)))
	}
	budget := 512
	bundles := Pack(snap, budget)
	require.NotEmpty(t, bundles)
	for _, b := range bundles {
		assert.LessOrEqual(t, b.TokenEstimate()+len(b.Parts)*partOverheadTokens, budget,
			"bundle %d over budget", b.Index)
	}
}

func TestPackBudgetClamped(t *testing.T) {
	snap := &types.Snapshot{Records: []types.Record{
		recWithSnippet("a.go", strings.Repeat("x", 2000)),
	}}
	// A hostile budget of 1 still terminates and produces parts sized for
	// the clamped floor.
	bundles := Pack(snap, 1)
	require.NotEmpty(t, bundles)
	for _, b := range bundles {
		for _, p := range b.Parts {
			assert.LessOrEqual(t, p.TokenEstimate, MinTokenBudget)
		}
	}
}

func TestPackPathOrderPreserved(t *testing.T) {
	snap := &types.Snapshot{Records: []types.Record{
		recWithSnippet("a.go", "aaa"),
		recWithSnippet("b.go", "bbb"),
		recWithSnippet("c.go", "ccc"),
	}}
	bundles := Pack(snap, 100000)
	require.Len(t, bundles, 1)
	var paths []string
	for _, p := range bundles[0].Parts {
		paths = append(paths, p.Path)
	}
	assert.Equal(t, []string{"a.go", "b.go", "c.go"}, paths)
}

func TestPackSplitRoundTrip(t *testing.T) {
	// A snippet far over budget is split; concatenating parts restores it.
	var sb strings.Builder
	for i := 0; i < 400; i++ {
		fmt.Fprintf(&sb, "func generated%04d() { return }\n", i)
	}
	original := sb.String()
	snap := &types.Snapshot{Records: []types.Record{recWithSnippet("big.go", original)}}

	bundles := Pack(snap, MinTokenBudget)
	var rebuilt strings.Builder
	total := 0
	for _, b := range bundles {
		for _, p := range b.Parts {
			require.Equal(t, "big.go", p.Path)
			assert.True(t, p.Split())
			rebuilt.WriteString(p.Content)
			total = p.Total
		}
	}
	assert.Equal(t, original, rebuilt.String())
	assert.Greater(t, total, 1)

	// Part indices are 1..Total in order.
	idx := 0
	for _, b := range bundles {
		for _, p := range b.Parts {
			idx++
			assert.Equal(t, idx, p.Index)
			assert.Equal(t, total, p.Total)
		}
	}
}

func TestPackSplitsAtLineBoundaries(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 500; i++ {
		fmt.Fprintf(&sb, "short line %d\n", i)
	}
	snap := &types.Snapshot{Records: []types.Record{recWithSnippet("lines.txt", sb.String())}}

	bundles := Pack(snap, MinTokenBudget)
	for _, b := range bundles {
		for _, p := range b.Parts {
			assert.True(t, strings.HasSuffix(p.Content, "\n"),
				"part %d does not end at a line boundary", p.Index)
		}
	}
}

func TestSplitContentRuneSafe(t *testing.T) {
	// One long line of multibyte runes with no newlines.
	s := strings.Repeat("héllo wörld ", 500)
	for _, seg := range splitContent(s, 100) {
		assert.True(t, len(seg) > 0)
		assert.True(t, strings.ToValidUTF8(seg, "") == seg, "segment split inside a rune")
	}
}

func TestSplitContentKeepsBacktickRunsWhole(t *testing.T) {
	s := strings.Repeat("a", 95) + "``````" + strings.Repeat("b", 200)
	joined := ""
	for _, seg := range splitContent(s, 100) {
		assert.False(t, strings.HasSuffix(seg, "`") && strings.HasPrefix(s[len(joined)+len(seg):], "`"),
			"segment boundary lands inside a backtick run")
		joined += seg
	}
	assert.Equal(t, s, joined)
}

func TestPackFileGuard(t *testing.T) {
	snap := &types.Snapshot{}
	for i := 0; i < MaxFilesPerBundle+30; i++ {
		snap.Records = append(snap.Records, recWithSnippet(fmt.Sprintf("tiny%03d.txt", i), "x"))
	}
	bundles := Pack(snap, 1_000_000)
	require.GreaterOrEqual(t, len(bundles), 2)
	for _, b := range bundles {
		assert.LessOrEqual(t, b.FileCount(), MaxFilesPerBundle)
	}
}

func TestPackEmptySnapshot(t *testing.T) {
	bundles := Pack(&types.Snapshot{}, 1024)
	assert.Empty(t, bundles)
}

func TestPackDeterministic(t *testing.T) {
	snap := &types.Snapshot{Records: []types.Record{
		recWithSnippet("a.go", strings.Repeat("alpha\n", 100)),
		recWithSnippet("b.go", strings.Repeat("beta\n", 100)),
	}}
	first := Pack(snap, 400)
	second := Pack(snap, 400)
	require.Equal(t, len(first), len(second))
	for i := range first {
		require.Equal(t, len(first[i].Parts), len(second[i].Parts))
		for j := range first[i].Parts {
			assert.Equal(t, first[i].Parts[j].Content, second[i].Parts[j].Content)
		}
	}
}
