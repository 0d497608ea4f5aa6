// Package chunker packs snapshot records into token-budget-bounded bundles.
// Packing is deterministic: records go in path order, a record whose excerpt
// exceeds the per-part allotment is split at safe boundaries, and the split
// carries part indices so consumers can reassemble the excerpt exactly.
package chunker

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/repolens/repolens/pkg/types"
)

const (
	// MinTokenBudget is the floor any requested budget is clamped to.
	MinTokenBudget = 256
	// MaxFilesPerBundle guards against degenerate many-tiny-file bundles.
	MaxFilesPerBundle = 120
	// charsPerToken mirrors the estimator's character-to-token ratio.
	charsPerToken = 4
	// partOverheadTokens reserves room for the per-part markdown header
	// the writer adds around each excerpt.
	partOverheadTokens = 48
)

// Pack distributes the snapshot's records into bundles whose token estimates
// stay within budget. The budget is clamped to MinTokenBudget. The snapshot
// is not modified.
func Pack(snap *types.Snapshot, tokenBudget int) []*types.Bundle {
	if tokenBudget < MinTokenBudget {
		tokenBudget = MinTokenBudget
	}
	now := time.Now().UTC()

	var bundles []*types.Bundle
	current := &types.Bundle{Index: 1, GeneratedAt: now}
	used := 0

	flush := func() {
		if len(current.Parts) == 0 {
			return
		}
		bundles = append(bundles, current)
		current = &types.Bundle{Index: len(bundles) + 1, GeneratedAt: now}
		used = 0
	}

	for i := range snap.Records {
		rec := &snap.Records[i]
		for _, part := range partsFor(rec, tokenBudget) {
			cost := part.TokenEstimate + partOverheadTokens
			if len(current.Parts) > 0 &&
				(used+cost > tokenBudget || current.FileCount() >= MaxFilesPerBundle) {
				flush()
			}
			current.Parts = append(current.Parts, part)
			used += cost
		}
	}
	flush()
	return bundles
}

// partsFor turns one record into one or more parts. The single-part case is
// the common one; oversized excerpts are split so each part fits the
// per-part allotment on its own.
func partsFor(rec *types.Record, tokenBudget int) []types.Part {
	allotment := tokenBudget - partOverheadTokens
	base := types.Part{
		Path:         rec.Path,
		Language:     rec.Language,
		Digest:       rec.Digest,
		ByteSize:     rec.ByteSize,
		LastModified: rec.LastModified,
		Summary:      rec.Summary,
	}

	content := rec.Content()
	if types.EstimateTokens(content) <= allotment {
		p := base
		p.Content = content
		p.Index = 1
		p.Total = 1
		p.TokenEstimate = types.EstimateTokens(content)
		return []types.Part{p}
	}

	segments := splitContent(content, allotment*charsPerToken)
	parts := make([]types.Part, 0, len(segments))
	for i, seg := range segments {
		p := base
		p.Content = seg
		p.Index = i + 1
		p.Total = len(segments)
		p.TokenEstimate = types.EstimateTokens(seg)
		parts = append(parts, p)
	}
	return parts
}

// splitContent cuts content into segments of at most maxChars bytes each,
// preferring line boundaries, then rune boundaries, and never cutting inside
// a backtick run. Concatenating the segments reproduces content exactly.
func splitContent(content string, maxChars int) []string {
	if maxChars < charsPerToken {
		maxChars = charsPerToken
	}
	var segments []string
	rest := content
	for len(rest) > maxChars {
		cut := cutPoint(rest, maxChars)
		segments = append(segments, rest[:cut])
		rest = rest[cut:]
	}
	if rest != "" || len(segments) == 0 {
		segments = append(segments, rest)
	}
	return segments
}

// cutPoint picks a split offset in (0, maxChars] for s, where len(s) is
// known to exceed maxChars.
func cutPoint(s string, maxChars int) int {
	// Last newline within the window keeps lines whole.
	if i := strings.LastIndexByte(s[:maxChars], '\n'); i > 0 {
		return i + 1
	}
	// One very long line: back off to a rune boundary.
	cut := maxChars
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	// Never split a backtick run; a broken run would corrupt the fence
	// math in the bundle writer.
	for cut > 1 && s[cut-1] == '`' && s[cut] == '`' {
		cut--
	}
	if cut <= 0 {
		cut = maxChars
	}
	return cut
}
