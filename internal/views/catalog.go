package views

import (
	"fmt"
	"sort"
	"strings"

	"github.com/repolens/repolens/pkg/types"
)

const (
	// catalogGroupCap limits files listed per top-level directory.
	catalogGroupCap = 25
	// catalogTagCap limits the tag rollup to the most frequent tags.
	catalogTagCap = 12
)

// Catalog renders a snapshot grouped by top-level directory with a tag
// frequency rollup. Noise files are counted but not listed.
func Catalog(snap *types.Snapshot) string {
	groups := map[string][]*types.Record{}
	tagCounts := map[string]int{}
	noise := 0

	for i := range snap.Records {
		rec := &snap.Records[i]
		groups[rec.TopDir] = append(groups[rec.TopDir], rec)
		for _, tag := range rec.Tags {
			tagCounts[tag]++
		}
		if rec.Noise {
			noise++
		}
	}

	var sb strings.Builder
	sb.WriteString("# Repository catalog\n\n")
	fmt.Fprintf(&sb, "%d files across %d top-level directories", snap.Len(), len(groups))
	if noise > 0 {
		fmt.Fprintf(&sb, " (%d noise)", noise)
	}
	sb.WriteString("\n\n")

	writeTagRollup(&sb, tagCounts)

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		recs := groups[name]
		fmt.Fprintf(&sb, "## %s (%d files)\n\n", name, len(recs))

		listed := 0
		hidden := 0
		for _, rec := range recs {
			if rec.Noise {
				hidden++
				continue
			}
			if listed >= catalogGroupCap {
				hidden++
				continue
			}
			line := fmt.Sprintf("- `%s` [%s]", rec.Path, rec.Language)
			if rec.Summary != "" {
				line += ": " + rec.Summary
			}
			sb.WriteString(line + "\n")
			listed++
		}
		if hidden > 0 {
			fmt.Fprintf(&sb, "- +%d more…\n", hidden)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func writeTagRollup(sb *strings.Builder, tagCounts map[string]int) {
	if len(tagCounts) == 0 {
		return
	}
	type tagCount struct {
		tag   string
		count int
	}
	rollup := make([]tagCount, 0, len(tagCounts))
	for tag, count := range tagCounts {
		rollup = append(rollup, tagCount{tag, count})
	}
	sort.Slice(rollup, func(i, j int) bool {
		if rollup[i].count != rollup[j].count {
			return rollup[i].count > rollup[j].count
		}
		return rollup[i].tag < rollup[j].tag
	})
	if len(rollup) > catalogTagCap {
		rollup = rollup[:catalogTagCap]
	}

	sb.WriteString("**Tags:** ")
	parts := make([]string, 0, len(rollup))
	for _, tc := range rollup {
		parts = append(parts, fmt.Sprintf("`%s` (%d)", tc.tag, tc.count))
	}
	sb.WriteString(strings.Join(parts, ", "))
	sb.WriteString("\n\n")
}
