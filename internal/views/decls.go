package views

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/repolens/repolens/internal/decl"
	"github.com/repolens/repolens/pkg/types"
)

// declsFileCap bounds how many Go files the declarations view re-reads.
const declsFileCap = 500

// Declarations renders exported Go declarations per file. Snapshots hold
// bounded snippets, so this view re-reads sources under root; files that
// vanished since the scan are skipped.
func Declarations(root string, snap *types.Snapshot) string {
	var sb strings.Builder
	sb.WriteString("# Go declarations\n\n")

	var goFiles []*types.Record
	for i := range snap.Records {
		if snap.Records[i].Language == "go" {
			goFiles = append(goFiles, &snap.Records[i])
		}
	}
	sort.Slice(goFiles, func(i, j int) bool { return goFiles[i].Path < goFiles[j].Path })
	if len(goFiles) > declsFileCap {
		goFiles = goFiles[:declsFileCap]
	}

	for _, rec := range goFiles {
		src, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rec.Path)))
		if err != nil {
			continue
		}
		decls, err := decl.Extract(rec.Path, src)
		if err != nil {
			continue
		}

		exported := make([]decl.Decl, 0, len(decls.Decls))
		for _, d := range decls.Decls {
			if d.Exported {
				exported = append(exported, d)
			}
		}
		if len(exported) == 0 {
			continue
		}

		fmt.Fprintf(&sb, "## `%s` (package %s)\n\n", rec.Path, decls.Package)
		for _, d := range exported {
			if d.Doc != "" {
				fmt.Fprintf(&sb, "- `%s` L%d: %s\n", d.Signature, d.Line, d.Doc)
			} else {
				fmt.Fprintf(&sb, "- `%s` L%d\n", d.Signature, d.Line)
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
