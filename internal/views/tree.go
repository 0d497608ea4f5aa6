// Package views renders snapshots into human-oriented markdown: a directory
// tree, a catalog grouped by top-level directory, and a declarations listing
// for Go files. Views are derived output only; nothing reads them back.
package views

import (
	"fmt"
	"sort"
	"strings"

	"github.com/repolens/repolens/pkg/types"
)

// treeMaxDepth bounds how deep the tree renders before eliding.
const treeMaxDepth = 8

type treeNode struct {
	name     string
	children map[string]*treeNode
	files    []*types.Record
}

func newTreeNode(name string) *treeNode {
	return &treeNode{name: name, children: map[string]*treeNode{}}
}

// Tree renders the snapshot as an indented markdown directory tree with
// per-file language and size annotations.
func Tree(snap *types.Snapshot) string {
	root := newTreeNode(types.RootDir)
	for i := range snap.Records {
		rec := &snap.Records[i]
		node := root
		parts := strings.Split(rec.Path, "/")
		for depth, part := range parts[:len(parts)-1] {
			if depth >= treeMaxDepth {
				break
			}
			child, ok := node.children[part]
			if !ok {
				child = newTreeNode(part)
				node.children[part] = child
			}
			node = child
		}
		node.files = append(node.files, rec)
	}

	var sb strings.Builder
	sb.WriteString("# Repository tree\n\n")
	fmt.Fprintf(&sb, "%d files, ~%d tokens\n\n", snap.Len(), snap.TokenTotal())
	renderNode(&sb, root, 0)
	return sb.String()
}

func renderNode(sb *strings.Builder, node *treeNode, depth int) {
	indent := strings.Repeat("  ", depth)

	names := make([]string, 0, len(node.children))
	for name := range node.children {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(sb, "%s- **%s/**\n", indent, name)
		renderNode(sb, node.children[name], depth+1)
	}

	sort.Slice(node.files, func(i, j int) bool { return node.files[i].Path < node.files[j].Path })
	for _, rec := range node.files {
		base := rec.Path
		if i := strings.LastIndexByte(base, '/'); i >= 0 {
			base = base[i+1:]
		}
		marker := ""
		if rec.Noise {
			marker = " (noise)"
		}
		fmt.Fprintf(sb, "%s- %s [%s, %dB]%s\n", indent, base, rec.Language, rec.ByteSize, marker)
	}
}
