package chunker

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/repolens/repolens/pkg/types"
)

// minFenceLen is the shortest code fence the writer emits.
const minFenceLen = 3

// WriteBundles renders each bundle as paste_N.md under dir and returns the
// written paths in order.
func WriteBundles(dir string, bundles []*types.Bundle) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: %s", types.ErrUnwritableDestination, dir)
	}
	paths := make([]string, 0, len(bundles))
	for _, b := range bundles {
		path := filepath.Join(dir, fmt.Sprintf("paste_%d.md", b.Index))
		if err := writeBundle(path, b); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeBundle(path string, b *types.Bundle) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %s", types.ErrUnwritableDestination, path)
	}

	w := bufio.NewWriter(f)
	writeHeader(w, b)
	for i := range b.Parts {
		writePart(w, &b.Parts[i])
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("flush bundle: %w", err)
	}
	return f.Close()
}

func writeHeader(w *bufio.Writer, b *types.Bundle) {
	fmt.Fprintf(w, "# Bundle %d\n\n", b.Index)
	fmt.Fprintf(w, "- Generated: %s\n", b.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "- Files: %d\n", b.FileCount())
	fmt.Fprintf(w, "- ~Tokens: %d\n\n", b.TokenEstimate())
}

func writePart(w *bufio.Writer, p *types.Part) {
	if p.Split() {
		fmt.Fprintf(w, "## `%s` [%s] (part %d/%d)\n\n", p.Path, p.Language, p.Index, p.Total)
	} else {
		fmt.Fprintf(w, "## `%s` [%s]\n\n", p.Path, p.Language)
	}
	fmt.Fprintf(w, "- digest: %s\n", p.Digest)
	fmt.Fprintf(w, "- size: %d bytes\n", p.ByteSize)
	fmt.Fprintf(w, "- mtime: %d\n\n", p.LastModified)
	if p.Summary != "" {
		fmt.Fprintf(w, "**Summary:** %s\n\n", p.Summary)
	}

	fence := fenceFor(p.Content)
	fmt.Fprintf(w, "%s%s\n", fence, fenceLabel(p.Language))
	body := sanitizeContent(p.Content)
	w.WriteString(body)
	if body != "" && !strings.HasSuffix(body, "\n") {
		w.WriteByte('\n')
	}
	fmt.Fprintf(w, "%s\n\n", fence)
}

// fenceFor returns a backtick fence strictly longer than the longest
// backtick run in content, so embedded fences cannot terminate ours.
func fenceFor(content string) string {
	longest := 0
	run := 0
	for i := 0; i < len(content); i++ {
		if content[i] == '`' {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}
	n := longest + 1
	if n < minFenceLen {
		n = minFenceLen
	}
	return strings.Repeat("`", n)
}

// fenceLabel maps internal language labels onto fenced-code info strings.
func fenceLabel(lang string) string {
	switch lang {
	case types.LanguageUnknown, "", "text":
		return ""
	case "ts":
		return "typescript"
	case "js":
		return "javascript"
	default:
		return lang
	}
}

// sanitizeContent strips control characters that would corrupt a markdown
// document, keeping tabs and newlines.
func sanitizeContent(s string) string {
	if !hasControl(s) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\n' || r == '\t' || r >= 0x20 && r != 0x7f {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func hasControl(s string) bool {
	for _, r := range s {
		if r != '\n' && r != '\t' && (r < 0x20 || r == 0x7f) {
			return true
		}
	}
	return false
}
