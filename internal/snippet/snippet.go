// Package snippet extracts a compact, high-signal excerpt from file content.
// Strategy: capture a leading doc/comment block, then score remaining lines
// per language and keep the highest-signal ones in original order with a
// sliver of trailing context. Hard caps keep the excerpt bounded.
package snippet

import "strings"

const (
	// MaxScanBytes limits extraction to the head of the file.
	MaxScanBytes = 32 * 1024
	// maxScanLines caps line scanning within the head window.
	maxScanLines = 800
	// MaxKeepLines is the final snippet budget.
	MaxKeepLines = 60
	// maxInterestingSeen stops scoring early on very dense files.
	maxInterestingSeen = 400
	// contextAfter keeps a little context after each scored line.
	contextAfter = 1
)

// Extract returns a bounded excerpt of content for the given language label.
// The result is plain text, possibly truncated, safe to re-embed in fenced
// markdown by the bundle writer.
func Extract(content, lang string) string {
	head := content
	if len(head) > MaxScanBytes {
		head = head[:MaxScanBytes]
	}

	out := make([]string, 0, MaxKeepLines)
	if doc := leadingDocBlock(head, lang); len(doc) > 0 {
		pushLines(&out, doc)
		if len(out) >= MaxKeepLines {
			return strings.Join(out, "\n")
		}
	}

	lines := strings.Split(head, "\n")
	if len(lines) > maxScanLines {
		lines = lines[:maxScanLines]
	}

	type keptLine struct {
		idx  int
		text string
	}
	kept := make([]keptLine, 0, MaxKeepLines*2)
	seenInteresting := 0

	for i := 0; i < len(lines) && len(kept) < MaxKeepLines && seenInteresting < maxInterestingSeen; i++ {
		raw := lines[i]
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if scoreLine(line, lang) == 0 {
			continue
		}
		kept = append(kept, keptLine{idx: i, text: strings.TrimRight(raw, " \t\r")})
		for k := 1; k <= contextAfter; k++ {
			if i+k < len(lines) {
				ctx := strings.TrimRight(lines[i+k], " \t\r")
				if strings.TrimSpace(ctx) != "" {
					kept = append(kept, keptLine{idx: i + k, text: ctx})
				}
			}
		}
		seenInteresting++
	}

	// Nothing scored and no doc block: fall back to a clean head slice.
	if len(kept) == 0 && len(out) == 0 {
		n := len(lines)
		if n > 40 {
			n = 40
		}
		fallback := make([]string, 0, n)
		for _, l := range lines[:n] {
			fallback = append(fallback, strings.TrimRight(l, " \t\r"))
		}
		return strings.Join(fallback, "\n")
	}

	// Merge doc block and scored lines in original order with adjacent dedup.
	for _, kl := range kept {
		if len(out) >= MaxKeepLines {
			break
		}
		if len(out) > 0 && out[len(out)-1] == kl.text {
			continue
		}
		out = append(out, kl.text)
	}
	return strings.Join(out, "\n")
}

// scoreLine rates a trimmed line 0-9 for the given language. The language
// set is small and fixed, so a closed switch per label is all the dispatch
// this needs.
func scoreLine(l, lang string) int {
	ll := strings.ToLower(l)
	switch strings.ToLower(lang) {
	case "go":
		return scoreGo(l)
	case "rust":
		return scoreRust(l, ll)
	case "python":
		return scorePython(l, ll)
	case "typescript", "ts", "javascript", "js":
		return scoreJSTS(l)
	case "toml", "yaml", "yml", "json":
		return scoreConfig(l)
	case "markdown", "md":
		return scoreMarkdown(l)
	default:
		return scoreGeneric(l)
	}
}

func scoreGo(l string) int {
	switch {
	case strings.HasPrefix(l, "//"):
		return 7
	case strings.HasPrefix(l, "package "):
		return 5
	case strings.HasPrefix(l, "func "):
		return 6
	case strings.HasPrefix(l, "type "):
		return 6
	case strings.HasPrefix(l, "import "):
		return 3
	default:
		return 0
	}
}

func scoreRust(l, ll string) int {
	switch {
	case strings.HasPrefix(l, "///"), strings.HasPrefix(l, "//!"):
		return 9
	case strings.HasPrefix(l, "pub fn "), strings.HasPrefix(l, "pub struct "),
		strings.HasPrefix(l, "pub enum "), strings.HasPrefix(l, "pub trait "),
		strings.HasPrefix(l, "pub mod "):
		return 8
	case strings.HasPrefix(l, "pub use "):
		return 5
	case strings.HasPrefix(l, "fn "), strings.HasPrefix(l, "struct "),
		strings.HasPrefix(l, "enum "), strings.HasPrefix(l, "impl "),
		strings.HasPrefix(l, "type "):
		return 6
	case strings.HasPrefix(l, "#["):
		return 4
	case strings.HasPrefix(l, "use "), strings.HasPrefix(l, "extern crate"):
		return 3
	case strings.Contains(ll, "todo"), strings.Contains(ll, "fixme"):
		return 2
	default:
		return 0
	}
}

func scorePython(l, ll string) int {
	switch {
	case strings.HasPrefix(l, `"""`), strings.HasPrefix(l, "'''"),
		strings.HasPrefix(l, "#!"), strings.HasPrefix(l, "# "):
		return 9
	case strings.HasPrefix(l, "def "), strings.HasPrefix(l, "class "):
		return 8
	case strings.HasPrefix(ll, "if __name__ =="):
		return 7
	case strings.HasPrefix(l, "import "), strings.HasPrefix(l, "from "):
		return 3
	case strings.Contains(ll, "todo"), strings.Contains(ll, "fixme"):
		return 2
	default:
		return 0
	}
}

func scoreJSTS(l string) int {
	switch {
	case strings.HasPrefix(l, "/**"), strings.HasPrefix(l, "* "), strings.HasPrefix(l, "//"):
		return 8
	case strings.HasPrefix(l, "export "):
		return 8
	case strings.HasPrefix(l, "function "), strings.Contains(l, "=>"):
		return 5
	case strings.HasPrefix(l, "import "):
		return 3
	default:
		return 0
	}
}

func scoreConfig(l string) int {
	if strings.HasPrefix(l, "[") || strings.Contains(l, ": ") || strings.Contains(l, " = ") {
		return 5
	}
	return 0
}

func scoreMarkdown(l string) int {
	if strings.HasPrefix(l, "# ") || strings.HasPrefix(l, "## ") {
		return 8
	}
	return 0
}

func scoreGeneric(l string) int {
	switch {
	case strings.HasPrefix(l, "//"), strings.HasPrefix(l, "#"), strings.HasPrefix(l, "--"):
		return 6
	case strings.Contains(l, "class "), strings.HasPrefix(l, "def "), strings.HasPrefix(l, "fn "), strings.HasPrefix(l, "func "):
		return 5
	case strings.HasPrefix(l, "import "), strings.HasPrefix(l, "using "):
		return 3
	default:
		return 0
	}
}

func pushLines(out *[]string, lines []string) {
	for _, l := range lines {
		if len(*out) >= MaxKeepLines {
			return
		}
		if len(*out) > 0 && (*out)[len(*out)-1] == l {
			continue
		}
		*out = append(*out, l)
	}
}
