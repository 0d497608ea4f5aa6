package snippet

import "strings"

// leadingDocBlock pulls the top-of-file documentation block for the given
// language: doc comments for code, the first heading plus intro for
// markdown, leading comments for everything else. Returns nil when the file
// starts with code.
func leadingDocBlock(s, lang string) []string {
	switch strings.ToLower(lang) {
	case "go":
		return leadingSlashDocs(s, "//")
	case "rust":
		return leadingRustDocs(s)
	case "python":
		return leadingPythonDocs(s)
	case "typescript", "ts", "javascript", "js":
		return leadingJSDocs(s)
	case "markdown", "md":
		return leadingMarkdownHead(s)
	default:
		return leadingGenericHead(s)
	}
}

func leadingSlashDocs(s, marker string) []string {
	var out []string
	for _, line := range headLines(s, 120) {
		t := strings.TrimLeft(line, " \t")
		if strings.HasPrefix(t, marker) {
			msg := strings.TrimSpace(strings.TrimPrefix(t, marker))
			if msg != "" {
				out = append(out, msg)
			}
			continue
		}
		if t == "" && len(out) > 0 {
			continue
		}
		break
	}
	return normalizeDoc(out)
}

func leadingRustDocs(s string) []string {
	var out []string
	started := false
	for _, line := range headLines(s, 120) {
		t := strings.TrimLeft(line, " \t")
		if strings.HasPrefix(t, "//!") || strings.HasPrefix(t, "///") {
			started = true
			msg := strings.TrimPrefix(strings.TrimPrefix(t, "//!"), "///")
			if msg = strings.TrimSpace(msg); msg != "" {
				out = append(out, msg)
			}
			continue
		}
		if started {
			if strings.HasPrefix(t, "//") || t == "" {
				continue
			}
			break
		}
		if strings.HasPrefix(t, "/*") && strings.Contains(t, "*/") {
			inner := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(t, "/*"), "*/"))
			if inner != "" {
				out = append(out, inner)
			}
			break
		}
		if t != "" {
			break
		}
	}
	return normalizeDoc(out)
}

func leadingPythonDocs(s string) []string {
	var out []string
	inTriple := false
	quote := ""
	for _, line := range headLines(s, 160) {
		t := strings.TrimLeft(line, " \t")
		if !inTriple && (strings.HasPrefix(t, `"""`) || strings.HasPrefix(t, "'''")) {
			inTriple = true
			quote = t[:3]
			body := t[3:]
			if strings.Contains(body, quote) {
				inner := strings.TrimSpace(strings.SplitN(body, quote, 2)[0])
				if inner != "" {
					out = append(out, inner)
				}
				break
			}
			if inner := strings.TrimSpace(body); inner != "" {
				out = append(out, inner)
			}
			continue
		}
		if inTriple {
			if strings.Contains(t, quote) {
				inner := strings.TrimSpace(strings.SplitN(t, quote, 2)[0])
				if inner != "" {
					out = append(out, inner)
				}
				break
			}
			out = append(out, strings.TrimRight(t, " \t"))
			continue
		}
		if strings.HasPrefix(t, "#!") || strings.HasPrefix(t, "# ") {
			out = append(out, strings.TrimSpace(strings.TrimLeft(t, "#!")))
			continue
		}
		if len(out) > 0 {
			if !strings.HasPrefix(t, "#") && t != "" {
				break
			}
		} else if t != "" {
			break
		}
	}
	return normalizeDoc(out)
}

func leadingJSDocs(s string) []string {
	var out []string
	inBlock := false
	for _, line := range headLines(s, 160) {
		t := strings.TrimLeft(line, " \t")
		if !inBlock && strings.HasPrefix(t, "/**") {
			inBlock = true
			if strings.Contains(t, "*/") {
				inner := strings.TrimSuffix(strings.TrimPrefix(t, "/**"), "*/")
				inner = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(inner), "*"))
				if inner != "" {
					out = append(out, inner)
				}
				break
			}
			continue
		}
		if inBlock {
			done := strings.Contains(t, "*/")
			inner := strings.TrimSuffix(t, "*/")
			inner = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(inner), "*"))
			if inner != "" {
				out = append(out, inner)
			}
			if done {
				break
			}
			continue
		}
		if strings.HasPrefix(t, "// ") {
			out = append(out, strings.TrimSpace(strings.TrimPrefix(t, "//")))
			continue
		}
		if len(out) > 0 && !strings.HasPrefix(t, "//") && t != "" {
			break
		}
		if len(out) == 0 && t != "" && !strings.HasPrefix(t, "//") && !strings.HasPrefix(t, "/*") {
			break
		}
	}
	return normalizeDoc(out)
}

func leadingMarkdownHead(s string) []string {
	var out []string
	for _, line := range headLines(s, 60) {
		t := strings.TrimSpace(line)
		if strings.HasPrefix(t, "# ") {
			out = append(out, strings.TrimSpace(strings.TrimPrefix(t, "# ")))
			continue
		}
		if len(out) > 0 {
			if t == "" {
				break
			}
			out = append(out, t)
			break
		}
		if t != "" && !strings.HasPrefix(t, "#") {
			break
		}
	}
	return normalizeDoc(out)
}

func leadingGenericHead(s string) []string {
	var out []string
	for _, line := range headLines(s, 40) {
		t := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(t, "//"), strings.HasPrefix(t, "# "), strings.HasPrefix(t, "--"):
			t = strings.TrimPrefix(t, "//")
			t = strings.TrimPrefix(t, "--")
			t = strings.TrimSpace(strings.TrimPrefix(t, "#"))
			if t != "" {
				out = append(out, t)
			}
		case t == "":
			if len(out) > 0 {
				return normalizeDoc(out)
			}
		default:
			if len(out) > 0 {
				out = append(out, t)
			}
			return normalizeDoc(out)
		}
	}
	return normalizeDoc(out)
}

// normalizeDoc trims blanks and keeps docs from hogging the snippet budget.
func normalizeDoc(lines []string) []string {
	var out []string
	for _, l := range lines {
		t := strings.TrimSpace(l)
		if t == "" {
			continue
		}
		out = append(out, t)
		if len(out) >= MaxKeepLines/3 {
			break
		}
	}
	return out
}

func headLines(s string, n int) []string {
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[:n]
	}
	return lines
}
