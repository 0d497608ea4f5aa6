package summary

import "strings"

// InferTags derives coarse structural tags from the path and language. Tags
// are stable and cheap: top-level directory, extension, language, and a few
// semantic markers (test, doc, config, entrypoint). Order is deterministic.
func InferTags(relPath, lang string) []string {
	p := strings.ToLower(strings.ReplaceAll(relPath, "\\", "/"))
	var tags []string
	add := func(t string) {
		for _, e := range tags {
			if e == t {
				return
			}
		}
		tags = append(tags, t)
	}

	if i := strings.IndexByte(p, '/'); i > 0 {
		add("dir:" + p[:i])
	} else {
		add("dir:root")
	}
	if i := strings.LastIndexByte(p, '.'); i > strings.LastIndexByte(p, '/') && i+1 < len(p) {
		add("ext:" + p[i+1:])
	}
	if lang != "" && lang != "unknown" {
		add("lang:" + strings.ToLower(lang))
	}

	switch {
	case strings.HasSuffix(p, "_test.go"), strings.HasSuffix(p, "_test.rs"),
		strings.Contains(p, "/tests/"), strings.Contains(p, "/test/"),
		strings.HasSuffix(p, ".spec.ts"), strings.HasSuffix(p, ".spec.js"):
		add("test")
	}
	switch {
	case strings.HasSuffix(p, ".md"), strings.Contains(p, "/docs/"):
		add("doc")
	}
	switch {
	case strings.HasSuffix(p, ".toml"), strings.HasSuffix(p, ".yml"),
		strings.HasSuffix(p, ".yaml"), strings.HasSuffix(p, ".json"),
		strings.HasSuffix(p, ".env"), strings.HasSuffix(p, ".ini"):
		add("config")
	}
	switch {
	case strings.HasSuffix(p, "main.go"), strings.HasSuffix(p, "src/main.rs"),
		strings.Contains(p, "/src/bin/"), strings.HasSuffix(p, "__main__.py"):
		add("entrypoint")
	}
	switch {
	case strings.Contains(p, ".github/workflows/"), strings.Contains(p, ".gitlab-ci"),
		strings.Contains(p, "dockerfile"), strings.HasSuffix(p, "makefile"):
		add("build")
	}
	return tags
}

// Slugify collapses an arbitrary label into a filesystem-safe token used for
// index and chunk directory names.
func Slugify(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastDash := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		return "untitled"
	}
	return out
}
