package summary

import "strings"

const (
	maxSkimLines   = 400
	maxSkimSymbols = 24
)

// skimSymbols does a cheap line-oriented pass over the snippet and pulls out
// import targets and exported declaration names. It is intentionally not a
// parser; a wrong guess costs nothing downstream.
func skimSymbols(snip, lang string) (imports, exports []string) {
	lines := strings.Split(snip, "\n")
	if len(lines) > maxSkimLines {
		lines = lines[:maxSkimLines]
	}
	switch strings.ToLower(lang) {
	case "go":
		return skimGo(lines)
	case "rust":
		return skimRust(lines)
	case "python":
		return skimPython(lines)
	case "typescript", "ts", "javascript", "js":
		return skimJSTS(lines)
	default:
		return nil, nil
	}
}

func skimGo(lines []string) (imports, exports []string) {
	inImport := false
	for _, raw := range lines {
		l := strings.TrimSpace(raw)
		switch {
		case strings.HasPrefix(l, "import ("):
			inImport = true
		case inImport && l == ")":
			inImport = false
		case inImport:
			if q := unquoteImport(l); q != "" {
				imports = appendBounded(imports, q)
			}
		case strings.HasPrefix(l, "import "):
			if q := unquoteImport(strings.TrimPrefix(l, "import ")); q != "" {
				imports = appendBounded(imports, q)
			}
		case strings.HasPrefix(l, "func "), strings.HasPrefix(l, "type "):
			name := declName(l)
			if name != "" && isExportedGo(name) {
				exports = appendBounded(exports, name)
			}
		}
	}
	return imports, exports
}

func skimRust(lines []string) (imports, exports []string) {
	for _, raw := range lines {
		l := strings.TrimSpace(raw)
		switch {
		case strings.HasPrefix(l, "use "):
			target := strings.TrimSuffix(strings.TrimPrefix(l, "use "), ";")
			if i := strings.IndexAny(target, " {"); i > 0 {
				target = target[:i]
			}
			target = strings.TrimSuffix(target, "::")
			if target != "" {
				imports = appendBounded(imports, target)
			}
		case strings.HasPrefix(l, "pub fn "), strings.HasPrefix(l, "pub struct "),
			strings.HasPrefix(l, "pub enum "), strings.HasPrefix(l, "pub trait "):
			rest := strings.TrimPrefix(l, "pub ")
			if name := declName(rest); name != "" {
				exports = appendBounded(exports, name)
			}
		}
	}
	return imports, exports
}

func skimPython(lines []string) (imports, exports []string) {
	for _, raw := range lines {
		l := strings.TrimSpace(raw)
		switch {
		case strings.HasPrefix(l, "import "):
			mod := strings.Fields(strings.TrimPrefix(l, "import "))
			if len(mod) > 0 {
				imports = appendBounded(imports, strings.TrimSuffix(mod[0], ","))
			}
		case strings.HasPrefix(l, "from "):
			fields := strings.Fields(l)
			if len(fields) >= 2 {
				imports = appendBounded(imports, fields[1])
			}
		case strings.HasPrefix(l, "def "), strings.HasPrefix(l, "class "):
			if name := declName(l); name != "" && !strings.HasPrefix(name, "_") {
				exports = appendBounded(exports, name)
			}
		}
	}
	return imports, exports
}

func skimJSTS(lines []string) (imports, exports []string) {
	for _, raw := range lines {
		l := strings.TrimSpace(raw)
		switch {
		case strings.HasPrefix(l, "import "):
			if i := strings.Index(l, " from "); i > 0 {
				if q := unquoteImport(l[i+len(" from "):]); q != "" {
					imports = appendBounded(imports, q)
				}
			} else if q := unquoteImport(strings.TrimPrefix(l, "import ")); q != "" {
				imports = appendBounded(imports, q)
			}
		case strings.HasPrefix(l, "export "):
			rest := strings.TrimPrefix(l, "export ")
			rest = strings.TrimPrefix(rest, "default ")
			rest = strings.TrimPrefix(rest, "async ")
			for _, kw := range []string{"function ", "class ", "const ", "let ", "var ", "interface ", "type ", "enum "} {
				if after, ok := strings.CutPrefix(rest, kw); ok {
					if name := identPrefix(after); name != "" {
						exports = appendBounded(exports, name)
					}
					break
				}
			}
		}
	}
	return imports, exports
}

// declName extracts the identifier after the leading keyword in lines like
// "func Render(", "type Record struct", "def f():", "struct Foo {".
func declName(l string) string {
	fields := strings.Fields(l)
	if len(fields) < 2 {
		return ""
	}
	name := fields[1]
	// Go methods: skip the receiver.
	if strings.HasPrefix(name, "(") {
		if i := strings.Index(l, ")"); i >= 0 && i+1 < len(l) {
			return identPrefix(strings.TrimSpace(l[i+1:]))
		}
		return ""
	}
	return identPrefix(name)
}

func identPrefix(s string) string {
	for i, r := range s {
		if r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || i > 0 && r >= '0' && r <= '9' {
			continue
		}
		return s[:i]
	}
	return s
}

func isExportedGo(name string) bool {
	return name != "" && name[0] >= 'A' && name[0] <= 'Z'
}

func unquoteImport(s string) string {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), ";"))
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return ""
}

func appendBounded(xs []string, x string) []string {
	if len(xs) >= maxSkimSymbols {
		return xs
	}
	for _, e := range xs {
		if e == x {
			return xs
		}
	}
	return append(xs, x)
}
