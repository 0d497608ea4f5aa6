package scanner

import (
	"path/filepath"
	"strings"

	"github.com/repolens/repolens/pkg/types"
)

// extLanguages maps file extensions to coarse language labels. Labels are a
// closed vocabulary shared with the snippet and summary heuristics.
var extLanguages = map[string]string{
	".go":    "go",
	".rs":    "rust",
	".py":    "python",
	".ts":    "ts",
	".tsx":   "ts",
	".js":    "js",
	".jsx":   "js",
	".mjs":   "js",
	".cjs":   "js",
	".java":  "java",
	".kt":    "kotlin",
	".c":     "c",
	".h":     "c",
	".cc":    "cpp",
	".cpp":   "cpp",
	".hpp":   "cpp",
	".cs":    "csharp",
	".rb":    "ruby",
	".php":   "php",
	".swift": "swift",
	".scala": "scala",
	".sh":    "shell",
	".bash":  "shell",
	".zsh":   "shell",
	".ps1":   "powershell",
	".sql":   "sql",
	".html":  "html",
	".htm":   "html",
	".css":   "css",
	".scss":  "css",
	".less":  "css",
	".md":    "markdown",
	".rst":   "markdown",
	".toml":  "toml",
	".yaml":  "yaml",
	".yml":   "yaml",
	".json":  "json",
	".xml":   "xml",
	".ini":   "ini",
	".env":   "ini",
	".proto": "proto",
	".tf":    "terraform",
	".lua":   "lua",
	".zig":   "zig",
	".ex":    "elixir",
	".exs":   "elixir",
	".erl":   "erlang",
	".hs":    "haskell",
	".ml":    "ocaml",
	".vim":   "vimscript",
	".txt":   "text",
}

// nameLanguages covers well-known extensionless files.
var nameLanguages = map[string]string{
	"makefile":   "make",
	"dockerfile": "dockerfile",
	"gemfile":    "ruby",
	"rakefile":   "ruby",
	"justfile":   "just",
	"go.mod":     "gomod",
	"go.sum":     "gosum",
}

// DetectLanguage labels a file by extension, then well-known filename, then
// shebang. Unlabeled files get types.LanguageUnknown and are kept.
func DetectLanguage(relPath string, head []byte) string {
	base := strings.ToLower(filepath.Base(relPath))
	if lang, ok := nameLanguages[base]; ok {
		return lang
	}
	if ext := strings.ToLower(filepath.Ext(base)); ext != "" {
		if lang, ok := extLanguages[ext]; ok {
			return lang
		}
	}
	if lang := shebangLanguage(head); lang != "" {
		return lang
	}
	return types.LanguageUnknown
}

// shebangLanguage inspects a "#!" first line for a known interpreter.
func shebangLanguage(head []byte) string {
	if len(head) < 3 || head[0] != '#' || head[1] != '!' {
		return ""
	}
	line := string(head)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	switch {
	case strings.Contains(line, "python"):
		return "python"
	case strings.Contains(line, "bash"), strings.Contains(line, "/sh"),
		strings.Contains(line, "zsh"):
		return "shell"
	case strings.Contains(line, "node"):
		return "js"
	case strings.Contains(line, "ruby"):
		return "ruby"
	case strings.Contains(line, "perl"):
		return "perl"
	default:
		return ""
	}
}
