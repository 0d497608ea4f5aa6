// Package summary is the offline enrichment collaborator of the scanner: a
// one-line purpose summary, a coarse role label, a best-effort module id,
// and cheap import/export skims, all derived from the path and a bounded
// snippet. Everything here is heuristic and advisory; none of it affects
// diff or packing correctness. Summarize never fails, it degrades to
// defaults.
package summary

import (
	"path"
	"strings"
)

// maxScanBytes caps how much of the snippet the heuristics look at.
const maxScanBytes = 32 * 1024

// Summary is the enrichment bundle attached to a Record.
type Summary struct {
	Text    string
	Role    string
	Module  string
	Imports []string
	Exports []string
}

// Summarize derives a Summary for one file. lang is the detected language
// label ("unknown" is fine); snip is the already-extracted snippet.
func Summarize(relPath, snip, lang string) Summary {
	imports, exports := skimSymbols(snip, lang)
	return Summary{
		Text:    guessText(relPath, snip, lang),
		Role:    inferRole(relPath, lang, snip),
		Module:  inferModuleID(relPath, lang),
		Imports: imports,
		Exports: exports,
	}
}

// guessText returns a short human-readable one-liner, trying increasingly
// generic signals: well-known filenames, entrypoints, tests, path hints,
// then a doc-comment or heading extracted from the snippet.
func guessText(relPath, snip, lang string) string {
	p := strings.ToLower(strings.ReplaceAll(relPath, "\\", "/"))
	scan := snip
	if len(scan) > maxScanBytes {
		scan = scan[:maxScanBytes]
	}
	sl := strings.ToLower(scan)

	// Config, docs, CI.
	switch {
	case strings.HasSuffix(p, "go.mod"):
		return "Go module definition (deps/toolchain)."
	case strings.HasSuffix(p, "cargo.toml"):
		return "Cargo manifest / workspace configuration."
	case strings.HasSuffix(p, "package.json"):
		return "Node package manifest (scripts/deps)."
	case strings.HasSuffix(p, "pyproject.toml"):
		return "Python project configuration (build/deps/tooling)."
	case strings.HasSuffix(p, "requirements.txt"):
		return "Python dependencies locklist."
	case strings.HasSuffix(p, "dockerfile") || strings.Contains(p, "/docker/"):
		return "Container build definition (Dockerfile)."
	case strings.HasSuffix(p, "makefile") || strings.HasSuffix(p, ".mk"):
		return "Make build targets and automation."
	case strings.HasSuffix(p, "readme.md") || strings.HasSuffix(p, "readme"):
		return "Project README / documentation."
	case strings.HasSuffix(p, "license") || strings.HasSuffix(p, "license.md"):
		return "Project license."
	case strings.Contains(p, ".github/workflows/") || strings.Contains(p, "/.gitlab-ci") || strings.Contains(p, "/.circleci/"):
		return "CI pipeline/workflow configuration."
	case strings.HasSuffix(p, ".yml") || strings.HasSuffix(p, ".yaml"):
		return "YAML configuration file."
	case strings.HasSuffix(p, ".toml"):
		return "TOML configuration file."
	case strings.HasSuffix(p, ".env"):
		return "Environment variables file."
	}

	// Entrypoints.
	switch {
	case strings.HasSuffix(p, "src/main.rs"):
		return "Entrypoint for this Rust binary."
	case strings.HasSuffix(p, "lib.rs"):
		return "Root library file for this Rust crate."
	case lang == "go" && strings.Contains(p, "cmd/") && strings.Contains(sl, "func main("):
		return "Entrypoint for this Go binary."
	case lang == "go" && strings.HasSuffix(p, "main.go") && strings.Contains(sl, "func main("):
		return "Entrypoint for this Go binary."
	case lang == "python" && strings.Contains(sl, "if __name__ =="):
		return "Python script entrypoint."
	}

	// Tests.
	if isTestFile(p, sl) {
		return "Test module or spec suite."
	}

	// Path hints.
	switch {
	case containsAny(p, "/ui", "/panel", "/editor", "/view", "/component", "/widget", "/screen", "/page"):
		return "User interface / presentation layer."
	case containsAny(p, "/core", "/engine", "/domain", "/model", "/service"):
		return "Core domain logic / engine layer."
	case strings.Contains(p, "/cli") || strings.Contains(sl, "use clap") || strings.Contains(sl, "urfave/cli") || strings.Contains(sl, "spf13/cobra"):
		return "Command-line interface."
	case isHTTPish(sl, p):
		return "HTTP server / routing."
	case isDBLike(sl, p):
		return "Database access / persistence layer."
	case isConcurrency(sl):
		return "Concurrency / async orchestration."
	case isFSIO(sl, p):
		return "Filesystem / IO utilities."
	case strings.Contains(p, "/types"):
		return "Type definitions / data models."
	case strings.Contains(p, "/util"):
		return "Utility helpers."
	}

	if doc := extractDocSummary(scan); doc != "" {
		return doc
	}
	if first := firstNonEmptyLine(scan); first != "" {
		return first
	}
	return "No summary available (offline mode)."
}

// inferRole classifies the file as bin/lib/test/doc/config/script/ui/core.
func inferRole(relPath, lang, snip string) string {
	p := strings.ToLower(relPath)
	l := strings.ToLower(lang)
	s := strings.ToLower(snip)

	switch {
	case strings.Contains(p, "/tests"), strings.Contains(p, "/test"),
		strings.HasSuffix(p, "_test.go"), strings.HasSuffix(p, "_test.rs"),
		strings.Contains(s, "#[test]"), strings.Contains(s, "pytest"):
		return "test"
	case strings.HasSuffix(p, "main.go") && strings.Contains(s, "func main("),
		strings.HasSuffix(p, "src/main.rs"), strings.Contains(p, "/src/bin/"),
		strings.Contains(s, "fn main("):
		return "bin"
	case strings.HasSuffix(p, ".md"), strings.Contains(p, "/docs"):
		return "doc"
	case l == "toml", l == "yaml", l == "yml", l == "json":
		return "config"
	case strings.HasSuffix(p, ".sh"), strings.HasPrefix(s, "#!/bin/bash"),
		strings.HasPrefix(s, "#!/usr/bin/env bash"):
		return "script"
	case strings.Contains(p, "/ui"), strings.Contains(p, "panel"),
		strings.Contains(p, "editor"), strings.Contains(p, "view"):
		return "ui"
	case strings.HasSuffix(p, "lib.rs"):
		return "lib"
	case strings.Contains(p, "core"), strings.Contains(p, "engine"):
		return "core"
	default:
		return "lib"
	}
}

// inferModuleID maps a path to a language-flavored module identifier.
func inferModuleID(relPath, lang string) string {
	p := strings.Trim(strings.ReplaceAll(relPath, "\\", "/"), "/")
	switch strings.ToLower(lang) {
	case "go":
		// Package path: directory, or file stem at the root.
		dir := path.Dir(p)
		if dir == "." {
			return strings.TrimSuffix(path.Base(p), path.Ext(p))
		}
		return dir
	case "rust":
		return rustModuleID(p)
	case "python":
		return strings.ReplaceAll(strings.TrimSuffix(p, ".py"), "/", ".")
	default:
		stem := p
		if i := strings.LastIndexByte(stem, '.'); i > strings.LastIndexByte(stem, '/') {
			stem = stem[:i]
		}
		return strings.ReplaceAll(stem, "/", "::")
	}
}

func rustModuleID(p string) string {
	switch {
	case strings.HasSuffix(p, "src/lib.rs"):
		return "crate"
	case strings.HasSuffix(p, "src/main.rs"):
		return "bin"
	}
	if rest, ok := strings.CutPrefix(p, "src/bin/"); ok {
		return "bin::" + strings.TrimSuffix(rest, ".rs")
	}
	if rest, ok := strings.CutPrefix(p, "src/"); ok {
		if mod, ok := strings.CutSuffix(rest, "/mod.rs"); ok {
			return strings.ReplaceAll(mod, "/", "::")
		}
		return strings.ReplaceAll(strings.TrimSuffix(rest, ".rs"), "/", "::")
	}
	stem := p
	if i := strings.LastIndexByte(stem, '.'); i > strings.LastIndexByte(stem, '/') {
		stem = stem[:i]
	}
	return strings.ReplaceAll(stem, "/", "::")
}

/* ---------------------------- tiny detectors ---------------------------- */

func isTestFile(p, sl string) bool {
	return strings.Contains(p, "/tests") || strings.Contains(p, "/test") ||
		strings.HasSuffix(p, "_test.go") || strings.HasSuffix(p, "_test.rs") ||
		strings.HasSuffix(p, ".spec.ts") || strings.HasSuffix(p, ".spec.js") ||
		strings.Contains(sl, "#[test]") || strings.Contains(sl, "pytest")
}

func isHTTPish(sl, p string) bool {
	return strings.Contains(sl, "net/http") || strings.Contains(sl, "axum::") ||
		strings.Contains(sl, "actix") || strings.Contains(sl, "go-chi") ||
		(strings.Contains(sl, "router") && containsAny(p, "/http", "/server", "/api"))
}

func isDBLike(sl, p string) bool {
	return strings.Contains(sl, "database/sql") || strings.Contains(sl, "sqlx::") ||
		strings.Contains(sl, "diesel::") || strings.Contains(sl, "postgres") ||
		strings.Contains(sl, "mongodb") || strings.Contains(sl, "redis") ||
		containsAny(p, "/db", "/repo", "/repository", "/persistence", "/storage")
}

func isConcurrency(sl string) bool {
	return strings.Contains(sl, "tokio::") || strings.Contains(sl, "async fn") ||
		strings.Contains(sl, "sync.WaitGroup") || strings.Contains(sl, "errgroup") ||
		strings.Contains(sl, "go func(")
}

func isFSIO(sl, p string) bool {
	return strings.Contains(sl, "std::fs") || strings.Contains(sl, "std::io") ||
		strings.Contains(sl, "path/filepath") || containsAny(p, "/io", "/fs")
}

func containsAny(hay string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(hay, n) {
			return true
		}
	}
	return false
}

// extractDocSummary pulls a succinct line from doc comments or markdown
// headings, skipping fenced code blocks so it never grabs random code.
func extractDocSummary(s string) string {
	lines := strings.Split(s, "\n")

	// Doc comments at the top.
	for i, line := range lines {
		if i >= 256 {
			break
		}
		t := strings.TrimLeft(line, " \t")
		if strings.HasPrefix(t, "//!") || strings.HasPrefix(t, "///") {
			if msg := strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(t, "//!"), "///")); msg != "" {
				return msg
			}
			continue
		}
		if strings.HasPrefix(t, "// ") {
			if msg := strings.TrimSpace(strings.TrimPrefix(t, "//")); msg != "" {
				return msg
			}
			continue
		}
		if t != "" && !strings.HasPrefix(t, "//") && !strings.HasPrefix(t, "#!") {
			break
		}
	}

	// Fence-aware markdown skim: first H1 or first plain prose line.
	inFence := false
	for i, line := range lines {
		if i >= 512 {
			break
		}
		t := strings.TrimSpace(line)
		if strings.HasPrefix(t, "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		if strings.HasPrefix(t, "# ") {
			if msg := strings.TrimSpace(strings.TrimLeft(t, "#")); msg != "" {
				return msg
			}
		}
		if t != "" && !strings.HasPrefix(t, "#!") && !strings.HasPrefix(t, "//") && !strings.HasPrefix(t, "/*") && len(t) > 2 {
			return t
		}
	}
	return ""
}

func firstNonEmptyLine(s string) string {
	for _, l := range strings.Split(s, "\n") {
		if t := strings.TrimSpace(l); t != "" {
			return t
		}
	}
	return ""
}
