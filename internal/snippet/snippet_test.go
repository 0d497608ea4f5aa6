package snippet

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractRustDocCapture(t *testing.T) {
	s := "//! Top module docs\n/// more\nfn main(){}\n"
	snip := Extract(s, "rust")
	assert.Contains(t, snip, "Top module docs")
	assert.Contains(t, snip, "more")
}

func TestExtractGoDocAndSignatures(t *testing.T) {
	s := "// Package widget renders widgets.\npackage widget\n\nfunc Render(w io.Writer) error {\n\treturn nil\n}\n"
	snip := Extract(s, "go")
	assert.Contains(t, snip, "Package widget renders widgets.")
	assert.Contains(t, snip, "func Render")
}

func TestExtractPythonTripleQuote(t *testing.T) {
	s := "\"\"\"Module summary\nGoes here.\"\"\"\ndef f(): pass\n"
	snip := Extract(s, "python")
	assert.Contains(t, snip, "Module summary")
}

func TestExtractJSBlockDoc(t *testing.T) {
	s := "/** Hello */\nexport function x(){}\n"
	snip := Extract(s, "ts")
	assert.Contains(t, snip, "Hello")
	assert.Contains(t, snip, "export function")
}

func TestExtractFallbackHead(t *testing.T) {
	s := "line1\n\nline2\n"
	snip := Extract(s, "txt")
	assert.Contains(t, snip, "line1")
}

func TestExtractBounded(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 5000; i++ {
		b.WriteString("func generated() {}\n")
	}
	snip := Extract(b.String(), "go")
	assert.LessOrEqual(t, len(strings.Split(snip, "\n")), MaxKeepLines)
}

func TestExtractEmpty(t *testing.T) {
	assert.Equal(t, "", Extract("", "go"))
}
