package decl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSrc = `// Package widgets renders widgets.
package widgets

import (
	"fmt"
	"io"
)

// DefaultSize is the fallback width.
const DefaultSize = 42

var registry = map[string]Widget{}

// Widget is a drawable thing.
type Widget struct {
	Name string
	Size int
}

// Renderer draws widgets.
type Renderer interface {
	Render(w io.Writer) error
}

// ID is a widget identifier.
type ID string

// New builds a Widget.
func New(name string) *Widget {
	return &Widget{Name: name, Size: DefaultSize}
}

// Render draws the widget.
func (w *Widget) Render(out io.Writer) error {
	_, err := fmt.Fprintln(out, w.Name)
	return err
}
`

func TestExtract(t *testing.T) {
	decls, err := Extract("widgets.go", []byte(sampleSrc))
	require.NoError(t, err)
	assert.Equal(t, "widgets", decls.Package)
	assert.Equal(t, []string{"fmt", "io"}, decls.Imports)

	byName := map[string]Decl{}
	for _, d := range decls.Decls {
		byName[d.Name] = d
	}

	require.Contains(t, byName, "Widget")
	assert.Equal(t, KindStruct, byName["Widget"].Kind)
	assert.Contains(t, byName["Widget"].Signature, "2 fields")
	assert.Equal(t, "Widget is a drawable thing.", byName["Widget"].Doc)
	assert.True(t, byName["Widget"].Exported)

	require.Contains(t, byName, "Renderer")
	assert.Equal(t, KindInterface, byName["Renderer"].Kind)

	require.Contains(t, byName, "ID")
	assert.Equal(t, KindAlias, byName["ID"].Kind)

	require.Contains(t, byName, "DefaultSize")
	assert.Equal(t, KindConst, byName["DefaultSize"].Kind)

	require.Contains(t, byName, "registry")
	assert.Equal(t, KindVar, byName["registry"].Kind)
	assert.False(t, byName["registry"].Exported)

	require.Contains(t, byName, "New")
	assert.Equal(t, KindFunc, byName["New"].Kind)
	assert.Contains(t, byName["New"].Signature, "(1 args)")

	require.Contains(t, byName, "Render")
	assert.Equal(t, KindMethod, byName["Render"].Kind)
	assert.Equal(t, "Widget", byName["Render"].Receiver)
}

func TestExtractPartialOnSyntaxError(t *testing.T) {
	src := "package broken\n\nfunc Ok() {}\n\nfunc Bad( {\n"
	decls, err := Extract("broken.go", []byte(src))
	require.NoError(t, err)
	assert.Equal(t, "broken", decls.Package)

	names := map[string]bool{}
	for _, d := range decls.Decls {
		names[d.Name] = true
	}
	assert.True(t, names["Ok"])
}

func TestExtractNotGo(t *testing.T) {
	_, err := Extract("junk.txt", []byte("this is not go at all"))
	require.Error(t, err)
}
