// Package decl extracts top-level declarations from Go source files using
// the standard AST. It backs the declaration views; other languages get no
// declarations rather than a guess.
package decl

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"strings"
)

// Kind labels one extracted declaration.
type Kind string

const (
	KindFunc      Kind = "func"
	KindMethod    Kind = "method"
	KindStruct    Kind = "struct"
	KindInterface Kind = "interface"
	KindAlias     Kind = "type"
	KindConst     Kind = "const"
	KindVar       Kind = "var"
)

// Decl is one top-level declaration.
type Decl struct {
	Name      string
	Kind      Kind
	Receiver  string // method receiver type, empty otherwise
	Signature string
	Doc       string // first doc comment line
	Line      int
	Exported  bool
}

// Declarations holds what one file declares.
type Declarations struct {
	Package string
	Imports []string
	Decls   []Decl
}

// Extract parses src (named for error positions only) and collects top-level
// declarations. Syntax errors are non-fatal when a partial AST is available.
func Extract(name string, src []byte) (*Declarations, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, name, src, parser.ParseComments)
	// A file that never yielded a package clause is not Go; a file with a
	// package name plus syntax errors still gives a useful partial AST.
	if file == nil || file.Name == nil || file.Name.Name == "" {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}

	out := &Declarations{Package: file.Name.Name}
	for _, imp := range file.Imports {
		out.Imports = append(out.Imports, strings.Trim(imp.Path.Value, `"`))
	}

	ex := &extractor{fset: fset, out: out}
	for _, d := range file.Decls {
		switch decl := d.(type) {
		case *ast.FuncDecl:
			ex.function(decl)
		case *ast.GenDecl:
			ex.genDecl(decl)
		}
	}
	return out, nil
}

type extractor struct {
	fset *token.FileSet
	out  *Declarations
}

func (e *extractor) function(fd *ast.FuncDecl) {
	if fd.Name == nil {
		return
	}
	d := Decl{
		Name:      fd.Name.Name,
		Kind:      KindFunc,
		Signature: funcSignature(fd),
		Doc:       firstDocLine(fd.Doc),
		Line:      e.line(fd.Pos()),
		Exported:  fd.Name.IsExported(),
	}
	if fd.Recv != nil && len(fd.Recv.List) > 0 {
		d.Kind = KindMethod
		d.Receiver = receiverType(fd.Recv.List[0].Type)
	}
	e.out.Decls = append(e.out.Decls, d)
}

func (e *extractor) genDecl(gd *ast.GenDecl) {
	for _, spec := range gd.Specs {
		switch s := spec.(type) {
		case *ast.TypeSpec:
			e.typeSpec(s, gd.Doc)
		case *ast.ValueSpec:
			e.valueSpec(s, gd)
		}
	}
}

func (e *extractor) typeSpec(ts *ast.TypeSpec, doc *ast.CommentGroup) {
	if ts.Doc != nil {
		doc = ts.Doc
	}
	d := Decl{
		Name:     ts.Name.Name,
		Doc:      firstDocLine(doc),
		Line:     e.line(ts.Pos()),
		Exported: ts.Name.IsExported(),
	}
	switch t := ts.Type.(type) {
	case *ast.StructType:
		d.Kind = KindStruct
		d.Signature = fmt.Sprintf("type %s struct // %d fields", ts.Name.Name, t.Fields.NumFields())
	case *ast.InterfaceType:
		d.Kind = KindInterface
		d.Signature = fmt.Sprintf("type %s interface // %d methods", ts.Name.Name, t.Methods.NumFields())
	default:
		d.Kind = KindAlias
		d.Signature = "type " + ts.Name.Name
	}
	e.out.Decls = append(e.out.Decls, d)
}

func (e *extractor) valueSpec(vs *ast.ValueSpec, gd *ast.GenDecl) {
	kind := KindVar
	if gd.Tok == token.CONST {
		kind = KindConst
	}
	for _, name := range vs.Names {
		if name.Name == "_" {
			continue
		}
		e.out.Decls = append(e.out.Decls, Decl{
			Name:      name.Name,
			Kind:      kind,
			Signature: string(kind) + " " + name.Name,
			Doc:       firstDocLine(gd.Doc),
			Line:      e.line(name.Pos()),
			Exported:  name.IsExported(),
		})
	}
}

func (e *extractor) line(pos token.Pos) int {
	return e.fset.Position(pos).Line
}

func receiverType(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return receiverType(t.X)
	case *ast.IndexExpr:
		return receiverType(t.X)
	case *ast.IndexListExpr:
		return receiverType(t.X)
	default:
		return ""
	}
}

func funcSignature(fd *ast.FuncDecl) string {
	var sb strings.Builder
	sb.WriteString("func ")
	if fd.Recv != nil && len(fd.Recv.List) > 0 {
		fmt.Fprintf(&sb, "(%s) ", receiverType(fd.Recv.List[0].Type))
	}
	sb.WriteString(fd.Name.Name)
	fmt.Fprintf(&sb, "(%d args)", fd.Type.Params.NumFields())
	if n := fd.Type.Results.NumFields(); n > 0 {
		fmt.Fprintf(&sb, " (%d results)", n)
	}
	return sb.String()
}

func firstDocLine(doc *ast.CommentGroup) string {
	if doc == nil {
		return ""
	}
	for _, line := range strings.Split(doc.Text(), "\n") {
		if t := strings.TrimSpace(line); t != "" {
			return t
		}
	}
	return ""
}
