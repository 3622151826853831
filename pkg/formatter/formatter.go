// Package formatter implements the LuzScript source code formatter.
package formatter

import (
	"strings"

	"github.com/thomasrohde/luzscript/pkg/ast"
	"github.com/thomasrohde/luzscript/pkg/dialect"
)

const indent = "  "

// Format pretty-prints a LuzScript AST back to source code: one statement per
// line, two-space indentation, keywords spelled in d. Empty statements are
// dropped.
func Format(program *ast.Program, d dialect.Dialect) string {
	f := &formatter{kw: d}
	f.stmts(program.Statements, 0)
	return f.b.String()
}

type formatter struct {
	kw dialect.Dialect
	b  strings.Builder
}

func (f *formatter) line(depth int, parts ...string) {
	f.b.WriteString(strings.Repeat(indent, depth))
	for _, p := range parts {
		f.b.WriteString(p)
	}
	f.b.WriteByte('\n')
}

func (f *formatter) stmts(stmts []ast.Stmt, depth int) {
	for _, s := range stmts {
		f.stmt(s, depth)
	}
}

func (f *formatter) stmt(s ast.Stmt, depth int) {
	switch n := s.(type) {
	case *ast.VarDecl, *ast.Assign, *ast.Print:
		f.line(depth, f.simple(n), ";")
	case *ast.If:
		f.line(depth, f.kw.If, " (", condString(n.Cond), ") {")
		f.stmts(n.Then.Statements, depth+1)
		if n.Else != nil {
			f.line(depth, "} ", f.kw.Else, " {")
			f.stmts(n.Else.Statements, depth+1)
		}
		f.line(depth, "}")
	case *ast.While:
		f.line(depth, f.kw.While, " (", condString(n.Cond), ") {")
		f.stmts(n.Body.Statements, depth+1)
		f.line(depth, "}")
	case *ast.For:
		header := f.clause(n.Init) + "; " + condString(n.Cond) + "; " + f.clause(n.Post)
		f.line(depth, f.kw.For, " (", strings.TrimSpace(header), ") {")
		f.stmts(n.Body.Statements, depth+1)
		f.line(depth, "}")
	case *ast.Empty:
	}
}

// simple renders a declaration, assignment or print without its terminator.
func (f *formatter) simple(s ast.Stmt) string {
	switch n := s.(type) {
	case *ast.VarDecl:
		if n.Value == nil {
			return f.kw.Declare + " " + n.Name
		}
		return f.kw.Declare + " " + n.Name + " = " + n.Value.String()
	case *ast.Assign:
		return n.Name + " " + n.Op + " " + n.Value.String()
	case *ast.Print:
		if n.Arg == nil {
			return f.kw.Print + "()"
		}
		return f.kw.Print + "(" + n.Arg.String() + ")"
	}
	return ""
}

// clause renders the init or post part of a for header. Several statements
// in one clause are separated by spaces since ';' would split the header.
func (f *formatter) clause(stmts []ast.Stmt) string {
	var parts []string
	for _, s := range stmts {
		if text := f.simple(s); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

func condString(c *ast.Condition) string {
	return ast.JoinTokens(c.Tokens)
}
