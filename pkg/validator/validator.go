// Package validator implements static checks of LuzScript programs.
package validator

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/thomasrohde/luzscript/pkg/ast"
	"github.com/thomasrohde/luzscript/pkg/diagnostics"
	"github.com/thomasrohde/luzscript/pkg/dialect"
	"github.com/thomasrohde/luzscript/pkg/lexer"
)

var arithmetic = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "(": true, ")": true,
}

var relational = map[string]bool{
	"==": true, "!=": true, "<": true, ">": true, "<=": true, ">=": true,
}

// Options mirrors the evaluator settings that change what is visible where.
type Options struct {
	Dialect    dialect.Dialect
	BlockScope bool
	Lenient    bool
}

type scope struct {
	bindings map[string]bool
	parent   *scope
}

func newScope(parent *scope) *scope {
	return &scope{bindings: make(map[string]bool), parent: parent}
}

func (s *scope) has(name string) bool {
	if s.bindings[name] {
		return true
	}
	if s.parent != nil {
		return s.parent.has(name)
	}
	return false
}

func (s *scope) add(name string) {
	s.bindings[name] = true
}

type validator struct {
	diags []diagnostics.Diagnostic
	opts  Options
}

// Validate checks a program without running it. It reports names that are
// read or assigned without a visible declaration (E_UNBOUND) and tokens that
// can never be evaluated as operands (E_EVAL). Names already bound in the
// caller's environment can be passed in predeclared.
func Validate(program *ast.Program, opts Options, predeclared ...string) []diagnostics.Diagnostic {
	if opts.Dialect.Declare == "" {
		opts.Dialect = dialect.Spanish()
	}
	v := &validator{opts: opts}
	root := newScope(nil)
	for _, name := range predeclared {
		root.add(name)
	}
	v.validateStatements(program.Statements, root)
	return v.diags
}

func (v *validator) addDiag(code, msg string, span ast.Span) {
	v.diags = append(v.diags, diagnostics.MakeDiag(code, msg, &span, ""))
}

func (v *validator) child(s *scope) *scope {
	if !v.opts.BlockScope {
		return s
	}
	return newScope(s)
}

func (v *validator) validateStatements(stmts []ast.Stmt, s *scope) {
	for _, stmt := range stmts {
		v.validateStatement(stmt, s)
	}
}

func (v *validator) validateStatement(stmt ast.Stmt, s *scope) {
	switch n := stmt.(type) {
	case *ast.VarDecl:
		if n.Value != nil {
			v.validateExpr(n.Value.Tokens, n.Value.Span, s)
		}
		s.add(n.Name)
	case *ast.Assign:
		v.validateExpr(n.Value.Tokens, n.Value.Span, s)
		if !s.has(n.Name) && !v.opts.Lenient {
			v.addDiag(diagnostics.EUnbound, fmt.Sprintf("assignment to undeclared variable '%s'", n.Name), n.Span)
		}
	case *ast.Print:
		if n.Arg != nil {
			v.validateExpr(n.Arg.Tokens, n.Arg.Span, s)
		}
	case *ast.If:
		v.validateCond(n.Cond, s)
		v.validateStatements(n.Then.Statements, v.child(s))
		if n.Else != nil {
			v.validateStatements(n.Else.Statements, v.child(s))
		}
	case *ast.While:
		v.validateCond(n.Cond, s)
		v.validateStatements(n.Body.Statements, v.child(s))
	case *ast.For:
		loop := v.child(s)
		v.validateStatements(n.Init, loop)
		v.validateCond(n.Cond, loop)
		v.validateStatements(n.Body.Statements, v.child(loop))
		v.validateStatements(n.Post, loop)
	}
}

func (v *validator) validateCond(c *ast.Condition, s *scope) {
	if len(c.Tokens) == 0 {
		v.addDiag(diagnostics.EEval, "empty condition", c.Span)
		return
	}
	for i, tok := range c.Tokens {
		if relational[tok] {
			v.validateExpr(c.Tokens[:i], c.Span, s)
			v.validateExpr(c.Tokens[i+1:], c.Span, s)
			return
		}
	}
	v.validateExpr(c.Tokens, c.Span, s)
}

func (v *validator) validateExpr(tokens []string, span ast.Span, s *scope) {
	if len(tokens) == 0 {
		v.addDiag(diagnostics.EEval, "empty expression", span)
		return
	}
	for _, tok := range tokens {
		switch {
		case lexer.IsNumber(tok):
			if !strings.Contains(tok, ".") {
				if _, err := strconv.ParseInt(tok, 10, 64); errors.Is(err, strconv.ErrRange) {
					v.addDiag(diagnostics.EEval, fmt.Sprintf("integer overflow: %s", tok), span)
				}
			}
		case arithmetic[tok], lexer.IsString(tok):
		case tok == v.opts.Dialect.True, tok == v.opts.Dialect.False:
		case lexer.IsIdentifier(tok):
			if !s.has(tok) {
				v.addDiag(diagnostics.EUnbound, fmt.Sprintf("unbound variable '%s'", tok), span)
			}
		default:
			v.addDiag(diagnostics.EEval, fmt.Sprintf("cannot evaluate token: %s", tok), span)
		}
	}
}
