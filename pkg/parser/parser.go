// Package parser carves a LuzScript token stream into statements.
//
// Statements are recognised positionally: a leading keyword selects the
// construct and delimiter matching over the token slice finds its parts.
// Expressions and conditions are left as token slices.
package parser

import (
	"fmt"

	"github.com/thomasrohde/luzscript/pkg/ast"
	"github.com/thomasrohde/luzscript/pkg/diagnostics"
	"github.com/thomasrohde/luzscript/pkg/dialect"
	"github.com/thomasrohde/luzscript/pkg/lexer"
)

// compoundOps maps compound assignment operators to their arithmetic operator.
var compoundOps = map[string]string{
	"+=": "+",
	"-=": "-",
	"*=": "*",
	"/=": "/",
}

// ArithmeticOp returns the binary operator behind a compound assignment
// operator such as "+=".
func ArithmeticOp(op string) (string, bool) {
	bin, ok := compoundOps[op]
	return bin, ok
}

// SyntaxError reports a violated structural expectation.
type SyntaxError struct {
	Diag diagnostics.Diagnostic
}

func (e *SyntaxError) Error() string {
	return e.Diag.Message
}

// Diagnostic returns the diagnostic carried by the error.
func (e *SyntaxError) Diagnostic() diagnostics.Diagnostic {
	return e.Diag
}

func syntaxError(msg string, span *ast.Span) *SyntaxError {
	return &SyntaxError{Diag: diagnostics.MakeDiag(diagnostics.ESyntax, msg, span, "")}
}

// Options configures parsing.
type Options struct {
	File    string
	Dialect dialect.Dialect
	// Lenient skips unrecognised leading tokens instead of failing.
	Lenient bool
}

type parser struct {
	stream  *lexer.Stream
	toks    []string
	file    string
	kw      dialect.Dialect
	lenient bool
}

// Parse builds a program from a scanned token stream.
func Parse(stream *lexer.Stream, opts Options) (*ast.Program, error) {
	kw := opts.Dialect
	if kw.Declare == "" {
		kw = dialect.Spanish()
	}
	p := &parser{
		stream:  stream,
		toks:    stream.Tokens,
		file:    opts.File,
		kw:      kw,
		lenient: opts.Lenient,
	}
	stmts, err := p.parseStatements(0, len(p.toks))
	if err != nil {
		return nil, err
	}
	return &ast.Program{
		Span:       p.span(0, len(p.toks)),
		Statements: stmts,
	}, nil
}

// ParseTokens parses bare tokens that carry no position information.
func ParseTokens(tokens []string, opts Options) (*ast.Program, error) {
	return Parse(&lexer.Stream{Tokens: tokens}, opts)
}

func (p *parser) span(lo, hi int) ast.Span {
	return p.stream.Span(p.file, lo, hi)
}

func (p *parser) errorAt(at int, format string, args ...any) error {
	span := p.span(at, at+1)
	return syntaxError(fmt.Sprintf(format, args...), &span)
}

func (p *parser) parseStatements(lo, hi int) ([]ast.Stmt, error) {
	var stmts []ast.Stmt
	for i := lo; i < hi; {
		stmt, next, err := p.parseStatement(i, hi)
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
		i = next
	}
	return stmts, nil
}

// parseStatement recognises the statement starting at toks[i] and returns
// it with the index just past it. Nothing past hi is examined.
func (p *parser) parseStatement(i, hi int) (ast.Stmt, int, error) {
	tok := p.toks[i]
	switch {
	case tok == ";":
		return &ast.Empty{Span: p.span(i, i+1)}, i + 1, nil
	case tok == p.kw.Declare:
		return p.parseVarDecl(i, hi)
	case tok == p.kw.Print:
		return p.parsePrint(i, hi)
	case tok == p.kw.If:
		return p.parseIf(i, hi)
	case tok == p.kw.While:
		return p.parseWhile(i, hi)
	case tok == p.kw.For:
		return p.parseFor(i, hi)
	case p.isAssignTarget(tok) && i+1 < hi && isAssignOp(p.toks[i+1]):
		return p.parseAssign(i, hi)
	}

	if p.lenient {
		return nil, i + 1, nil
	}
	return nil, 0, p.errorAt(i, "unexpected token %q", tok)
}

func (p *parser) isAssignTarget(tok string) bool {
	return lexer.IsIdentifier(tok) && !p.kw.IsKeyword(tok)
}

func isAssignOp(tok string) bool {
	if tok == "=" {
		return true
	}
	_, ok := compoundOps[tok]
	return ok
}

// findTerminator returns the index of the first ';' in toks[lo:hi] outside
// any parentheses or braces, or hi when there is none.
func (p *parser) findTerminator(lo, hi int) int {
	depth := 0
	for i := lo; i < hi; i++ {
		switch p.toks[i] {
		case "(", "{":
			depth++
		case ")", "}":
			depth--
		case ";":
			if depth <= 0 {
				return i
			}
		}
	}
	return hi
}

// skipSemicolon steps over an optional ';' at toks[i].
func (p *parser) skipSemicolon(i, hi int) int {
	if i < hi && p.toks[i] == ";" {
		return i + 1
	}
	return i
}

func (p *parser) expr(lo, hi int) *ast.Expr {
	return &ast.Expr{Span: p.span(lo, hi), Tokens: p.toks[lo:hi]}
}

func (p *parser) cond(lo, hi int) *ast.Condition {
	return &ast.Condition{Span: p.span(lo, hi), Tokens: p.toks[lo:hi]}
}

func (p *parser) parseVarDecl(i, hi int) (ast.Stmt, int, error) {
	if i+1 >= hi || !p.isAssignTarget(p.toks[i+1]) {
		return nil, 0, p.errorAt(i, "expected identifier after '%s'", p.kw.Declare)
	}
	decl := &ast.VarDecl{Name: p.toks[i+1]}

	if i+2 < hi && p.toks[i+2] == "=" {
		end := p.findTerminator(i+3, hi)
		decl.Value = p.expr(i+3, end)
		decl.Span = p.span(i, end)
		return decl, p.skipSemicolon(end, hi), nil
	}

	decl.Span = p.span(i, i+2)
	return decl, p.skipSemicolon(i+2, hi), nil
}

func (p *parser) parseAssign(i, hi int) (ast.Stmt, int, error) {
	end := p.findTerminator(i+2, hi)
	stmt := &ast.Assign{
		Span:  p.span(i, end),
		Name:  p.toks[i],
		Op:    p.toks[i+1],
		Value: p.expr(i+2, end),
	}
	return stmt, p.skipSemicolon(end, hi), nil
}

func (p *parser) parsePrint(i, hi int) (ast.Stmt, int, error) {
	if i+1 >= hi || p.toks[i+1] != "(" {
		return nil, 0, p.errorAt(i, "expected '(' after '%s'", p.kw.Print)
	}
	closeIdx, err := p.matchParen(i+1, hi)
	if err != nil {
		return nil, 0, err
	}
	stmt := &ast.Print{Span: p.span(i, closeIdx+1)}
	if closeIdx > i+2 {
		stmt.Arg = p.expr(i+2, closeIdx)
	}
	return stmt, p.skipSemicolon(closeIdx+1, hi), nil
}

// header parses "(cond) {" starting at the keyword at toks[i] and returns
// the condition bounds and the index of the opening brace.
func (p *parser) header(i, hi int, keyword string) (int, int, int, error) {
	if i+1 >= hi || p.toks[i+1] != "(" {
		return 0, 0, 0, p.errorAt(i, "expected '(' after '%s'", keyword)
	}
	condEnd, err := p.matchParen(i+1, hi)
	if err != nil {
		return 0, 0, 0, err
	}
	if condEnd+1 >= hi || p.toks[condEnd+1] != "{" {
		return 0, 0, 0, p.errorAt(condEnd, "expected '{' after condition")
	}
	return i + 2, condEnd, condEnd + 1, nil
}

// block parses the brace-delimited body opening at toks[open] and returns it
// with the index of the closing brace.
func (p *parser) block(open, hi int) (*ast.Block, int, error) {
	closeIdx, err := p.matchBrace(open, hi)
	if err != nil {
		return nil, 0, err
	}
	stmts, err := p.parseStatements(open+1, closeIdx)
	if err != nil {
		return nil, 0, err
	}
	return &ast.Block{Span: p.span(open, closeIdx+1), Statements: stmts}, closeIdx, nil
}

func (p *parser) parseIf(i, hi int) (ast.Stmt, int, error) {
	condLo, condHi, open, err := p.header(i, hi, p.kw.If)
	if err != nil {
		return nil, 0, err
	}
	then, end, err := p.block(open, hi)
	if err != nil {
		return nil, 0, err
	}
	stmt := &ast.If{Cond: p.cond(condLo, condHi), Then: then}

	if end+1 < hi && p.toks[end+1] == p.kw.Else {
		if end+2 >= hi || p.toks[end+2] != "{" {
			return nil, 0, p.errorAt(end+1, "expected '{' after '%s'", p.kw.Else)
		}
		els, elseEnd, err := p.block(end+2, hi)
		if err != nil {
			return nil, 0, err
		}
		stmt.Else = els
		end = elseEnd
	}

	stmt.Span = p.span(i, end+1)
	return stmt, end + 1, nil
}

func (p *parser) parseWhile(i, hi int) (ast.Stmt, int, error) {
	condLo, condHi, open, err := p.header(i, hi, p.kw.While)
	if err != nil {
		return nil, 0, err
	}
	body, end, err := p.block(open, hi)
	if err != nil {
		return nil, 0, err
	}
	return &ast.While{
		Span: p.span(i, end+1),
		Cond: p.cond(condLo, condHi),
		Body: body,
	}, end + 1, nil
}

func (p *parser) parseFor(i, hi int) (ast.Stmt, int, error) {
	if i+1 >= hi || p.toks[i+1] != "(" {
		return nil, 0, p.errorAt(i, "expected '(' after '%s'", p.kw.For)
	}
	headEnd, err := p.matchParen(i+1, hi)
	if err != nil {
		return nil, 0, err
	}
	parts := splitBounds(p.toks, i+2, headEnd)
	if len(parts) != 3 {
		return nil, 0, p.errorAt(i, "invalid for loop format: expected 3 clauses, got %d", len(parts))
	}
	if headEnd+1 >= hi || p.toks[headEnd+1] != "{" {
		return nil, 0, p.errorAt(headEnd, "expected '{' after for header")
	}

	init, err := p.parseStatements(parts[0][0], parts[0][1])
	if err != nil {
		return nil, 0, err
	}
	post, err := p.parseStatements(parts[2][0], parts[2][1])
	if err != nil {
		return nil, 0, err
	}
	body, end, err := p.block(headEnd+1, hi)
	if err != nil {
		return nil, 0, err
	}

	return &ast.For{
		Span: p.span(i, end+1),
		Init: init,
		Cond: p.cond(parts[1][0], parts[1][1]),
		Post: post,
		Body: body,
	}, end + 1, nil
}

func (p *parser) matchParen(open, hi int) (int, error) {
	idx, err := FindMatchingParen(p.toks[:hi], open)
	if err != nil {
		return 0, p.errorAt(open, "%s", err.Error())
	}
	return idx, nil
}

func (p *parser) matchBrace(open, hi int) (int, error) {
	idx, err := FindMatchingBrace(p.toks[:hi], open)
	if err != nil {
		return 0, p.errorAt(open, "%s", err.Error())
	}
	return idx, nil
}
