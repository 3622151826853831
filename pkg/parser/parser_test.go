package parser_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/thomasrohde/luzscript/pkg/ast"
	"github.com/thomasrohde/luzscript/pkg/diagnostics"
	"github.com/thomasrohde/luzscript/pkg/dialect"
	"github.com/thomasrohde/luzscript/pkg/lexer"
	"github.com/thomasrohde/luzscript/pkg/parser"
)

// helper: scan and parse source, failing on any error
func mustParse(t *testing.T, source string) *ast.Program {
	t.Helper()
	stream, err := lexer.Scan(source, "test.luz")
	if err != nil {
		t.Fatalf("unexpected lex error: %v", err)
	}
	prog, err := parser.Parse(stream, parser.Options{File: "test.luz"})
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	return prog
}

// helper: parse source and return the syntax error it must produce
func mustFail(t *testing.T, source string) *parser.SyntaxError {
	t.Helper()
	stream, _ := lexer.Scan(source, "test.luz")
	prog, err := parser.Parse(stream, parser.Options{File: "test.luz"})
	if err == nil {
		t.Fatalf("expected parse to fail, got %d statements", len(prog.Statements))
	}
	var se *parser.SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("expected *SyntaxError, got %T", err)
	}
	if se.Diag.Code != diagnostics.ESyntax {
		t.Errorf("got code %q, want %q", se.Diag.Code, diagnostics.ESyntax)
	}
	return se
}

// helper: parse a single statement
func single(t *testing.T, source string) ast.Stmt {
	t.Helper()
	prog := mustParse(t, source)
	if len(prog.Statements) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(prog.Statements))
	}
	return prog.Statements[0]
}

// ---------------------------------------------------------------------------
// Delimiter matching
// ---------------------------------------------------------------------------

func TestFindMatchingParen(t *testing.T) {
	toks := lexer.Tokenize("( a ( b ) ( c ( d ) ) ) e )")
	got, err := parser.FindMatchingParen(toks, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got != 11 {
		t.Errorf("got %d, want 11", got)
	}

	inner, err := parser.FindMatchingParen(toks, 2)
	if err != nil {
		t.Fatal(err)
	}
	if inner != 4 {
		t.Errorf("got %d, want 4", inner)
	}

	if _, err := parser.FindMatchingParen(lexer.Tokenize("( ( )"), 0); err == nil || err.Error() != "unbalanced parentheses" {
		t.Errorf("expected unbalanced parentheses, got %v", err)
	}
}

func TestFindMatchingBrace(t *testing.T) {
	toks := lexer.Tokenize("{ { } x { } }")
	got, err := parser.FindMatchingBrace(toks, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got != 6 {
		t.Errorf("got %d, want 6", got)
	}
	if _, err := parser.FindMatchingBrace(lexer.Tokenize("{ {"), 0); err == nil || err.Error() != "unbalanced braces" {
		t.Errorf("expected unbalanced braces, got %v", err)
	}
}

func TestSplitForParts(t *testing.T) {
	tests := []struct {
		header string
		want   [][]string
	}{
		{"var i = 0; i < 3; i = i + 1", [][]string{{"var", "i", "=", "0"}, {"i", "<", "3"}, {"i", "=", "i", "+", "1"}}},
		{";;", [][]string{{}, {}, {}}},
		{"i < 3", [][]string{{"i", "<", "3"}}},
		{"a = (1; 2); b; c", [][]string{{"a", "=", "(", "1", ";", "2", ")"}, {"b"}, {"c"}}},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			got := parser.SplitForParts(lexer.Tokenize(tt.header))
			if diff := cmp.Diff(tt.want, got, cmpEmptySlices); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// cmpEmptySlices treats nil and empty token slices as equal.
var cmpEmptySlices = cmp.Comparer(func(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
})

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

func TestParseVarDecl(t *testing.T) {
	decl, ok := single(t, "var x = 5 + 3;").(*ast.VarDecl)
	if !ok {
		t.Fatal("expected *ast.VarDecl")
	}
	if decl.Name != "x" {
		t.Errorf("got name %q", decl.Name)
	}
	if diff := cmp.Diff([]string{"5", "+", "3"}, decl.Value.Tokens); diff != "" {
		t.Errorf("value tokens mismatch (-want +got):\n%s", diff)
	}

	bare, ok := single(t, "var y;").(*ast.VarDecl)
	if !ok || bare.Value != nil {
		t.Errorf("expected declaration without value, got %+v", bare)
	}
}

func TestParseTerminatorIgnoresNestedSemicolons(t *testing.T) {
	prog := mustParse(t, "var x = (1 + 2); imprimir(x);")
	if len(prog.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(prog.Statements))
	}
}

func TestParseAssign(t *testing.T) {
	tests := []struct {
		src string
		op  string
	}{
		{"x = x * 2;", "="},
		{"x += 1;", "+="},
		{"x -= 1;", "-="},
		{"x *= 2;", "*="},
		{"x /= 2;", "/="},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			as, ok := single(t, tt.src).(*ast.Assign)
			if !ok {
				t.Fatal("expected *ast.Assign")
			}
			if as.Name != "x" || as.Op != tt.op {
				t.Errorf("got %s %s", as.Name, as.Op)
			}
		})
	}
	if bin, ok := parser.ArithmeticOp("*="); !ok || bin != "*" {
		t.Errorf("ArithmeticOp(*=) = %q, %v", bin, ok)
	}
	if _, ok := parser.ArithmeticOp("="); ok {
		t.Error("ArithmeticOp(=) should report false")
	}
}

func TestParsePrint(t *testing.T) {
	pr, ok := single(t, "imprimir((2 + 3) * 4);").(*ast.Print)
	if !ok {
		t.Fatal("expected *ast.Print")
	}
	if got := pr.Arg.String(); got != "(2 + 3) * 4" {
		t.Errorf("got arg %q", got)
	}

	blank, ok := single(t, "imprimir()").(*ast.Print)
	if !ok || blank.Arg != nil {
		t.Errorf("expected print without argument, got %+v", blank)
	}
}

func TestParseIfElse(t *testing.T) {
	st, ok := single(t, `si (x > 5) { imprimir("a"); var y = 1; } sino { imprimir("b"); }`).(*ast.If)
	if !ok {
		t.Fatal("expected *ast.If")
	}
	if diff := cmp.Diff([]string{"x", ">", "5"}, st.Cond.Tokens); diff != "" {
		t.Errorf("condition mismatch (-want +got):\n%s", diff)
	}
	if len(st.Then.Statements) != 2 {
		t.Errorf("then: got %d statements", len(st.Then.Statements))
	}
	if st.Else == nil || len(st.Else.Statements) != 1 {
		t.Errorf("else: got %+v", st.Else)
	}
}

func TestParseWhile(t *testing.T) {
	st, ok := single(t, "mientrasQue (x < 3) { x = x + 1; }").(*ast.While)
	if !ok {
		t.Fatal("expected *ast.While")
	}
	if len(st.Body.Statements) != 1 {
		t.Errorf("got %d body statements", len(st.Body.Statements))
	}
}

func TestParseFor(t *testing.T) {
	st, ok := single(t, "para (var i = 0; i < 3; i = i + 1) { imprimir(i); }").(*ast.For)
	if !ok {
		t.Fatal("expected *ast.For")
	}
	if len(st.Init) != 1 || st.Init[0].Kind() != "VarDecl" {
		t.Errorf("unexpected init: %+v", st.Init)
	}
	if len(st.Post) != 1 || st.Post[0].Kind() != "Assign" {
		t.Errorf("unexpected post: %+v", st.Post)
	}
	if diff := cmp.Diff([]string{"i", "<", "3"}, st.Cond.Tokens); diff != "" {
		t.Errorf("condition mismatch (-want +got):\n%s", diff)
	}
}

func TestParseSpans(t *testing.T) {
	prog := mustParse(t, "var a = 1;\n\nimprimir(a);")
	sp := prog.Statements[1].NodeSpan()
	if sp.File != "test.luz" || sp.StartLine != 3 || sp.StartCol != 1 {
		t.Errorf("unexpected span: %+v", sp)
	}
}

func TestParseEmptyStatements(t *testing.T) {
	prog := mustParse(t, ";; var a = 1;;")
	var kinds []string
	for _, s := range prog.Statements {
		kinds = append(kinds, s.Kind())
	}
	if diff := cmp.Diff([]string{"Empty", "Empty", "VarDecl", "Empty"}, kinds); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

// ---------------------------------------------------------------------------
// Syntax errors
// ---------------------------------------------------------------------------

func TestSyntaxErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"var without name", "var = 3;", "expected identifier after 'var'"},
		{"var with keyword", "var si = 3;", "expected identifier after 'var'"},
		{"print without paren", "imprimir 3;", "expected '(' after 'imprimir'"},
		{"unclosed print", "imprimir(3;", "unbalanced parentheses"},
		{"if without paren", "si x > 1 { }", "expected '(' after 'si'"},
		{"if without brace", "si (x > 1) imprimir(1);", "expected '{' after condition"},
		{"unclosed block", "si (x > 1) { imprimir(1);", "unbalanced braces"},
		{"else without brace", "si (x) { } sino imprimir(1);", "expected '{' after 'sino'"},
		{"while without brace", "mientrasQue (x) x = 1;", "expected '{' after condition"},
		{"for with two clauses", "para (var i = 0; i < 3) { }", "invalid for loop format: expected 3 clauses, got 2"},
		{"for without brace", "para (;;) imprimir(1);", "expected '{' after for header"},
		{"unknown leading token", "5 + 3;", `unexpected token "5"`},
		{"bare identifier", "x;", `unexpected token "x"`},
		{"stray brace", "}", `unexpected token "}"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			se := mustFail(t, tt.src)
			if !strings.Contains(se.Error(), tt.want) {
				t.Errorf("got %q, want it to contain %q", se.Error(), tt.want)
			}
			if se.Diag.Span == nil {
				t.Error("expected the diagnostic to carry a span")
			}
		})
	}
}

func TestLenientSkipsUnknownTokens(t *testing.T) {
	prog, err := parser.ParseTokens(lexer.Tokenize("5 + 3; imprimir(1);"), parser.Options{Lenient: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var kinds []string
	for _, s := range prog.Statements {
		kinds = append(kinds, s.Kind())
	}
	if diff := cmp.Diff([]string{"Empty", "Print"}, kinds); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestEnglishKeywords(t *testing.T) {
	prog, err := parser.ParseTokens(lexer.Tokenize(`while (x < 3) { print(x); } if (true) { } else { }`), parser.Options{Dialect: dialect.English()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prog.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(prog.Statements))
	}

	// Spanish keywords are plain identifiers under English.
	if _, err := parser.ParseTokens(lexer.Tokenize("imprimir(1);"), parser.Options{Dialect: dialect.English()}); err == nil {
		t.Error("expected imprimir to be rejected under the English dialect")
	}
}
