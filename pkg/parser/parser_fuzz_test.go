package parser_test

import (
	"testing"

	"github.com/thomasrohde/luzscript/pkg/lexer"
	"github.com/thomasrohde/luzscript/pkg/parser"
)

// FuzzParse feeds random inputs to the parser to catch panics.
// The parser should never panic; it returns a SyntaxError for invalid input.
func FuzzParse(f *testing.F) {
	seeds := []string{
		`var x = 5 + 3;`,
		`var x; x = 1;`,
		`x += 2; x -= 1; x *= 3; x /= 2;`,
		`imprimir("Hola, mundo!");`,
		`imprimir();`,
		`si (x > 5) { imprimir(1); } sino { imprimir(2); }`,
		`mientrasQue (x < 3) { x = x + 1; }`,
		`para (var i = 0; i < 3; i = i + 1) { imprimir(i); }`,
		`para (;;) { }`,
		`para (var i = 0; i < 3) { }`,
		`si (x) { si (y) { } }`,
		``,
		`   `,
		`;;;`,
		`}`,
		`{`,
		`si (`,
		`si ( ) {`,
		`imprimir(`,
		`var`,
		`var =`,
		`x =`,
		`sino { }`,
		`para (`,
		`((()))`,
	}

	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, input string) {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("parser.Parse panicked on input %q: %v", input, r)
				}
			}()
			stream, _ := lexer.Scan(input, "fuzz.luz")
			parser.Parse(stream, parser.Options{File: "fuzz.luz"})
			parser.Parse(stream, parser.Options{File: "fuzz.luz", Lenient: true})
		}()
	})
}
