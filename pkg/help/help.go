// Package help holds the reference text printed by `luz help`.
package help

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/thomasrohde/luzscript/pkg/dialect"
)

// QUICKREF is printed by `luz help` with no topic.
const QUICKREF = `LuzScript v0.2 quick reference

  var x = 5 + 3;              declare (value optional: var x;)
  x = x * 2;  x += 1;         assign (= += -= *= /=)
  imprimir(x);                print one value, imprimir() prints a blank line
  si (x > 5) { ... } sino { ... }
  mientrasQue (x < 10) { ... }
  para (var i = 0; i < 3; i = i + 1) { ... }

Commands: run, repl, check, fmt, tokens, help
Topics:   syntax, types, flow, keywords, diagnostics, config, examples
          (luz help <topic>, prefixes accepted)
`

// TopicList is the display order of help topics.
var TopicList = []string{"syntax", "types", "flow", "keywords", "diagnostics", "config", "examples"}

// Topics maps topic names to their text.
var Topics = map[string]string{
	"syntax": `SYNTAX

Statements are recognised by their first token. Semicolons end
declarations, assignments and prints; inside parentheses they are part of
the expression. Whitespace is insignificant outside string literals, and
runs of whitespace inside a literal collapse to one space.

  var <name> [= <expr>];
  <name> <op> <expr>;            op is one of = += -= *= /=
  imprimir([<expr>]);
  si (<cond>) { ... } [sino { ... }]
  mientrasQue (<cond>) { ... }
  para (<init>; <cond>; <post>) { ... }

Expressions use + - * / with the usual precedence and parentheses.
There is no unary minus: write 0 - x. A condition is one comparison
(== != < > <= >=) or a single expression tested for truthiness.
`,

	"types": `TYPES

  integer   5, -3 (as a literal token only), 42
  float     3.14, .5, 5.   (any number containing a dot)
  string    "Hola, mundo!" (escapes are kept as written)
  boolean   verdadero / falso
  absent    value of a declared but unassigned variable, printed as nulo

Arithmetic keeps integers when both sides are integers, except '/', which
always yields a float: 7 * (8 - 2) / 3 prints 14.0. '+' also joins strings.
Integers are 64-bit: a literal or result outside that range fails with
"integer overflow" instead of wrapping.
Falsy values: falso, 0, 0.0, "" and absent. Everything else is truthy.
Numbers compare after promotion, strings lexicographically; values of
other kinds only support == and !=.
`,

	"flow": `FLOW

si evaluates its condition once and runs one branch.
mientrasQue re-evaluates its condition before every iteration.
para runs <init> once, then checks <cond>, runs the body, then <post>.

All variables share one namespace: a variable declared inside a block,
including a para header, stays visible and mutable after the closing
brace. Set block_scope: true to give each block its own scope instead.

max_iterations bounds the total number of loop iterations of one run.
`,

	"diagnostics": `DIAGNOSTICS

  E_LEX       unterminated string literal
  E_SYNTAX    malformed statement (missing '(' or '{', bad for header, ...)
  E_EVAL      evaluation failure (unknown token, division by zero, ...)
  E_UNBOUND   luz check: name read or assigned without a declaration
  E_BUDGET    max_iterations exceeded
  E_CANCELED  execution interrupted
  E_CONFIG    invalid configuration file
  E_IO        file or output failure
  E_INTERNAL  anything else

Exit codes: 0 ok, 1 usage/io/config, 2 lex/syntax/check, 3 budget or
canceled, 4 evaluation error. Use --pretty for human-readable output.
`,

	"config": `CONFIG

Settings are read from the first of: --config <path>, ./.luzrc.yaml,
~/.luz/config.yaml. Without any file the defaults apply.

  language: v0.2          newest language version the program expects
  dialect: spanish        spanish | english
  keywords:               per-keyword overrides
    print: mostrar
  max_iterations: 0       0 means unlimited
  block_scope: false      one scope per block instead of one namespace
  lenient: false          skip unknown statements, ignore undeclared assignments
  log_level: warn         debug | info | warn | error
`,

	"examples": `EXAMPLES

  var x = 10;
  si (x > 5) { imprimir("Mayor que 5"); } sino { imprimir("Menor o igual a 5"); }

  var total = 0;
  para (var i = 1; i <= 4; i += 1) { total = total + i; }
  imprimir(total);

  var n = 0;
  mientrasQue (n < 3) { imprimir(n); n = n + 1; }

English dialect (--dialect english):

  for (var i = 0; i < 2; i = i + 1) { print(i * 2); }
`,
}

func init() {
	Topics["keywords"] = KeywordTable()
}

// KeywordTable lists the built-in dialects side by side.
func KeywordTable() string {
	roles := []string{"declare", "print", "if", "else", "while", "for", "true", "false", "absent", "exit"}
	names := dialect.Names()

	var b strings.Builder
	b.WriteString("KEYWORDS\n\n")
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  role\t%s\n", strings.Join(names, "\t"))
	for _, role := range roles {
		row := []string{role}
		for _, name := range names {
			d, _ := dialect.Lookup(name)
			row = append(row, word(d, role))
		}
		fmt.Fprintf(tw, "  %s\n", strings.Join(row, "\t"))
	}
	tw.Flush()
	fmt.Fprintf(&b, "\nTotal: %d dialects. Override single words with the keywords config map.\n", len(names))
	return b.String()
}

func word(d dialect.Dialect, role string) string {
	switch role {
	case "declare":
		return d.Declare
	case "print":
		return d.Print
	case "if":
		return d.If
	case "else":
		return d.Else
	case "while":
		return d.While
	case "for":
		return d.For
	case "true":
		return d.True
	case "false":
		return d.False
	case "absent":
		return d.Absent
	case "exit":
		return d.Exit
	}
	return ""
}

// MatchTopic resolves a topic by exact name or unique prefix.
func MatchTopic(query string) (string, string, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if content, ok := Topics[query]; ok {
		return query, content, nil
	}
	var matches []string
	for _, name := range TopicList {
		if query != "" && strings.HasPrefix(name, query) {
			matches = append(matches, name)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], Topics[matches[0]], nil
	case 0:
		return "", "", fmt.Errorf("unknown help topic %q (available: %s)", query, strings.Join(TopicList, ", "))
	default:
		sort.Strings(matches)
		return "", "", fmt.Errorf("ambiguous help topic %q (matches: %s)", query, strings.Join(matches, ", "))
	}
}
