// Package runtime provides the top-level LuzScript interpreter.
package runtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/thomasrohde/luzscript/pkg/ast"
	"github.com/thomasrohde/luzscript/pkg/config"
	"github.com/thomasrohde/luzscript/pkg/diagnostics"
	"github.com/thomasrohde/luzscript/pkg/dialect"
	"github.com/thomasrohde/luzscript/pkg/evaluator"
	"github.com/thomasrohde/luzscript/pkg/formatter"
	"github.com/thomasrohde/luzscript/pkg/lexer"
	"github.com/thomasrohde/luzscript/pkg/parser"
	"github.com/thomasrohde/luzscript/pkg/validator"
)

// Interpreter wires the scanner, parser and evaluator around one persistent
// variable store. It is not safe for concurrent use.
type Interpreter struct {
	stdout        io.Writer
	dialect       dialect.Dialect
	logger        *slog.Logger
	maxIterations int64
	blockScope    bool
	lenient       bool

	ev *evaluator.Evaluator
}

// Option is a functional option for configuring the Interpreter.
type Option func(*Interpreter)

// WithStdout sets where print statements write.
func WithStdout(w io.Writer) Option {
	return func(in *Interpreter) {
		in.stdout = w
	}
}

// WithDialect sets the keyword dialect.
func WithDialect(d dialect.Dialect) Option {
	return func(in *Interpreter) {
		in.dialect = d
	}
}

// WithLogger sets the debug logger.
func WithLogger(l *slog.Logger) Option {
	return func(in *Interpreter) {
		in.logger = l
	}
}

// WithMaxIterations bounds the loop iterations of one run. Zero means unlimited.
func WithMaxIterations(n int64) Option {
	return func(in *Interpreter) {
		in.maxIterations = n
	}
}

// WithBlockScope gives each block body its own scope, so variables declared
// inside it are dropped when it exits.
func WithBlockScope(block bool) Option {
	return func(in *Interpreter) {
		in.blockScope = block
	}
}

// WithLenient skips unknown statements and ignores assignments to
// undeclared variables.
func WithLenient(lenient bool) Option {
	return func(in *Interpreter) {
		in.lenient = lenient
	}
}

// WithConfig applies loaded settings. cfg is expected to be validated; a
// dialect that does not resolve leaves the current one in place.
func WithConfig(cfg *config.Config) Option {
	return func(in *Interpreter) {
		if cfg == nil {
			return
		}
		if d, err := cfg.ResolveDialect(); err == nil {
			in.dialect = d
		}
		in.maxIterations = cfg.MaxIterations
		in.blockScope = cfg.BlockScope
		in.lenient = cfg.Lenient
	}
}

// New creates an Interpreter with the given options.
// By default it speaks the Spanish dialect, prints to os.Stdout and has no
// iteration budget.
func New(opts ...Option) *Interpreter {
	in := &Interpreter{
		stdout:  os.Stdout,
		dialect: dialect.Spanish(),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(in)
	}
	in.ev = evaluator.New(nil, evaluator.Options{
		Dialect:    in.dialect,
		Stdout:     in.stdout,
		Logger:     in.logger,
		Budget:     evaluator.Budget{MaxIterations: in.maxIterations},
		BlockScope: in.blockScope,
		Lenient:    in.lenient,
	})
	return in
}

// Dialect returns the keyword dialect in use.
func (in *Interpreter) Dialect() dialect.Dialect {
	return in.dialect
}

// Env returns the persistent variable store.
func (in *Interpreter) Env() *evaluator.Env {
	return in.ev.Env()
}

// Display renders a value the way print would.
func (in *Interpreter) Display(v evaluator.Value) string {
	return evaluator.Display(v, in.dialect)
}

// Tokenize breaks source into tokens without failing.
func (in *Interpreter) Tokenize(source string) []string {
	return lexer.Tokenize(source)
}

func (in *Interpreter) parse(source, filename string) (*ast.Program, error) {
	stream, err := lexer.Scan(source, filename)
	if err != nil {
		return nil, err
	}
	in.logger.Debug("scanned", "file", filename, "tokens", len(stream.Tokens))
	return parser.Parse(stream, parser.Options{
		File:    filename,
		Dialect: in.dialect,
		Lenient: in.lenient,
	})
}

// ExecuteProgram scans, parses and runs source against the persistent
// variable store.
func (in *Interpreter) ExecuteProgram(ctx context.Context, source string) (evaluator.Value, error) {
	return in.Run(ctx, source, "")
}

// Run is ExecuteProgram with a file name for diagnostics. It returns the
// value of the last declaration or assignment, or the absent value.
func (in *Interpreter) Run(ctx context.Context, source, filename string) (evaluator.Value, error) {
	program, err := in.parse(source, filename)
	if err != nil {
		return nil, err
	}
	return in.ev.Exec(ctx, program)
}

// Check scans, parses and validates source without running it. Names
// already in the variable store count as declared.
func (in *Interpreter) Check(source, filename string) []diagnostics.Diagnostic {
	program, err := in.parse(source, filename)
	if err != nil {
		return []diagnostics.Diagnostic{diagnostics.FromError(err)}
	}
	return validator.Validate(program, validator.Options{
		Dialect:    in.dialect,
		BlockScope: in.blockScope,
		Lenient:    in.lenient,
	}, in.Env().Names()...)
}

// Format parses source and prints it in canonical form.
func (in *Interpreter) Format(source, filename string) (string, error) {
	program, err := in.parse(source, filename)
	if err != nil {
		return "", err
	}
	return formatter.Format(program, in.dialect), nil
}

// DiagnosticError wraps diagnostics as an error.
type DiagnosticError struct {
	Diagnostics []diagnostics.Diagnostic
}

func (e *DiagnosticError) Error() string {
	msgs := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		msgs[i] = fmt.Sprintf("%s: %s", d.Code, d.Message)
	}
	return strings.Join(msgs, "; ")
}
