// Command luz is the LuzScript CLI entry point.
package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/thomasrohde/luzscript/pkg/config"
	"github.com/thomasrohde/luzscript/pkg/diagnostics"
	"github.com/thomasrohde/luzscript/pkg/evaluator"
	"github.com/thomasrohde/luzscript/pkg/help"
	"github.com/thomasrohde/luzscript/pkg/runtime"
)

const usage = `usage: luz <command> [options]
commands: run, repl, check, fmt, tokens, help
global options: --config <path> --dialect spanish|english --log-level debug|info|warn|error`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// app carries the streams and global settings shared by every command.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configPath  string
	dialectName string
	logLevel    string

	cfg    *config.Config
	logger *slog.Logger
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		fmt.Fprintln(stderr, usage)
		return 1
	}
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}

	cmd := args[0]
	switch cmd {
	case "run":
		return a.cmdRun(ctx, args[1:])
	case "repl":
		return a.cmdRepl(ctx, args[1:])
	case "check":
		return a.cmdCheck(args[1:])
	case "fmt":
		return a.cmdFmt(args[1:])
	case "tokens":
		return a.cmdTokens(args[1:])
	case "help", "--help", "-h":
		return a.cmdHelp(args[1:])
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n%s\n", cmd, usage)
		return 1
	}
}

// flags returns a flag set for a command with the global options registered.
func (a *app) flags(name, synopsis string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(a.stderr)
	fs.StringVar(&a.configPath, "config", "", "config file (default: ./.luzrc.yaml, then ~/.luz/config.yaml)")
	fs.StringVar(&a.dialectName, "dialect", "", "keyword dialect: spanish or english")
	fs.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")
	fs.Usage = func() {
		fmt.Fprintf(a.stderr, "usage: luz %s %s\n", name, synopsis)
		fs.PrintDefaults()
	}
	return fs
}

// parse parses command flags; ok is false when the command should stop
// with code.
func (a *app) parse(fs *pflag.FlagSet, args []string) (code int, ok bool) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0, false
		}
		return 1, false
	}
	return 0, true
}

// setup loads the configuration, applies flag overrides and builds the logger.
func (a *app) setup() error {
	cwd, err := os.Getwd()
	if err != nil {
		return &configError{err: fmt.Errorf("resolve working directory: %w", err)}
	}
	cfg, err := config.Load(a.configPath, cwd)
	if err != nil {
		return &configError{err: err}
	}
	if a.dialectName != "" {
		cfg.Dialect = a.dialectName
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	lvl, _ := cfg.Level()
	a.cfg = cfg
	a.logger = slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: lvl}))
	a.logger.Debug("config loaded", "path", cfg.Path, "dialect", cfg.Dialect, "max_iterations", cfg.MaxIterations)
	return nil
}

func (a *app) interpreter(stdout io.Writer, extra ...runtime.Option) *runtime.Interpreter {
	opts := []runtime.Option{
		runtime.WithConfig(a.cfg),
		runtime.WithLogger(a.logger),
		runtime.WithStdout(stdout),
	}
	return runtime.New(append(opts, extra...)...)
}

// report writes the diagnostics for err to stderr and returns the exit code.
func (a *app) report(err error, pretty bool) int {
	fmt.Fprintln(a.stderr, formatError(err, pretty))
	return exitCode(err)
}

func formatError(err error, pretty bool) string {
	var derr *runtime.DiagnosticError
	if errors.As(err, &derr) {
		return diagnostics.FormatDiagnostics(derr.Diagnostics, pretty)
	}
	return diagnostics.FormatDiagnostics([]diagnostics.Diagnostic{diagnostics.FromError(err)}, pretty)
}

func exitCode(err error) int {
	var derr *runtime.DiagnosticError
	if errors.As(err, &derr) {
		return 2
	}
	return exitCodeForDiag(diagnostics.FromError(err).Code)
}

func exitCodeForDiag(code string) int {
	switch code {
	case diagnostics.ELex, diagnostics.ESyntax, diagnostics.EUnbound:
		return 2
	case diagnostics.EBudget, diagnostics.ECanceled:
		return 3
	case diagnostics.EConfig, diagnostics.EIO:
		return 1
	default:
		return 4
	}
}

func (a *app) readSource(file string) (string, string, error) {
	if file == "-" {
		data, err := io.ReadAll(a.stdin)
		if err != nil {
			return "", "", &ioError{msg: fmt.Sprintf("error reading stdin: %s", err)}
		}
		return string(data), "<stdin>", nil
	}
	source, err := os.ReadFile(file)
	if err != nil {
		return "", "", &ioError{msg: fmt.Sprintf("cannot read file: %s", file)}
	}
	return string(source), file, nil
}

// configError reports settings that could not be loaded.
type configError struct {
	err error
}

func (e *configError) Error() string {
	return e.err.Error()
}

func (e *configError) Unwrap() error {
	return e.err
}

// Diagnostic returns the failure as an E_CONFIG diagnostic.
func (e *configError) Diagnostic() diagnostics.Diagnostic {
	return diagnostics.MakeDiag(diagnostics.EConfig, e.err.Error(), nil, "")
}

// ioError reports a failure to read program input.
type ioError struct {
	msg string
}

func (e *ioError) Error() string {
	return e.msg
}

// Diagnostic returns the failure as an E_IO diagnostic.
func (e *ioError) Diagnostic() diagnostics.Diagnostic {
	return diagnostics.MakeDiag(diagnostics.EIO, e.msg, nil, "")
}

// runResult is the buffered outcome of one file in a batch.
type runResult struct {
	stdout bytes.Buffer
	stderr string
	code   int
}

func (a *app) cmdRun(ctx context.Context, args []string) int {
	fs := a.flags("run", "[--pretty] [--jobs N] [--max-iterations N] <file|->...")
	pretty := fs.Bool("pretty", false, "human-readable diagnostics")
	jobs := fs.IntP("jobs", "j", 1, "number of files to run concurrently")
	maxIter := fs.Int64("max-iterations", 0, "loop iteration budget per file (0 = unlimited)")
	if code, ok := a.parse(fs, args); !ok {
		return code
	}
	files := fs.Args()
	if len(files) == 0 {
		fs.Usage()
		return 1
	}
	if *jobs < 1 {
		fmt.Fprintln(a.stderr, "--jobs must be at least 1")
		return 1
	}
	if err := a.setup(); err != nil {
		return a.report(err, *pretty)
	}

	var extra []runtime.Option
	if fs.Changed("max-iterations") {
		extra = append(extra, runtime.WithMaxIterations(*maxIter))
	}

	results := make([]*runResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(*jobs)
	for i, file := range files {
		source, filename, err := a.readSource(file)
		res := &runResult{}
		results[i] = res
		if err != nil {
			res.stderr, res.code = formatError(err, *pretty), exitCode(err)
			continue
		}
		g.Go(func() error {
			interp := a.interpreter(&res.stdout, extra...)
			if _, err := interp.Run(gctx, source, filename); err != nil {
				res.stderr, res.code = formatError(err, *pretty), exitCode(err)
			}
			return nil
		})
	}
	_ = g.Wait()

	code := 0
	for _, res := range results {
		a.stdout.Write(res.stdout.Bytes())
		if res.stderr != "" {
			fmt.Fprintln(a.stderr, res.stderr)
		}
		if code == 0 {
			code = res.code
		}
	}
	return code
}

func (a *app) cmdRepl(ctx context.Context, args []string) int {
	fs := a.flags("repl", "")
	if code, ok := a.parse(fs, args); !ok {
		return code
	}
	if err := a.setup(); err != nil {
		return a.report(err, true)
	}
	interp := a.interpreter(a.stdout)
	exit := interp.Dialect().Exit

	scanner := bufio.NewScanner(a.stdin)
	for {
		fmt.Fprint(a.stdout, ">>> ")
		if !scanner.Scan() {
			fmt.Fprintln(a.stdout)
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if strings.EqualFold(line, exit) || strings.EqualFold(line, "salir") || strings.EqualFold(line, "exit") {
			break
		}
		if line == "" {
			continue
		}
		val, err := interp.ExecuteProgram(ctx, line)
		if err != nil {
			fmt.Fprintf(a.stdout, "Error: %s\n", err)
			continue
		}
		if !evaluator.IsAbsent(val) {
			fmt.Fprintf(a.stdout, "=> %s\n", interp.Display(val))
		}
	}
	if err := scanner.Err(); err != nil {
		return a.report(&ioError{msg: fmt.Sprintf("error reading input: %s", err)}, true)
	}
	return 0
}

func (a *app) cmdCheck(args []string) int {
	fs := a.flags("check", "[--pretty] <file|->")
	pretty := fs.Bool("pretty", false, "human-readable diagnostics")
	if code, ok := a.parse(fs, args); !ok {
		return code
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 1
	}
	if err := a.setup(); err != nil {
		return a.report(err, *pretty)
	}
	source, filename, err := a.readSource(fs.Arg(0))
	if err != nil {
		return a.report(err, *pretty)
	}

	diags := a.interpreter(io.Discard).Check(source, filename)
	if len(diags) > 0 {
		return a.report(&runtime.DiagnosticError{Diagnostics: diags}, *pretty)
	}
	if *pretty {
		fmt.Fprintln(a.stdout, "No errors found.")
	} else {
		fmt.Fprintln(a.stdout, "[]")
	}
	return 0
}

func (a *app) cmdFmt(args []string) int {
	fs := a.flags("fmt", "[--write] <file>")
	write := fs.BoolP("write", "w", false, "rewrite the file in place")
	if code, ok := a.parse(fs, args); !ok {
		return code
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 1
	}
	if err := a.setup(); err != nil {
		return a.report(err, false)
	}
	file := fs.Arg(0)
	source, filename, err := a.readSource(file)
	if err != nil {
		return a.report(err, false)
	}

	formatted, err := a.interpreter(io.Discard).Format(source, filename)
	if err != nil {
		return a.report(err, false)
	}
	if *write && file != "-" {
		if err := os.WriteFile(file, []byte(formatted), 0o644); err != nil {
			return a.report(&ioError{msg: fmt.Sprintf("error writing file: %s", err)}, false)
		}
		return 0
	}
	fmt.Fprint(a.stdout, formatted)
	return 0
}

func (a *app) cmdTokens(args []string) int {
	fs := a.flags("tokens", "[--json] <file|->")
	asJSON := fs.Bool("json", false, "print the tokens as a JSON array")
	if code, ok := a.parse(fs, args); !ok {
		return code
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 1
	}
	source, _, err := a.readSource(fs.Arg(0))
	if err != nil {
		return a.report(err, false)
	}

	tokens := runtime.New(runtime.WithStdout(io.Discard)).Tokenize(source)
	if *asJSON {
		if tokens == nil {
			tokens = []string{}
		}
		b, _ := json.Marshal(tokens)
		fmt.Fprintln(a.stdout, string(b))
		return 0
	}
	for _, tok := range tokens {
		fmt.Fprintln(a.stdout, tok)
	}
	return 0
}

func (a *app) cmdHelp(args []string) int {
	topic := ""
	for _, arg := range args {
		if !strings.HasPrefix(arg, "-") {
			topic = arg
		}
	}
	if topic == "" {
		fmt.Fprint(a.stdout, help.QUICKREF)
		return 0
	}
	_, content, err := help.MatchTopic(topic)
	if err != nil {
		fmt.Fprintln(a.stderr, err)
		return 1
	}
	fmt.Fprint(a.stdout, content)
	return 0
}
