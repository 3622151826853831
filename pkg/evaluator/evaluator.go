package evaluator

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/thomasrohde/luzscript/pkg/ast"
	"github.com/thomasrohde/luzscript/pkg/diagnostics"
	"github.com/thomasrohde/luzscript/pkg/dialect"
	"github.com/thomasrohde/luzscript/pkg/parser"
)

// Options configures an Evaluator.
type Options struct {
	Dialect dialect.Dialect
	Stdout  io.Writer
	Logger  *slog.Logger
	Budget  Budget
	// BlockScope opens a scope per block body. By default every variable
	// lives in the root environment and stays visible after its block exits.
	BlockScope bool
	// Lenient turns assignments to unknown variables into no-ops.
	Lenient bool
}

// Evaluator executes parsed programs against a persistent root environment.
// It is not safe for concurrent use.
type Evaluator struct {
	ctx     context.Context
	opts    Options
	env     *Env
	tracker BudgetTracker
	last    Value
	log     *slog.Logger
}

// New creates an Evaluator. A nil env starts from an empty root scope.
func New(env *Env, opts Options) *Evaluator {
	if env == nil {
		env = NewEnv(nil)
	}
	if opts.Dialect.Declare == "" {
		opts.Dialect = dialect.Spanish()
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Evaluator{
		ctx:  context.Background(),
		opts: opts,
		env:  env,
		log:  logger,
	}
}

// Env returns the root environment.
func (ev *Evaluator) Env() *Env {
	return ev.env
}

// Exec runs a program and returns the last value produced by a declaration
// or assignment, or the absent value. Variable changes made before an error
// are kept.
func (ev *Evaluator) Exec(ctx context.Context, program *ast.Program) (Value, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ev.ctx = ctx
	ev.tracker = BudgetTracker{}
	ev.last = NewAbsent()

	span := program.Span
	ev.log.DebugContext(ctx, "run start", "file", span.File, "statements", len(program.Statements))
	err := ev.execStmts(program.Statements, ev.env)
	ev.log.DebugContext(ctx, "run end", "file", span.File, "iterations", ev.tracker.Iterations, "error", err)
	if err != nil {
		return nil, err
	}
	return ev.last, nil
}

func (ev *Evaluator) execStmts(stmts []ast.Stmt, env *Env) error {
	for _, stmt := range stmts {
		if err := ev.execStmt(stmt, env); err != nil {
			return err
		}
	}
	return nil
}

func (ev *Evaluator) execStmt(stmt ast.Stmt, env *Env) error {
	switch s := stmt.(type) {
	case *ast.VarDecl:
		return ev.execVarDecl(s, env)
	case *ast.Assign:
		return ev.execAssign(s, env)
	case *ast.Print:
		return ev.execPrint(s, env)
	case *ast.If:
		return ev.execIf(s, env)
	case *ast.While:
		return ev.execWhile(s, env)
	case *ast.For:
		return ev.execFor(s, env)
	case *ast.Empty:
		return nil
	default:
		return evalErrorf("unknown statement kind: %s", stmt.Kind())
	}
}

// scope opens the environment a block body runs in.
func (ev *Evaluator) scope(env *Env) *Env {
	if !ev.opts.BlockScope {
		return env
	}
	return env.Child()
}

func (ev *Evaluator) evalExpr(expr *ast.Expr, env *Env) (Value, error) {
	val, err := ev.evaluate(env, expr.Tokens)
	if err != nil {
		return nil, withSpan(err, expr.Span)
	}
	return val, nil
}

func (ev *Evaluator) evalCond(cond *ast.Condition, env *Env) (bool, error) {
	ok, err := ev.condition(env, cond.Tokens)
	if err != nil {
		return false, withSpan(err, cond.Span)
	}
	return ok, nil
}

func (ev *Evaluator) execVarDecl(s *ast.VarDecl, env *Env) error {
	val := NewAbsent()
	if s.Value != nil {
		v, err := ev.evalExpr(s.Value, env)
		if err != nil {
			return err
		}
		val = v
	}
	env.Set(s.Name, val)
	ev.last = val
	return nil
}

func (ev *Evaluator) execAssign(s *ast.Assign, env *Env) error {
	current, ok := env.Get(s.Name)
	if !ok {
		if ev.opts.Lenient {
			return nil
		}
		span := s.Span
		return &EvaluationError{Code: diagnostics.EEval, Message: fmt.Sprintf("undefined variable: %s", s.Name), Span: &span}
	}

	val, err := ev.evalExpr(s.Value, env)
	if err != nil {
		return err
	}
	if bin, ok := parser.ArithmeticOp(s.Op); ok {
		val, err = applyOp(bin, current, val)
		if err != nil {
			return withSpan(err, s.Span)
		}
	}
	env.Assign(s.Name, val)
	ev.last = val
	return nil
}

func (ev *Evaluator) execPrint(s *ast.Print, env *Env) error {
	line := ""
	if s.Arg != nil {
		val, err := ev.evalExpr(s.Arg, env)
		if err != nil {
			return err
		}
		line = Display(val, ev.opts.Dialect)
	}
	if _, err := fmt.Fprintln(ev.opts.Stdout, line); err != nil {
		span := s.Span
		return &EvaluationError{Code: diagnostics.EIO, Message: fmt.Sprintf("print: %v", err), Span: &span, Err: err}
	}
	return nil
}

func (ev *Evaluator) execIf(s *ast.If, env *Env) error {
	ok, err := ev.evalCond(s.Cond, env)
	if err != nil {
		return err
	}
	switch {
	case ok:
		return ev.execStmts(s.Then.Statements, ev.scope(env))
	case s.Else != nil:
		return ev.execStmts(s.Else.Statements, ev.scope(env))
	}
	return nil
}

func (ev *Evaluator) execWhile(s *ast.While, env *Env) error {
	var n int64
	for {
		ok, err := ev.evalCond(s.Cond, env)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if err := ev.tick(s.Span); err != nil {
			return err
		}
		if err := ev.execStmts(s.Body.Statements, ev.scope(env)); err != nil {
			return err
		}
		n++
	}
	ev.log.DebugContext(ev.ctx, "loop end", "kind", "while", "line", s.Span.StartLine, "iterations", n)
	return nil
}

func (ev *Evaluator) execFor(s *ast.For, env *Env) error {
	loopEnv := ev.scope(env)
	if err := ev.execStmts(s.Init, loopEnv); err != nil {
		return err
	}

	var n int64
	for {
		ok, err := ev.evalCond(s.Cond, loopEnv)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if err := ev.tick(s.Span); err != nil {
			return err
		}
		if err := ev.execStmts(s.Body.Statements, ev.scope(loopEnv)); err != nil {
			return err
		}
		if err := ev.execStmts(s.Post, loopEnv); err != nil {
			return err
		}
		n++
	}
	ev.log.DebugContext(ev.ctx, "loop end", "kind", "for", "line", s.Span.StartLine, "iterations", n)
	return nil
}

// tick accounts for one loop iteration and stops execution when the
// context is done or the iteration budget is spent.
func (ev *Evaluator) tick(span ast.Span) error {
	if err := ev.ctx.Err(); err != nil {
		return &EvaluationError{Code: diagnostics.ECanceled, Message: fmt.Sprintf("execution canceled: %v", err), Span: &span, Err: err}
	}
	ev.tracker.Iterations++
	if limit := ev.opts.Budget.MaxIterations; limit > 0 && ev.tracker.Iterations > limit {
		return &EvaluationError{Code: diagnostics.EBudget, Message: fmt.Sprintf("iteration budget exceeded (max %d)", limit), Span: &span}
	}
	return nil
}
