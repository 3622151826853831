package evaluator

import (
	"fmt"

	"github.com/thomasrohde/luzscript/pkg/ast"
	"github.com/thomasrohde/luzscript/pkg/diagnostics"
)

// EvaluationError represents a failure while evaluating tokens,
// expressions, conditions or statements.
type EvaluationError struct {
	Code    string
	Message string
	Span    *ast.Span
	Err     error
}

func (e *EvaluationError) Error() string {
	return e.Message
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}

// Diagnostic returns the error as a diagnostic.
func (e *EvaluationError) Diagnostic() diagnostics.Diagnostic {
	return diagnostics.MakeDiag(e.Code, e.Message, e.Span, "")
}

func evalErrorf(format string, args ...any) *EvaluationError {
	return &EvaluationError{Code: diagnostics.EEval, Message: fmt.Sprintf(format, args...)}
}

// withSpan attaches span to err when it is an EvaluationError that has no
// location yet.
func withSpan(err error, span ast.Span) error {
	if ee, ok := err.(*EvaluationError); ok && ee.Span == nil {
		s := span
		ee.Span = &s
	}
	return err
}
