// Package diagnostics defines LuzScript diagnostic types for scan, syntax,
// validation and evaluation errors.
package diagnostics

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/thomasrohde/luzscript/pkg/ast"
)

// Diagnostic code constants.
const (
	ELex      = "E_LEX"
	ESyntax   = "E_SYNTAX"
	EEval     = "E_EVAL"
	EUnbound  = "E_UNBOUND"
	EBudget   = "E_BUDGET"
	ECanceled = "E_CANCELED"
	EConfig   = "E_CONFIG"
	EIO       = "E_IO"
	EInternal = "E_INTERNAL"
)

// Diagnostic represents a scan, syntax, validation, or runtime diagnostic.
type Diagnostic struct {
	Code    string    `json:"code"`
	Message string    `json:"message"`
	Span    *ast.Span `json:"span,omitempty"`
	Hint    string    `json:"hint,omitempty"`
}

// MakeDiag creates a new Diagnostic.
func MakeDiag(code, message string, span *ast.Span, hint string) Diagnostic {
	return Diagnostic{
		Code:    code,
		Message: message,
		Span:    span,
		Hint:    hint,
	}
}

// Diagnoser is implemented by errors that carry their own diagnostic.
type Diagnoser interface {
	error
	Diagnostic() Diagnostic
}

// FromError converts err into a Diagnostic. Errors that do not carry one are
// reported as E_INTERNAL.
func FromError(err error) Diagnostic {
	var d Diagnoser
	if errors.As(err, &d) {
		return d.Diagnostic()
	}
	return MakeDiag(EInternal, err.Error(), nil, "")
}

// FormatDiagnostic formats a single diagnostic for display.
func FormatDiagnostic(d Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(d)
		return string(b)
	}
	loc := "<unknown>"
	if d.Span != nil {
		file := d.Span.File
		if file == "" {
			file = "<input>"
		}
		loc = fmt.Sprintf("%s:%d:%d", file, d.Span.StartLine, d.Span.StartCol)
	}
	out := fmt.Sprintf("error[%s]: %s\n  --> %s", d.Code, d.Message, loc)
	if d.Hint != "" {
		out += fmt.Sprintf("\n  hint: %s", d.Hint)
	}
	return out
}

// FormatDiagnostics formats a slice of diagnostics for display.
func FormatDiagnostics(diags []Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(diags)
		return string(b)
	}
	parts := make([]string, len(diags))
	for i, d := range diags {
		parts[i] = FormatDiagnostic(d, true)
	}
	return strings.Join(parts, "\n\n")
}
