// Package evaluator implements the LuzScript runtime evaluator.
package evaluator

import (
	"math"
	"strconv"
	"strings"

	"github.com/thomasrohde/luzscript/pkg/dialect"
)

// Value is the interface for all LuzScript runtime values.
// Use the sealed marker method to restrict implementations to this package.
type Value interface {
	Kind() string
	luzvalue() // sealed marker
}

// Int represents an integer value.
type Int struct {
	Value int64
}

func (Int) Kind() string { return "integer" }
func (Int) luzvalue()    {}

// Float represents a floating-point value.
type Float struct {
	Value float64
}

func (Float) Kind() string { return "float" }
func (Float) luzvalue()    {}

// String represents a string value. The text is kept exactly as written
// between the quotes; escapes are not decoded.
type String struct {
	Value string
}

func (String) Kind() string { return "string" }
func (String) luzvalue()    {}

// Bool represents a boolean value.
type Bool struct {
	Value bool
}

func (Bool) Kind() string { return "boolean" }
func (Bool) luzvalue()    {}

// Absent is the value of a declared but unassigned variable.
type Absent struct{}

func (Absent) Kind() string { return "absent" }
func (Absent) luzvalue()    {}

// NewInt creates an integer value.
func NewInt(n int64) Value {
	return Int{Value: n}
}

// NewFloat creates a floating-point value.
func NewFloat(f float64) Value {
	return Float{Value: f}
}

// NewString creates a string value.
func NewString(s string) Value {
	return String{Value: s}
}

// NewBool creates a boolean value.
func NewBool(b bool) Value {
	return Bool{Value: b}
}

// NewAbsent creates the absent value.
func NewAbsent() Value {
	return Absent{}
}

// IsAbsent reports whether v is nil or the absent value.
func IsAbsent(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(Absent)
	return ok
}

// Truthiness returns the boolean interpretation of a value.
// absent, false, 0, 0.0 and "" are falsy; everything else is truthy.
func Truthiness(v Value) bool {
	switch val := v.(type) {
	case Bool:
		return val.Value
	case Int:
		return val.Value != 0
	case Float:
		return val.Value != 0
	case String:
		return val.Value != ""
	default:
		return false
	}
}

// Display renders v the way print writes it. Booleans and the absent value
// use the dialect's words.
func Display(v Value, d dialect.Dialect) string {
	switch val := v.(type) {
	case Int:
		return strconv.FormatInt(val.Value, 10)
	case Float:
		return formatFloat(val.Value)
	case String:
		return val.Value
	case Bool:
		if val.Value {
			return d.True
		}
		return d.False
	default:
		return d.Absent
	}
}

// formatFloat always shows a fractional part or an exponent, so 14 divided
// by 1 prints as 14.0.
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	if abs := math.Abs(f); abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
