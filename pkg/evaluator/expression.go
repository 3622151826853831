package evaluator

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// precedence is the binary operator table. All operators are left-associative.
var precedence = map[string]int{
	"*": 3,
	"/": 3,
	"+": 2,
	"-": 2,
}

// relational lists the comparison operators a condition may split on.
var relational = map[string]bool{
	"==": true,
	"!=": true,
	"<":  true,
	">":  true,
	"<=": true,
	">=": true,
}

// item is one entry of the postfix output queue: an operator or a resolved
// operand.
type item struct {
	op  string
	val Value
}

// EvaluateSingleToken resolves one token against the root environment.
func (ev *Evaluator) EvaluateSingleToken(tok string) (Value, error) {
	return ev.singleToken(ev.env, tok)
}

// Evaluate evaluates an arithmetic expression against the root environment.
func (ev *Evaluator) Evaluate(tokens []string) (Value, error) {
	return ev.evaluate(ev.env, tokens)
}

// EvaluateCondition evaluates a condition against the root environment.
func (ev *Evaluator) EvaluateCondition(tokens []string) (bool, error) {
	return ev.condition(ev.env, tokens)
}

func (ev *Evaluator) singleToken(env *Env, tok string) (Value, error) {
	if strings.Contains(tok, ".") {
		if f, err := strconv.ParseFloat(tok, 64); err == nil {
			return NewFloat(f), nil
		}
	} else if isIntLiteral(tok) {
		n, err := strconv.ParseInt(tok, 10, 64)
		if err == nil {
			return NewInt(n), nil
		}
		if errors.Is(err, strconv.ErrRange) {
			return nil, evalErrorf("integer overflow: %s", tok)
		}
	}

	if len(tok) >= 2 && strings.HasPrefix(tok, `"`) && strings.HasSuffix(tok, `"`) {
		return NewString(tok[1 : len(tok)-1]), nil
	}
	if val, ok := env.Get(tok); ok {
		return val, nil
	}
	switch tok {
	case ev.opts.Dialect.True:
		return NewBool(true), nil
	case ev.opts.Dialect.False:
		return NewBool(false), nil
	}
	return nil, evalErrorf("cannot evaluate token: %s", tok)
}

// isIntLiteral reports whether tok is all digits, optionally after one '-'.
func isIntLiteral(tok string) bool {
	digits := strings.TrimPrefix(tok, "-")
	if digits == "" {
		return false
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return false
		}
	}
	return true
}

func (ev *Evaluator) evaluate(env *Env, tokens []string) (Value, error) {
	if len(tokens) == 0 {
		return nil, evalErrorf("empty expression")
	}
	if len(tokens) == 1 {
		return ev.singleToken(env, tokens[0])
	}

	queue, err := ev.toPostfix(env, tokens)
	if err != nil {
		return nil, err
	}
	return applyPostfix(queue)
}

// toPostfix is the shunting-yard pass. Operands are resolved to values as
// they are met.
func (ev *Evaluator) toPostfix(env *Env, tokens []string) ([]item, error) {
	var (
		queue []item
		ops   []string
	)
	for _, tok := range tokens {
		switch {
		case precedence[tok] > 0:
			for len(ops) > 0 && precedence[ops[len(ops)-1]] >= precedence[tok] {
				queue = append(queue, item{op: ops[len(ops)-1]})
				ops = ops[:len(ops)-1]
			}
			ops = append(ops, tok)
		case tok == "(":
			ops = append(ops, tok)
		case tok == ")":
			for len(ops) > 0 && ops[len(ops)-1] != "(" {
				queue = append(queue, item{op: ops[len(ops)-1]})
				ops = ops[:len(ops)-1]
			}
			if len(ops) == 0 {
				return nil, evalErrorf("unbalanced parentheses")
			}
			ops = ops[:len(ops)-1]
		default:
			val, err := ev.singleToken(env, tok)
			if err != nil {
				return nil, err
			}
			queue = append(queue, item{val: val})
		}
	}

	for len(ops) > 0 {
		top := ops[len(ops)-1]
		if top == "(" {
			return nil, evalErrorf("unbalanced parentheses")
		}
		queue = append(queue, item{op: top})
		ops = ops[:len(ops)-1]
	}
	return queue, nil
}

func applyPostfix(queue []item) (Value, error) {
	var stack []Value
	for _, it := range queue {
		if it.op == "" {
			stack = append(stack, it.val)
			continue
		}
		if len(stack) < 2 {
			return nil, evalErrorf("invalid expression: operator %s needs two operands", it.op)
		}
		a, b := stack[len(stack)-2], stack[len(stack)-1]
		stack = stack[:len(stack)-2]
		res, err := applyOp(it.op, a, b)
		if err != nil {
			return nil, err
		}
		stack = append(stack, res)
	}
	if len(stack) != 1 {
		return nil, evalErrorf("invalid expression")
	}
	return stack[0], nil
}

// applyOp applies a binary arithmetic operator. Integers stay integers
// except under '/', which always yields a float; mixing an integer with a
// float promotes to float. '+' also joins two strings. Integer results that
// do not fit in 64 bits fail instead of wrapping.
func applyOp(op string, a, b Value) (Value, error) {
	if op == "/" && isZero(b) {
		return nil, evalErrorf("division by zero")
	}

	if x, ok := a.(Int); ok {
		if y, ok := b.(Int); ok {
			switch op {
			case "+", "-", "*":
				n, ok := intOp(op, x.Value, y.Value)
				if !ok {
					return nil, evalErrorf("integer overflow: %d %s %d", x.Value, op, y.Value)
				}
				return NewInt(n), nil
			case "/":
				return NewFloat(float64(x.Value) / float64(y.Value)), nil
			}
		}
	}

	if x, ok := toFloat(a); ok {
		if y, ok := toFloat(b); ok {
			switch op {
			case "+":
				return NewFloat(x + y), nil
			case "-":
				return NewFloat(x - y), nil
			case "*":
				return NewFloat(x * y), nil
			case "/":
				return NewFloat(x / y), nil
			}
		}
	}

	if x, ok := a.(String); ok && op == "+" {
		if y, ok := b.(String); ok {
			return NewString(x.Value + y.Value), nil
		}
	}

	return nil, evalErrorf("unsupported operand types for %s: %s and %s", op, a.Kind(), b.Kind())
}

// intOp applies + - or * and reports false when the result overflows int64.
func intOp(op string, a, b int64) (int64, bool) {
	switch op {
	case "+":
		c := a + b
		return c, (a^c)&(b^c) >= 0
	case "-":
		c := a - b
		return c, (a^b)&(a^c) >= 0
	default:
		if a == 0 || b == 0 {
			return 0, true
		}
		if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
			return 0, false
		}
		c := a * b
		return c, c/b == a
	}
}

func toFloat(v Value) (float64, bool) {
	switch n := v.(type) {
	case Int:
		return float64(n.Value), true
	case Float:
		return n.Value, true
	}
	return 0, false
}

func isZero(v Value) bool {
	f, ok := toFloat(v)
	return ok && f == 0
}

func (ev *Evaluator) condition(env *Env, tokens []string) (bool, error) {
	if len(tokens) == 0 {
		return false, evalErrorf("empty condition")
	}

	for i, tok := range tokens {
		if !relational[tok] {
			continue
		}
		left, err := ev.evaluate(env, tokens[:i])
		if err != nil {
			return false, err
		}
		right, err := ev.evaluate(env, tokens[i+1:])
		if err != nil {
			return false, err
		}
		return compare(tok, left, right)
	}

	val, err := ev.evaluate(env, tokens)
	if err != nil {
		return false, err
	}
	return Truthiness(val), nil
}

// compare applies a relational operator. Numbers compare after promotion
// and strings lexicographically. Other kinds only support equality, and
// values of different kinds are never equal.
func compare(op string, a, b Value) (bool, error) {
	if x, ok := a.(Int); ok {
		if y, ok := b.(Int); ok {
			return ordered(op, cmpInt(x.Value, y.Value)), nil
		}
	}
	if x, ok := toFloat(a); ok {
		if y, ok := toFloat(b); ok {
			return ordered(op, cmpFloat(x, y)), nil
		}
	}
	if x, ok := a.(String); ok {
		if y, ok := b.(String); ok {
			return ordered(op, strings.Compare(x.Value, y.Value)), nil
		}
	}

	switch op {
	case "==":
		return a == b, nil
	case "!=":
		return a != b, nil
	}
	return false, evalErrorf("unsupported operand types for %s: %s and %s", op, a.Kind(), b.Kind())
}

func ordered(op string, c int) bool {
	switch op {
	case "==":
		return c == 0
	case "!=":
		return c != 0
	case "<":
		return c < 0
	case ">":
		return c > 0
	case "<=":
		return c <= 0
	default:
		return c >= 0
	}
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
