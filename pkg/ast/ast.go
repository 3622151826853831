// Package ast defines the LuzScript statement nodes.
//
// Statements are carved out of the flat token stream once. Expressions and
// conditions are not broken down further: they keep the token slice they
// were written as and are evaluated from it.
package ast

import "strings"

// Span represents a source location range.
type Span struct {
	File      string `json:"file"`
	StartLine int    `json:"startLine"`
	StartCol  int    `json:"startCol"`
	EndLine   int    `json:"endLine"`
	EndCol    int    `json:"endCol"`
}

// Node is the interface implemented by all AST nodes.
type Node interface {
	Kind() string
	NodeSpan() Span
}

// Stmt is the interface for all statement nodes.
type Stmt interface {
	Node
	stmtNode() // sealed marker
}

// Program is a parsed source unit.
type Program struct {
	Span       Span
	Statements []Stmt
}

func (n *Program) Kind() string   { return "Program" }
func (n *Program) NodeSpan() Span { return n.Span }

// Expr is an arithmetic expression kept as its token slice.
type Expr struct {
	Span   Span
	Tokens []string
}

func (n *Expr) Kind() string   { return "Expr" }
func (n *Expr) NodeSpan() Span { return n.Span }

// String joins the tokens back into source form.
func (n *Expr) String() string {
	return JoinTokens(n.Tokens)
}

// Condition is a boolean condition kept as its token slice.
type Condition struct {
	Span   Span
	Tokens []string
}

func (n *Condition) Kind() string   { return "Condition" }
func (n *Condition) NodeSpan() Span { return n.Span }

func (n *Condition) String() string {
	return JoinTokens(n.Tokens)
}

// Block is a brace-delimited statement list.
type Block struct {
	Span       Span
	Statements []Stmt
}

func (n *Block) Kind() string   { return "Block" }
func (n *Block) NodeSpan() Span { return n.Span }

// --- Statements ---

// VarDecl declares Name. A nil Value stores the absent value.
type VarDecl struct {
	Span  Span
	Name  string
	Value *Expr
}

func (n *VarDecl) Kind() string   { return "VarDecl" }
func (n *VarDecl) NodeSpan() Span { return n.Span }
func (n *VarDecl) stmtNode()      {}

// Assign overwrites an existing variable. Op is "=" or a compound operator
// such as "+=".
type Assign struct {
	Span  Span
	Name  string
	Op    string
	Value *Expr
}

func (n *Assign) Kind() string   { return "Assign" }
func (n *Assign) NodeSpan() Span { return n.Span }
func (n *Assign) stmtNode()      {}

// Print writes one line. A nil Arg writes a blank line.
type Print struct {
	Span Span
	Arg  *Expr
}

func (n *Print) Kind() string   { return "Print" }
func (n *Print) NodeSpan() Span { return n.Span }
func (n *Print) stmtNode()      {}

// If runs Then when Cond holds, otherwise Else when present.
type If struct {
	Span Span
	Cond *Condition
	Then *Block
	Else *Block
}

func (n *If) Kind() string   { return "If" }
func (n *If) NodeSpan() Span { return n.Span }
func (n *If) stmtNode()      {}

// While re-checks Cond before every run of Body.
type While struct {
	Span Span
	Cond *Condition
	Body *Block
}

func (n *While) Kind() string   { return "While" }
func (n *While) NodeSpan() Span { return n.Span }
func (n *While) stmtNode()      {}

// For runs Init once, then repeats Cond, Body, Post.
type For struct {
	Span Span
	Init []Stmt
	Cond *Condition
	Post []Stmt
	Body *Block
}

func (n *For) Kind() string   { return "For" }
func (n *For) NodeSpan() Span { return n.Span }
func (n *For) stmtNode()      {}

// Empty is a lone ';'.
type Empty struct {
	Span Span
}

func (n *Empty) Kind() string   { return "Empty" }
func (n *Empty) NodeSpan() Span { return n.Span }
func (n *Empty) stmtNode()      {}

// JoinTokens renders tokens with single spaces, without padding inside
// parentheses or before commas.
func JoinTokens(tokens []string) string {
	var b strings.Builder
	for i, tok := range tokens {
		if i > 0 {
			prev := tokens[i-1]
			if prev != "(" && tok != ")" && tok != "," {
				b.WriteByte(' ')
			}
		}
		b.WriteString(tok)
	}
	return b.String()
}
