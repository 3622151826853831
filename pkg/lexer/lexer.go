// Package lexer implements the LuzScript tokenizer.
//
// Tokens are plain strings. No kind tag survives scanning; consumers classify
// a token again from its text with IsNumber, IsIdentifier, IsString and
// IsOperator.
package lexer

import (
	"strings"
	"unicode"

	"github.com/thomasrohde/luzscript/pkg/ast"
	"github.com/thomasrohde/luzscript/pkg/diagnostics"
)

// doubleOps are the two-character operators, tried before single characters.
var doubleOps = map[string]bool{
	"==": true, "!=": true, "<=": true, ">=": true,
	"+=": true, "-=": true, "*=": true, "/=": true,
}

// singleChars are the one-character operators and punctuators.
const singleChars = "+-*/=<>!&|{}()[];,"

// Position is the 1-based line and column where a token starts.
type Position struct {
	Line int
	Col  int
}

// Stream is the output of a scan: tokens plus the position of each one.
type Stream struct {
	Tokens    []string
	Positions []Position
}

// Span returns the source span covering tokens[lo:hi].
func (s *Stream) Span(file string, lo, hi int) ast.Span {
	span := ast.Span{File: file}
	if len(s.Positions) == 0 {
		return span
	}
	if lo >= len(s.Positions) {
		lo = len(s.Positions) - 1
	}
	if hi <= lo {
		hi = lo + 1
	}
	if hi > len(s.Positions) {
		hi = len(s.Positions)
	}
	start, end := s.Positions[lo], s.Positions[hi-1]
	span.StartLine, span.StartCol = start.Line, start.Col
	span.EndLine = end.Line
	span.EndCol = end.Col + len([]rune(s.Tokens[hi-1]))
	return span
}

type scanner struct {
	src  []rune
	pos  int
	line int
	col  int

	out          Stream
	unterminated bool
	badLine      int
	badCol       int
}

func newScanner(source string) *scanner {
	return &scanner{src: []rune(source), line: 1, col: 1}
}

func (s *scanner) atEnd() bool {
	return s.pos >= len(s.src)
}

func (s *scanner) peekAt(offset int) rune {
	p := s.pos + offset
	if p >= len(s.src) {
		return 0
	}
	return s.src[p]
}

func (s *scanner) advance() rune {
	ch := s.src[s.pos]
	s.pos++
	if ch == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return ch
}

func (s *scanner) emit(tok string, line, col int) {
	s.out.Tokens = append(s.out.Tokens, tok)
	s.out.Positions = append(s.out.Positions, Position{Line: line, Col: col})
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isIdentPart(ch rune) bool {
	return isIdentStart(ch) || unicode.IsDigit(ch)
}

// skipSpaceRun consumes a run of whitespace.
func (s *scanner) skipSpaceRun() {
	for !s.atEnd() && unicode.IsSpace(s.peekAt(0)) {
		s.advance()
	}
}

// scanString scans a quoted literal. Whitespace runs inside the literal are
// collapsed to a single space, the same effect as normalizing the whole
// input before scanning. It reports false when the input ends first.
func (s *scanner) scanString() bool {
	line, col := s.line, s.col
	var buf strings.Builder
	buf.WriteRune(s.advance()) // opening "

	for !s.atEnd() {
		ch := s.peekAt(0)
		switch {
		case ch == '"':
			buf.WriteRune(s.advance())
			s.emit(buf.String(), line, col)
			return true
		case ch == '\\':
			buf.WriteRune(s.advance())
			if s.atEnd() {
				break
			}
			if unicode.IsSpace(s.peekAt(0)) {
				buf.WriteByte(' ')
				s.skipSpaceRun()
				continue
			}
			buf.WriteRune(s.advance())
		case unicode.IsSpace(ch):
			buf.WriteByte(' ')
			s.skipSpaceRun()
		default:
			buf.WriteRune(s.advance())
		}
	}

	s.unterminated = true
	s.badLine, s.badCol = line, col
	return false
}

func (s *scanner) scanNumber() {
	line, col := s.line, s.col
	start := s.pos
	hasDecimal := false
	for !s.atEnd() {
		ch := s.peekAt(0)
		if isDigit(ch) {
			s.advance()
			continue
		}
		if ch == '.' && !hasDecimal {
			hasDecimal = true
			s.advance()
			continue
		}
		break
	}
	s.emit(string(s.src[start:s.pos]), line, col)
}

func (s *scanner) scanIdentOrKeyword() {
	line, col := s.line, s.col
	start := s.pos
	for !s.atEnd() && isIdentPart(s.peekAt(0)) {
		s.advance()
	}
	s.emit(string(s.src[start:s.pos]), line, col)
}

func (s *scanner) run() {
	for !s.atEnd() {
		ch := s.peekAt(0)

		if unicode.IsSpace(ch) {
			s.advance()
			continue
		}

		if ch == '"' {
			if !s.scanString() {
				return
			}
			continue
		}

		if isDigit(ch) || (ch == '.' && isDigit(s.peekAt(1))) {
			s.scanNumber()
			continue
		}

		if isIdentStart(ch) {
			s.scanIdentOrKeyword()
			continue
		}

		line, col := s.line, s.col
		if next := s.peekAt(1); next != 0 {
			if pair := string([]rune{ch, next}); doubleOps[pair] {
				s.advance()
				s.advance()
				s.emit(pair, line, col)
				continue
			}
		}

		if strings.ContainsRune(singleChars, ch) {
			s.advance()
			s.emit(string(ch), line, col)
			continue
		}

		// Unknown characters produce no token.
		s.advance()
	}
}

// LexError reports input the scanner could not fully consume.
type LexError struct {
	Diag diagnostics.Diagnostic
}

func (e *LexError) Error() string {
	return e.Diag.Message
}

// Diagnostic returns the diagnostic carried by the error.
func (e *LexError) Diagnostic() diagnostics.Diagnostic {
	return e.Diag
}

// Scan tokenizes source and records token positions. When a string literal
// is left open, scanning halts there and a *LexError is returned together
// with the tokens produced before it.
func Scan(source, filename string) (*Stream, error) {
	s := newScanner(source)
	s.run()
	if s.unterminated {
		span := &ast.Span{File: filename, StartLine: s.badLine, StartCol: s.badCol, EndLine: s.badLine, EndCol: s.badCol + 1}
		diag := diagnostics.MakeDiag(diagnostics.ELex, "unterminated string literal", span, "close the literal with '\"'")
		return &s.out, &LexError{Diag: diag}
	}
	return &s.out, nil
}

// Tokenize breaks source into tokens. It never fails: unknown characters are
// dropped and an unterminated string literal ends the token stream.
func Tokenize(source string) []string {
	stream, _ := Scan(source, "")
	return stream.Tokens
}

// IsNumber reports whether tok has the shape of a numeric literal.
func IsNumber(tok string) bool {
	if tok == "" {
		return false
	}
	return isDigit(rune(tok[0])) || (tok[0] == '.' && len(tok) > 1 && isDigit(rune(tok[1])))
}

// IsIdentifier reports whether tok has the shape of an identifier or keyword.
func IsIdentifier(tok string) bool {
	for i, r := range tok {
		if i == 0 && !isIdentStart(r) {
			return false
		}
		if !isIdentPart(r) {
			return false
		}
	}
	return tok != ""
}

// IsString reports whether tok is a quoted string literal.
func IsString(tok string) bool {
	return len(tok) >= 2 && tok[0] == '"' && tok[len(tok)-1] == '"'
}

// IsOperator reports whether tok is one of the operator or punctuator tokens.
func IsOperator(tok string) bool {
	if doubleOps[tok] {
		return true
	}
	return len(tok) == 1 && strings.ContainsRune(singleChars, rune(tok[0]))
}
